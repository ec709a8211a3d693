package storage

import (
	"testing"

	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildListWhere(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		where, args := buildListWhere(domain.ProductFilter{})
		assert.Empty(t, where)
		assert.Empty(t, args)
	})

	t.Run("Search", func(t *testing.T) {
		where, args := buildListWhere(domain.ProductFilter{Search: "gopher"})
		assert.Equal(t,
			" WHERE (name ILIKE $1 OR description ILIKE $1)", where)
		assert.Equal(t, []any{"%gopher%"}, args)
	})

	t.Run("AllFilters", func(t *testing.T) {
		minP := decimal.RequireFromString("10")
		maxP := decimal.RequireFromString("100")
		where, args := buildListWhere(domain.ProductFilter{
			Search:      "lamp",
			Category:    "home",
			MinPrice:    &minP,
			MaxPrice:    &maxP,
			InStockOnly: true,
		})

		assert.Equal(t,
			" WHERE (name ILIKE $1 OR description ILIKE $1)"+
				" AND category ILIKE $2"+
				" AND price >= $3 AND price <= $4"+
				" AND stock > 0",
			where,
		)
		require.Len(t, args, 4)
		assert.Equal(t, "%lamp%", args[0])
		assert.Equal(t, "home", args[1])
	})

	t.Run("SearchTextStaysInArgs", func(t *testing.T) {
		injection := "'; DROP TABLE products; --"
		where, args := buildListWhere(domain.ProductFilter{Search: injection})
		assert.NotContains(t, where, "DROP")
		assert.Equal(t, []any{"%" + injection + "%"}, args)
	})
}

func TestBuildListOrder(t *testing.T) {
	tests := []struct {
		name   string
		filter domain.ProductFilter
		want   string
	}{
		{
			name:   "DefaultNewestFirst",
			filter: domain.ProductFilter{},
			want:   " ORDER BY created_at DESC",
		},
		{
			name: "PriceAsc",
			filter: domain.ProductFilter{
				SortBy: "price", SortOrder: domain.SortAsc,
			},
			want: " ORDER BY price ASC",
		},
		{
			name: "NameDesc",
			filter: domain.ProductFilter{
				SortBy: "name", SortOrder: domain.SortDesc,
			},
			want: " ORDER BY name DESC",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, buildListOrder(tc.filter))
		})
	}
}

func TestBuildUpdateSet(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		set, args := buildUpdateSet(domain.ProductPatch{})
		assert.Empty(t, set)
		assert.Empty(t, args)
	})

	t.Run("Partial", func(t *testing.T) {
		name := "new name"
		stock := 7
		set, args := buildUpdateSet(domain.ProductPatch{
			Name:  &name,
			Stock: &stock,
		})

		assert.Equal(t, []string{"name = $1", "stock = $2"}, set)
		assert.Equal(t, []any{"new name", 7}, args)
	})
}

// The by-id queries splice productColumns between the SELECT and FROM
// keywords, so the constant must keep whitespace on both ends or the
// last column fuses with FROM into one identifier.
func TestProductColumnsRendering(t *testing.T) {
	query := `SELECT` + productColumns + `FROM products WHERE id = $1;`

	assert.Regexp(t, `SELECT\s+id,`, query)
	assert.Regexp(t, `created_at\s+FROM products`, query)

	returning := `RETURNING` + productColumns + `;`
	assert.Regexp(t, `RETURNING\s+id,`, returning)
	assert.Regexp(t, `created_at\s+;`, returning)
}
