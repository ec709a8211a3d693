package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
)

var _ port.ProductsRepository = (*ProductsRepository)(nil)

const productColumns = `
	id, name, description, price, stock,
	category, owner_id, images, created_at
	`

type ProductsRepository struct {
	sqldb sqldb
}

func NewProductsRepository(sqldb sqldb) ProductsRepository {
	return ProductsRepository{sqldb}
}

func (r ProductsRepository) CreateProduct(
	ctx context.Context, p domain.Product,
) (domain.Product, error) {
	const op = "ProductsRepository.CreateProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	imgB, err := json.Marshal(imagesOrEmpty(p.ImageURLs))
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO products (
			name, description, price, stock, category, owner_id, images
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING` + productColumns + `;`

	row := r.sqldb.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Price, p.Stock,
		p.Category, p.OwnerID, string(imgB),
	)
	created, err := scanProduct(row)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

func (r ProductsRepository) FindProductByID(
	ctx context.Context, id uuid.UUID,
) (domain.Product, error) {
	const op = "ProductsRepository.FindProductByID"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `SELECT` + productColumns + `FROM products WHERE id = $1;`

	p, err := scanProduct(r.sqldb.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.NotFound("product not found")
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r ProductsRepository) UpdateProduct(
	ctx context.Context, id uuid.UUID, patch domain.ProductPatch,
) (domain.Product, error) {
	const op = "ProductsRepository.UpdateProduct"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	set, args := buildUpdateSet(patch)
	if len(set) == 0 {
		return r.FindProductByID(ctx, id)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE products SET %s WHERE id = $%d RETURNING %s;`,
		strings.Join(set, ", "), len(args), productColumns,
	)

	p, err := scanProduct(r.sqldb.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.NotFound("product not found")
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r ProductsRepository) DeleteProduct(
	ctx context.Context, id uuid.UUID,
) error {
	const op = "ProductsRepository.DeleteProduct"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	res, err := r.sqldb.ExecContext(ctx,
		`DELETE FROM products WHERE id = $1;`, id,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) &&
			pgErr.Code == pgerrcode.ForeignKeyViolation {
			return domain.Conflict("product has been ordered")
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return domain.NotFound("product not found")
	}
	return nil
}

func (r ProductsRepository) AppendProductImage(
	ctx context.Context, id uuid.UUID, imageURL string,
) (domain.Product, error) {
	const op = "ProductsRepository.AppendProductImage"

	if err := ctx.Err(); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		UPDATE products
		SET images = images || to_jsonb($2::text)
		WHERE id = $1
		RETURNING` + productColumns + `;`

	p, err := scanProduct(r.sqldb.QueryRowContext(ctx, query, id, imageURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.NotFound("product not found")
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (r ProductsRepository) FindProductsByFilter(
	ctx context.Context, f domain.ProductFilter,
) ([]domain.Product, int, error) {
	const op = "ProductsRepository.FindProductsByFilter"

	if err := ctx.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	where, args := buildListWhere(f)

	var total int
	countQuery := `SELECT count(*) FROM products` + where + `;`
	err := r.sqldb.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}

	limitArgs := append(args,
		f.PageSize, (f.Page-1)*f.PageSize,
	)
	listQuery := fmt.Sprintf(
		`SELECT %s FROM products%s%s LIMIT $%d OFFSET $%d;`,
		productColumns, where, buildListOrder(f),
		len(args)+1, len(args)+2,
	)

	rows, err := r.sqldb.QueryContext(ctx, listQuery, limitArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", op, err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	return products, total, nil
}

// buildListWhere renders the filter into a WHERE clause with positional
// args. All user input travels through args, never through the SQL text.
func buildListWhere(f domain.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	next := func() string { return "$" + strconv.Itoa(len(args)) }

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		ph := next()
		conds = append(conds,
			"(name ILIKE "+ph+" OR description ILIKE "+ph+")")
	}
	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, "category ILIKE "+next())
	}
	if f.MinPrice != nil {
		args = append(args, *f.MinPrice)
		conds = append(conds, "price >= "+next())
	}
	if f.MaxPrice != nil {
		args = append(args, *f.MaxPrice)
		conds = append(conds, "price <= "+next())
	}
	if f.InStockOnly {
		conds = append(conds, "stock > 0")
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// buildListOrder maps the whitelisted sort fields onto column names.
// Unknown fields never reach here, the service rejects them first.
func buildListOrder(f domain.ProductFilter) string {
	col := map[string]string{
		"price":      "price",
		"name":       "name",
		"created_at": "created_at",
	}[f.SortBy]
	if col == "" {
		return " ORDER BY created_at DESC"
	}

	dir := "ASC"
	if f.SortOrder == domain.SortDesc {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}

func buildUpdateSet(patch domain.ProductPatch) ([]string, []any) {
	var set []string
	var args []any

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, col+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.Stock != nil {
		add("stock", *patch.Stock)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	return set, args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	var imagesS string
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock,
		&p.Category, &p.OwnerID, &imagesS, &p.CreatedAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	if err := json.Unmarshal([]byte(imagesS), &p.ImageURLs); err != nil {
		return domain.Product{}, err
	}
	return p, nil
}

func imagesOrEmpty(urls []string) []string {
	if urls == nil {
		return []string{}
	}
	return urls
}
