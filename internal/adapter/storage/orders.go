package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pvolkov/shoply/internal/core/domain"
	"github.com/pvolkov/shoply/internal/core/port"
)

var _ port.OrdersRepository = (*OrdersRepository)(nil)

type OrdersRepository struct {
	sqldb sqldb
}

func NewOrdersRepository(sqldb sqldb) OrdersRepository {
	return OrdersRepository{sqldb}
}

// InOrderTx runs fn inside one database transaction. Any error from fn
// rolls the transaction back, so partial stock decrements are never
// visible.
func (r OrdersRepository) InOrderTx(
	ctx context.Context, fn func(port.OrderTx) error,
) (txErr error) {
	const op = "OrdersRepository.InOrderTx"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	tx, err := r.sqldb.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: failed to begin tx: %w", op, err)
	}

	defer func() {
		if txErr == nil {
			if err := tx.Commit(); err != nil {
				txErr = fmt.Errorf("%s: failed to commit: %w", op, err)
			}
			return
		}

		if err := tx.Rollback(); err != nil {
			log.Error("failed to rollback tx", "err", err)
		}
	}()

	return fn(orderTx{tx})
}

func (r OrdersRepository) FindOrdersByUser(
	ctx context.Context, userID uuid.UUID,
) ([]domain.Order, error) {
	const op = "OrdersRepository.FindOrdersByUser"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	query := `
		SELECT id, user_id, total_price, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC;`

	rows, err := r.sqldb.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		err := rows.Scan(&o.ID, &o.UserID, &o.TotalPrice, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range orders {
		lines, err := r.findOrderLines(ctx, orders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders[i].Lines = lines
	}
	return orders, nil
}

func (r OrdersRepository) findOrderLines(
	ctx context.Context, orderID uuid.UUID,
) ([]domain.OrderLine, error) {
	query := `
		SELECT l.product_id, l.quantity, l.unit_price, p.name, p.price
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id = $1
		ORDER BY l.position;`

	rows, err := r.sqldb.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		err := rows.Scan(
			&l.ProductID, &l.Quantity, &l.UnitPrice,
			&l.Product.Name, &l.Product.Price,
		)
		if err != nil {
			return nil, err
		}
		l.Product.ID = l.ProductID
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

var _ port.OrderTx = (*orderTx)(nil)

type orderTx struct {
	tx *sql.Tx
}

func (t orderTx) FindProductByID(
	ctx context.Context, id uuid.UUID,
) (domain.Product, error) {
	const op = "orderTx.FindProductByID"

	query := `SELECT` + productColumns + `FROM products WHERE id = $1;`

	p, err := scanProduct(t.tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.NotFound("product not found")
		}
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// DecrementStock is the conditional decrement: the WHERE guard makes the
// stock check and the update one atomic statement, so two transactions
// racing for the last units cannot both succeed regardless of isolation
// level.
func (t orderTx) DecrementStock(
	ctx context.Context, productID uuid.UUID, qty int,
) (bool, error) {
	const op = "orderTx.DecrementStock"

	query := `
		UPDATE products
		SET stock = stock - $2
		WHERE id = $1 AND stock >= $2;`

	res, err := t.tx.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return n == 1, nil
}

func (t orderTx) CreateOrder(
	ctx context.Context, o domain.Order,
) (domain.Order, error) {
	const op = "orderTx.CreateOrder"

	query := `
		INSERT INTO orders (user_id, total_price)
		VALUES ($1, $2)
		RETURNING id, created_at;`

	err := t.tx.QueryRowContext(ctx, query, o.UserID, o.TotalPrice).
		Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	lineQuery := `
		INSERT INTO order_lines (
			order_id, position, product_id, quantity, unit_price
		)
		VALUES ($1, $2, $3, $4, $5);`

	for i, l := range o.Lines {
		_, err := t.tx.ExecContext(ctx, lineQuery,
			o.ID, i, l.ProductID, l.Quantity, l.UnitPrice,
		)
		if err != nil {
			return domain.Order{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return o, nil
}
