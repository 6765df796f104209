package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

const orderColumns = `id, user_id, delivery_crew_id, status, total, date, updated_at`

type orderRepository struct {
	db DB
}

func NewOrderRepository(db DB) interfaces.OrderRepository {
	return &orderRepository{db: db}
}

// PlaceFromCart locks the user's cart rows with FOR UPDATE. A concurrent
// placement blocks on the lock and then finds the rows gone. Only the
// locked rows are removed from the cart.
func (r *orderRepository) PlaceFromCart(ctx context.Context, userID int64, build interfaces.BuildOrderFunc) (*domain.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	lines, err := listCartLines(ctx, tx,
		`SELECT `+cartLineColumns+cartLineFrom+` WHERE cl.user_id = $1 ORDER BY cl.id FOR UPDATE OF cl`, userID)
	if err != nil {
		return nil, err
	}

	order, err := build(lines)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO orders (user_id, delivery_crew_id, status, total, date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, order.UserID, order.DeliveryCrewID, order.Status.Bool(), order.Total, order.Date, order.UpdatedAt,
	).Scan(&order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Lines {
		line := &order.Lines[i]
		err = tx.QueryRow(ctx, `
			INSERT INTO order_lines (order_id, menu_item_id, quantity, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, order.ID, line.MenuItemID, line.Quantity, line.UnitPrice, line.LineTotal,
		).Scan(&line.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert order line: %w", err)
		}
		line.OrderID = order.ID
	}

	// lines added after the lock was taken are not part of this order and stay
	ids := make([]int64, len(lines))
	for i, line := range lines {
		ids[i] = line.ID
	}
	if _, err := tx.Exec(ctx, `DELETE FROM cart_lines WHERE id = ANY($1)`, ids); err != nil {
		return nil, fmt.Errorf("failed to clear cart: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}
	return order, nil
}

func scanOrder(row Row) (*domain.Order, error) {
	var (
		order     domain.Order
		delivered bool
	)
	err := row.Scan(&order.ID, &order.UserID, &order.DeliveryCrewID, &delivered, &order.Total, &order.Date, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	order.Status = domain.OrderStatusFromBool(delivered)
	return &order, nil
}

func (r *orderRepository) FindByID(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("order %d", id))
	}
	if err := loadLines(ctx, r.db, []*domain.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) List(ctx context.Context, scope interfaces.OrderScope, query interfaces.OrderQuery) ([]*domain.Order, int, error) {
	var (
		conds []string
		args  []any
	)
	if scope.UserID != nil {
		args = append(args, *scope.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if scope.DeliveryCrewID != nil {
		args = append(args, *scope.DeliveryCrewID)
		conds = append(conds, fmt.Sprintf("delivery_crew_id = $%d", len(args)))
	}
	if query.Status != nil {
		args = append(args, query.Status.Bool())
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, query.PerPage, query.Offset())
	sql := fmt.Sprintf(`SELECT %s FROM orders%s ORDER BY id LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	rows.Close()

	if err := loadLines(ctx, r.db, orders); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// loadLines attaches lines and their menu items to the orders in one query
func loadLines(ctx context.Context, q querier, orders []*domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := q.Query(ctx, `
		SELECT ol.id, ol.order_id, ol.menu_item_id, ol.quantity, ol.unit_price, ol.line_total,`+menuItemColumns+`
		FROM order_lines ol
		JOIN menu_items mi ON mi.id = ol.menu_item_id
		JOIN categories c ON c.id = mi.category_id
		WHERE ol.order_id = ANY($1)
		ORDER BY ol.id
	`, ids)
	if err != nil {
		return fmt.Errorf("failed to load order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line domain.OrderLine
			item = domain.MenuItem{Category: &domain.Category{}}
		)
		err := rows.Scan(
			&line.ID, &line.OrderID, &line.MenuItemID, &line.Quantity, &line.UnitPrice, &line.LineTotal,
			&item.ID, &item.Title, &item.Price, &item.Featured, &item.CategoryID,
			&item.Category.ID, &item.Category.Slug, &item.Category.Title,
		)
		if err != nil {
			return fmt.Errorf("failed to scan order line: %w", err)
		}
		line.MenuItem = &item
		if o, ok := byID[line.OrderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}
	return rows.Err()
}

// Update locks the order row for the transaction, so concurrent updates
// apply one after the other against fresh state. Total, user and date
// never change.
func (r *orderRepository) Update(ctx context.Context, id int64, apply interfaces.UpdateOrderFunc) (*domain.Order, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order, err := scanOrder(tx.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("order %d", id))
	}
	if err := loadLines(ctx, tx, []*domain.Order{order}); err != nil {
		return nil, err
	}

	if err := apply(order); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE orders SET delivery_crew_id = $1, status = $2, updated_at = $3 WHERE id = $4`,
		order.DeliveryCrewID, order.Status.Bool(), order.UpdatedAt, order.ID,
	)
	if isForeignKeyViolation(err) {
		return nil, domain.NewValidationError(domain.FieldDeliveryCrew, "user does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update order: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order update: %w", err)
	}
	return order, nil
}

func (r *orderRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("order %d", id)
	}
	return nil
}
