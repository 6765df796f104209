package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

const cartLineColumns = `
	cl.id, cl.user_id, cl.menu_item_id, cl.quantity, cl.unit_price, cl.line_total, cl.created_at,` + menuItemColumns

const cartLineFrom = `
	FROM cart_lines cl
	JOIN menu_items mi ON mi.id = cl.menu_item_id
	JOIN categories c ON c.id = mi.category_id`

type cartRepository struct {
	db DB
}

func NewCartRepository(db DB) interfaces.CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) Upsert(ctx context.Context, line *domain.CartLine) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO cart_lines (user_id, menu_item_id, quantity, unit_price, line_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, menu_item_id) DO UPDATE
		SET quantity = EXCLUDED.quantity,
		    unit_price = EXCLUDED.unit_price,
		    line_total = EXCLUDED.line_total
		RETURNING id, created_at
	`, line.UserID, line.MenuItemID, line.Quantity, line.UnitPrice, line.LineTotal, line.CreatedAt,
	).Scan(&line.ID, &line.CreatedAt)
	if isForeignKeyViolation(err) {
		return domain.NewValidationError("menuitem_id", "menu item does not exist")
	}
	if err != nil {
		return fmt.Errorf("failed to upsert cart line: %w", err)
	}
	return nil
}

func (r *cartRepository) ListByUser(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	return listCartLines(ctx, r.db, `SELECT `+cartLineColumns+cartLineFrom+` WHERE cl.user_id = $1 ORDER BY cl.id`, userID)
}

// listCartLines scans cart lines with their menu items from q
func listCartLines(ctx context.Context, q querier, sql string, args ...any) ([]domain.CartLine, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	lines := make([]domain.CartLine, 0)
	for rows.Next() {
		var (
			line domain.CartLine
			item = domain.MenuItem{Category: &domain.Category{}}
		)
		err := rows.Scan(
			&line.ID, &line.UserID, &line.MenuItemID, &line.Quantity, &line.UnitPrice, &line.LineTotal, &line.CreatedAt,
			&item.ID, &item.Title, &item.Price, &item.Featured, &item.CategoryID,
			&item.Category.ID, &item.Category.Slug, &item.Category.Title,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart line: %w", err)
		}
		line.MenuItem = &item
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

func (r *cartRepository) DeleteLine(ctx context.Context, userID, menuItemID int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1 AND menu_item_id = $2`, userID, menuItemID)
	if err != nil {
		return fmt.Errorf("failed to delete cart line: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("cart line for menu item %d", menuItemID)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID int64) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear cart: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
