package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

const menuItemColumns = `
	mi.id, mi.title, mi.price, mi.featured, mi.category_id,
	c.id, c.slug, c.title`

const menuItemFrom = `
	FROM menu_items mi
	JOIN categories c ON c.id = mi.category_id`

// menuItemOrderBy whitelists the ordering parameter; id breaks ties
var menuItemOrderBy = map[string]string{
	interfaces.OrderByID:        "mi.id",
	interfaces.OrderByPrice:     "mi.price, mi.id",
	interfaces.OrderByPriceDesc: "mi.price DESC, mi.id",
	interfaces.OrderByTitle:     "mi.title, mi.id",
	interfaces.OrderByTitleDesc: "mi.title DESC, mi.id",
}

type menuItemRepository struct {
	db DB
}

func NewMenuItemRepository(db DB) interfaces.MenuItemRepository {
	return &menuItemRepository{db: db}
}

func scanMenuItem(row Row) (*domain.MenuItem, error) {
	item := domain.MenuItem{Category: &domain.Category{}}
	err := row.Scan(
		&item.ID, &item.Title, &item.Price, &item.Featured, &item.CategoryID,
		&item.Category.ID, &item.Category.Slug, &item.Category.Title,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *menuItemRepository) Create(ctx context.Context, item *domain.MenuItem) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO menu_items (title, price, featured, category_id) VALUES ($1, $2, $3, $4) RETURNING id`,
		item.Title, item.Price, item.Featured, item.CategoryID,
	).Scan(&item.ID)
	if isForeignKeyViolation(err) {
		return domain.NewValidationError("category_id", "category does not exist")
	}
	if err != nil {
		return fmt.Errorf("failed to insert menu item: %w", err)
	}

	created, err := r.FindByID(ctx, item.ID)
	if err != nil {
		return err
	}
	item.Category = created.Category
	return nil
}

func (r *menuItemRepository) FindByID(ctx context.Context, id int64) (*domain.MenuItem, error) {
	item, err := scanMenuItem(r.db.QueryRow(ctx, `SELECT `+menuItemColumns+menuItemFrom+` WHERE mi.id = $1`, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("menu item %d", id))
	}
	return item, nil
}

func (r *menuItemRepository) List(ctx context.Context, query interfaces.MenuItemQuery) ([]*domain.MenuItem, int, error) {
	var (
		conds []string
		args  []any
	)
	if query.CategoryID != nil {
		args = append(args, *query.CategoryID)
		conds = append(conds, fmt.Sprintf("mi.category_id = $%d", len(args)))
	}
	if query.Featured != nil {
		args = append(args, *query.Featured)
		conds = append(conds, fmt.Sprintf("mi.featured = $%d", len(args)))
	}
	if query.Search != "" {
		args = append(args, "%"+escapeLike(query.Search)+"%")
		conds = append(conds, fmt.Sprintf("mi.title ILIKE $%d", len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+menuItemFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count menu items: %w", err)
	}

	orderBy, ok := menuItemOrderBy[query.Ordering]
	if !ok {
		orderBy = menuItemOrderBy[interfaces.OrderByID]
	}
	args = append(args, query.PerPage, query.Offset())
	sql := fmt.Sprintf(`SELECT %s%s%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		menuItemColumns, menuItemFrom, where, orderBy, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.MenuItem, 0)
	for rows.Next() {
		item, err := scanMenuItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *menuItemRepository) Update(ctx context.Context, item *domain.MenuItem) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE menu_items SET title = $1, price = $2, featured = $3, category_id = $4 WHERE id = $5`,
		item.Title, item.Price, item.Featured, item.CategoryID, item.ID,
	)
	if isForeignKeyViolation(err) {
		return domain.NewValidationError("category_id", "category does not exist")
	}
	if err != nil {
		return fmt.Errorf("failed to update menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("menu item %d", item.ID)
	}

	updated, err := r.FindByID(ctx, item.ID)
	if err != nil {
		return err
	}
	item.Category = updated.Category
	return nil
}

func (r *menuItemRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if isForeignKeyViolation(err) {
		return domain.Conflictf("menu item %d is referenced by an order", id)
	}
	if err != nil {
		return fmt.Errorf("failed to delete menu item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("menu item %d", id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
