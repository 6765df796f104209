package postgres

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
)

const userSelect = `
	SELECT u.id, u.username, u.email, u.password_hash, u.is_admin, u.created_at,
	       COALESCE(array_agg(g.name ORDER BY g.name) FILTER (WHERE g.name IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_groups ug ON ug.user_id = u.id
	LEFT JOIN groups g ON g.id = ug.group_id`

type userRepository struct {
	db DB
}

func NewUserRepository(db DB) interfaces.UserRepository {
	return &userRepository{db: db}
}

func scanUser(row Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.Groups)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, user.Username, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt).Scan(&user.ID)
	if err != nil {
		return mapError(err, fmt.Sprintf("username %q", user.Username))
	}

	for _, group := range user.Groups {
		if err := addToGroup(ctx, tx, user.ID, group); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.id = $1 GROUP BY u.id`, id))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("user %d", id))
	}
	return u, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.username = $1 GROUP BY u.id`, username))
	if err != nil {
		return nil, mapError(err, fmt.Sprintf("user %q", username))
	}
	return u, nil
}

func (r *userRepository) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_admin = $1 WHERE id = $2`, isAdmin, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("user %d", userID)
	}
	return nil
}

func (r *userRepository) ListByGroup(ctx context.Context, group string) ([]*domain.User, error) {
	rows, err := r.db.Query(ctx, userSelect+`
		WHERE EXISTS (
			SELECT 1 FROM user_groups m JOIN groups mg ON mg.id = m.group_id
			WHERE m.user_id = u.id AND mg.name = $1
		)
		GROUP BY u.id
		ORDER BY u.id`, group)
	if err != nil {
		return nil, fmt.Errorf("failed to query group members: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) AddToGroup(ctx context.Context, userID int64, group string) error {
	return addToGroup(ctx, r.db, userID, group)
}

// addToGroup is idempotent; an unknown user is NotFound
func addToGroup(ctx context.Context, q querier, userID int64, group string) error {
	_, err := q.Exec(ctx, `
		INSERT INTO user_groups (user_id, group_id)
		SELECT $1, id FROM groups WHERE name = $2
		ON CONFLICT DO NOTHING
	`, userID, group)
	if isForeignKeyViolation(err) {
		return domain.NotFoundf("user %d", userID)
	}
	if err != nil {
		return fmt.Errorf("failed to add user to group: %w", err)
	}
	return nil
}

func (r *userRepository) RemoveFromGroup(ctx context.Context, userID int64, group string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM user_groups ug
		USING groups g
		WHERE g.id = ug.group_id AND ug.user_id = $1 AND g.name = $2
	`, userID, group)
	if err != nil {
		return fmt.Errorf("failed to remove user from group: %w", err)
	}
	return nil
}

type tokenRepository struct {
	db DB
}

func NewTokenRepository(db DB) interfaces.TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO auth_tokens (token_hash, user_id, created_at) VALUES ($1, $2, $3)`,
		token.Hash, token.UserID, token.CreatedAt,
	)
	if err != nil {
		return mapError(err, "token")
	}
	return nil
}

func (r *tokenRepository) FindUser(ctx context.Context, hash string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, userSelect+`
		JOIN auth_tokens t ON t.user_id = u.id
		WHERE t.token_hash = $1
		GROUP BY u.id`, hash))
	if err != nil {
		return nil, mapError(err, "token")
	}
	return u, nil
}

func (r *tokenRepository) Delete(ctx context.Context, hash string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM auth_tokens WHERE token_hash = $1`, hash)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFoundf("token")
	}
	return nil
}
