package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/YelzhanWeb/little-lemon/internal/domain"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return domain.Conflictf("username %q already exists", user.Username)
		}
	}
	user.ID = r.s.nextID()
	r.s.users[user.ID] = copyUser(*user)
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFoundf("user %d", id)
	}
	u = copyUser(u)
	return &u, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			u = copyUser(u)
			return &u, nil
		}
	}
	return nil, domain.NotFoundf("user %q", username)
}

func (r *UserRepository) SetAdmin(ctx context.Context, userID int64, isAdmin bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.NotFoundf("user %d", userID)
	}
	u.IsAdmin = isAdmin
	r.s.users[userID] = u
	return nil
}

func (r *UserRepository) ListByGroup(ctx context.Context, group string) ([]*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.User, 0)
	for _, u := range r.s.users {
		if slices.Contains(u.Groups, group) {
			u = copyUser(u)
			out = append(out, &u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) AddToGroup(ctx context.Context, userID int64, group string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.NotFoundf("user %d", userID)
	}
	if !slices.Contains(u.Groups, group) {
		u.Groups = append(slices.Clone(u.Groups), group)
		r.s.users[userID] = u
	}
	return nil
}

func (r *UserRepository) RemoveFromGroup(ctx context.Context, userID int64, group string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return domain.NotFoundf("user %d", userID)
	}
	u.Groups = slices.DeleteFunc(slices.Clone(u.Groups), func(g string) bool { return g == group })
	r.s.users[userID] = u
	return nil
}

func copyUser(u domain.User) domain.User {
	u.Groups = slices.Clone(u.Groups)
	return u
}

type TokenRepository struct {
	s *Store
}

func (r *TokenRepository) Create(ctx context.Context, token *domain.AuthToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[token.UserID]; !ok {
		return domain.NotFoundf("user %d", token.UserID)
	}
	r.s.tokens[token.Hash] = *token
	return nil
}

func (r *TokenRepository) FindUser(ctx context.Context, hash string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	token, ok := r.s.tokens[hash]
	if !ok {
		return nil, domain.NotFoundf("token")
	}
	u, ok := r.s.users[token.UserID]
	if !ok {
		return nil, domain.NotFoundf("token")
	}
	u = copyUser(u)
	return &u, nil
}

func (r *TokenRepository) Delete(ctx context.Context, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.tokens[hash]; !ok {
		return domain.NotFoundf("token")
	}
	delete(r.s.tokens, hash)
	return nil
}
