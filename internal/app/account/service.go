package account

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/YelzhanWeb/little-lemon/internal/adapter/logger"
	"github.com/YelzhanWeb/little-lemon/internal/app/access"
	"github.com/YelzhanWeb/little-lemon/internal/domain"
	"github.com/YelzhanWeb/little-lemon/internal/interfaces"
	"golang.org/x/crypto/bcrypt"
)

// tokenBytes is the entropy of an issued token (40 hex characters)
const tokenBytes = 20

var errInvalidCredentials = fmt.Errorf("invalid username or password: %w", domain.ErrUnauthenticated)

type Service struct {
	users      interfaces.UserRepository
	tokens     interfaces.TokenRepository
	logger     logger.Logger
	bcryptCost int
}

func NewService(users interfaces.UserRepository, tokens interfaces.TokenRepository, logger logger.Logger, bcryptCost int) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:      users,
		tokens:     tokens,
		logger:     logger,
		bcryptCost: bcryptCost,
	}
}

func (s *Service) Register(ctx context.Context, cmd interfaces.RegisterCommand) (*domain.User, error) {
	user, err := s.newUser(cmd)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user_registered", "User registered", logger.RequestID(ctx), map[string]interface{}{"user_id": user.ID, "username": user.Username})
	return user, nil
}

// EnsureAdmin creates the user with the admin flag set, or raises an
// existing user of that name to admin.
func (s *Service) EnsureAdmin(ctx context.Context, cmd interfaces.RegisterCommand) (*domain.User, error) {
	existing, err := s.users.FindByUsername(ctx, strings.TrimSpace(cmd.Username))
	switch {
	case err == nil:
		if err := s.users.SetAdmin(ctx, existing.ID, true); err != nil {
			return nil, err
		}
		existing.IsAdmin = true
		s.logger.Info("admin_promoted", "Existing user promoted to admin", logger.RequestID(ctx), map[string]interface{}{"username": existing.Username})
		return existing, nil
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	user, err := s.newUser(cmd)
	if err != nil {
		return nil, err
	}
	user.IsAdmin = true
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("admin_created", "Admin user created", logger.RequestID(ctx), map[string]interface{}{"username": user.Username})
	return user, nil
}

func (s *Service) newUser(cmd interfaces.RegisterCommand) (*domain.User, error) {
	user, err := domain.NewUser(cmd.Username, cmd.Email, cmd.Password)
	if err != nil {
		return nil, err
	}
	// bcrypt only looks at the first 72 bytes
	if len(cmd.Password) > 72 {
		return nil, domain.NewValidationError("password", "password must not exceed 72 bytes")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	return user, nil
}

// Login checks the credentials and issues a new token. Only the token's
// SHA-256 hash is stored.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return "", errInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug("login_failed", "Password mismatch", logger.RequestID(ctx), map[string]interface{}{"username": user.Username})
		return "", errInvalidCredentials
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	token := hex.EncodeToString(raw)

	if err := s.tokens.Create(ctx, &domain.AuthToken{
		Hash:      HashToken(token),
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return "", err
	}

	s.logger.Info("user_logged_in", "Token issued", logger.RequestID(ctx), map[string]interface{}{"user_id": user.ID})
	return token, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return domain.ErrUnauthenticated
	}
	err := s.tokens.Delete(ctx, HashToken(token))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrUnauthenticated
	}
	return err
}

// Authenticate resolves a presented token into the caller's identity and role
func (s *Service) Authenticate(ctx context.Context, token string) (domain.Actor, error) {
	if token == "" {
		return domain.Actor{}, domain.ErrUnauthenticated
	}
	user, err := s.tokens.FindUser(ctx, HashToken(token))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Actor{}, fmt.Errorf("invalid token: %w", domain.ErrUnauthenticated)
	}
	if err != nil {
		return domain.Actor{}, err
	}
	return user.Actor(), nil
}

func (s *Service) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	if err := access.Authenticated(actor); err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, actor.UserID)
}

func (s *Service) ListGroupMembers(ctx context.Context, actor domain.Actor, group string) ([]*domain.User, error) {
	if err := authorizeGroup(actor, group); err != nil {
		return nil, err
	}
	return s.users.ListByGroup(ctx, group)
}

func (s *Service) AddToGroup(ctx context.Context, actor domain.Actor, group, username string) (*domain.User, error) {
	if err := authorizeGroup(actor, group); err != nil {
		return nil, err
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.NewValidationError("username", "username is required")
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := s.users.AddToGroup(ctx, user.ID, group); err != nil {
		return nil, err
	}

	s.logger.Info("group_member_added", "User added to group", logger.RequestID(ctx), map[string]interface{}{
		"group":    group,
		"username": user.Username,
		"by":       actor.Username,
	})
	return s.users.FindByID(ctx, user.ID)
}

func (s *Service) RemoveFromGroup(ctx context.Context, actor domain.Actor, group string, userID int64) (*domain.User, error) {
	if err := authorizeGroup(actor, group); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.users.RemoveFromGroup(ctx, user.ID, group); err != nil {
		return nil, err
	}

	s.logger.Info("group_member_removed", "User removed from group", logger.RequestID(ctx), map[string]interface{}{
		"group":    group,
		"username": user.Username,
		"by":       actor.Username,
	})
	return s.users.FindByID(ctx, user.ID)
}

func authorizeGroup(actor domain.Actor, group string) error {
	if err := access.Authenticated(actor); err != nil {
		return err
	}
	action, err := access.GroupAction(group)
	if err != nil {
		return err
	}
	return access.Authorize(actor, action)
}

// HashToken is the stored form of a token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
