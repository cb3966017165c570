package forests

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/joseph-ayodele/wildsync/internal/common"
	"github.com/joseph-ayodele/wildsync/internal/entity"
	"github.com/joseph-ayodele/wildsync/internal/repository"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// IdentityID derives a stable user id from an email address.
func IdentityID(email string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+strings.ToLower(strings.TrimSpace(email))))
}

// ResolveActor returns the acting user. Without an actor in ctx the guest
// identity from cfg is used and created on demand inside tx.
func ResolveActor(ctx context.Context, tx *repository.Store, guest common.GuestConfig, logger *zap.Logger) (*entity.User, error) {
	if id, ok := common.ActorFromContext(ctx); ok {
		u, err := tx.Users.GetByID(ctx, id)
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NotFound("User not found")
		}
		return u, err
	}
	return ensureUser(ctx, tx, IdentityID(guest.Email), guest.Name, guest.Email, guest.Password, RoleUser, logger)
}

// ensureUser fetches the user by email or creates it with id.
func ensureUser(ctx context.Context, tx *repository.Store, id uuid.UUID, name, email, password, role string, logger *zap.Logger) (*entity.User, error) {
	u, err := tx.Users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u = &entity.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := tx.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	logger.Info("identity.created", zap.String("user_id", u.ID.String()), zap.String("role", role))
	return u, nil
}

// OwnedForest loads forestID if it belongs to the acting user, or to the guest
// identity when ctx carries no actor. A forest owned by anyone else is reported
// exactly like a missing one.
func OwnedForest(ctx context.Context, store *repository.Store, guest common.GuestConfig, forestID uuid.UUID) (*entity.Forest, error) {
	owner, ok := common.ActorFromContext(ctx)
	if !ok {
		owner = IdentityID(guest.Email)
	}
	f, err := store.Forests.GetByID(ctx, forestID)
	if errors.Is(err, common.ErrNotFound) || (err == nil && f.UserID != owner) {
		return nil, common.NotFound("Forest not found")
	}
	if err != nil {
		return nil, common.WrapError(err, "load forest")
	}
	return f, nil
}
