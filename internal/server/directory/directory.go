// Package directory contains the identity and access core: it orchestrates
// user lookup, creation, update, soft deletion and authentication against
// the record store, applying the self-or-admin rule and the account
// lifecycle (active → soft-deleted, one way).
package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/frankly034/userdir/internal/common"
	"github.com/frankly034/userdir/internal/dbx"
	"github.com/frankly034/userdir/internal/server/auth"
	"github.com/frankly034/userdir/internal/server/config"
	"github.com/frankly034/userdir/internal/server/models"
	"github.com/frankly034/userdir/internal/server/repositories/repomanager"
	"github.com/frankly034/userdir/internal/server/repositories/users"
)

// Directory is stateless between calls; the backing store is the only shared
// resource. Writes that touch both the user row and its credentials row run
// inside a single transaction.
type Directory struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher *auth.Hasher
	tokens *auth.TokenService
}

// New constructs a Directory over the given database handle and repository
// manager. Hashing cost, signing secret, algorithm and token validity come
// from cfg and are fixed for the lifetime of the service.
func New(db *sql.DB, repos repomanager.RepositoryManager, cfg *config.Config) (*Directory, error) {
	tokens, err := auth.NewTokenService(cfg.SecretKey, cfg.TokenSigningAlgorithm, cfg.TokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token service init error: %w", err)
	}
	return &Directory{
		db:     db,
		repos:  repos,
		hasher: auth.NewHasher(cfg.BcryptCost),
		tokens: tokens,
	}, nil
}

// Find lists users. Non-admin actors get exactly their own record back, no
// matter what the filter says; only the credentials-projection flag is
// honored. Admins get the full filtered listing.
func (d *Directory) Find(ctx context.Context, filter users.Filter, actor *models.User) ([]*models.User, error) {
	if actor == nil {
		return nil, common.ErrUnauthorized
	}

	repo := d.repos.Users(d.db)

	if !actor.IsAdmin {
		user, err := repo.GetByID(ctx, actor.ID, filter.IncludeCredentials)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return nil, common.ErrNotFound
			}
			return nil, common.ErrInternal
		}
		return []*models.User{user}, nil
	}

	result, err := repo.List(ctx, filter)
	if err != nil {
		return nil, common.ErrInternal
	}
	return result, nil
}

// FindUnique fetches a single user by id after the self-or-admin check.
// When the actor asks for itself, the actor row (freshly loaded by the
// boundary layer) is returned without another store round-trip.
func (d *Directory) FindUnique(ctx context.Context, id string, actor *models.User) (*models.User, error) {
	if err := auth.Authorize(actor, id); err != nil {
		return nil, err
	}

	if actor.ID == id {
		return actor.Clone(), nil
	}

	user, err := d.repos.Users(d.db).GetByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	return user, nil
}

// Create registers a new account. This is a public operation: no access
// check. The plaintext password is hashed here; if a credentials secret is
// supplied, the user row and the credentials row are created atomically.
func (d *Directory) Create(ctx context.Context, dto CreateUser) (*models.User, error) {
	if dto.Email == "" || dto.Password == "" {
		return nil, common.ErrValidation
	}

	digest, err := d.hasher.Hash(dto.Password)
	if err != nil {
		return nil, common.ErrInternal
	}

	user := &models.User{
		Name:           dto.Name,
		Email:          dto.Email,
		Password:       digest,
		EmailConfirmed: dto.EmailConfirmed,
		IsAdmin:        dto.IsAdmin,
	}

	if err := dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if dto.Hash != "" {
			creds, err := d.repos.Credentials(tx).Create(ctx, dto.Hash)
			if err != nil {
				return err
			}
			user.CredentialsID = creds.ID
			user.Credentials = creds
		}
		created, err := d.repos.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		created.Credentials = user.Credentials
		user = created
		return nil
	}); err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user, nil
}

// Update merges the supplied fields into the user row after the self-or-admin
// check. Mutating a soft-deleted account fails with ErrUserDeleted. A new
// credentials secret updates the existing record or creates one, atomically
// with the user row.
func (d *Directory) Update(ctx context.Context, dto UpdateUser, actor *models.User) (*models.User, error) {
	if err := auth.Authorize(actor, dto.ID); err != nil {
		return nil, err
	}

	current, err := d.repos.Users(d.db).GetByID(ctx, dto.ID, true)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}
	if current.IsDeleted {
		return nil, common.ErrUserDeleted
	}

	if dto.Name != nil {
		current.Name = *dto.Name
	}
	if dto.Email != nil {
		current.Email = *dto.Email
	}
	if dto.EmailConfirmed != nil {
		current.EmailConfirmed = *dto.EmailConfirmed
	}
	if dto.Password != nil {
		digest, err := d.hasher.Hash(*dto.Password)
		if err != nil {
			return nil, common.ErrInternal
		}
		current.Password = digest
	}

	if err := dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if dto.Hash != nil {
			credsRepo := d.repos.Credentials(tx)
			if current.CredentialsID != "" {
				creds, err := credsRepo.Update(ctx, current.CredentialsID, *dto.Hash)
				if err != nil {
					return err
				}
				current.Credentials = creds
			} else {
				creds, err := credsRepo.Create(ctx, *dto.Hash)
				if err != nil {
					return err
				}
				current.CredentialsID = creds.ID
				current.Credentials = creds
			}
		}
		updated, err := d.repos.Users(tx).Update(ctx, current)
		if err != nil {
			return err
		}
		updated.Credentials = current.Credentials
		current = updated
		return nil
	}); err != nil {
		return nil, fmt.Errorf("error updating user: %w", err)
	}

	return current, nil
}

// Delete soft-deletes the account after the self-or-admin check. In one
// transaction the row is kept with is_deleted set, the name replaced by the
// deletion marker, the email cleared and the credentials record removed.
// The operation is idempotent; repeating it re-applies the terminal state
// and resurrects nothing.
func (d *Directory) Delete(ctx context.Context, dto DeleteUser, actor *models.User) (*models.User, error) {
	if err := auth.Authorize(actor, dto.ID); err != nil {
		return nil, err
	}

	var deleted *models.User
	if err := dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		usersRepo := d.repos.Users(tx)

		current, err := usersRepo.GetByID(ctx, dto.ID, false)
		if err != nil {
			return err
		}

		deleted, err = usersRepo.SoftDelete(ctx, dto.ID)
		if err != nil {
			return err
		}

		if current.CredentialsID != "" {
			if err := d.repos.Credentials(tx).Delete(ctx, current.CredentialsID); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error deleting user: %w", err)
	}

	return deleted, nil
}

// Authenticate looks the account up by email and verifies the password.
// It returns (nil, nil) both for an unknown email and for a wrong password,
// so callers cannot distinguish the two cases.
func (d *Directory) Authenticate(ctx context.Context, dto AuthenticateUser) (*models.User, error) {
	user, err := d.repos.Users(d.db).GetByEmail(ctx, dto.Email, true)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil
		}
		return nil, common.ErrInternal
	}

	if !d.hasher.Verify(dto.Password, user.Password) {
		return nil, nil
	}

	return user, nil
}

// AuthenticateAndIssueToken verifies the credentials and returns a signed
// bearer token. Unknown accounts, wrong passwords and soft-deleted accounts
// all fail with the same opaque ErrInvalidCredentials.
func (d *Directory) AuthenticateAndIssueToken(ctx context.Context, dto AuthenticateUser) (string, error) {
	user, err := d.Authenticate(ctx, dto)
	if err != nil {
		return "", err
	}
	if user == nil || user.IsDeleted {
		return "", common.ErrInvalidCredentials
	}

	token, err := d.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return "", common.ErrInternal
	}
	return token, nil
}

// ValidateToken strips the "Bearer " scheme marker when present and decodes
// the remaining token. It never panics on malformed input; any failure
// reports ok=false.
func (d *Directory) ValidateToken(rawHeaderValue string) (*auth.Claims, bool) {
	token := rawHeaderValue
	if len(token) > len(common.AuthHeaderScheme) && strings.HasPrefix(token, common.AuthHeaderScheme) {
		token = token[len(common.AuthHeaderScheme):]
	}
	if token == "" {
		return nil, false
	}

	claims, err := d.tokens.Decode(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// ResolveActor loads the account behind validated token claims. Deleted and
// missing accounts are rejected, so a token issued before deletion cannot be
// replayed.
func (d *Directory) ResolveActor(ctx context.Context, id string) (*models.User, error) {
	user, err := d.repos.Users(d.db).GetByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}
	if user.IsDeleted {
		return nil, common.ErrUnauthorized
	}
	return user, nil
}
