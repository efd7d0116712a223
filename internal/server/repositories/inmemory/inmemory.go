// Package inmemory provides a map-backed RepositoryManager used by tests and
// local development. It mirrors the PostgreSQL semantics (filters, soft
// delete redaction, not-found sentinels) without a database.
package inmemory

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/frankly034/userdir/internal/common"
	"github.com/frankly034/userdir/internal/dbx"
	"github.com/frankly034/userdir/internal/server/models"
	credentialsrepo "github.com/frankly034/userdir/internal/server/repositories/credentials"
	"github.com/frankly034/userdir/internal/server/repositories/repomanager"
	usersrepo "github.com/frankly034/userdir/internal/server/repositories/users"
	"github.com/google/uuid"
)

// Manager implements repomanager.RepositoryManager over in-process maps.
// All repository views share one mutex, so composed writes remain atomic
// enough for tests even though there is no real transaction.
type Manager struct {
	mu    sync.Mutex
	users map[string]*models.User
	creds map[string]*models.Credentials
}

func NewManager() *Manager {
	return &Manager{
		users: make(map[string]*models.User),
		creds: make(map[string]*models.Credentials),
	}
}

func (m *Manager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *Manager) Users(db dbx.DBTX) usersrepo.Repository {
	return &userRepository{m: m}
}

func (m *Manager) Credentials(db dbx.DBTX) credentialsrepo.Repository {
	return &credentialsRepository{m: m}
}

var _ repomanager.RepositoryManager = (*Manager)(nil)

// --- users ---

type userRepository struct {
	m *Manager
}

func (r *userRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored := user.Clone()
	stored.ID = uuid.NewString()
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	stored.Credentials = nil
	r.m.users[stored.ID] = stored

	return r.project(stored, false), nil
}

func (r *userRepository) GetByID(ctx context.Context, id string, includeCredentials bool) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return r.project(stored, includeCredentials), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string, includeCredentials bool) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, stored := range r.m.users {
		if stored.Email != "" && stored.Email == email {
			return r.project(stored, includeCredentials), nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *userRepository) List(ctx context.Context, filter usersrepo.Filter) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	ids := make(map[string]struct{}, len(filter.IDs))
	for _, id := range filter.IDs {
		ids[id] = struct{}{}
	}

	var matched []*models.User
	for _, stored := range r.m.users {
		if !matchesNameOrEmail(stored, filter.Name, filter.Email) {
			continue
		}
		if !filter.UpdatedSince.IsZero() && stored.UpdatedAt.Before(filter.UpdatedSince) {
			continue
		}
		if len(ids) > 0 {
			if _, ok := ids[stored.ID]; !ok {
				continue
			}
		}
		matched = append(matched, stored)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[filter.Offset:]
		}
	}
	if filter.Limit > 0 && filter.Limit < len(matched) {
		matched = matched[:filter.Limit]
	}

	result := make([]*models.User, 0, len(matched))
	for _, stored := range matched {
		result = append(result, r.project(stored, filter.IncludeCredentials))
	}
	return result, nil
}

func matchesNameOrEmail(u *models.User, name, email string) bool {
	if name == "" && email == "" {
		return true
	}
	if name != "" && strings.Contains(strings.ToLower(u.Name), strings.ToLower(name)) {
		return true
	}
	if email != "" && strings.Contains(strings.ToLower(u.Email), strings.ToLower(email)) {
		return true
	}
	return false
}

func (r *userRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.users[user.ID]
	if !ok {
		return nil, common.ErrNotFound
	}

	stored.Name = user.Name
	stored.Email = user.Email
	stored.Password = user.Password
	stored.EmailConfirmed = user.EmailConfirmed
	stored.CredentialsID = user.CredentialsID
	stored.UpdatedAt = time.Now()

	return r.project(stored, false), nil
}

func (r *userRepository) SoftDelete(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	stored, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}

	stored.IsDeleted = true
	stored.Name = common.DeletedUserName
	stored.Email = ""
	stored.CredentialsID = ""
	stored.UpdatedAt = time.Now()

	return r.project(stored, false), nil
}

// project returns a detached copy, optionally joining the credentials row.
// Callers must hold m.mu.
func (r *userRepository) project(stored *models.User, includeCredentials bool) *models.User {
	user := stored.Clone()
	if includeCredentials && stored.CredentialsID != "" {
		if creds, ok := r.m.creds[stored.CredentialsID]; ok {
			c := *creds
			user.Credentials = &c
		}
	}
	return user
}

// --- credentials ---

type credentialsRepository struct {
	m *Manager
}

func (r *credentialsRepository) Create(ctx context.Context, hash string) (*models.Credentials, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	creds := &models.Credentials{ID: uuid.NewString(), Hash: hash}
	r.m.creds[creds.ID] = creds

	c := *creds
	return &c, nil
}

func (r *credentialsRepository) Update(ctx context.Context, id string, hash string) (*models.Credentials, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	creds, ok := r.m.creds[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	creds.Hash = hash

	c := *creds
	return &c, nil
}

func (r *credentialsRepository) Delete(ctx context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	delete(r.m.creds, id)
	return nil
}
