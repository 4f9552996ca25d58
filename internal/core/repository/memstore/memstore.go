// Package memstore is an in-memory implementation of the domain repositories.
// It mirrors the PostgreSQL schema rules: unique usernames and emails, cascade
// of sessions on user delete, and restrict of categories referenced by items.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/duynhne/inventory-service/internal/core/domain"
)

var (
	_ domain.UserRepository     = (*UserRepository)(nil)
	_ domain.SessionRepository  = (*SessionRepository)(nil)
	_ domain.CategoryRepository = (*CategoryRepository)(nil)
	_ domain.ItemRepository     = (*ItemRepository)(nil)
)

type sessionRecord struct {
	userID    int64
	expiresAt time.Time
}

// Store holds every table behind a single mutex.
type Store struct {
	mu sync.RWMutex

	now func() time.Time

	nextUserID     int64
	nextCategoryID int64
	nextItemID     int64

	users      map[int64]domain.UserRow
	sessions   map[string]sessionRecord
	categories map[int64]domain.Category
	items      map[int64]domain.Item
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:        time.Now,
		users:      make(map[int64]domain.UserRow),
		sessions:   make(map[string]sessionRecord),
		categories: make(map[int64]domain.Category),
		items:      make(map[int64]domain.Item),
	}
}

func (s *Store) Users() *UserRepository { return &UserRepository{s} }
func (s *Store) Sessions() *SessionRepository { return &SessionRepository{s} }
func (s *Store) Categories() *CategoryRepository { return &CategoryRepository{s} }
func (s *Store) Items() *ItemRepository { return &ItemRepository{s} }

// DeleteUser removes a user and, like ON DELETE CASCADE, its sessions.
func (s *Store) DeleteUser(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for h, rec := range s.sessions {
		if rec.userID == id {
			delete(s.sessions, h)
		}
	}
}

// SetRole changes a user's role.
func (s *Store) SetRole(id int64, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Role = role
		s.users[id] = u
	}
}

// SessionCount returns the number of stored sessions.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// UserRepository implements domain.UserRepository.
type UserRepository struct{ s *Store }

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.UserRow, error) {
	return r.find(func(u domain.UserRow) bool { return u.Username == username }), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.UserRow, error) {
	return r.find(func(u domain.UserRow) bool { return u.Email == email }), nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.UserRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if u, ok := r.s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *UserRepository) Create(_ context.Context, nu domain.NewUser) (*domain.UserRow, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == nu.Username {
			return nil, fmt.Errorf("insert user %q: %w", nu.Username, domain.ErrDuplicateUsername)
		}
		if u.Email == nu.Email {
			return nil, fmt.Errorf("insert user %q: %w", nu.Username, domain.ErrDuplicateEmail)
		}
	}

	role := nu.Role
	if role == "" {
		role = domain.RoleUser
	}
	now := r.s.now()
	r.s.nextUserID++
	row := domain.UserRow{
		ID:           r.s.nextUserID,
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.s.users[row.ID] = row
	return &row, nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if u, ok := r.s.users[id]; ok {
		u.PasswordHash = passwordHash
		u.UpdatedAt = r.s.now()
		r.s.users[id] = u
	}
	return nil
}

func (r *UserRepository) find(match func(domain.UserRow) bool) *domain.UserRow {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

// SessionRepository implements domain.SessionRepository.
type SessionRepository struct{ s *Store }

func (r *SessionRepository) Create(_ context.Context, tokenHash string, userID int64, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return fmt.Errorf("insert session: user %d does not exist", userID)
	}
	if _, ok := r.s.sessions[tokenHash]; ok {
		return fmt.Errorf("insert session: duplicate token hash")
	}
	r.s.sessions[tokenHash] = sessionRecord{userID: userID, expiresAt: expiresAt}
	return nil
}

func (r *SessionRepository) GetByTokenHash(_ context.Context, tokenHash string) (*domain.SessionRow, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.sessions[tokenHash]
	if !ok {
		return nil, nil
	}
	u, ok := r.s.users[rec.userID]
	if !ok {
		return nil, nil
	}
	return &domain.SessionRow{User: u, ExpiresAt: rec.expiresAt}, nil
}

func (r *SessionRepository) Touch(_ context.Context, tokenHash string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if rec, ok := r.s.sessions[tokenHash]; ok {
		rec.expiresAt = expiresAt
		r.s.sessions[tokenHash] = rec
	}
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, tokenHash)
	return nil
}

func (r *SessionRepository) DeleteByUser(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for h, rec := range r.s.sessions {
		if rec.userID == userID {
			delete(r.s.sessions, h)
		}
	}
	return nil
}

func (r *SessionRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for h, rec := range r.s.sessions {
		if !rec.expiresAt.After(now) {
			delete(r.s.sessions, h)
			n++
		}
	}
	return n, nil
}

// CategoryRepository implements domain.CategoryRepository.
type CategoryRepository struct{ s *Store }

func (r *CategoryRepository) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepository) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if c, ok := r.s.categories[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (r *CategoryRepository) Create(_ context.Context, in domain.CategoryInput) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.now()
	r.s.nextCategoryID++
	c := domain.Category{ID: r.s.nextCategoryID, Name: in.Name, Description: in.Description, CreatedAt: now, UpdatedAt: now}
	r.s.categories[c.ID] = c
	return &c, nil
}

func (r *CategoryRepository) Update(_ context.Context, id int64, in domain.CategoryInput) (*domain.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	c.Name = in.Name
	c.Description = in.Description
	c.UpdatedAt = r.s.now()
	r.s.categories[id] = c
	for iid, it := range r.s.items {
		if it.CategoryID == id {
			it.CategoryName = c.Name
			r.s.items[iid] = it
		}
	}
	return &c, nil
}

func (r *CategoryRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return false, nil
	}
	for _, it := range r.s.items {
		if it.CategoryID == id {
			return false, fmt.Errorf("delete category %d: %w", id, domain.ErrCategoryHasItems)
		}
	}
	delete(r.s.categories, id)
	return true, nil
}

// ItemRepository implements domain.ItemRepository.
type ItemRepository struct{ s *Store }

func (r *ItemRepository) List(_ context.Context) ([]domain.Item, error) {
	return r.filter(func(domain.Item) bool { return true }), nil
}

func (r *ItemRepository) ListByCategory(_ context.Context, categoryID int64) ([]domain.Item, error) {
	return r.filter(func(it domain.Item) bool { return it.CategoryID == categoryID }), nil
}

func (r *ItemRepository) GetByID(_ context.Context, id int64) (*domain.Item, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if it, ok := r.s.items[id]; ok {
		return &it, nil
	}
	return nil, nil
}

func (r *ItemRepository) Create(_ context.Context, in domain.ItemInput) (*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[*in.CategoryID]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", *in.CategoryID, domain.ErrCategoryMissing)
	}
	now := r.s.now()
	r.s.nextItemID++
	it := itemFromInput(r.s.nextItemID, in, c.Name)
	it.CreatedAt, it.UpdatedAt = now, now
	r.s.items[it.ID] = it
	return &it, nil
}

func (r *ItemRepository) Update(_ context.Context, id int64, in domain.ItemInput) (*domain.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	old, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	c, ok := r.s.categories[*in.CategoryID]
	if !ok {
		return nil, fmt.Errorf("category %d: %w", *in.CategoryID, domain.ErrCategoryMissing)
	}
	it := itemFromInput(id, in, c.Name)
	it.CreatedAt = old.CreatedAt
	it.UpdatedAt = r.s.now()
	r.s.items[id] = it
	return &it, nil
}

func (r *ItemRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.items[id]; !ok {
		return false, nil
	}
	delete(r.s.items, id)
	return true, nil
}

func (r *ItemRepository) filter(keep func(domain.Item) bool) []domain.Item {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Item, 0)
	for _, it := range r.s.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func itemFromInput(id int64, in domain.ItemInput, categoryName string) domain.Item {
	return domain.Item{
		ID:           id,
		Name:         in.Name,
		Description:  in.Description,
		Price:        *in.Price,
		Quantity:     *in.Quantity,
		CategoryID:   *in.CategoryID,
		CategoryName: categoryName,
		SKU:          in.SKU,
		ImageURL:     in.ImageURL,
	}
}
