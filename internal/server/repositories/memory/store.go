// Package memory implements the repositories in process memory. It backs
// development mode (no Postgres) and the service tests. Deleting a user
// cascades to its codes and media like the SQL schema does.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Silas-Hakuzwimana/streamforge/internal/common"
	"github.com/Silas-Hakuzwimana/streamforge/internal/server/models"
)

type Store struct {
	mu      sync.RWMutex
	now     func() time.Time
	users   map[string]*models.User
	byEmail map[string]string
	codes   map[string]*models.OneTimeCode
	media   map[string][]*models.Media
}

type Option func(*Store)

// WithClock sets the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func NewStore(opts ...Option) *Store {
	s := &Store{
		now:     time.Now,
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		codes:   make(map[string]*models.OneTimeCode),
		media:   make(map[string][]*models.Media),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

func (s *Store) OTPs() *OTPRepository { return &OTPRepository{s: s} }

func (s *Store) Media() *MediaRepository { return &MediaRepository{s: s} }

type UserRepository struct{ s *Store }

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.ResetTokenHash != nil {
		h, e := *u.ResetTokenHash, *u.ResetTokenExpires
		c.ResetTokenHash, c.ResetTokenExpires = &h, &e
	}
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	email := models.NormalizeEmail(user.Email)
	if _, ok := s.byEmail[email]; ok {
		return nil, common.ErrorAlreadyExists
	}

	now := s.now()
	user.ID = uuid.NewString()
	user.Email = email
	if user.Role == "" {
		user.Role = common.RoleUser
	}
	user.CreatedAt, user.UpdatedAt = now, now
	user.ResetTokenHash, user.ResetTokenExpires = nil, nil

	s.users[user.ID] = cloneUser(user)
	s.byEmail[email] = user.ID
	return user, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[models.NormalizeEmail(email)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(s.users[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

// update runs fn on the stored user under the write lock.
func (r *UserRepository) update(id string, fn func(u *models.User)) (*models.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	fn(u)
	u.UpdatedAt = s.now()
	return cloneUser(u), nil
}

func (r *UserRepository) SetPassword(_ context.Context, id, passwordHash string) error {
	_, err := r.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
	return err
}

func (r *UserRepository) SetResetToken(_ context.Context, id, tokenHash string, expires time.Time) error {
	_, err := r.update(id, func(u *models.User) {
		u.ResetTokenHash, u.ResetTokenExpires = &tokenHash, &expires
	})
	return err
}

func (r *UserRepository) ClearResetToken(_ context.Context, id string) error {
	_, err := r.update(id, func(u *models.User) {
		u.ResetTokenHash, u.ResetTokenExpires = nil, nil
	})
	return err
}

func (r *UserRepository) ConsumeResetToken(_ context.Context, tokenHash, passwordHash string, now time.Time) (string, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != tokenHash || !u.ResetTokenExpires.After(now) {
			continue
		}
		u.PasswordHash = passwordHash
		u.ResetTokenHash, u.ResetTokenExpires = nil, nil
		u.UpdatedAt = s.now()
		return u.ID, nil
	}
	return "", common.ErrorNotFound
}

func (r *UserRepository) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for _, u := range s.users {
		if u.ResetTokenExpires != nil && !u.ResetTokenExpires.After(now) {
			u.ResetTokenHash, u.ResetTokenExpires = nil, nil
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	return r.update(id, func(u *models.User) {
		if upd.Name != nil {
			u.Name = *upd.Name
		}
		if upd.Bio != nil {
			u.Bio = *upd.Bio
		}
		if upd.ProfilePic != nil {
			u.ProfilePic = *upd.ProfilePic
		}
	})
}

func (r *UserRepository) DeleteByID(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	delete(s.byEmail, u.Email)
	delete(s.users, id)
	delete(s.codes, id)
	delete(s.media, id)
	return nil
}

type OTPRepository struct{ s *Store }

func (r *OTPRepository) FindByOwner(_ context.Context, userID string) (*models.OneTimeCode, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.codes[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *OTPRepository) UpsertByOwner(_ context.Context, code *models.OneTimeCode) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *code
	cp.CreatedAt = s.now()
	s.codes[code.UserID] = &cp
	return nil
}

func (r *OTPRepository) DeleteByOwner(_ context.Context, userID string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.codes, userID)
	return nil
}

func (r *OTPRepository) ConsumeByOwner(_ context.Context, userID, codeHash string, now time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[userID]
	if !ok || c.CodeHash != codeHash || c.Expired(now) {
		return common.ErrorNotFound
	}
	delete(s.codes, userID)
	return nil
}

func (r *OTPRepository) DeleteExpiredByOwner(_ context.Context, userID string, now time.Time) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.codes[userID]; ok && c.Expired(now) {
		delete(s.codes, userID)
	}
	return nil
}

func (r *OTPRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, c := range s.codes {
		if c.Expired(now) {
			delete(s.codes, id)
			n++
		}
	}
	return n, nil
}

type MediaRepository struct{ s *Store }

func (r *MediaRepository) Create(_ context.Context, m *models.Media) (*models.Media, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = uuid.NewString()
	m.CreatedAt = s.now()
	cp := *m
	s.media[m.UserID] = append(s.media[m.UserID], &cp)
	return m, nil
}

func (r *MediaRepository) ListByOwner(_ context.Context, userID string, limit int) ([]*models.Media, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.media[userID]
	out := make([]*models.Media, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		cp := *items[i]
		out = append(out, &cp)
	}
	// Stable so equal timestamps keep newest-inserted first.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MediaRepository) DeleteByOwner(_ context.Context, userID string) (int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	n := int64(len(s.media[userID]))
	delete(s.media, userID)
	return n, nil
}
