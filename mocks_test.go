package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	auth "github.com/goliatone/go-session-auth"
)

// memStore is an in-memory CredentialStore used across the suite. It keeps
// the same not-found semantics as the bun-backed store so flow code cannot
// tell them apart.
type memStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.User

	createErr error
	saveErr   error
	failSaveN int
	saveCalls int
}

func newMemStore(seed ...*auth.User) *memStore {
	s := &memStore{users: map[uuid.UUID]*auth.User{}}
	for _, u := range seed {
		s.put(u)
	}
	return s
}

func (s *memStore) put(u *auth.User) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	s.users[u.ID] = cloneUser(u)
}

func cloneUser(u *auth.User) *auth.User {
	out := *u
	if u.PasswordChangedAt != nil {
		t := *u.PasswordChangedAt
		out.PasswordChangedAt = &t
	}
	if u.ResetTokenHash != nil {
		h := *u.ResetTokenHash
		out.ResetTokenHash = &h
	}
	if u.ResetTokenExpiresAt != nil {
		t := *u.ResetTokenExpiresAt
		out.ResetTokenExpiresAt = &t
	}
	return &out
}

func notFound() error {
	return repository.NewRecordNotFound()
}

// read mirrors the bun store's column handling: the password hash is zeroed
// unless the read opted in.
func (s *memStore) read(u *auth.User, opts ...auth.QueryOption) *auth.User {
	out := cloneUser(u)
	if !auth.ResolveQueryOptions(opts...).IncludePassword {
		out.PasswordHash = ""
	}
	return out
}

func (s *memStore) ByEmail(_ context.Context, email string, opts ...auth.QueryOption) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	want := auth.NormalizeEmail(email)
	for _, u := range s.users {
		if u.Email == want {
			return s.read(u, opts...), nil
		}
	}
	return nil, notFound()
}

func (s *memStore) ByID(_ context.Context, id uuid.UUID, opts ...auth.QueryOption) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[id]; ok {
		return s.read(u, opts...), nil
	}
	return nil, notFound()
}

func (s *memStore) ByResetTokenHash(_ context.Context, hash string, notExpiredBefore time.Time) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ResetTokenHash == nil || u.ResetTokenExpiresAt == nil {
			continue
		}
		if *u.ResetTokenHash == hash && u.ResetTokenExpiresAt.After(notExpiredBefore) {
			return s.read(u), nil
		}
	}
	return nil, notFound()
}

func (s *memStore) Create(_ context.Context, record *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.createErr != nil {
		return nil, s.createErr
	}

	if record.Role == "" {
		record.Role = auth.RoleGuest
	}
	record.Email = auth.NormalizeEmail(record.Email)

	if err := record.Validate(); err != nil {
		return nil, err
	}

	s.put(record)
	return cloneUser(record), nil
}

func (s *memStore) Save(_ context.Context, record *auth.User, opts ...auth.SaveOption) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveCalls++
	if s.saveErr != nil && (s.failSaveN == 0 || s.saveCalls == s.failSaveN) {
		return nil, s.saveErr
	}

	if !auth.ResolveSaveOptions(opts...).SkipValidation {
		if err := record.Validate(); err != nil {
			return nil, err
		}
	}

	stored, ok := s.users[record.ID]
	if !ok {
		return nil, notFound()
	}

	next := cloneUser(record)
	// same guard as the bun store: a record read without its hash must not
	// blank the stored credential
	if next.PasswordHash == "" {
		next.PasswordHash = stored.PasswordHash
	}

	s.users[record.ID] = next
	return cloneUser(next), nil
}

func (s *memStore) ComparePassword(candidate, storedHash string) error {
	return auth.ComparePasswordAndHash(candidate, storedHash)
}

func (s *memStore) get(id uuid.UUID) *auth.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		return cloneUser(u)
	}
	return nil
}

var _ auth.CredentialStore = (*memStore)(nil)

type mockMailer struct {
	mu   sync.Mutex
	sent []auth.Message
	err  error
}

func (m *mockMailer) Send(_ context.Context, msg auth.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) last() (auth.Message, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sent) == 0 {
		return auth.Message{}, false
	}
	return m.sent[len(m.sent)-1], true
}

var _ auth.Mailer = (*mockMailer)(nil)

type testConfig struct {
	signingKey     string
	expirationDays int
	resetTTL       time.Duration
	cookieName     string
	resetURLBase   string
	production     bool
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:     "test-signing-key",
		expirationDays: 1,
		resetTTL:       30 * time.Minute,
		cookieName:     auth.DefaultCookieName,
		resetURLBase:   "/api/v1/users/reset-password",
	}
}

func (c testConfig) GetSigningKey() string            { return c.signingKey }
func (c testConfig) GetTokenExpirationDays() int      { return c.expirationDays }
func (c testConfig) GetResetTokenTTL() time.Duration  { return c.resetTTL }
func (c testConfig) GetCookieName() string            { return c.cookieName }
func (c testConfig) GetResetURLBase() string          { return c.resetURLBase }
func (c testConfig) IsProduction() bool               { return c.production }

var _ auth.Config = testConfig{}

func newTestUser(t *testing.T, email, password string, role auth.UserRole) *auth.User {
	t.Helper()

	user := &auth.User{
		ID:    uuid.New(),
		Email: auth.NormalizeEmail(email),
		Role:  role,
	}
	if err := user.SetPassword(password); err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	return user
}
