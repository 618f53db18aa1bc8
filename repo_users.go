package auth

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// QueryOption tunes a credential store read.
type QueryOption func(*QueryConfig)

// QueryConfig is the resolved form of a read's options. Exported so
// alternative CredentialStore implementations can interpret the options the
// same way the bun store does.
type QueryConfig struct {
	IncludePassword bool
}

// ResolveQueryOptions folds a read's options into their resolved form.
func ResolveQueryOptions(opts ...QueryOption) QueryConfig {
	cfg := QueryConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// IncludePassword re-selects the password hash, which reads exclude by default.
func IncludePassword() QueryOption {
	return func(q *QueryConfig) {
		q.IncludePassword = true
	}
}

// SaveOption tunes a credential store write.
type SaveOption func(*SaveConfig)

// SaveConfig is the resolved form of a write's options.
type SaveConfig struct {
	SkipValidation bool
}

// ResolveSaveOptions folds a write's options into their resolved form.
func ResolveSaveOptions(opts ...SaveOption) SaveConfig {
	cfg := SaveConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// SkipValidation bypasses record validation on save. Used while a record is
// mid-transition, e.g. carrying a reset token about to be rolled back.
func SkipValidation() SaveOption {
	return func(s *SaveConfig) {
		s.SkipValidation = true
	}
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ CredentialStore = (*users)(nil)

// NewCredentialStore returns the bun-backed credential store.
func NewCredentialStore(db *bun.DB) CredentialStore {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) ByEmail(ctx context.Context, email string, opts ...QueryOption) (*User, error) {
	record := &User{}

	q := a.selectQuery(record, opts...).
		Where("?TableAlias.email = ?", NormalizeEmail(email))

	if err := q.Limit(1).Scan(ctx); err != nil {
		return nil, a.mapNotFound(err, map[string]any{"email": email})
	}

	return record, nil
}

func (a *users) ByID(ctx context.Context, id uuid.UUID, opts ...QueryOption) (*User, error) {
	record := &User{}

	q := a.selectQuery(record, opts...).
		Where("?TableAlias.id = ?", id)

	if err := q.Limit(1).Scan(ctx); err != nil {
		return nil, a.mapNotFound(err, map[string]any{"id": id.String()})
	}

	return record, nil
}

// ByResetTokenHash resolves the identity holding a live reset token. The
// expiry filter lives in the query so an expired token is indistinguishable
// from an unknown one.
func (a *users) ByResetTokenHash(ctx context.Context, hash string, notExpiredBefore time.Time) (*User, error) {
	record := &User{}

	q := a.selectQuery(record).
		Where("?TableAlias.reset_token_hash = ?", hash).
		Where("?TableAlias.reset_token_expires_at > ?", notExpiredBefore)

	if err := q.Limit(1).Scan(ctx); err != nil {
		return nil, a.mapNotFound(err, nil)
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)

	if err := record.Validate(); err != nil {
		return nil, err
	}

	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *users) Save(ctx context.Context, record *User, opts ...SaveOption) (*User, error) {
	cfg := ResolveSaveOptions(opts...)

	if !cfg.SkipValidation {
		if err := record.Validate(); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	record.UpdatedAt = &now

	q := a.db.NewUpdate().
		Model(record).
		WherePK()

	// an empty hash means the record was read without it; writing the column
	// would blank the stored credential
	if record.PasswordHash == "" {
		q = q.ExcludeColumn("password_hash")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": record.ID.String(),
			})
	}

	return record, nil
}

func (a *users) ComparePassword(candidate, storedHash string) error {
	return ComparePasswordAndHash(candidate, storedHash)
}

func (a *users) selectQuery(record *User, opts ...QueryOption) *bun.SelectQuery {
	cfg := ResolveQueryOptions(opts...)

	q := a.db.NewSelect().Model(record)
	if !cfg.IncludePassword {
		q = q.ExcludeColumn("password_hash")
	}

	return q
}

func (a *users) mapNotFound(err error, meta map[string]any) error {
	if err == nil {
		return nil
	}

	if isEmptyResult(err) {
		notFound := repository.NewRecordNotFound()
		if len(meta) > 0 {
			return notFound.WithMetadata(meta)
		}
		return notFound
	}

	return err
}

func isEmptyResult(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || repository.IsRecordNotFound(err)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleGuest
	}

	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
