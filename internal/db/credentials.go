package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/vytor/betterank/internal/logger"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// Credential is the bearer token saved for one backend.
type Credential struct {
	BaseURL   string
	Username  string
	Token     string
	ExpiresAt *time.Time
	SavedAt   time.Time
}

// SaveCredential stores c, replacing any token saved for the same backend.
func (db *DB) SaveCredential(ctx context.Context, c Credential) error {
	log := logger.FromContext(ctx).WithPrefix("db").WithField("base_url", c.BaseURL)

	var expires any
	if c.ExpiresAt != nil {
		expires = c.ExpiresAt.UTC()
	}
	query, args, err := sqlBuilder.
		Insert("credentials").
		Columns("base_url", "username", "token", "expires_at", "saved_at").
		Values(c.BaseURL, c.Username, c.Token, expires, time.Now().UTC()).
		Suffix("ON CONFLICT(base_url) DO UPDATE SET username = excluded.username, token = excluded.token, expires_at = excluded.expires_at, saved_at = excluded.saved_at").
		ToSql()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		log.Error("failed to save credential: %v", err)
		return err
	}
	log.Debug("credential saved for %s", c.Username)
	return nil
}

// Credential returns the token saved for baseURL, or nil when there is none.
func (db *DB) Credential(ctx context.Context, baseURL string) (*Credential, error) {
	query, args, err := sqlBuilder.
		Select("base_url", "username", "token", "expires_at", "saved_at").
		From("credentials").
		Where(squirrel.Eq{"base_url": baseURL}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var (
		c       Credential
		expires sql.NullTime
	)
	err = db.QueryRowContext(ctx, query, args...).Scan(&c.BaseURL, &c.Username, &c.Token, &expires, &c.SavedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.FromContext(ctx).WithPrefix("db").Error("failed to read credential: %v", err)
		return nil, err
	}
	if expires.Valid {
		t := expires.Time
		c.ExpiresAt = &t
	}
	return &c, nil
}

// DeleteCredential forgets the token for baseURL. Missing rows are not an error.
func (db *DB) DeleteCredential(ctx context.Context, baseURL string) error {
	query, args, err := sqlBuilder.
		Delete("credentials").
		Where(squirrel.Eq{"base_url": baseURL}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}
