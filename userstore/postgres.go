package userstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	phoneAuth "github.com/MrEthical07/phoneAuth"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS phoneauth_users (
	id            UUID PRIMARY KEY,
	phone         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type userRow struct {
	ID           string `db:"id"`
	Phone        string `db:"phone"`
	PasswordHash string `db:"password_hash"`
}

func (r userRow) record() phoneAuth.UserRecord {
	return phoneAuth.UserRecord{
		UserID:       r.ID,
		Phone:        r.Phone,
		PasswordHash: r.PasswordHash,
	}
}

// Postgres is a UserProvider over a phoneauth_users table.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open connection.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

// OpenPostgres connects to dsn and sizes the pool.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("userstore: connect postgres: %w", err)
	}
	conn.SetMaxOpenConns(50)
	conn.SetMaxIdleConns(10)
	conn.SetConnMaxLifetime(5 * time.Minute)
	return NewPostgres(conn), nil
}

// EnsureSchema creates the users table when it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("userstore: ensure schema: %w", err)
	}
	return nil
}

func (p *Postgres) FindByPhone(ctx context.Context, phone string) (phoneAuth.UserRecord, error) {
	var row userRow
	err := p.db.GetContext(ctx, &row,
		`SELECT id, phone, password_hash FROM phoneauth_users WHERE phone = $1`, phone)
	if errors.Is(err, sql.ErrNoRows) {
		return phoneAuth.UserRecord{}, phoneAuth.ErrUserNotFound
	}
	if err != nil {
		return phoneAuth.UserRecord{}, fmt.Errorf("userstore: find by phone: %w", err)
	}
	return row.record(), nil
}

// CreateWithPhone inserts an account for phone. A concurrent insert for the
// same phone is absorbed by the unique constraint and the surviving row is
// returned.
func (p *Postgres) CreateWithPhone(ctx context.Context, phone string) (phoneAuth.UserRecord, error) {
	var row userRow
	err := p.db.GetContext(ctx, &row, `
		INSERT INTO phoneauth_users (id, phone)
		VALUES ($1, $2)
		ON CONFLICT (phone) DO NOTHING
		RETURNING id, phone, password_hash`, uuid.New(), phone)
	switch {
	case err == nil:
		return row.record(), nil
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		return p.FindByPhone(ctx, phone)
	default:
		return phoneAuth.UserRecord{}, fmt.Errorf("userstore: create: %w", err)
	}
}

func (p *Postgres) SetPasswordHash(ctx context.Context, userID, hash string) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE phoneauth_users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, hash, userID)
	if err != nil {
		return fmt.Errorf("userstore: set password hash: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("userstore: set password hash: %w", err)
	}
	if n == 0 {
		return phoneAuth.ErrUserNotFound
	}
	return nil
}

// Ping checks the connection.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
