package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zots0127/uplink/internal/domain/entities"
)

// SQLiteLedger stores upload authorization records in a single SQLite table
// keyed by token. Single-use consumption is a conditional UPDATE so that two
// racing redeemers can never both observe an unused record and proceed.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger opens (or creates) the ledger database at dbPath.
func NewSQLiteLedger(dbPath string) (*SQLiteLedger, error) {
	// busy_timeout keeps concurrent consume attempts queued instead of
	// failing with SQLITE_BUSY
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(10000)")
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS upload_tokens (
		token TEXT PRIMARY KEY,
		max_size_bytes INTEGER NOT NULL,
		allowed_extension TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		used_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_upload_tokens_expires_at ON upload_tokens(expires_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteLedger{db: db}, nil
}

// Put inserts a new record. The token is the primary key; a duplicate insert
// means the token generator collided, which is surfaced rather than masked.
func (l *SQLiteLedger) Put(ctx context.Context, auth *entities.UploadAuthorization) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO upload_tokens (token, max_size_bytes, allowed_extension, created_at, expires_at, used)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		auth.Token, auth.MaxSizeBytes, auth.AllowedExtension,
		auth.CreatedAt.Unix(), auth.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("ledger put: %w", err)
	}
	return nil
}

// Get loads the record for token. Expired records read as absent; the caller
// cannot distinguish "never issued" from "expired and awaiting purge".
func (l *SQLiteLedger) Get(ctx context.Context, token string) (*entities.UploadAuthorization, error) {
	return l.getAt(ctx, token, time.Now())
}

func (l *SQLiteLedger) getAt(ctx context.Context, token string, now time.Time) (*entities.UploadAuthorization, error) {
	var (
		auth      entities.UploadAuthorization
		createdAt int64
		expiresAt int64
		used      int
	)
	err := l.db.QueryRowContext(ctx,
		`SELECT token, max_size_bytes, allowed_extension, created_at, expires_at, used
		 FROM upload_tokens WHERE token = ? AND expires_at > ?`,
		token, now.Unix(),
	).Scan(&auth.Token, &auth.MaxSizeBytes, &auth.AllowedExtension, &createdAt, &expiresAt, &used)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ledger get: %w", err)
	}

	auth.CreatedAt = time.Unix(createdAt, 0)
	auth.ExpiresAt = time.Unix(expiresAt, 0)
	auth.Used = used != 0
	return &auth, nil
}

// Consume performs the single-use transition as one conditional write.
// RowsAffected tells the winner (1) from everyone else (0); there is no
// separate read of used anywhere on this path.
func (l *SQLiteLedger) Consume(ctx context.Context, token string, now time.Time) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`UPDATE upload_tokens SET used = 1, used_at = ?
		 WHERE token = ? AND used = 0 AND expires_at > ?`,
		now.Unix(), token, now.Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("ledger consume: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("ledger consume: %w", err)
	}
	return affected == 1, nil
}

// PurgeExpired deletes records past their expiry horizon. Run periodically
// by the janitor so abandoned tokens do not accumulate.
func (l *SQLiteLedger) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`DELETE FROM upload_tokens WHERE expires_at <= ?`, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("ledger purge: %w", err)
	}
	return res.RowsAffected()
}

func (l *SQLiteLedger) Ping(ctx context.Context) error {
	return l.db.PingContext(ctx)
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
