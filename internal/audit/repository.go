package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// Repository provides audit trail operations
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new repository instance
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Open connects to the audit database and makes sure the table exists
func Open(ctx context.Context, driver, dsn string) (*Repository, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported audit driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	repo := NewRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logrus.WithField("driver", driver).Debug("Audit database ready")
	return repo, nil
}

// Close closes the underlying database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// EnsureSchema creates the audit table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create %s table: %w", TableQueryAudit, err)
	}
	return nil
}

// Record stores an entry, assigning its ID and timestamp
func (r *Repository) Record(ctx context.Context, entry *Entry) error {
	entry.ID = uuid.New()
	entry.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO query_audit (id, request_id, command, query, field, status_code, result_count, error, created_at)
		VALUES (:id, :request_id, :command, :query, :field, :status_code, :result_count, :error, :created_at)
	`

	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries first
func (r *Repository) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	var entries []*Entry
	query := r.db.Rebind(`
		SELECT id, request_id, command, query, field, status_code, result_count, error, created_at
		FROM query_audit
		ORDER BY created_at DESC
		LIMIT ?
	`)

	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent audit entries: %w", err)
	}
	return entries, nil
}
