package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded command invocation
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id" yaml:"id"`
	RequestID   string    `db:"request_id" json:"request_id" yaml:"request_id"`
	Command     string    `db:"command" json:"command" yaml:"command"`
	Query       string    `db:"query" json:"query" yaml:"query"`
	Field       string    `db:"field" json:"field,omitempty" yaml:"field,omitempty"`
	StatusCode  int       `db:"status_code" json:"status_code" yaml:"status_code"`
	ResultCount int       `db:"result_count" json:"result_count" yaml:"result_count"`
	Error       string    `db:"error" json:"error,omitempty" yaml:"error,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at" yaml:"created_at"`
}

// Table names
const (
	TableQueryAudit = "query_audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS query_audit (
	id VARCHAR(36) PRIMARY KEY,
	request_id VARCHAR(36) NOT NULL,
	command VARCHAR(32) NOT NULL,
	query TEXT NOT NULL,
	field TEXT NOT NULL DEFAULT '',
	status_code INTEGER NOT NULL DEFAULT 0,
	result_count INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
)`
