package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/censys-cli/internal/audit"
	"github.com/censys-cli/internal/censys"
	"github.com/censys-cli/internal/logging"
	"github.com/censys-cli/internal/metrics"
)

// ErrAuditDisabled is returned by History when no audit store is configured
var ErrAuditDisabled = errors.New("audit trail is not configured (set CENSYS_AUDIT_DSN)")

// API is the subset of the Censys client the service depends on
type API interface {
	GetHost(ctx context.Context, ip string) (*censys.Host, error)
	Search(ctx context.Context, req *censys.SearchRequest) (*censys.SearchResult, error)
	Aggregate(ctx context.Context, req *censys.AggregateRequest) (*censys.AggregateResult, error)
}

// AuditStore persists and lists command invocations
type AuditStore interface {
	Record(ctx context.Context, entry *audit.Entry) error
	Recent(ctx context.Context, limit int) ([]*audit.Entry, error)
}

// LookupService runs one API operation per command and records its outcome.
// Recording failures are logged and never fail the command.
type LookupService struct {
	api     API
	store   AuditStore
	metrics *metrics.Metrics
}

// NewLookupService creates a lookup service. store and m may be nil.
func NewLookupService(api API, store AuditStore, m *metrics.Metrics) *LookupService {
	return &LookupService{
		api:     api,
		store:   store,
		metrics: m,
	}
}

// Host looks up a single host
func (s *LookupService) Host(ctx context.Context, ip string) (*censys.Host, error) {
	host, err := s.api.GetHost(ctx, ip)
	count := 0
	if err == nil {
		count = 1
	}
	s.finish(ctx, &audit.Entry{Command: "host", Query: ip, ResultCount: count}, err)
	return host, err
}

// Search runs one page of a search
func (s *LookupService) Search(ctx context.Context, req *censys.SearchRequest) (*censys.SearchResult, error) {
	result, err := s.api.Search(ctx, req)
	count := 0
	if err == nil {
		count = len(result.Hits)
	}
	s.finish(ctx, &audit.Entry{Command: "search", Query: req.Query, ResultCount: count}, err)
	return result, err
}

// Aggregate runs an aggregation
func (s *LookupService) Aggregate(ctx context.Context, req *censys.AggregateRequest) (*censys.AggregateResult, error) {
	result, err := s.api.Aggregate(ctx, req)
	count := 0
	if err == nil {
		count = len(result.Buckets)
	}
	s.finish(ctx, &audit.Entry{Command: "aggregate", Query: req.Query, Field: req.Field, ResultCount: count}, err)
	return result, err
}

// History lists the most recent recorded invocations
func (s *LookupService) History(ctx context.Context, limit int) ([]*audit.Entry, error) {
	if s.store == nil {
		return nil, ErrAuditDisabled
	}

	start := time.Now()
	entries, err := s.store.Recent(ctx, limit)
	if s.metrics != nil {
		s.metrics.RecordDatabaseOperation("recent", time.Since(start), err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit trail: %w", err)
	}
	return entries, nil
}

func (s *LookupService) finish(ctx context.Context, entry *audit.Entry, err error) {
	entry.RequestID = logging.GetRequestID(ctx)
	entry.StatusCode = statusCode(err)
	if err != nil {
		entry.Error = err.Error()
	}

	if s.metrics != nil {
		s.metrics.RecordCommand(entry.Command, err)
		s.metrics.RecordResults(entry.Command, entry.ResultCount)
		if err != nil {
			s.metrics.RecordAPIError(entry.Command, errorType(err))
		}
	}

	if s.store == nil {
		return
	}
	start := time.Now()
	recordErr := s.store.Record(ctx, entry)
	if s.metrics != nil {
		s.metrics.RecordDatabaseOperation("record", time.Since(start), recordErr)
	}
	if recordErr != nil {
		logging.FromContext(ctx).WithError(recordErr).Warn("Failed to record audit entry")
	}
}

// statusCode is the HTTP status behind err, 200 for success and 0 when no
// response was received
func statusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var apiErr *censys.APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func errorType(err error) string {
	var apiErr *censys.APIError
	switch {
	case errors.As(err, &apiErr):
		return fmt.Sprintf("status_%d", apiErr.StatusCode)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "request"
	}
}
