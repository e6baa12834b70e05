package calllog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Laisky/aws-documentation-mcp/library/log"
)

// Clock provides the current time in UTC.
type Clock func() time.Time

// Service persists and queries tool invocation call logs.
type Service struct {
	db     DB
	logger logSDK.Logger
	clock  Clock
}

var _ Recorder = (*Service)(nil)

// DB defines the database capabilities required by the call log service.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RecordInput captures the information required to persist a tool invocation.
type RecordInput struct {
	ToolName string
	// SessionID is the MCP session that issued the call, empty for stdio clients
	// that never negotiated one.
	SessionID    string
	Status       string
	Duration     time.Duration
	Parameters   map[string]any
	ErrorMessage string
	OccurredAt   time.Time
}

// ListOptions configures the result set returned by List.
type ListOptions struct {
	Page      int
	PageSize  int
	ToolName  string
	SessionID string
	Status    string
	SortField string
	SortOrder string
	From      time.Time
	To        time.Time
}

// Entry represents a single record returned from List.
type Entry struct {
	ID             uuid.UUID
	ToolName       string
	SessionID      string
	Status         string
	DurationMillis int64
	Parameters     map[string]any
	ErrorMessage   string
	OccurredAt     time.Time
	CreatedAt      time.Time
}

// ListResult packages the results of a List query along with the total count.
type ListResult struct {
	Entries []Entry
	Total   int64
}

const (
	defaultPage = 1
	// defaultPageSize sets the fallback page size for list queries.
	defaultPageSize = 20
	// maxPageSize caps the page size for list queries.
	maxPageSize        = 100
	sortFieldCreatedAt = "created_at"
	sortFieldDuration  = "duration"
)

// NewService constructs a Service backed by the supplied PostgreSQL connection.
func NewService(ctx context.Context, db DB, logger logSDK.Logger, clock Clock) (*Service, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if logger == nil {
		logger = log.Logger.Named("call_log_service")
	}
	if clock == nil {
		clock = func() time.Time {
			return time.Now().UTC()
		}
	}

	if err := runMigrations(ctx, db); err != nil {
		return nil, errors.Wrap(err, "migrate call log records")
	}

	return &Service{db: db, logger: logger, clock: clock}, nil
}

// Connect opens a pgx pool for dsn and verifies it is reachable.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "create postgres pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return pool, nil
}

// Record stores a tool invocation using the provided input.
func (s *Service) Record(ctx context.Context, input RecordInput) error {
	if s == nil {
		return errors.New("call log service is nil")
	}
	trimmedTool := strings.TrimSpace(input.ToolName)
	if trimmedTool == "" {
		return errors.New("tool name is required")
	}
	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = StatusSuccess
	}

	payload, err := json.Marshal(input.Parameters)
	if err != nil {
		return errors.Wrap(err, "marshal call log parameters")
	}

	occurred := input.OccurredAt
	if occurred.IsZero() {
		occurred = s.clock()
	}

	recordID, err := uuid.NewV7()
	if err != nil {
		return errors.Wrap(err, "generate call log id")
	}
	record := &Record{
		ID:             recordID,
		ToolName:       trimmedTool,
		SessionID:      strings.TrimSpace(input.SessionID),
		Status:         status,
		DurationMillis: input.Duration.Milliseconds(),
		Parameters:     payload,
		ErrorMessage:   strings.TrimSpace(input.ErrorMessage),
		OccurredAt:     occurred,
		CreatedAt:      s.clock(),
	}

	// detached so the row is written even when the tool call was cancelled
	ctx = context.WithoutCancel(ctx)
	_, err = s.db.Exec(ctx, `
		INSERT INTO mcp_doc_call_logs (
			id, tool_name, session_id, status, duration_millis,
			parameters, error_message, occurred_at, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6::jsonb, $7, $8, $9
		)
	`,
		record.ID,
		record.ToolName,
		record.SessionID,
		record.Status,
		record.DurationMillis,
		string(record.Parameters),
		record.ErrorMessage,
		record.OccurredAt,
		record.CreatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "create call log record")
	}

	s.logger.Debug("recorded call log", zap.String("tool", trimmedTool), zap.String("status", status))
	return nil
}

// List retrieves records that match the provided filters and pagination options.
func (s *Service) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	if s == nil {
		return nil, errors.New("call log service is nil")
	}

	toolName, err := sanitizeOptionalText(opts.ToolName, maxToolNameLength, "tool name")
	if err != nil {
		return nil, errors.Wrap(err, "sanitize tool name")
	}
	sessionID, err := sanitizeOptionalText(opts.SessionID, maxSessionIDLength, "session id")
	if err != nil {
		return nil, errors.Wrap(err, "sanitize session id")
	}
	status, err := sanitizeStatus(opts.Status)
	if err != nil {
		return nil, errors.Wrap(err, "sanitize status")
	}

	page := opts.Page
	if page < 1 {
		page = defaultPage
	}
	size := opts.PageSize
	if size <= 0 {
		size = defaultPageSize
	} else if size > maxPageSize {
		size = maxPageSize
	}

	clauses := make([]string, 0, 5)
	args := make([]any, 0, 7)
	argID := 1
	if toolName != "" {
		clauses = append(clauses, fmt.Sprintf("tool_name = $%d", argID))
		args = append(args, toolName)
		argID++
	}
	if sessionID != "" {
		clauses = append(clauses, fmt.Sprintf("session_id = $%d", argID))
		args = append(args, sessionID)
		argID++
	}
	if status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", argID))
		args = append(args, status)
		argID++
	}
	if !opts.From.IsZero() {
		clauses = append(clauses, fmt.Sprintf("occurred_at >= $%d", argID))
		args = append(args, opts.From)
		argID++
	}
	if !opts.To.IsZero() {
		clauses = append(clauses, fmt.Sprintf("occurred_at < $%d", argID))
		args = append(args, opts.To)
		argID++
	}
	whereSQL := ""
	if len(clauses) > 0 {
		whereSQL = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int64
	countSQL := "SELECT COUNT(*) FROM mcp_doc_call_logs" + whereSQL
	if err := s.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, errors.Wrap(err, "count call log records")
	}

	orderField := mapSortField(opts.SortField)
	orderDirection := strings.ToUpper(strings.TrimSpace(opts.SortOrder))
	if orderDirection != "ASC" {
		orderDirection = "DESC"
	}
	offset := (page - 1) * size
	listSQL := fmt.Sprintf(`
		SELECT id, tool_name, session_id, status, duration_millis,
			parameters, error_message, occurred_at, created_at
		FROM mcp_doc_call_logs
		%s
		ORDER BY %s %s
		OFFSET $%d LIMIT $%d
	`, whereSQL, orderField, orderDirection, argID, argID+1)
	listArgs := append(args, offset, size)
	rows, err := s.db.Query(ctx, listSQL, listArgs...)
	if err != nil {
		return nil, errors.Wrap(err, "query call log records")
	}
	defer rows.Close()

	entries := make([]Entry, 0, size)
	for rows.Next() {
		var record Record
		if scanErr := rows.Scan(
			&record.ID,
			&record.ToolName,
			&record.SessionID,
			&record.Status,
			&record.DurationMillis,
			&record.Parameters,
			&record.ErrorMessage,
			&record.OccurredAt,
			&record.CreatedAt,
		); scanErr != nil {
			return nil, errors.Wrap(scanErr, "scan call log record")
		}
		entries = append(entries, s.toEntry(record))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate call log rows")
	}

	return &ListResult{Entries: entries, Total: total}, nil
}

func (s *Service) toEntry(record Record) Entry {
	params := map[string]any{}
	if len(record.Parameters) > 0 {
		if err := json.Unmarshal(record.Parameters, &params); err != nil {
			s.logger.Warn("decode call log parameters", zap.Error(err), zap.String("record_id", record.ID.String()))
			params = map[string]any{}
		}
	}

	return Entry{
		ID:             record.ID,
		ToolName:       record.ToolName,
		SessionID:      record.SessionID,
		Status:         record.Status,
		DurationMillis: record.DurationMillis,
		Parameters:     params,
		ErrorMessage:   record.ErrorMessage,
		OccurredAt:     record.OccurredAt,
		CreatedAt:      record.CreatedAt,
	}
}

// migrationStatements create the call log table and indexes when absent.
var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS mcp_doc_call_logs (
		id UUID PRIMARY KEY,
		tool_name VARCHAR(64) NOT NULL,
		session_id VARCHAR(128),
		status VARCHAR(16) NOT NULL,
		duration_millis BIGINT,
		parameters JSONB,
		error_message TEXT,
		occurred_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_mcp_doc_call_logs_tool_name ON mcp_doc_call_logs (tool_name)`,
	`CREATE INDEX IF NOT EXISTS idx_mcp_doc_call_logs_session_id ON mcp_doc_call_logs (session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_mcp_doc_call_logs_status ON mcp_doc_call_logs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_mcp_doc_call_logs_occurred_at ON mcp_doc_call_logs (occurred_at DESC)`,
}

func runMigrations(ctx context.Context, db DB) error {
	for _, stmt := range migrationStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "execute call log migration")
		}
	}

	return nil
}

var _ DB = (*pgxpool.Pool)(nil)

func mapSortField(field string) string {
	switch strings.ToLower(strings.TrimSpace(field)) {
	case sortFieldDuration:
		return "duration_millis"
	case sortFieldCreatedAt:
		return "created_at"
	default:
		return "occurred_at"
	}
}
