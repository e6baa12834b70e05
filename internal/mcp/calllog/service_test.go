package calllog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newMockService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS mcp_doc_call_logs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	for range migrationStatements[1:] {
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_mcp_doc_call_logs_").
			WillReturnResult(pgxmock.NewResult("CREATE", 0))
	}

	svc, err := NewService(context.Background(), mock, nil, func() time.Time { return fixedNow })
	require.NoError(t, err)
	return svc, mock
}

func TestNewServiceRequiresDB(t *testing.T) {
	_, err := NewService(context.Background(), nil, nil, nil)
	require.Error(t, err)
}

func TestNewServiceMigrationFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS mcp_doc_call_logs").
		WillReturnError(errors.New("permission denied"))

	_, err = NewService(context.Background(), mock, nil, nil)
	require.ErrorContains(t, err, "permission denied")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRecord(t *testing.T) {
	svc, mock := newMockService(t)

	occurred := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO mcp_doc_call_logs").
		WithArgs(
			pgxmock.AnyArg(),
			"read_documentation",
			"session-1",
			StatusError,
			int64(1500),
			`{"url":"https://docs.aws.amazon.com/a.html"}`,
			"boom",
			occurred,
			fixedNow,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, svc.Record(context.Background(), RecordInput{
		ToolName:     " read_documentation ",
		SessionID:    "session-1",
		Status:       StatusError,
		Duration:     1500 * time.Millisecond,
		Parameters:   map[string]any{"url": "https://docs.aws.amazon.com/a.html"},
		ErrorMessage: " boom ",
		OccurredAt:   occurred,
	}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRecordDefaults(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("INSERT INTO mcp_doc_call_logs").
		WithArgs(
			pgxmock.AnyArg(),
			"recommend",
			"",
			StatusSuccess,
			int64(0),
			"null",
			"",
			fixedNow,
			fixedNow,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, svc.Record(context.Background(), RecordInput{ToolName: "recommend"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRecordSurvivesCancelledContext(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec("INSERT INTO mcp_doc_call_logs").
		WithArgs(
			pgxmock.AnyArg(),
			"search_documentation",
			"",
			StatusSuccess,
			int64(0),
			"null",
			"",
			fixedNow,
			fixedNow,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, svc.Record(ctx, RecordInput{ToolName: "search_documentation"}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceRecordRequiresToolName(t *testing.T) {
	svc, mock := newMockService(t)
	require.Error(t, svc.Record(context.Background(), RecordInput{ToolName: "  "}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceList(t *testing.T) {
	svc, mock := newMockService(t)

	id := uuid.Must(uuid.NewV7())
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM mcp_doc_call_logs WHERE tool_name = \$1 AND status = \$2`).
		WithArgs("read_documentation", StatusSuccess).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(21)))
	mock.ExpectQuery(`ORDER BY duration_millis ASC\s+OFFSET \$3 LIMIT \$4`).
		WithArgs("read_documentation", StatusSuccess, 10, 10).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tool_name", "session_id", "status", "duration_millis",
			"parameters", "error_message", "occurred_at", "created_at",
		}).AddRow(
			id, "read_documentation", "session-1", StatusSuccess, int64(42),
			[]byte(`{"url":"https://docs.aws.amazon.com/a.html"}`), "", fixedNow, fixedNow,
		))

	result, err := svc.List(context.Background(), ListOptions{
		Page:      2,
		PageSize:  10,
		ToolName:  "read_documentation",
		Status:    "SUCCESS",
		SortField: "duration",
		SortOrder: "asc",
	})
	require.NoError(t, err)
	require.Equal(t, int64(21), result.Total)
	require.Len(t, result.Entries, 1)

	entry := result.Entries[0]
	require.Equal(t, id, entry.ID)
	require.Equal(t, "session-1", entry.SessionID)
	require.Equal(t, int64(42), entry.DurationMillis)
	require.Equal(t, "https://docs.aws.amazon.com/a.html", entry.Parameters["url"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestServiceListRejectsBadFilters(t *testing.T) {
	svc, mock := newMockService(t)

	_, err := svc.List(context.Background(), ListOptions{Status: "pending"})
	require.Error(t, err)

	_, err = svc.List(context.Background(), ListOptions{ToolName: "read\x00documentation"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

type stubLister struct {
	got    ListOptions
	result *ListResult
	err    error
}

func (s *stubLister) List(_ context.Context, opts ListOptions) (*ListResult, error) {
	s.got = opts
	return s.result, s.err
}

func TestHTTPHandlerList(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	lister := &stubLister{result: &ListResult{
		Total: 3,
		Entries: []Entry{{
			ID:         id,
			ToolName:   "search_documentation",
			Status:     StatusSuccess,
			Parameters: map[string]any{"search_phrase": "s3"},
			OccurredAt: fixedNow,
		}},
	}}
	handler := NewHTTPHandler(lister, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/logs?page=1&page_size=2&tool=search_documentation&to=2024-01-02", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "search_documentation", lister.got.ToolName)
	require.Equal(t, time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), lister.got.To)

	var body struct {
		Data       []map[string]any `json:"data"`
		Pagination map[string]any   `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	require.Equal(t, id.String(), body.Data[0]["id"])
	require.Equal(t, float64(2), body.Pagination["total_pages"])
	require.Equal(t, true, body.Pagination["has_next"])
}

func TestHTTPHandlerErrors(t *testing.T) {
	handler := NewHTTPHandler(&stubLister{err: errors.New("bad filter")}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/logs", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	NewHTTPHandler(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/logs", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
