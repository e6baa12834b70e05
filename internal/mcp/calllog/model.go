// Package calllog persists documentation tool invocations in PostgreSQL.
package calllog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status enumerations for recorded tool calls.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Recorder stores tool invocations. The MCP server only logs calls when none is configured.
type Recorder interface {
	Record(ctx context.Context, input RecordInput) error
}

// Record is one row of mcp_doc_call_logs.
type Record struct {
	ID             uuid.UUID
	ToolName       string
	SessionID      string
	Status         string
	DurationMillis int64
	Parameters     []byte
	ErrorMessage   string
	OccurredAt     time.Time
	CreatedAt      time.Time
}
