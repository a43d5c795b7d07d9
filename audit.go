package gqlclient

import (
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// ErrNilWriter is returned by Log when the logger has no destination.
var ErrNilWriter = errors.New("gqlclient: audit writer is nil")

// AuditEntry records a single GraphQL call. Variables are deliberately not
// recorded: they routinely carry credentials and user input.
type AuditEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Endpoint  string        `json:"endpoint"`
	Query     string        `json:"query"`
	Outcome   string        `json:"outcome"`
	Duration  time.Duration `json:"duration_ns"`
}

// AuditLogger appends one JSON object per line to a writer. Writes are
// serialized with a mutex, so a single logger may be shared by concurrent
// callers.
type AuditLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewAuditLogger returns a logger that writes to w. A nil writer yields a
// nil logger, which disables auditing.
func NewAuditLogger(w io.Writer) *AuditLogger {
	if w == nil {
		return nil
	}
	return &AuditLogger{w: w}
}

// Log appends entry as a single line of JSON. A zero Timestamp is filled
// with the current time.
func (a *AuditLogger) Log(entry AuditEntry) error {
	if a == nil || a.w == nil {
		return ErrNilWriter
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "marshal audit entry")
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.w.Write(data); err != nil {
		return errors.Wrap(err, "write audit entry")
	}
	return nil
}
