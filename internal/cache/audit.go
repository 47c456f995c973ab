package cache

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/jmylchreest/xtreamr/internal/storage"
)

// AuditFileName is the append-only log of records skipped during a load.
const AuditFileName = "skipped_streams.json"

// AuditLog appends skipped provider records, one JSON object per line.
// The file as a whole is not a single JSON document.
type AuditLog struct {
	sandbox *storage.Sandbox
	logger  *slog.Logger
	mu      sync.Mutex
}

// NewAuditLog creates an audit log inside the sandbox.
func NewAuditLog(sandbox *storage.Sandbox, logger *slog.Logger) *AuditLog {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLog{sandbox: sandbox, logger: logger}
}

// Record appends one raw record. Failures are logged and otherwise ignored.
func (a *AuditLog) Record(record json.RawMessage) {
	var line bytes.Buffer
	if err := json.Compact(&line, record); err != nil {
		a.logger.Warn("skipped record is not valid JSON", slog.String("error", err.Error()))
		return
	}
	line.WriteByte('\n')

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.sandbox.Append(AuditFileName, line.Bytes()); err != nil {
		a.logger.Warn("failed to append skipped record", slog.String("error", err.Error()))
	}
}
