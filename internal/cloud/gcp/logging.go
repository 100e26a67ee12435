package gcp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"
)

// Severity levels for structured logs
type Severity string

const (
	SeverityDefault Severity = "DEFAULT"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
)

// LogEntry represents a structured log entry for Cloud Logging
type LogEntry struct {
	Severity  Severity          `json:"severity"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	JobID     string            `json:"job_id"`
	Labels    map[string]string `json:"labels,omitempty"`
}

// LoggerInterface defines the interface for structured logging operations
type LoggerInterface interface {
	Log(severity Severity, message string)
	Info(message string)
	Warning(message string)
	Error(message string)
	Close() error
}

// StructuredLogger writes JSON log entries compatible with the Cloud Logging
// agent. On GCP the agent picks up structured JSON from stderr and forwards
// it to Cloud Logging with proper severity and labels; locally the same
// entries go to stdout for debugging.
type StructuredLogger struct {
	writer io.Writer
	jobID  string
	labels map[string]string
	mu     sync.Mutex
	closed bool
}

// StructuredLoggerOption allows configuring the StructuredLogger
type StructuredLoggerOption func(*StructuredLogger)

// WithLabels adds custom labels to all log entries
func WithLabels(labels map[string]string) StructuredLoggerOption {
	return func(sl *StructuredLogger) {
		for k, v := range labels {
			sl.labels[k] = v
		}
	}
}

// WithWriter sets a custom writer for log output
func WithWriter(w io.Writer) StructuredLoggerOption {
	return func(sl *StructuredLogger) {
		sl.writer = w
	}
}

// NewLogger creates the appropriate structured logger for the environment.
// On GCP (detected via the metadata server) entries go to stderr where the
// Cloud Logging agent collects them; otherwise they go to stdout.
func NewLogger(jobID string, opts ...StructuredLoggerOption) *StructuredLogger {
	sl := &StructuredLogger{
		writer: os.Stdout,
		jobID:  jobID,
		labels: map[string]string{
			"job_id":    jobID,
			"component": "planesync",
		},
	}

	if isRunningOnGCP() {
		sl.writer = os.Stderr
	}

	for _, opt := range opts {
		opt(sl)
	}

	return sl
}

// Log writes a structured log entry
func (sl *StructuredLogger) Log(severity Severity, message string) {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	if sl.closed {
		return
	}

	entry := LogEntry{
		Severity:  severity,
		Message:   message,
		Timestamp: time.Now().UTC(),
		JobID:     sl.jobID,
		Labels:    sl.labels,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(sl.writer, `{"severity":"ERROR","message":"failed to marshal log entry: %v"}`+"\n", err)
		return
	}
	fmt.Fprintf(sl.writer, "%s\n", data)
}

// Info writes an INFO level log entry
func (sl *StructuredLogger) Info(message string) {
	sl.Log(SeverityInfo, message)
}

// Warning writes a WARNING level log entry
func (sl *StructuredLogger) Warning(message string) {
	sl.Log(SeverityWarning, message)
}

// Error writes an ERROR level log entry
func (sl *StructuredLogger) Error(message string) {
	sl.Log(SeverityError, message)
}

// Close marks the logger as closed; subsequent writes are dropped
func (sl *StructuredLogger) Close() error {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.closed = true
	return nil
}

// isRunningOnGCP checks if the code is running on a GCP environment
// by probing the metadata server
func isRunningOnGCP() bool {
	client := &http.Client{Timeout: 1 * time.Second}
	req, err := http.NewRequest("GET", "http://metadata.google.internal/computeMetadata/v1/", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Metadata-Flavor", "Google")
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Ensure StructuredLogger implements LoggerInterface
var _ LoggerInterface = (*StructuredLogger)(nil)
