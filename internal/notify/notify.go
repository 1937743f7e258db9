// Package notify publishes a summary of each generation run to NATS so other
// services (site deploys, chat bots) can react to catalog updates.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/catalogbuilder/internal/logfields"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "catalogbuilder.runs"

const flushTimeout = 5 * time.Second

// RunSummary is the published message body.
type RunSummary struct {
	RunID       string         `json:"run_id"`
	Started     time.Time      `json:"started"`
	Finished    time.Time      `json:"finished"`
	DurationMS  int64          `json:"duration_ms"`
	Outcome     string         `json:"outcome"`
	Rows        int            `json:"rows"`
	Written     int            `json:"written"`
	Skipped     int            `json:"skipped"`
	Resources   int            `json:"resources"`
	Diagnostics map[string]int `json:"diagnostics,omitempty"`
	Changes     map[string]int `json:"changes,omitempty"`
	Error       string         `json:"error,omitempty"`
}

// conn is the part of *nats.Conn the notifier uses.
type conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Notifier publishes run summaries. A nil *Notifier drops every message.
type Notifier struct {
	conn    conn
	subject string
}

// Connect dials the NATS server at url. An empty url yields a nil Notifier.
func Connect(url, subject string) (*Notifier, error) {
	if url == "" {
		return nil, nil
	}
	nc, err := nats.Connect(url, nats.Name("catalogbuilder"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS notifier connected", logfields.URL(url), slog.String("subject", subjectOr(subject)))
	return newNotifier(nc, subject), nil
}

func newNotifier(c conn, subject string) *Notifier {
	return &Notifier{conn: c, subject: subjectOr(subject)}
}

// Publish sends s and waits until the server has acknowledged the flush.
func (n *Notifier) Publish(s RunSummary) error {
	if n == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}
	if err := n.conn.FlushTimeout(flushTimeout); err != nil {
		return fmt.Errorf("failed to flush NATS connection: %w", err)
	}
	slog.Debug("Published run summary", logfields.RunID(s.RunID), slog.String("subject", n.subject))
	return nil
}

// Close closes the NATS connection.
func (n *Notifier) Close() {
	if n == nil || n.conn == nil {
		return
	}
	n.conn.Close()
}

func subjectOr(s string) string {
	if s == "" {
		return DefaultSubject
	}
	return s
}
