// Package events publishes run-completed events so external consumers (CI
// dashboards, notifiers) can react without polling the repository.
package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/dashboard/internal/config"
)

// RunEvent is the JSON payload published after every run.
type RunEvent struct {
	RunID      string    `json:"run_id"`
	FinishedAt time.Time `json:"finished_at"`
	Changed    bool      `json:"changed"`
	Sections   int       `json:"sections"`
	Failed     int       `json:"failed_sections"`
}

// Publisher sends run events to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server.
func NewPublisher(cfg *config.NATSConfig) (*Publisher, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("nats config is required")
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("dashboard"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized", "url", cfg.URL, "subject", cfg.Subject)
	return &Publisher{conn: conn, subject: cfg.Subject}, nil
}

// Publish sends one run event. Publish failures are logged, not fatal; event
// delivery is best effort.
func (p *Publisher) Publish(ev RunEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		slog.Error("Failed to marshal run event", "error", err)
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		slog.Warn("Failed to publish run event", "subject", p.subject, "error", err)
	}
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
