package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/shipwright/internal/logfields"
	"git.home.luguber.info/inful/shipwright/internal/orchestrate"
)

// Publisher posts run summaries to a NATS subject. Delivery is
// best-effort: the act of sending the report must never fail the run.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// summaryMessage is the wire shape of a published run summary.
type summaryMessage struct {
	RunID    string        `json:"run_id"`
	Status   string        `json:"status"`
	Version  string        `json:"version"`
	Branch   string        `json:"branch"`
	Fallback bool          `json:"fallback"`
	Affected []string      `json:"affected"`
	Lanes    []laneMessage `json:"lanes"`
	Report   string        `json:"report"`
}

type laneMessage struct {
	Component   string `json:"component"`
	Status      string `json:"status"`
	FailedStep  string `json:"failed_step,omitempty"`
	Reason      string `json:"reason,omitempty"`
	TestWarning string `json:"test_warning,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// NewPublisher connects to NATS. The caller owns the returned publisher
// and must Close it.
func NewPublisher(url, subject string) (*Publisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS %s: %w", url, err)
	}
	slog.Info("NATS publisher connected", slog.String("url", url), slog.String("subject", subject))
	return &Publisher{conn: conn, subject: subject}, nil
}

// Publish sends the summary and its rendered report. Errors are returned
// for logging only; callers must not translate them into run failures.
func (p *Publisher) Publish(summary orchestrate.RunSummary, report string) error {
	msg := summaryMessage{
		RunID:    summary.RunID,
		Status:   string(summary.Status),
		Version:  summary.Version.Value,
		Branch:   summary.Version.Branch,
		Fallback: summary.Version.Fallback,
		Affected: summary.Affected.AffectedIDs(),
		Report:   report,
	}
	for _, r := range summary.Lanes {
		msg.Lanes = append(msg.Lanes, laneMessage{
			Component:   r.Component,
			Status:      string(r.Status),
			FailedStep:  string(r.FailedStep),
			Reason:      r.Reason,
			TestWarning: r.TestWarning,
			DurationMS:  r.Duration.Milliseconds(),
		})
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", p.subject, err)
	}
	if err := p.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	slog.Debug("Published run summary",
		logfields.RunID(summary.RunID), slog.String("subject", p.subject))
	return nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}
