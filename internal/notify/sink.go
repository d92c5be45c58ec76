// Package notify delivers fire-and-forget operational notifications.
package notify

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Sink accepts a notification for delivery. Implementations must never
// block the caller on delivery outcome.
type Sink interface {
	Send(title, body string)
}

type natsSink struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSSink publishes notifications to a NATS subject. A nil connection
// degrades to log-only delivery, which keeps local development working
// without a broker.
func NewNATSSink(conn *nats.Conn, subject string, logger zerolog.Logger) Sink {
	if subject == "" {
		subject = "polyratings.notifications"
	}
	return &natsSink{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "notification_sink").Logger(),
	}
}

func (s *natsSink) Send(title, body string) {
	if s.conn == nil {
		s.logger.Info().Str("title", title).Msg("notification (no broker configured)")
		return
	}

	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"body":    body,
		"sentAt":  time.Now().UTC().Format(time.RFC3339),
		"service": "polyratings-api",
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode notification payload")
		return
	}

	if err := s.conn.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.subject).Msg("failed to publish notification")
	}
}
