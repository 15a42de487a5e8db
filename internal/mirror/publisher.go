package mirror

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/hireloop/interview-service/internal/domain"
)

// exchange is the fanout exchange reporting consumers bind against.
const exchange = "interview.sessions"

// Publisher mirrors session events into RabbitMQ for the reporting store.
// Publication is best-effort: the core never waits on, or fails because of,
// the mirror.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *slog.Logger
}

// NewPublisher connects to RabbitMQ and declares the session exchange.
func NewPublisher(amqpURL string, logger *slog.Logger) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, logger: logger}, nil
}

type sessionEvent struct {
	Event      string                   `json:"event"`
	OccurredAt time.Time                `json:"occurredAt"`
	Session    *domain.InterviewSession `json:"session"`
}

// SessionEvent publishes one session event. Errors are logged and dropped.
func (p *Publisher) SessionEvent(event string, s *domain.InterviewSession) {
	body, err := json.Marshal(sessionEvent{
		Event:      event,
		OccurredAt: time.Now().UTC(),
		Session:    s,
	})
	if err != nil {
		p.logger.Error("failed to encode session event", "event", event, "error", err)
		return
	}

	err = p.channel.Publish(exchange, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		p.logger.Warn("failed to mirror session event",
			"event", event, "session_id", s.ID, "error", err)
	}
}

// Close closes the RabbitMQ channel and connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
