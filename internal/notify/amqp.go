// Package notify publishes scan summaries to an AMQP exchange.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/ManuGH/sportsdvr/internal/dvr"
	"github.com/ManuGH/sportsdvr/internal/log"
)

var _ dvr.Notifier = (*Publisher)(nil)

// ContentType of published messages.
const ContentType = "application/json"

// Summary is the message body published after each scan.
type Summary struct {
	RunID      string         `json:"run_id"`
	Trigger    string         `json:"trigger"`
	Mode       string         `json:"mode"`
	Status     string         `json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	WindowFrom time.Time      `json:"window_from"`
	WindowTo   time.Time      `json:"window_to"`
	Summary    dvr.RunSummary `json:"summary"`
	Errors     int            `json:"errors"`
}

// NewSummary condenses a run report into a message body.
func NewSummary(r *dvr.RunReport) Summary {
	return Summary{
		RunID:      r.RunID,
		Trigger:    r.Trigger,
		Mode:       r.Mode,
		Status:     r.Status,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		WindowFrom: r.WindowFrom,
		WindowTo:   r.WindowTo,
		Summary:    r.Summary,
		Errors:     len(r.Errors) + r.ErrorsDropped,
	}
}

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// dialer opens a channel and returns a closer for its connection.
type dialer func(url string) (channel, func() error, error)

func dialAMQP(url string) (channel, func() error, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return ch, conn.Close, nil
}

// Publisher sends run summaries to a topic exchange. The connection is
// opened lazily and re-opened after a failed publish.
type Publisher struct {
	url        string
	exchange   string
	routingKey string
	dial       dialer
	logger     zerolog.Logger

	mu        sync.Mutex
	ch        channel
	closeConn func() error
}

// NewPublisher creates a publisher for the broker at url.
func NewPublisher(url, exchange, routingKey string) *Publisher {
	return &Publisher{
		url:        url,
		exchange:   exchange,
		routingKey: routingKey,
		dial:       dialAMQP,
		logger:     log.WithComponent("notify"),
	}
}

// PublishReport publishes the summary of r as a persistent message.
func (p *Publisher) PublishReport(ctx context.Context, r *dvr.RunReport) error {
	if r == nil {
		return nil
	}
	body, err := json.Marshal(NewSummary(r))
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}
	msg := amqp.Publishing{
		ContentType:  ContentType,
		DeliveryMode: amqp.Persistent,
		MessageId:    r.RunID,
		Timestamp:    r.FinishedAt,
		Type:         "scan." + r.Status,
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return err
	}
	if err := ch.PublishWithContext(ctx, p.exchange, p.routingKey, false, false, msg); err != nil {
		_ = p.resetLocked()
		return fmt.Errorf("publish summary: %w", err)
	}
	p.logger.Debug().Str(log.FieldRunID, r.RunID).Str("exchange", p.exchange).Msg("scan summary published")
	return nil
}

func (p *Publisher) channelLocked() (channel, error) {
	if p.ch != nil {
		return p.ch, nil
	}
	ch, closeConn, err := p.dial(p.url)
	if err != nil {
		return nil, fmt.Errorf("connect amqp: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = closeConn()
		return nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.ch, p.closeConn = ch, closeConn
	return ch, nil
}

func (p *Publisher) resetLocked() error {
	if p.ch == nil {
		return nil
	}
	err := errors.Join(p.ch.Close(), p.closeConn())
	p.ch, p.closeConn = nil, nil
	return err
}

// Close releases the broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resetLocked()
}
