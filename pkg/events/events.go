package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
	"holdem-server/pkg/model"
)

// Publisher announces actions that have been applied to a hand
// Publish is called after the action is committed.
type Publisher interface {
	Publish(ctx context.Context, a *model.HandAction) error
}

// RoutingKey returns the routing key for the hand's actions
func RoutingKey(handID string) string {
	return "hand." + handID
}

// LogPublisher writes each action to the logger
type LogPublisher struct {
	logger logrus.FieldLogger
}

// NewLogPublisher returns a publisher that logs at the debug level
func NewLogPublisher(logger logrus.FieldLogger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the action
func (l *LogPublisher) Publish(ctx context.Context, a *model.HandAction) error {
	fields := logrus.Fields{
		"hand":     a.HandID,
		"sequence": a.Sequence,
		"action":   string(a.Action),
		"stage":    a.Stage.String(),
	}

	if a.PlayerID != 0 {
		fields["player"] = a.PlayerID
	}

	if len(a.Cards) > 0 {
		fields["cards"] = a.Cards
	}

	l.logger.WithFields(fields).Debug(a.Action.LogMessage(a.Amount))
	return nil
}

// Multi publishes to several publishers
// Every publisher is called. The first error is returned.
type Multi []Publisher

// Publish publishes to each publisher
func (m Multi) Publish(ctx context.Context, a *model.HandAction) error {
	var first error
	for _, p := range m {
		if err := p.Publish(ctx, a); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// AMQPPublisher publishes actions to a topic exchange
type AMQPPublisher struct {
	mu         sync.Mutex
	connection *amqp.Connection
	channel    *amqp.Channel
	exchange   string
}

// NewAMQPPublisher connects to the broker and declares the exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	connection, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := connection.Channel()
	if err != nil {
		_ = connection.Close()
		return nil, err
	}

	if err := channel.ExchangeDeclare(
		exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = connection.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &AMQPPublisher{
		connection: connection,
		channel:    channel,
		exchange:   exchange,
	}, nil
}

// Publish sends the action as JSON
func (p *AMQPPublisher) Publish(ctx context.Context, a *model.HandAction) error {
	msg, err := newMessage(a)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.channel.Publish(p.exchange, RoutingKey(a.HandID), false, false, msg); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	return nil
}

func newMessage(a *model.HandAction) (amqp.Publishing, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return amqp.Publishing{}, err
	}

	return amqp.Publishing{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		Body:            body,
		DeliveryMode:    amqp.Persistent,
		Timestamp:       time.Now(),
		Type:            string(a.Action),
		MessageId:       fmt.Sprintf("%s:%d", a.HandID, a.Sequence),
	}, nil
}

// Close closes the connection to the broker
func (p *AMQPPublisher) Close() error {
	return p.connection.Close()
}
