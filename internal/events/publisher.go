package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/senyabanana/freelance-match/internal/models"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const ExchangeName = "engagement"

// Publisher публикует события жизненного цикла проектов.
type Publisher interface {
	Publish(ctx context.Context, event models.EngagementEvent) error
}

// NopPublisher используется, когда брокер не настроен.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.EngagementEvent) error { return nil }

// AMQPPublisher публикует события в topic exchange RabbitMQ.
// Тип события используется как routing key. Закрытое соединение
// восстанавливается при следующей публикации.
type AMQPPublisher struct {
	url    string
	logger *zap.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
}

// NewAMQPPublisher подключается к брокеру и объявляет exchange.
func NewAMQPPublisher(url string, logger *zap.Logger) (*AMQPPublisher, error) {
	p := &AMQPPublisher{url: url, logger: logger}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

// connect открывает соединение и канал. Вызывается под p.mu или до публикации.
func (p *AMQPPublisher) connect() error {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	go p.watch(conn.NotifyClose(make(chan *amqp091.Error, 1)))
	return nil
}

// watch логирует потерю соединения.
func (p *AMQPPublisher) watch(closed <-chan *amqp091.Error) {
	if err, ok := <-closed; ok && err != nil {
		p.logger.Warn("rabbitmq connection closed, reconnecting on next publish",
			zap.String("reason", err.Reason),
			zap.Int("code", err.Code),
		)
	}
}

// Publish сериализует событие в JSON и отправляет его с постоянной доставкой.
func (p *AMQPPublisher) Publish(ctx context.Context, event models.EngagementEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected() {
		p.closeLocked()
		if err := p.connect(); err != nil {
			return err
		}
		p.logger.Info("rabbitmq connection restored")
	}

	return p.channel.PublishWithContext(
		ctx,
		ExchangeName,
		string(event.Type),
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.OccurredAt,
		},
	)
}

func (p *AMQPPublisher) connected() bool {
	return p.conn != nil && p.channel != nil && !p.conn.IsClosed() && !p.channel.IsClosed()
}

// IsConnected проверяет, что соединение с брокером не закрыто.
func (p *AMQPPublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected()
}

func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *AMQPPublisher) closeLocked() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Recorder запоминает опубликованные события. Используется в тестах.
type Recorder struct {
	mu     sync.Mutex
	events []models.EngagementEvent
	Err    error
}

func (r *Recorder) Publish(_ context.Context, event models.EngagementEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, event)
	return nil
}

// Types возвращает типы опубликованных событий в порядке публикации.
func (r *Recorder) Types() []models.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]models.EventType, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
