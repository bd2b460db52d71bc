package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// MessageWriter часть kafka.Writer, нужная каналу
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaChannel публикует события бронирований для внешних потребителей
type KafkaChannel struct {
	writer MessageWriter
	topic  string
}

// NewKafkaChannel создает канал с writer'ом на брокеры
func NewKafkaChannel(brokers []string, topic string) *KafkaChannel {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:  brokers,
		Topic:    topic,
		Balancer: &kafka.Hash{},
	})
	return NewKafkaChannelWithWriter(writer, topic)
}

// NewKafkaChannelWithWriter создает канал поверх готового writer'а
func NewKafkaChannelWithWriter(writer MessageWriter, topic string) *KafkaChannel {
	return &KafkaChannel{writer: writer, topic: topic}
}

func (c *KafkaChannel) Name() string { return "kafka" }

type bookingEventPayload struct {
	EventID       string    `json:"eventId"`
	EventType     string    `json:"eventType"`
	OccurredAt    time.Time `json:"occurredAt"`
	BookingID     string    `json:"bookingId"`
	BusinessID    string    `json:"businessId"`
	CustomerID    string    `json:"customerId"`
	StaffID       string    `json:"staffId"`
	Status        string    `json:"status"`
	StartTime     time.Time `json:"startTime"`
	EndTime       time.Time `json:"endTime"`
	TotalPrice    float64   `json:"totalPrice"`
	CustomerEmail string    `json:"customerEmail"`
}

// Send пишет событие, ключ сообщения ID бронирования
func (c *KafkaChannel) Send(ctx context.Context, event domain.NotificationEvent) error {
	b := event.Booking
	payload, err := json.Marshal(bookingEventPayload{
		EventID:       event.ID,
		EventType:     string(event.Type),
		OccurredAt:    event.OccurredAt.UTC(),
		BookingID:     b.ID,
		BusinessID:    b.BusinessID,
		CustomerID:    b.CustomerID,
		StaffID:       b.StaffID,
		Status:        string(b.Status),
		StartTime:     b.StartTime.UTC(),
		EndTime:       b.EndTime.UTC(),
		TotalPrice:    b.TotalPrice,
		CustomerEmail: b.CustomerEmail,
	})
	if err != nil {
		return fmt.Errorf("notification: encode kafka event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(b.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID)},
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := c.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("notification: write to %s: %w", c.topic, err)
	}
	return nil
}

func (c *KafkaChannel) Close() error {
	return c.writer.Close()
}

// SplitBrokers разбирает список брокеров через запятую
func SplitBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
