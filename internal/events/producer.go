package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// BookingEvent is published on every booking state transition so downstream
// consumers (notifications, analytics) can react without polling the API.
type BookingEvent struct {
	BookingID     string    `json:"booking_id"`
	RideRequestID string    `json:"ride_request_id,omitempty"`
	Status        string    `json:"status"`
	DriverID      string    `json:"driver_id,omitempty"`
	PassengerID   string    `json:"passenger_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Producer interface {
	PublishBookingEvent(ctx context.Context, event BookingEvent) error
	Close() error
}

type KafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

func (p *KafkaProducer) PublishBookingEvent(ctx context.Context, event BookingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.BookingID),
		Value: data,
	})
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// NoopProducer is used when Kafka is disabled.
type NoopProducer struct{}

func (NoopProducer) PublishBookingEvent(ctx context.Context, event BookingEvent) error { return nil }
func (NoopProducer) Close() error                                                      { return nil }

// Publish fires the event in the background and logs failures. Booking flow
// must not block on the broker.
func Publish(producer Producer, event BookingEvent) {
	if producer == nil {
		return
	}
	go func() {
		if err := producer.PublishBookingEvent(context.Background(), event); err != nil {
			log.Printf("failed to publish booking event %s/%s: %v", event.BookingID, event.Status, err)
		}
	}()
}
