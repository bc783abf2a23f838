package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"booking_reconciliation/internal/domain/entities"
	"booking_reconciliation/internal/usecase/interfaces"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BookingConfirmedEvent is the message body published on the booking exchange.
// Amounts are minor units.
type BookingConfirmedEvent struct {
	BookingID     string    `json:"booking_id"`
	PaymentID     string    `json:"payment_id"`
	TransactionID string    `json:"transaction_id"`
	TenantID      string    `json:"tenant_id"`
	TenantName    string    `json:"tenant_name"`
	ServiceName   string    `json:"service_name"`
	StaffName     string    `json:"staff_name"`
	ClientName    string    `json:"client_name"`
	ClientEmail   string    `json:"client_email"`
	ClientPhone   string    `json:"client_phone,omitempty"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	Message       string    `json:"message"`
}

func NewBookingConfirmedEvent(d entities.BookingDetails) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		BookingID:     d.Booking.ID,
		PaymentID:     d.Payment.ID,
		TransactionID: d.Payment.TransactionID,
		TenantID:      d.Booking.TenantID,
		TenantName:    d.Tenant.Name,
		ServiceName:   d.Service.Name,
		StaffName:     d.StaffFullName(),
		ClientName:    d.Booking.ClientName,
		ClientEmail:   d.Booking.ClientEmail,
		ClientPhone:   d.Booking.ClientPhone,
		StartTime:     d.Booking.StartTime.UTC(),
		EndTime:       d.Booking.EndTime.UTC(),
		Amount:        int64(d.Payment.Amount),
		Currency:      d.Payment.Currency,
		Message:       FormatConfirmation(d),
	}
}

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPNotifier publishes a BookingConfirmedEvent to a topic exchange; the mail worker
// consuming it is owned by another service.
type AMQPNotifier struct {
	conn       *amqp.Connection
	ch         amqpChannel
	exchange   string
	routingKey string
}

var _ interfaces.INotificationDispatcher = (*AMQPNotifier)(nil)

func NewAMQPNotifier(url, exchange, routingKey string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	log.Printf("[notification][amqp] connected exchange=%s routing_key=%s", exchange, routingKey)
	return &AMQPNotifier{conn: conn, ch: ch, exchange: exchange, routingKey: routingKey}, nil
}

func (n *AMQPNotifier) Send(ctx context.Context, d entities.BookingDetails) error {
	body, err := json.Marshal(NewBookingConfirmedEvent(d))
	if err != nil {
		return fmt.Errorf("encode booking event: %w", err)
	}
	err = n.ch.PublishWithContext(ctx, n.exchange, n.routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    d.Booking.ID,
		Timestamp:    time.Now().UTC(),
		Type:         n.routingKey,
		Body:         body,
	})
	if err != nil {
		log.Printf("[notification][amqp] publish failed booking_id=%s err=%v", d.Booking.ID, err)
		return fmt.Errorf("publish booking event: %w", err)
	}
	log.Printf("[notification][amqp] published booking_id=%s routing_key=%s", d.Booking.ID, n.routingKey)
	return nil
}

func (n *AMQPNotifier) Close() error {
	if n.ch != nil {
		_ = n.ch.Close()
	}
	if n.conn != nil {
		return n.conn.Close()
	}
	return nil
}
