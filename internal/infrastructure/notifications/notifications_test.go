package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"booking_reconciliation/internal/domain/entities"
	mock_interfaces "booking_reconciliation/internal/usecase/interfaces/mocks"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/mock/gomock"
)

func sampleDetails() entities.BookingDetails {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	return entities.BookingDetails{
		Booking: entities.Booking{
			ID: "b-1", TenantID: "t1", ServiceID: "s1", StaffID: "st1",
			ClientName: "Jane Doe", ClientEmail: "jane@example.com",
			StartTime: start, EndTime: start.Add(time.Hour),
			TotalAmount: 4500, Currency: "BRL", Status: entities.BookingStatusConfirmed,
		},
		Payment: entities.Payment{
			ID: "p-1", BookingID: "b-1", Amount: 4500, FeeAmount: 225, NetAmount: 4275,
			Currency: "BRL", Status: entities.PaymentStatusCompleted, TransactionID: "pi_123",
		},
		Tenant:  entities.Tenant{ID: "t1", Name: "Studio", Address: "Rua A, 10"},
		Service: entities.Service{ID: "s1", TenantID: "t1", Name: "Cut"},
		Staff:   entities.Staff{ID: "st1", TenantID: "t1", FirstName: "Ana", LastName: "Lima"},
	}
}

func TestFormatConfirmation(t *testing.T) {
	msg := FormatConfirmation(sampleDetails())
	for _, want := range []string{
		"Hi Jane Doe",
		"Service: Cut",
		"With: Ana Lima",
		"Sat, 01 Mar 2025 10:00 UTC - 11:00 UTC",
		"Where: Studio, Rua A, 10",
		"Paid: 45.00 BRL (ref pi_123)",
		"Booking: b-1",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("confirmation missing %q:\n%s", want, msg)
		}
	}
}

func TestLogNotifier_Send(t *testing.T) {
	var logged string
	n := &LogNotifier{logf: func(format string, v ...any) { logged = fmt.Sprintf(format, v...) }}

	if err := n.Send(context.Background(), sampleDetails()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(logged, "to=jane@example.com") || !strings.Contains(logged, "booking_id=b-1") {
		t.Fatalf("unexpected log line: %s", logged)
	}

	d := sampleDetails()
	d.Booking.ClientEmail = ""
	if err := n.Send(context.Background(), d); err == nil {
		t.Fatal("expected error for missing email")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := n.Send(ctx, sampleDetails()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPNotifier_Send(t *testing.T) {
	ch := &fakeChannel{}
	n := &AMQPNotifier{ch: ch, exchange: "booking.exchange", routingKey: "booking.confirmed"}

	if err := n.Send(context.Background(), sampleDetails()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ch.exchange != "booking.exchange" || ch.key != "booking.confirmed" {
		t.Fatalf("unexpected routing exchange=%s key=%s", ch.exchange, ch.key)
	}
	if ch.msg.ContentType != "application/json" || ch.msg.MessageId != "b-1" || ch.msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("unexpected publishing: %+v", ch.msg)
	}

	var ev BookingConfirmedEvent
	if err := json.Unmarshal(ch.msg.Body, &ev); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if ev.BookingID != "b-1" || ev.TransactionID != "pi_123" || ev.Amount != 4500 || ev.StaffName != "Ana Lima" {
		t.Fatalf("unexpected event: %+v", ev)
	}

	if err := n.Close(); err != nil || !ch.closed {
		t.Fatalf("expected channel closed, err=%v", err)
	}
}

func TestAMQPNotifier_PublishError(t *testing.T) {
	brokerErr := errors.New("channel closed")
	n := &AMQPNotifier{ch: &fakeChannel{err: brokerErr}, exchange: "x", routingKey: "k"}
	if err := n.Send(context.Background(), sampleDetails()); !errors.Is(err, brokerErr) {
		t.Fatalf("expected broker error, got %v", err)
	}
}

func TestAsyncNotifier_DeliversInBackground(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	next := mock_interfaces.NewMockINotificationDispatcher(ctrl)
	next.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, d entities.BookingDetails) error {
		if ctx.Err() != nil {
			t.Errorf("send context already done: %v", ctx.Err())
		}
		if _, ok := ctx.Deadline(); !ok {
			t.Error("expected send deadline")
		}
		return errors.New("smtp down")
	})

	n := NewAsyncNotifier(next, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	if err := n.Send(ctx, sampleDetails()); err != nil {
		t.Fatalf("async send must not fail, got %v", err)
	}
	cancel()
	n.Wait()
}

type panicNotifier struct{ calls atomic.Int32 }

func (p *panicNotifier) Send(context.Context, entities.BookingDetails) error {
	p.calls.Add(1)
	panic("boom")
}

func TestAsyncNotifier_RecoversPanic(t *testing.T) {
	p := &panicNotifier{}
	n := NewAsyncNotifier(p, time.Second)
	for i := 0; i < 3; i++ {
		if err := n.Send(context.Background(), sampleDetails()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := n.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if got := p.calls.Load(); got != 3 {
		t.Fatalf("expected 3 sends, got %d", got)
	}
}

func TestAsyncNotifier_CloseClosesWrapped(t *testing.T) {
	ch := &fakeChannel{}
	n := NewAsyncNotifier(&AMQPNotifier{ch: ch, exchange: "x", routingKey: "k"}, time.Second)
	if err := n.Send(context.Background(), sampleDetails()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if !ch.closed || ch.msg.MessageId != "b-1" {
		t.Fatalf("expected published and closed, got %+v closed=%v", ch.msg, ch.closed)
	}
}
