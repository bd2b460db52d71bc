package notification

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/pushgateway"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

var testLocation = time.FixedZone("CEST", 2*3600)

func sampleEvent(eventType domain.NotificationType) domain.NotificationEvent {
	return domain.NotificationEvent{
		ID:         "evt-1",
		Type:       eventType,
		OccurredAt: time.Date(2030, 6, 1, 8, 0, 0, 0, time.UTC),
		Booking: domain.Booking{
			ID:            "booking-1",
			BusinessID:    "business-1",
			StaffName:     "Анна",
			StartTime:     time.Date(2030, 6, 3, 8, 0, 0, 0, time.UTC),
			EndTime:       time.Date(2030, 6, 3, 9, 0, 0, 0, time.UTC),
			Status:        domain.StatusConfirmed,
			TotalPrice:    40,
			CustomerName:  "Мария",
			CustomerEmail: "maria@example.com",
			Items: []domain.BookingItem{
				{ServiceName: "Стрижка"},
				{ServiceName: "Борода"},
			},
		},
	}
}

type recordingChannel struct {
	name string
	err  error

	mu     sync.Mutex
	events []domain.NotificationEvent
}

func (c *recordingChannel) Name() string { return c.name }

func (c *recordingChannel) Send(_ context.Context, event domain.NotificationEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return c.err
}

func (c *recordingChannel) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// blockingChannel держит первую отправку, пока не закрыт release
type blockingChannel struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once

	mu    sync.Mutex
	count int
}

func (c *blockingChannel) Name() string { return "blocking" }

func (c *blockingChannel) Send(_ context.Context, _ domain.NotificationEvent) error {
	c.once.Do(func() { close(c.started) })
	<-c.release
	c.mu.Lock()
	c.count++
	c.mu.Unlock()
	return nil
}

type recordingMetrics struct {
	mu      sync.Mutex
	results map[string]int
}

func (m *recordingMetrics) ObserveNotification(channel string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.results == nil {
		m.results = make(map[string]int)
	}
	key := channel + ":ok"
	if err != nil {
		key = channel + ":error"
	}
	m.results[key]++
}

func TestDispatcher_DeliversToAllChannels(t *testing.T) {
	email := &recordingChannel{name: "email"}
	push := &recordingChannel{name: "push", err: errors.New("gateway down")}
	metrics := &recordingMetrics{}

	d := NewDispatcher(Config{Workers: 2, QueueSize: 10, SendTimeout: time.Second}, metrics, logger.NewDiscard(), email, push)

	d.Notify(sampleEvent(domain.NotificationBookingConfirmed))
	d.Notify(sampleEvent(domain.NotificationBookingCancelled))

	require.NoError(t, d.Close(context.Background()))

	assert.Equal(t, 2, email.count())
	assert.Equal(t, 2, push.count(), "a failing channel does not stop delivery")
	assert.Equal(t, 2, metrics.results["email:ok"])
	assert.Equal(t, 2, metrics.results["push:error"])
}

func TestDispatcher_DropsWhenQueueFull(t *testing.T) {
	ch := &blockingChannel{started: make(chan struct{}), release: make(chan struct{})}
	d := NewDispatcher(Config{Workers: 1, QueueSize: 1, SendTimeout: time.Second}, nil, logger.NewDiscard(), ch)

	require.True(t, d.Notify(sampleEvent(domain.NotificationBookingConfirmed)))
	<-ch.started

	accepted := make(chan []bool, 1)
	go func() {
		accepted <- []bool{
			d.Notify(sampleEvent(domain.NotificationBookingConfirmed)), // в очередь
			d.Notify(sampleEvent(domain.NotificationBookingConfirmed)), // отброшено
		}
	}()

	select {
	case got := <-accepted:
		assert.Equal(t, []bool{true, false}, got)
	case <-time.After(time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(ch.release)
	require.NoError(t, d.Close(context.Background()))

	ch.mu.Lock()
	defer ch.mu.Unlock()
	assert.Equal(t, 2, ch.count)
}

func TestDispatcher_NotifyAfterCloseIsIgnored(t *testing.T) {
	ch := &recordingChannel{name: "email"}
	d := NewDispatcher(Config{}, nil, logger.NewDiscard(), ch)

	require.NoError(t, d.Close(context.Background()))
	require.NoError(t, d.Close(context.Background()))

	assert.NotPanics(t, func() {
		assert.False(t, d.Notify(sampleEvent(domain.NotificationBookingConfirmed)))
	})
	assert.Equal(t, 0, ch.count())
}

type fakeSender struct {
	to, subject, body string
	err               error
}

func (s *fakeSender) Send(to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	return s.err
}

func TestEmailChannel_RendersInBusinessTime(t *testing.T) {
	sender := &fakeSender{}
	ch := NewEmailChannel(sender, testLocation)

	require.NoError(t, ch.Send(context.Background(), sampleEvent(domain.NotificationBookingConfirmed)))

	assert.Equal(t, "maria@example.com", sender.to)
	assert.Equal(t, "Запись подтверждена", sender.subject)
	assert.Contains(t, sender.body, "03.06.2030")
	assert.Contains(t, sender.body, "10:00")
	assert.Contains(t, sender.body, "Стрижка, Борода")
	assert.Contains(t, sender.body, "40.00")
}

func TestEmailChannel_Errors(t *testing.T) {
	ch := NewEmailChannel(&fakeSender{err: errors.New("smtp down")}, testLocation)
	assert.Error(t, ch.Send(context.Background(), sampleEvent(domain.NotificationBookingReminder)))

	event := sampleEvent(domain.NotificationBookingReminder)
	event.Booking.CustomerEmail = ""
	assert.Error(t, NewEmailChannel(&fakeSender{}, testLocation).Send(context.Background(), event))

	event = sampleEvent("unknown")
	assert.Error(t, NewEmailChannel(&fakeSender{}, testLocation).Send(context.Background(), event))
}

func TestBuildMessage(t *testing.T) {
	msg := buildMessage("salon@example.com", "maria@example.com", "Тема", "Текст")

	assert.True(t, strings.HasPrefix(msg, "From: salon@example.com\r\nTo: maria@example.com\r\nSubject: Тема\r\n"))
	assert.Contains(t, msg, "charset=utf-8\r\n\r\nТекст\r\n")
}

type fakeSubscriptions struct {
	subs    []domain.PushSubscription
	deleted []int64
}

func (f *fakeSubscriptions) ListByEmail(_ context.Context, _, _ string) ([]domain.PushSubscription, error) {
	return f.subs, nil
}

func (f *fakeSubscriptions) Delete(_ context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakePushClient struct {
	results map[string]error
	sent    []string
}

func (f *fakePushClient) Send(_ context.Context, msg *pushgateway.Message) error {
	var sub struct {
		Endpoint string `json:"endpoint"`
	}
	_ = json.Unmarshal(msg.Subscription, &sub)
	f.sent = append(f.sent, sub.Endpoint)
	return f.results[sub.Endpoint]
}

func TestPushChannel_DeletesExpiredSubscriptions(t *testing.T) {
	store := &fakeSubscriptions{subs: []domain.PushSubscription{
		{ID: 1, Subscription: json.RawMessage(`{"endpoint":"a"}`)},
		{ID: 2, Subscription: json.RawMessage(`{"endpoint":"b"}`)},
	}}
	client := &fakePushClient{results: map[string]error{"b": pushgateway.ErrSubscriptionExpired}}
	ch := NewPushChannel(store, client, testLocation, logger.NewDiscard())

	err := ch.Send(context.Background(), sampleEvent(domain.NotificationBookingConfirmed))

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, client.sent)
	assert.Equal(t, []int64{2}, store.deleted)
}

func TestPushChannel_ReportsDeliveryErrors(t *testing.T) {
	store := &fakeSubscriptions{subs: []domain.PushSubscription{
		{ID: 1, Subscription: json.RawMessage(`{"endpoint":"a"}`)},
	}}
	client := &fakePushClient{results: map[string]error{"a": pushgateway.ErrInvalidResponse}}
	ch := NewPushChannel(store, client, testLocation, logger.NewDiscard())

	err := ch.Send(context.Background(), sampleEvent(domain.NotificationBookingConfirmed))

	assert.ErrorIs(t, err, pushgateway.ErrInvalidResponse)
	assert.Empty(t, store.deleted)
}

func TestPushChannel_NoSubscriptions(t *testing.T) {
	client := &fakePushClient{}
	ch := NewPushChannel(&fakeSubscriptions{}, client, testLocation, logger.NewDiscard())

	require.NoError(t, ch.Send(context.Background(), sampleEvent(domain.NotificationBookingConfirmed)))
	assert.Empty(t, client.sent)
}

type fakeWriter struct {
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaChannel_WritesEventWithHeaders(t *testing.T) {
	writer := &fakeWriter{}
	ch := NewKafkaChannelWithWriter(writer, "booking-events")

	require.NoError(t, ch.Send(context.Background(), sampleEvent(domain.NotificationBookingCancelled)))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, "booking-1", string(msg.Key))
	assert.Equal(t, []kafka.Header{
		{Key: "event_id", Value: []byte("evt-1")},
		{Key: "event_type", Value: []byte("booking_cancelled")},
	}, msg.Headers)

	var payload bookingEventPayload
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "booking-1", payload.BookingID)
	assert.Equal(t, "booking_cancelled", payload.EventType)

	require.NoError(t, ch.Close())
	assert.True(t, writer.closed)
}

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, SplitBrokers(" k1:9092, ,k2:9092 "))
	assert.Nil(t, SplitBrokers(""))
}
