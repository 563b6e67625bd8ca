package notify

import (
	"testing"
	"time"

	"sharovik/internal/events"
	"sharovik/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, f.err
}

func newNotifier(sender *fakeSender) (*TelegramNotifier, *events.EventBus) {
	logger := zerolog.Nop()
	n := NewTelegramNotifier(sender, 42, &logger)
	bus := events.NewEventBus()
	n.SubscribeAll(bus)
	return n, bus
}

func TestTelegramNotifier_BookingEvents(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newNotifier(sender)

	payload := events.BookingEventPayload{
		BookingID: 7,
		ItemName:  "Drill",
		BookerID:  20,
		OwnerID:   10,
		Start:     time.Now(),
		End:       time.Now().Add(time.Hour),
	}

	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, payload))
	require.NoError(t, bus.PublishJSON(events.EventBookingApproved, payload))
	require.NoError(t, bus.PublishJSON(events.EventBookingRejected, payload))

	require.Len(t, sender.sent, 3)
	first, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), first.ChatID)
	assert.Contains(t, first.Text, "Drill")
	assert.Contains(t, first.Text, "#7")
}

func TestTelegramNotifier_CommentEvent(t *testing.T) {
	sender := &fakeSender{}
	_, bus := newNotifier(sender)

	comment := models.Comment{ItemID: 1, AuthorName: "Renter", Text: "works great"}
	require.NoError(t, bus.PublishJSON(events.EventCommentAdded, comment))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0].(tgbotapi.MessageConfig)
	assert.Contains(t, msg.Text, "Renter")
	assert.Contains(t, msg.Text, "works great")
}

func TestTelegramNotifier_BadPayload(t *testing.T) {
	sender := &fakeSender{}
	n, _ := newNotifier(sender)

	err := n.handleBookingEvent(&events.Event{Type: events.EventBookingCreated, Payload: []byte("{broken")})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}
