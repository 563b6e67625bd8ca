package notify

import (
	"encoding/json"
	"fmt"

	"sharovik/internal/config"
	"sharovik/internal/domain"
	"sharovik/internal/events"
	"sharovik/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier forwards booking lifecycle events to an ops chat.
type TelegramNotifier struct {
	sender domain.TelegramSender
	chatID int64
	logger *zerolog.Logger
}

func NewBotAPI(cfg config.TelegramConfig) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = cfg.Debug
	return bot, nil
}

func NewTelegramNotifier(sender domain.TelegramSender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		sender: sender,
		chatID: chatID,
		logger: logger,
	}
}

// SubscribeAll wires the notifier to the booking and comment events.
func (n *TelegramNotifier) SubscribeAll(bus *events.EventBus) {
	bus.Subscribe(events.EventBookingCreated, n.handleBookingEvent)
	bus.Subscribe(events.EventBookingApproved, n.handleBookingEvent)
	bus.Subscribe(events.EventBookingRejected, n.handleBookingEvent)
	bus.Subscribe(events.EventCommentAdded, n.handleCommentEvent)
}

func (n *TelegramNotifier) handleBookingEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode booking event")
		return err
	}

	var text string
	switch event.Type {
	case events.EventBookingCreated:
		text = fmt.Sprintf("New booking #%d: %s\n%s — %s\nbooker %d, awaiting owner %d",
			payload.BookingID, payload.ItemName,
			payload.Start.Format("02.01.2006 15:04"), payload.End.Format("02.01.2006 15:04"),
			payload.BookerID, payload.OwnerID)
	case events.EventBookingApproved:
		text = fmt.Sprintf("Booking #%d approved: %s for booker %d",
			payload.BookingID, payload.ItemName, payload.BookerID)
	case events.EventBookingRejected:
		text = fmt.Sprintf("Booking #%d rejected: %s for booker %d",
			payload.BookingID, payload.ItemName, payload.BookerID)
	default:
		return nil
	}

	return n.send(text)
}

func (n *TelegramNotifier) handleCommentEvent(event *events.Event) error {
	var comment models.Comment
	if err := json.Unmarshal(event.Payload, &comment); err != nil {
		n.logger.Error().Err(err).Msg("decode comment event")
		return err
	}

	text := fmt.Sprintf("New comment on item %d by %s:\n%s",
		comment.ItemID, comment.AuthorName, comment.Text)
	return n.send(text)
}

func (n *TelegramNotifier) send(text string) error {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Msg("telegram send failed")
		return err
	}
	return nil
}
