package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sharovik/internal/domain"
	"sharovik/internal/events"
	"sharovik/internal/models"

	"github.com/rs/zerolog"
)

// CommentService lets users review items they have actually rented. The
// authorship gate lives in the booking engine and is reached through
// domain.BookingQueries.
type CommentService struct {
	store    domain.CommentStore
	items    domain.ItemLookup
	users    domain.UserLookup
	bookings domain.BookingQueries
	eventBus domain.EventPublisher
	logger   *zerolog.Logger
}

func NewCommentService(store domain.CommentStore, items domain.ItemLookup, users domain.UserLookup,
	bookings domain.BookingQueries, eventBus domain.EventPublisher, logger *zerolog.Logger) *CommentService {
	return &CommentService{
		store:    store,
		items:    items,
		users:    users,
		bookings: bookings,
		eventBus: eventBus,
		logger:   logger,
	}
}

// Add stores a comment if the author has a booking of the item that already
// ended. Users who never rented the item, or whose booking is still running,
// are turned away.
func (s *CommentService) Add(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("comment text is required: %w", domain.ErrInvalidArgument)
	}

	if _, err := s.items.GetItem(ctx, itemID); err != nil {
		return nil, err
	}
	author, err := s.users.GetUser(ctx, authorID)
	if err != nil {
		return nil, err
	}

	ok, err := s.bookings.HasCompletedBookingFor(ctx, itemID, authorID, time.Now())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("user %d has no finished booking of item %d: %w",
			authorID, itemID, domain.ErrInvalidState)
	}

	comment := &models.Comment{
		ItemID:     itemID,
		AuthorID:   authorID,
		AuthorName: author.Name,
		Text:       text,
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("comment_id", comment.ID).Int64("item_id", itemID).
		Int64("author_id", authorID).Msg("comment added")

	if s.eventBus != nil {
		if err := s.eventBus.PublishJSON(events.EventCommentAdded, comment); err != nil {
			s.logger.Error().Err(err).Int64("comment_id", comment.ID).Msg("publish event error")
		}
	}
	return comment, nil
}

func (s *CommentService) ListByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	return s.store.ListCommentsByItem(ctx, itemID)
}
