package service

import (
	"context"
	"fmt"
	"time"

	"sharovik/internal/domain"
	"sharovik/internal/events"
	"sharovik/internal/metrics"
	"sharovik/internal/models"
	"sharovik/internal/pagination"

	"github.com/rs/zerolog"
)

// BookingService is the booking lifecycle and availability engine. It owns
// the WAITING → APPROVED | REJECTED state machine and the time-windowed
// queries; item and user records are reached only through the narrow lookup
// interfaces.
type BookingService struct {
	store      domain.BookingStore
	items      domain.ItemLookup
	users      domain.UserLookup
	eventBus   domain.EventPublisher
	syncWorker domain.SyncWorker
	logger     *zerolog.Logger
}

func NewBookingService(store domain.BookingStore, items domain.ItemLookup, users domain.UserLookup,
	eventBus domain.EventPublisher, syncWorker domain.SyncWorker, logger *zerolog.Logger) *BookingService {
	return &BookingService{
		store:      store,
		items:      items,
		users:      users,
		eventBus:   eventBus,
		syncWorker: syncWorker,
		logger:     logger,
	}
}

// Create validates and persists a new WAITING booking. The checks run in a
// fixed order, each with its own failure kind: period validity, item
// existence, self-booking, item availability.
func (s *BookingService) Create(ctx context.Context, bookerID int64, itemID int64, start, end time.Time) (*models.Booking, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("booking must end after it starts: %w", domain.ErrInvalidRange)
	}

	item, err := s.items.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == bookerID {
		return nil, fmt.Errorf("owner cannot book own item %d: %w", itemID, domain.ErrForbidden)
	}

	if !item.Available {
		return nil, fmt.Errorf("item %d is not available: %w", itemID, domain.ErrInvalidState)
	}

	if _, err := s.users.GetUser(ctx, bookerID); err != nil {
		return nil, err
	}

	booking := &models.Booking{
		ItemID:   item.ID,
		ItemName: item.Name,
		BookerID: bookerID,
		Start:    start,
		End:      end,
		Status:   models.StatusWaiting,
	}
	if err := s.store.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	metrics.IncBookingsCreated()
	s.logger.Info().Int64("booking_id", booking.ID).Int64("item_id", itemID).
		Int64("booker_id", bookerID).Msg("booking created")

	s.publishEvent(events.EventBookingCreated, booking, item.OwnerID)
	s.enqueueSync(ctx, "upsert", booking, "")

	return booking, nil
}

// SetApproval decides a WAITING booking. Only the item's owner may decide,
// and only once: terminal statuses never change. The store-level status
// guard serializes concurrent decisions.
func (s *BookingService) SetApproval(ctx context.Context, actorID, bookingID int64, approve bool) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	item, err := s.items.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, fmt.Errorf("only the item owner decides booking %d: %w", bookingID, domain.ErrForbidden)
	}

	if booking.Status != models.StatusWaiting {
		return nil, fmt.Errorf("booking %d is already decided: %w", bookingID, domain.ErrInvalidState)
	}

	status := models.StatusRejected
	eventType := events.EventBookingRejected
	if approve {
		status = models.StatusApproved
		eventType = events.EventBookingApproved
	}

	if err := s.store.UpdateBookingStatusIfWaiting(ctx, bookingID, status); err != nil {
		return nil, err
	}
	booking.Status = status

	metrics.IncBookingDecision(status)
	s.logger.Info().Int64("booking_id", bookingID).Str("status", status).
		Int64("owner_id", actorID).Msg("booking decided")

	s.publishEvent(eventType, booking, item.OwnerID)
	s.enqueueSync(ctx, "update_status", booking, status)

	return booking, nil
}

// Get returns a booking to its booker or to the item's owner; no third party
// may view it.
func (s *BookingService) Get(ctx context.Context, actorID, bookingID int64) (*models.Booking, error) {
	booking, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.BookerID == actorID {
		return booking, nil
	}
	item, err := s.items.GetItem(ctx, booking.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != actorID {
		return nil, fmt.Errorf("booking %d is visible only to its booker and the item owner: %w",
			bookingID, domain.ErrForbidden)
	}
	return booking, nil
}

// ListByBooker returns the booker's bookings under a state filter, ordered
// by end descending. An unresolvable booker yields an empty list, not an
// error — a documented leniency.
func (s *BookingService) ListByBooker(ctx context.Context, bookerID int64, state string, from, size int) ([]*models.Booking, error) {
	filter, ok := models.ParseBookingState(state)
	if !ok {
		return nil, fmt.Errorf("unknown state: %s: %w", state, domain.ErrInvalidArgument)
	}

	if !s.userExists(ctx, bookerID) {
		return []*models.Booking{}, nil
	}

	now := time.Now()
	bookings, err := s.store.ListByBooker(ctx, bookerID, filter, now, bookingsPage(from, size))
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// ListByOwner mirrors ListByBooker for the owner side, additionally requiring
// the owner to hold at least one item.
func (s *BookingService) ListByOwner(ctx context.Context, ownerID int64, state string, from, size int) ([]*models.Booking, error) {
	filter, ok := models.ParseBookingState(state)
	if !ok {
		return nil, fmt.Errorf("unknown state: %s: %w", state, domain.ErrInvalidArgument)
	}

	if !s.userExists(ctx, ownerID) {
		return []*models.Booking{}, nil
	}
	count, err := s.items.CountItemsByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return []*models.Booking{}, nil
	}

	now := time.Now()
	bookings, err := s.store.ListByOwner(ctx, ownerID, filter, now, bookingsPage(from, size))
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// LastBooking returns the item's most recent booking already ended by now,
// or nil.
func (s *BookingService) LastBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	return s.store.LastBookingForItem(ctx, itemID, time.Now())
}

// NextBooking returns the item's earliest booking starting after now, or nil.
func (s *BookingService) NextBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	return s.store.NextBookingForItem(ctx, itemID, time.Now())
}

// HasCompletedBookingFor reports whether the user has a WAITING or APPROVED
// booking on the item that ended strictly before the given instant. It is
// the comment-authorship gate.
func (s *BookingService) HasCompletedBookingFor(ctx context.Context, itemID, userID int64, before time.Time) (bool, error) {
	return s.store.HasCompletedBooking(ctx, itemID, userID, before)
}

func (s *BookingService) userExists(ctx context.Context, id int64) bool {
	_, err := s.users.GetUser(ctx, id)
	return err == nil
}

func bookingsPage(from, size int) pagination.Page {
	return pagination.New(from, size,
		pagination.SortDesc("b.end_date"),
		pagination.SortAsc("b.id"),
	)
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, ownerID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID: booking.ID,
		ItemID:    booking.ItemID,
		ItemName:  booking.ItemName,
		BookerID:  booking.BookerID,
		OwnerID:   ownerID,
		Status:    booking.Status,
		Start:     booking.Start,
		End:       booking.End,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).
			Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, taskType string, booking *models.Booking, status string) {
	if s.syncWorker == nil {
		return
	}

	if err := s.syncWorker.EnqueueTask(ctx, taskType, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).
			Str("task", taskType).Msg("sync enqueue error")
	}
}
