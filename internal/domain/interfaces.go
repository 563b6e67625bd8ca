package domain

import (
	"context"
	"time"

	"sharovik/internal/models"
	"sharovik/internal/pagination"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BookingStore is the persistence contract of the booking engine. List
// queries take the single "now" captured by the engine so that one call
// classifies time consistently, and a pagination.Page that slices the
// `end DESC, id` ordering with true offset/limit semantics.
type BookingStore interface {
	CreateBooking(ctx context.Context, booking *models.Booking) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	// UpdateBookingStatusIfWaiting flips the status of a WAITING booking.
	// Returns ErrInvalidState when the booking was already decided, so two
	// concurrent decisions resolve to exactly one winner.
	UpdateBookingStatusIfWaiting(ctx context.Context, id int64, status string) error
	ListByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, page pagination.Page) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, page pagination.Page) ([]*models.Booking, error)
	LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error)
	HasCompletedBooking(ctx context.Context, itemID, userID int64, before time.Time) (bool, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id int64) error
}

type ItemStore interface {
	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) error
	ListItemsByOwner(ctx context.Context, ownerID int64, page pagination.Page) ([]*models.Item, error)
	CountItemsByOwner(ctx context.Context, ownerID int64) (int, error)
	SearchItems(ctx context.Context, text string, page pagination.Page) ([]*models.Item, error)
	ListItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error)
}

type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error)
}

type RequestStore interface {
	CreateRequest(ctx context.Context, request *models.ItemRequest) error
	GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error)
	ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error)
	ListRequestsExcept(ctx context.Context, requesterID int64, page pagination.Page) ([]*models.ItemRequest, error)
}

type SyncQueue interface {
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
}

// ItemLookup is the narrow item capability the booking engine depends on.
// The full ItemService depends on the engine for last/next bookings, so the
// engine must not depend on it back.
type ItemLookup interface {
	GetItem(ctx context.Context, id int64) (*models.Item, error)
	CountItemsByOwner(ctx context.Context, ownerID int64) (int, error)
}

// UserLookup answers existence checks without pulling in user management.
type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
}

// BookingQueries is what the item and comment services need from the booking
// engine: temporal neighbors of "now" and the comment-authorship gate.
type BookingQueries interface {
	LastBooking(ctx context.Context, itemID int64) (*models.Booking, error)
	NextBooking(ctx context.Context, itemID int64) (*models.Booking, error)
	HasCompletedBookingFor(ctx context.Context, itemID, userID int64, before time.Time) (bool, error)
}

// ItemCache is a read-through cache over item records. Get returns (nil, nil)
// on a miss.
type ItemCache interface {
	Get(ctx context.Context, id int64) (*models.Item, error)
	Set(ctx context.Context, item *models.Item) error
	Invalidate(ctx context.Context, id int64) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type SheetsWriter interface {
	UpsertBooking(booking *models.Booking) error
	UpdateBookingStatus(bookingID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, booking *models.Booking, status string) error
}
