package service

import (
	"context"
	"time"

	"sharovik/internal/models"
	"sharovik/internal/pagination"

	"github.com/stretchr/testify/mock"
)

type mockBookingStore struct {
	mock.Mock
}

func (m *mockBookingStore) CreateBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *mockBookingStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingStore) UpdateBookingStatusIfWaiting(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *mockBookingStore) ListByBooker(ctx context.Context, bookerID int64, state models.BookingState, now time.Time, page pagination.Page) ([]*models.Booking, error) {
	args := m.Called(ctx, bookerID, state, now, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockBookingStore) ListByOwner(ctx context.Context, ownerID int64, state models.BookingState, now time.Time, page pagination.Page) ([]*models.Booking, error) {
	args := m.Called(ctx, ownerID, state, now, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockBookingStore) LastBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingStore) NextBookingForItem(ctx context.Context, itemID int64, now time.Time) (*models.Booking, error) {
	args := m.Called(ctx, itemID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingStore) HasCompletedBooking(ctx context.Context, itemID, userID int64, before time.Time) (bool, error) {
	args := m.Called(ctx, itemID, userID, before)
	return args.Bool(0), args.Error(1)
}

type mockItemLookup struct {
	mock.Mock
}

func (m *mockItemLookup) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockItemLookup) CountItemsByOwner(ctx context.Context, ownerID int64) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

type mockUserLookup struct {
	mock.Mock
}

func (m *mockUserLookup) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) GetUser(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockUserStore) UpdateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) DeleteUser(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockItemStore struct {
	mock.Mock
}

func (m *mockItemStore) CreateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockItemStore) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockItemStore) UpdateItem(ctx context.Context, i *models.Item) error {
	return m.Called(ctx, i).Error(0)
}
func (m *mockItemStore) ListItemsByOwner(ctx context.Context, ownerID int64, page pagination.Page) ([]*models.Item, error) {
	args := m.Called(ctx, ownerID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockItemStore) CountItemsByOwner(ctx context.Context, ownerID int64) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}
func (m *mockItemStore) SearchItems(ctx context.Context, text string, page pagination.Page) ([]*models.Item, error) {
	args := m.Called(ctx, text, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Item), args.Error(1)
}
func (m *mockItemStore) ListItemsByRequest(ctx context.Context, requestID int64) ([]models.Item, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Item), args.Error(1)
}

type mockCommentStore struct {
	mock.Mock
}

func (m *mockCommentStore) CreateComment(ctx context.Context, c *models.Comment) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCommentStore) ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

type mockRequestStore struct {
	mock.Mock
}

func (m *mockRequestStore) CreateRequest(ctx context.Context, r *models.ItemRequest) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockRequestStore) GetRequest(ctx context.Context, id int64) (*models.ItemRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ItemRequest), args.Error(1)
}
func (m *mockRequestStore) ListRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}
func (m *mockRequestStore) ListRequestsExcept(ctx context.Context, requesterID int64, page pagination.Page) ([]*models.ItemRequest, error) {
	args := m.Called(ctx, requesterID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ItemRequest), args.Error(1)
}

type mockBookingQueries struct {
	mock.Mock
}

func (m *mockBookingQueries) LastBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingQueries) NextBooking(ctx context.Context, itemID int64) (*models.Booking, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockBookingQueries) HasCompletedBookingFor(ctx context.Context, itemID, userID int64, before time.Time) (bool, error) {
	args := m.Called(ctx, itemID, userID, before)
	return args.Bool(0), args.Error(1)
}

type mockItemCache struct {
	mock.Mock
}

func (m *mockItemCache) Get(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}
func (m *mockItemCache) Set(ctx context.Context, item *models.Item) error {
	return m.Called(ctx, item).Error(0)
}
func (m *mockItemCache) Invalidate(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueTask(ctx context.Context, taskType string, booking *models.Booking, status string) error {
	return m.Called(ctx, taskType, booking, status).Error(0)
}
