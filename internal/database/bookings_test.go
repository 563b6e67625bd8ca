package database

import (
	"context"
	"testing"
	"time"

	"sharovik/internal/domain"
	"sharovik/internal/models"
	"sharovik/internal/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bookingsPage(offset, limit int) pagination.Page {
	return pagination.New(offset, limit,
		pagination.SortDesc("b.end_date"),
		pagination.SortAsc("b.id"),
	)
}

func TestCreateAndGetBooking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	start := time.Now().Add(24 * time.Hour)
	end := start.Add(48 * time.Hour)
	booking := createTestBooking(t, db, item.ID, booker.ID, start, end, models.StatusWaiting)
	require.NotZero(t, booking.ID)

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
	assert.Equal(t, item.ID, got.ItemID)
	assert.Equal(t, "Drill", got.ItemName)
	assert.Equal(t, booker.ID, got.BookerID)
	assert.Equal(t, models.StatusWaiting, got.Status)
	assert.WithinDuration(t, start.UTC(), got.Start, time.Second)
	assert.WithinDuration(t, end.UTC(), got.End, time.Second)
}

func TestGetBooking_NotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	_, err := db.GetBooking(context.Background(), 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateBookingStatusIfWaiting(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	start := time.Now().Add(time.Hour)
	booking := createTestBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour), models.StatusWaiting)

	require.NoError(t, db.UpdateBookingStatusIfWaiting(ctx, booking.ID, models.StatusApproved))

	got, err := db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	// A second decision hits a non-WAITING row and must fail.
	err = db.UpdateBookingStatusIfWaiting(ctx, booking.ID, models.StatusRejected)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	got, err = db.GetBooking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestListByBooker_StateFilters(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	now := time.Now().UTC()
	past := createTestBooking(t, db, item.ID, booker.ID, now.Add(-72*time.Hour), now.Add(-48*time.Hour), models.StatusApproved)
	current := createTestBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)
	future := createTestBooking(t, db, item.ID, booker.ID, now.Add(48*time.Hour), now.Add(72*time.Hour), models.StatusWaiting)
	rejected := createTestBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(36*time.Hour), models.StatusRejected)

	page := bookingsPage(0, 10)

	all, err := db.ListByBooker(ctx, booker.ID, models.StateAll, now, page)
	require.NoError(t, err)
	require.Len(t, all, 4)
	// Ordered by end descending.
	assert.Equal(t, future.ID, all[0].ID)
	assert.Equal(t, rejected.ID, all[1].ID)
	assert.Equal(t, current.ID, all[2].ID)
	assert.Equal(t, past.ID, all[3].ID)

	currentList, err := db.ListByBooker(ctx, booker.ID, models.StateCurrent, now, page)
	require.NoError(t, err)
	require.Len(t, currentList, 1)
	assert.Equal(t, current.ID, currentList[0].ID)

	pastList, err := db.ListByBooker(ctx, booker.ID, models.StatePast, now, page)
	require.NoError(t, err)
	require.Len(t, pastList, 1)
	assert.Equal(t, past.ID, pastList[0].ID)

	futureList, err := db.ListByBooker(ctx, booker.ID, models.StateFuture, now, page)
	require.NoError(t, err)
	require.Len(t, futureList, 2)
	assert.Equal(t, future.ID, futureList[0].ID)
	assert.Equal(t, rejected.ID, futureList[1].ID)

	waitingList, err := db.ListByBooker(ctx, booker.ID, models.StateWaiting, now, page)
	require.NoError(t, err)
	require.Len(t, waitingList, 1)
	assert.Equal(t, future.ID, waitingList[0].ID)

	rejectedList, err := db.ListByBooker(ctx, booker.ID, models.StateRejected, now, page)
	require.NoError(t, err)
	require.Len(t, rejectedList, 1)
	assert.Equal(t, rejected.ID, rejectedList[0].ID)
}

func TestListByBooker_BoundaryInstants(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	now := time.Now().UTC().Truncate(time.Second)
	createTestBooking(t, db, item.ID, booker.ID, now, now.Add(time.Hour), models.StatusApproved)
	createTestBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now, models.StatusApproved)

	page := bookingsPage(0, 10)

	// start == now and end == now both count as CURRENT (inclusive bounds).
	currentList, err := db.ListByBooker(ctx, booker.ID, models.StateCurrent, now, page)
	require.NoError(t, err)
	assert.Len(t, currentList, 2)

	pastList, err := db.ListByBooker(ctx, booker.ID, models.StatePast, now, page)
	require.NoError(t, err)
	assert.Empty(t, pastList)

	futureList, err := db.ListByBooker(ctx, booker.ID, models.StateFuture, now, page)
	require.NoError(t, err)
	assert.Empty(t, futureList)
}

func TestListByBooker_Pagination(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	now := time.Now().UTC()
	var ids []int64
	for i := 0; i < 7; i++ {
		start := now.Add(time.Duration(i*24) * time.Hour)
		b := createTestBooking(t, db, item.ID, booker.ID, start, start.Add(time.Hour), models.StatusWaiting)
		ids = append(ids, b.ID)
	}

	// end DESC: the latest booking comes first. Offset 2, limit 3 picks
	// rows 2..4 of that ordering, not a page-aligned window.
	window, err := db.ListByBooker(ctx, booker.ID, models.StateAll, now, bookingsPage(2, 3))
	require.NoError(t, err)
	require.Len(t, window, 3)
	assert.Equal(t, ids[4], window[0].ID)
	assert.Equal(t, ids[3], window[1].ID)
	assert.Equal(t, ids[2], window[2].ID)

	// Offset past the end yields an empty slice.
	empty, err := db.ListByBooker(ctx, booker.ID, models.StateAll, now, bookingsPage(100, 3))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListByOwner(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	other := createTestUser(t, db, "Other", "other@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	ownItem := createTestItem(t, db, owner.ID, "Drill", true)
	otherItem := createTestItem(t, db, other.ID, "Saw", true)

	now := time.Now().UTC()
	mine := createTestBooking(t, db, ownItem.ID, booker.ID, now.Add(time.Hour), now.Add(2*time.Hour), models.StatusWaiting)
	createTestBooking(t, db, otherItem.ID, booker.ID, now.Add(time.Hour), now.Add(2*time.Hour), models.StatusWaiting)

	list, err := db.ListByOwner(ctx, owner.ID, models.StateAll, now, bookingsPage(0, 10))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)
	assert.Equal(t, "Drill", list[0].ItemName)
}

func TestLastAndNextBookingForItem(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	now := time.Now().UTC()

	// No bookings at all: both sides are nil without error.
	last, err := db.LastBookingForItem(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Nil(t, last)
	next, err := db.NextBookingForItem(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Nil(t, next)

	createTestBooking(t, db, item.ID, booker.ID, now.Add(-96*time.Hour), now.Add(-72*time.Hour), models.StatusApproved)
	recent := createTestBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusApproved)
	soon := createTestBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusWaiting)
	createTestBooking(t, db, item.ID, booker.ID, now.Add(72*time.Hour), now.Add(96*time.Hour), models.StatusWaiting)

	last, err = db.LastBookingForItem(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, recent.ID, last.ID)

	next, err = db.NextBookingForItem(ctx, item.ID, now)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, soon.ID, next.ID)
}

func TestLastNextBooking_RunningBookingIsNeither(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	now := time.Now().UTC()
	createTestBooking(t, db, item.ID, booker.ID, now.Add(-time.Hour), now.Add(time.Hour), models.StatusApproved)

	last, err := db.LastBookingForItem(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Nil(t, last)

	next, err := db.NextBookingForItem(ctx, item.ID, now)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestHasCompletedBooking(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	stranger := createTestUser(t, db, "Stranger", "stranger@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	now := time.Now().UTC()

	ok, err := db.HasCompletedBooking(ctx, item.ID, booker.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// A finished APPROVED booking qualifies.
	createTestBooking(t, db, item.ID, booker.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusApproved)
	ok, err = db.HasCompletedBooking(ctx, item.ID, booker.ID, now)
	require.NoError(t, err)
	assert.True(t, ok)

	// The stranger never booked the item.
	ok, err = db.HasCompletedBooking(ctx, item.ID, stranger.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)

	// A finished REJECTED booking does not qualify.
	createTestBooking(t, db, item.ID, stranger.ID, now.Add(-48*time.Hour), now.Add(-24*time.Hour), models.StatusRejected)
	ok, err = db.HasCompletedBooking(ctx, item.ID, stranger.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHasCompletedBooking_FutureDoesNotCount(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	owner := createTestUser(t, db, "Owner", "owner@example.com")
	booker := createTestUser(t, db, "Booker", "booker@example.com")
	item := createTestItem(t, db, owner.ID, "Drill", true)

	now := time.Now().UTC()
	createTestBooking(t, db, item.ID, booker.ID, now.Add(24*time.Hour), now.Add(48*time.Hour), models.StatusApproved)

	ok, err := db.HasCompletedBooking(ctx, item.ID, booker.ID, now)
	require.NoError(t, err)
	assert.False(t, ok)
}
