package service

import (
	"context"
	"fmt"
	"strings"

	"sharovik/internal/domain"
	"sharovik/internal/models"
	"sharovik/internal/pagination"

	"github.com/rs/zerolog"
)

// ItemService manages the item catalog. It reaches the booking engine only
// through domain.BookingQueries, which keeps the dependency one-directional.
type ItemService struct {
	store    domain.ItemStore
	users    domain.UserLookup
	bookings domain.BookingQueries
	comments domain.CommentStore
	cache    domain.ItemCache
	logger   *zerolog.Logger
}

func NewItemService(store domain.ItemStore, users domain.UserLookup, bookings domain.BookingQueries,
	comments domain.CommentStore, cache domain.ItemCache, logger *zerolog.Logger) *ItemService {
	return &ItemService{
		store:    store,
		users:    users,
		bookings: bookings,
		comments: comments,
		cache:    cache,
		logger:   logger,
	}
}

func (s *ItemService) Add(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("item name is required: %w", domain.ErrInvalidArgument)
	}
	if _, err := s.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}

	item.OwnerID = ownerID
	if err := s.store.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("item_id", item.ID).Int64("owner_id", ownerID).Msg("item added")
	return item, nil
}

// Update applies a partial patch. Only the owner may change an item; a
// non-owner gets NotFound, matching the catalog's "your items only" view.
func (s *ItemService) Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error) {
	item, err := s.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID != ownerID {
		return nil, fmt.Errorf("owner %d has no item %d: %w", ownerID, itemID, domain.ErrNotFound)
	}

	if patch.Name != nil {
		item.Name = *patch.Name
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Available != nil {
		item.Available = *patch.Available
	}

	if err := s.store.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, itemID)

	s.logger.Info().Int64("item_id", itemID).Msg("item updated")
	return item, nil
}

// GetByID returns the item with its comments. Last/next bookings are
// attached only when the caller owns the item.
func (s *ItemService) GetByID(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error) {
	item, err := s.lookupItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	details := &models.ItemDetails{Item: *item}
	details.Comments, err = s.comments.ListCommentsByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.OwnerID == userID {
		if err := s.attachBookings(ctx, details); err != nil {
			return nil, err
		}
	}
	return details, nil
}

func (s *ItemService) ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetails, error) {
	page := pagination.New(from, size, pagination.SortAsc("id"))
	items, err := s.store.ListItemsByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, err
	}

	details := make([]*models.ItemDetails, 0, len(items))
	for _, item := range items {
		d := &models.ItemDetails{Item: *item}
		d.Comments, err = s.comments.ListCommentsByItem(ctx, item.ID)
		if err != nil {
			return nil, err
		}
		if err := s.attachBookings(ctx, d); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// Search matches available items by name or description, case-insensitively.
// Blank text is an empty result, not an error.
func (s *ItemService) Search(ctx context.Context, text string, from, size int) ([]*models.Item, error) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return []*models.Item{}, nil
	}
	page := pagination.New(from, size, pagination.SortAsc("id"))
	return s.store.SearchItems(ctx, text, page)
}

func (s *ItemService) ListByRequest(ctx context.Context, requestID int64) ([]models.Item, error) {
	return s.store.ListItemsByRequest(ctx, requestID)
}

// GetItem is the domain.ItemLookup read path, served through the cache when
// one is configured. Updates invalidate, so the availability flag stays
// coherent within the cache TTL.
func (s *ItemService) GetItem(ctx context.Context, id int64) (*models.Item, error) {
	return s.lookupItem(ctx, id)
}

func (s *ItemService) CountItemsByOwner(ctx context.Context, ownerID int64) (int, error) {
	return s.store.CountItemsByOwner(ctx, ownerID)
}

func (s *ItemService) lookupItem(ctx context.Context, id int64) (*models.Item, error) {
	if s.cache != nil {
		if item, err := s.cache.Get(ctx, id); err != nil {
			s.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache get failed")
		} else if item != nil {
			return item, nil
		}
	}

	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, item); err != nil {
			s.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache set failed")
		}
	}
	return item, nil
}

func (s *ItemService) invalidateCache(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.Warn().Err(err).Int64("item_id", id).Msg("item cache invalidate failed")
	}
}

func (s *ItemService) attachBookings(ctx context.Context, details *models.ItemDetails) error {
	last, err := s.bookings.LastBooking(ctx, details.ID)
	if err != nil {
		return err
	}
	next, err := s.bookings.NextBooking(ctx, details.ID)
	if err != nil {
		return err
	}
	details.LastBooking = last
	details.NextBooking = next
	return nil
}
