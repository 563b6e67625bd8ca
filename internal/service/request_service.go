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

// RequestService manages item requests: wishes for items the catalog does not
// hold yet, answered by items created with the request id attached.
type RequestService struct {
	store  domain.RequestStore
	items  domain.ItemStore
	users  domain.UserLookup
	logger *zerolog.Logger
}

func NewRequestService(store domain.RequestStore, items domain.ItemStore, users domain.UserLookup,
	logger *zerolog.Logger) *RequestService {
	return &RequestService{
		store:  store,
		items:  items,
		users:  users,
		logger: logger,
	}
}

func (s *RequestService) Add(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("request description is required: %w", domain.ErrInvalidArgument)
	}
	if _, err := s.users.GetUser(ctx, requesterID); err != nil {
		return nil, err
	}

	request := &models.ItemRequest{
		RequesterID: requesterID,
		Description: description,
	}
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, err
	}

	s.logger.Info().Int64("request_id", request.ID).Int64("requester_id", requesterID).Msg("item request created")
	return request, nil
}

// ListByRequester returns the user's own requests, newest first, each with the
// items offered in answer.
func (s *RequestService) ListByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequestDetails, error) {
	if _, err := s.users.GetUser(ctx, requesterID); err != nil {
		return nil, err
	}

	requests, err := s.store.ListRequestsByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

// ListOther pages through requests made by everyone else, newest first.
func (s *RequestService) ListOther(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestDetails, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	page := pagination.New(from, size,
		pagination.SortDesc("created_at"),
		pagination.SortDesc("id"),
	)
	requests, err := s.store.ListRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.withItems(ctx, requests)
}

func (s *RequestService) GetByID(ctx context.Context, userID, requestID int64) (*models.ItemRequestDetails, error) {
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	items, err := s.items.ListItemsByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &models.ItemRequestDetails{ItemRequest: *request, Items: items}, nil
}

func (s *RequestService) withItems(ctx context.Context, requests []*models.ItemRequest) ([]*models.ItemRequestDetails, error) {
	details := make([]*models.ItemRequestDetails, 0, len(requests))
	for _, r := range requests {
		items, err := s.items.ListItemsByRequest(ctx, r.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, &models.ItemRequestDetails{ItemRequest: *r, Items: items})
	}
	return details, nil
}
