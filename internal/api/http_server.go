package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sharovik/internal/config"
	"sharovik/internal/models"

	"github.com/rs/zerolog"
)

// BookingAPI is the booking engine surface the HTTP layer calls.
type BookingAPI interface {
	Create(ctx context.Context, bookerID, itemID int64, start, end time.Time) (*models.Booking, error)
	SetApproval(ctx context.Context, actorID, bookingID int64, approve bool) (*models.Booking, error)
	Get(ctx context.Context, actorID, bookingID int64) (*models.Booking, error)
	ListByBooker(ctx context.Context, bookerID int64, state string, from, size int) ([]*models.Booking, error)
	ListByOwner(ctx context.Context, ownerID int64, state string, from, size int) ([]*models.Booking, error)
}

type ItemAPI interface {
	Add(ctx context.Context, ownerID int64, item *models.Item) (*models.Item, error)
	Update(ctx context.Context, ownerID, itemID int64, patch models.ItemPatch) (*models.Item, error)
	GetByID(ctx context.Context, userID, itemID int64) (*models.ItemDetails, error)
	ListByOwner(ctx context.Context, ownerID int64, from, size int) ([]*models.ItemDetails, error)
	Search(ctx context.Context, text string, from, size int) ([]*models.Item, error)
}

type UserAPI interface {
	Add(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id int64, name, email string) (*models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type CommentAPI interface {
	Add(ctx context.Context, authorID, itemID int64, text string) (*models.Comment, error)
}

type RequestAPI interface {
	Add(ctx context.Context, requesterID int64, description string) (*models.ItemRequest, error)
	ListByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequestDetails, error)
	ListOther(ctx context.Context, userID int64, from, size int) ([]*models.ItemRequestDetails, error)
	GetByID(ctx context.Context, userID, requestID int64) (*models.ItemRequestDetails, error)
}

// ExportAPI renders booking reports to files on disk.
type ExportAPI interface {
	ExportOwnerBookings(ownerID int64, bookings []*models.Booking) (string, error)
}

type Services struct {
	Bookings BookingAPI
	Items    ItemAPI
	Users    UserAPI
	Comments CommentAPI
	Requests RequestAPI
	Exports  ExportAPI
}

// HTTPServer exposes the REST surface. The acting user is carried in the
// X-Sharer-User-Id header.
type HTTPServer struct {
	cfg      config.APIConfig
	services Services
	server   *http.Server
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg config.APIConfig, services Services, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{cfg: cfg, services: services, logger: logger}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", srv.handleCreateUser)
	mux.HandleFunc("GET /users", srv.handleListUsers)
	mux.HandleFunc("GET /users/{id}", srv.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", srv.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", srv.handleDeleteUser)

	mux.HandleFunc("POST /items", srv.handleCreateItem)
	mux.HandleFunc("GET /items", srv.handleListItems)
	mux.HandleFunc("GET /items/search", srv.handleSearchItems)
	mux.HandleFunc("GET /items/{id}", srv.handleGetItem)
	mux.HandleFunc("PATCH /items/{id}", srv.handleUpdateItem)
	mux.HandleFunc("POST /items/{id}/comment", srv.handleAddComment)

	mux.HandleFunc("POST /bookings", srv.handleCreateBooking)
	mux.HandleFunc("GET /bookings", srv.handleListBookingsByBooker)
	mux.HandleFunc("GET /bookings/owner", srv.handleListBookingsByOwner)
	mux.HandleFunc("GET /bookings/owner/export", srv.handleExportOwnerBookings)
	mux.HandleFunc("GET /bookings/{id}", srv.handleGetBooking)
	mux.HandleFunc("PATCH /bookings/{id}", srv.handleApproveBooking)

	mux.HandleFunc("POST /requests", srv.handleCreateRequest)
	mux.HandleFunc("GET /requests", srv.handleListOwnRequests)
	mux.HandleFunc("GET /requests/all", srv.handleListOtherRequests)
	mux.HandleFunc("GET /requests/{id}", srv.handleGetRequest)

	auth := NewHTTPAuth(cfg)
	handler := srv.requestLogging(auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler returns the full middleware-wrapped handler, mainly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("http api listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
