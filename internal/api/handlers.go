package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"sharovik/internal/domain"
	"sharovik/internal/models"
)

// userHeader carries the id of the acting user on every request that needs
// one.
const userHeader = "X-Sharer-User-Id"

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, err := s.services.Users.Add(r.Context(), &models.User{Name: body.Name, Email: body.Email})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.services.Users.List(r.Context())
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := s.services.Users.Get(r.Context(), id)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	user, err := s.services.Users.Update(r.Context(), id, body.Name, body.Email)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := s.services.Users.Delete(r.Context(), id); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Available   *bool  `json:"available"`
		RequestID   int64  `json:"request_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Available == nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "available is required")
		return
	}

	item := &models.Item{
		Name:        body.Name,
		Description: body.Description,
		Available:   *body.Available,
		RequestID:   body.RequestID,
	}
	created, err := s.services.Items.Add(r.Context(), userID, item)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *HTTPServer) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch models.ItemPatch
	if !decodeBody(w, r, &patch) {
		return
	}

	item, err := s.services.Items.Update(r.Context(), userID, itemID, patch)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *HTTPServer) handleGetItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := s.services.Items.GetByID(r.Context(), userID, itemID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (s *HTTPServer) handleListItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	from, size, ok := pageParams(w, r, models.DefaultPageSize)
	if !ok {
		return
	}

	items, err := s.services.Items.ListByOwner(r.Context(), userID, from, size)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleSearchItems(w http.ResponseWriter, r *http.Request) {
	from, size, ok := pageParams(w, r, models.DefaultPageSize)
	if !ok {
		return
	}

	items, err := s.services.Items.Search(r.Context(), r.URL.Query().Get("text"), from, size)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *HTTPServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Text string `json:"text"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	comment, err := s.services.Comments.Add(r.Context(), userID, itemID, body.Text)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var body struct {
		ItemID int64     `json:"item_id"`
		Start  time.Time `json:"start"`
		End    time.Time `json:"end"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	booking, err := s.services.Bookings.Create(r.Context(), userID, body.ItemID, body.Start, body.End)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleApproveBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "approved must be true or false")
		return
	}

	booking, err := s.services.Bookings.SetApproval(r.Context(), userID, bookingID, approved)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	booking, err := s.services.Bookings.Get(r.Context(), userID, bookingID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) handleListBookingsByBooker(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	state, from, size, ok := bookingListParams(w, r)
	if !ok {
		return
	}

	bookings, err := s.services.Bookings.ListByBooker(r.Context(), userID, state, from, size)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (s *HTTPServer) handleListBookingsByOwner(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	state, from, size, ok := bookingListParams(w, r)
	if !ok {
		return
	}

	bookings, err := s.services.Bookings.ListByOwner(r.Context(), userID, state, from, size)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// handleExportOwnerBookings renders the owner's full booking history into an
// xlsx file and serves it.
func (s *HTTPServer) handleExportOwnerBookings(w http.ResponseWriter, r *http.Request) {
	if s.services.Exports == nil {
		writeError(w, http.StatusNotFound, "not_found", "exports are not configured")
		return
	}
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	bookings, err := s.services.Bookings.ListByOwner(r.Context(), userID, string(models.StateAll), 0, exportPageSize)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	filePath, err := s.services.Exports.ExportOwnerBookings(userID, bookings)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(filePath))
	http.ServeFile(w, r, filePath)
}

// exportPageSize bounds one-shot exports.
const exportPageSize = 1000

func (s *HTTPServer) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	var body struct {
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	request, err := s.services.Requests.Add(r.Context(), userID, body.Description)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (s *HTTPServer) handleListOwnRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	requests, err := s.services.Requests.ListByRequester(r.Context(), userID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleListOtherRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	from, size, ok := pageParams(w, r, models.RequestsPageSize)
	if !ok {
		return
	}

	requests, err := s.services.Requests.ListOther(r.Context(), userID, from, size)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

func (s *HTTPServer) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	requestID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := s.services.Requests.GetByID(r.Context(), userID, requestID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func actingUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.Header.Get(userHeader))
	if raw == "" {
		writeError(w, http.StatusBadRequest, "invalid_argument", userHeader+" header is required")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", userHeader+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", name+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func pageParams(w http.ResponseWriter, r *http.Request, defaultSize int) (from, size int, ok bool) {
	from, ok = intParam(w, r, "from", 0)
	if !ok {
		return 0, 0, false
	}
	size, ok = intParam(w, r, "size", defaultSize)
	if !ok {
		return 0, 0, false
	}
	if from < 0 || size <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_argument", "from must be >= 0 and size > 0")
		return 0, 0, false
	}
	return from, size, true
}

func bookingListParams(w http.ResponseWriter, r *http.Request) (state string, from, size int, ok bool) {
	state = strings.TrimSpace(r.URL.Query().Get("state"))
	if state == "" {
		state = string(models.StateAll)
	}
	from, size, ok = pageParams(w, r, models.DefaultPageSize)
	return state, from, size, ok
}

func intParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", name+" must be an integer")
		return 0, false
	}
	return v, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_argument", "invalid JSON body")
		return false
	}
	return true
}

// writeDomainError maps the failure taxonomy onto HTTP statuses with a
// machine-readable code.
func (s *HTTPServer) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, domain.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	default:
		s.logger.Error().Err(err).Msg("internal error")
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{Error: message, Code: code})
}
