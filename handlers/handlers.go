package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"simmarket/models"
	"simmarket/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	svc           service.Service
	exposeDetails bool
}

// NewHandler builds the HTTP layer. exposeDetails adds the underlying error text
// to 500 responses and must be false in production.
func NewHandler(svc service.Service, exposeDetails bool) Handler {
	return Handler{
		svc:           svc,
		exposeDetails: exposeDetails,
	}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SendMessageRequest struct {
	ReceiverID int    `json:"receiver_id"`
	ListingID  int    `json:"listing_id"`
	Content    string `json:"content"`
}

type PurchaseCreditsRequest struct {
	Amount int `json:"amount"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (h Handler) RootHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{
		"name":    "Flight Sim License Marketplace API",
		"version": "1.0.0",
		"status":  "active",
	})
}

func (h Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, resp)
}

func (h Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h Handler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]models.User{"user": currentUser(r)})
}

func (h Handler) ListListingsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	listings, err := h.svc.ListActive(r.Context(), models.ListingFilter{
		Simulator:    q.Get("simulator"),
		AircraftType: q.Get("aircraft_type"),
		Developer:    q.Get("developer"),
	})
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]models.Listing{"listings": listings})
}

func (h Handler) CreateListingHandler(w http.ResponseWriter, r *http.Request) {
	var req models.NewListing
	if !decodeBody(w, r, &req) {
		return
	}
	listing, err := h.svc.CreateListing(r.Context(), currentUser(r), req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]models.Listing{"listing": listing})
}

func (h Handler) GetListingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	listing, err := h.svc.GetListing(r.Context(), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]models.Listing{"listing": listing})
}

func (h Handler) UpdateListingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req models.ListingUpdate
	if !decodeBody(w, r, &req) {
		return
	}
	listing, err := h.svc.UpdateListing(r.Context(), currentUser(r), id, req)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]models.Listing{"listing": listing})
}

func (h Handler) AddFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.AddFavorite(r.Context(), currentUser(r), id); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h Handler) RemoveFavoriteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.RemoveFavorite(r.Context(), currentUser(r), id); err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h Handler) ListFavoritesHandler(w http.ResponseWriter, r *http.Request) {
	favorites, err := h.svc.ListFavorites(r.Context(), currentUser(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]models.Listing{"favorites": favorites})
}

func (h Handler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.ListMessages(r.Context(), currentUser(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string][]models.Message{"messages": messages})
}

func (h Handler) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	msg, err := h.svc.SendMessage(r.Context(), currentUser(r), req.ReceiverID, req.ListingID, req.Content)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]models.Message{"message": msg})
}

func (h Handler) MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	msg, err := h.svc.MarkRead(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]models.Message{"message": msg})
}

func (h Handler) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.UnreadCount(r.Context(), currentUser(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"unread": n})
}

func (h Handler) BalanceHandler(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int{"credits": h.svc.Balance(currentUser(r))})
}

func (h Handler) PurchaseCreditsHandler(w http.ResponseWriter, r *http.Request) {
	var req PurchaseCreditsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	credits, err := h.svc.PurchaseCredits(r.Context(), currentUser(r), req.Amount)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"credits": credits})
}

func (h Handler) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	history, err := h.svc.History(r.Context(), currentUser(r))
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, history)
}

func (h Handler) PurchaseListingHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	resp, err := h.svc.Purchase(r.Context(), currentUser(r), id)
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(kind, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, models.ErrNotFound):
		return http.StatusNotFound
	// Self-purchase is the only Forbidden case and clients expect a 400 for it.
	case errors.Is(kind, models.ErrForbidden), errors.Is(kind, models.ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h Handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if errors.As(err, &se) {
		respondWithError(w, statusFor(se.Kind), se.Message)
		return
	}
	log.Printf("[%s] %s %s: internal error: %v", RequestID(r.Context()), r.Method, r.URL.Path, err)
	resp := ErrorResponse{Error: "Internal server error"}
	if h.exposeDetails {
		resp.Details = err.Error()
	}
	respondWithJSON(w, http.StatusInternalServerError, resp)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}
