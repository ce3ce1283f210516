package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires every endpoint. Everything under /api except register and
// login runs behind AuthMiddleware.
func NewRouter(h Handler) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.HandleFunc("/", h.RootHandler).Methods("GET")
	r.HandleFunc("/api/auth/register", h.RegisterHandler).Methods("POST")
	r.HandleFunc("/api/auth/login", h.LoginHandler).Methods("POST")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(h.AuthMiddleware)
	api.HandleFunc("/user/profile", h.ProfileHandler).Methods("GET")

	api.HandleFunc("/listings", h.ListListingsHandler).Methods("GET")
	api.HandleFunc("/listings", h.CreateListingHandler).Methods("POST")
	api.HandleFunc("/listings/{id:[0-9]+}", h.GetListingHandler).Methods("GET")
	api.HandleFunc("/listings/{id:[0-9]+}", h.UpdateListingHandler).Methods("PUT")
	api.HandleFunc("/listings/{id:[0-9]+}/favorite", h.AddFavoriteHandler).Methods("POST")
	api.HandleFunc("/listings/{id:[0-9]+}/favorite", h.RemoveFavoriteHandler).Methods("DELETE")
	api.HandleFunc("/listings/{id:[0-9]+}/purchase", h.PurchaseListingHandler).Methods("POST")
	api.HandleFunc("/favorites", h.ListFavoritesHandler).Methods("GET")

	api.HandleFunc("/messages", h.ListMessagesHandler).Methods("GET")
	api.HandleFunc("/messages", h.SendMessageHandler).Methods("POST")
	api.HandleFunc("/messages/unread", h.UnreadCountHandler).Methods("GET")
	api.HandleFunc("/messages/{id:[0-9]+}/read", h.MarkReadHandler).Methods("POST")

	api.HandleFunc("/credits/balance", h.BalanceHandler).Methods("GET")
	api.HandleFunc("/credits/purchase", h.PurchaseCreditsHandler).Methods("POST")
	api.HandleFunc("/credits/history", h.HistoryHandler).Methods("GET")

	return Recoverer(RequestLogger(CORS(r)))
}
