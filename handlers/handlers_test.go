package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"simmarket/models"
	"simmarket/service"
	"simmarket/service/mocks"

	"github.com/golang-jwt/jwt/v4"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
)

const testSecret = "secret"

var pilot = models.User{ID: 1, Name: "Pilot", Email: "pilot@example.com", Credits: 1000}

func newTestRouter(t *testing.T, exposeDetails bool, prepare func(*mocks.MockRepository)) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockRepository(ctrl)
	if prepare != nil {
		prepare(mockRepo)
	}
	svc := service.NewService(mockRepo, testSecret, time.Hour, 1000)
	return NewRouter(NewHandler(svc, exposeDetails))
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	claims := service.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind error
		want int
	}{
		{models.ErrValidation, http.StatusBadRequest},
		{models.ErrUnauthenticated, http.StatusUnauthorized},
		{models.ErrConflict, http.StatusConflict},
		{models.ErrNotFound, http.StatusNotFound},
		{models.ErrForbidden, http.StatusBadRequest},
		{models.ErrInsufficientFunds, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.Error(), func(t *testing.T) {
			require.Equal(t, tt.want, statusFor(tt.kind))
		})
	}
}

func TestRouter_Preflight(t *testing.T) {
	router := newTestRouter(t, false, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/listings/3/purchase", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "86400", rec.Header().Get("Access-Control-Max-Age"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	require.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRouter_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantError  string
	}{
		{"Unknown path", http.MethodGet, "/api/nowhere", http.StatusNotFound, "Not found"},
		{"Non-numeric id", http.MethodGet, "/api/listings/abc", http.StatusNotFound, "Not found"},
		{"Wrong method", http.MethodDelete, "/api/listings", http.StatusMethodNotAllowed, "Method not allowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, false, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			require.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
			require.Equal(t, tt.wantError, decodeError(t, rec).Error)
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		prepare    func(*mocks.MockRepository)
		wantStatus int
	}{
		{
			name:       "No header",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Wrong scheme",
			header:     "Basic " + tokenFor(t, pilot),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Garbage token",
			header:     "Bearer garbage",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "User deleted since issue",
			header: "Bearer " + tokenFor(t, pilot),
			prepare: func(mr *mocks.MockRepository) {
				mr.EXPECT().GetUserByID(gomock.Any(), pilot.ID).Return(models.User{}, models.ErrNotFound)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:   "Valid token",
			header: "bearer " + tokenFor(t, pilot),
			prepare: func(mr *mocks.MockRepository) {
				mr.EXPECT().GetUserByID(gomock.Any(), pilot.ID).Return(pilot, nil)
			},
			wantStatus: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, false, tt.prepare)
			req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus != http.StatusOK {
				require.Equal(t, "Unauthorized", decodeError(t, rec).Error)
				return
			}
			var body struct {
				User models.User `json:"user"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			require.Equal(t, pilot.Email, body.User.Email)
		})
	}
}

func TestPurchaseListingHandler(t *testing.T) {
	listing := models.Listing{ID: 7, UserID: 2, Title: "PMDG 737", PriceCredits: 500, Status: models.ListingActive}

	tests := []struct {
		name          string
		exposeDetails bool
		prepare       func(*mocks.MockRepository)
		wantStatus    int
		wantError     string
		wantDetails   bool
	}{
		{
			name: "Success",
			prepare: func(mr *mocks.MockRepository) {
				mr.EXPECT().GetListingByID(gomock.Any(), 7).Return(listing, nil)
				mr.EXPECT().PurchaseListing(gomock.Any(), pilot.ID, 7).
					Return(models.Transaction{ID: 1, FromUserID: 1, ToUserID: 2, ListingID: 7, Amount: 500}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "Own listing",
			prepare: func(mr *mocks.MockRepository) {
				own := listing
				own.UserID = pilot.ID
				mr.EXPECT().GetListingByID(gomock.Any(), 7).Return(own, nil)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Cannot purchase your own listing",
		},
		{
			name: "Too expensive",
			prepare: func(mr *mocks.MockRepository) {
				pricey := listing
				pricey.PriceCredits = 5000
				mr.EXPECT().GetListingByID(gomock.Any(), 7).Return(pricey, nil)
			},
			wantStatus: http.StatusBadRequest,
			wantError:  "Insufficient credits",
		},
		{
			name: "Storage failure in production hides details",
			prepare: func(mr *mocks.MockRepository) {
				mr.EXPECT().GetListingByID(gomock.Any(), 7).Return(models.Listing{}, errors.New("dial tcp: refused"))
			},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
		{
			name:          "Storage failure in development shows details",
			exposeDetails: true,
			prepare: func(mr *mocks.MockRepository) {
				mr.EXPECT().GetListingByID(gomock.Any(), 7).Return(models.Listing{}, errors.New("dial tcp: refused"))
			},
			wantStatus:  http.StatusInternalServerError,
			wantError:   "Internal server error",
			wantDetails: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, tt.exposeDetails, func(mr *mocks.MockRepository) {
				mr.EXPECT().GetUserByID(gomock.Any(), pilot.ID).Return(pilot, nil)
				tt.prepare(mr)
			})
			req := httptest.NewRequest(http.MethodPost, "/api/listings/7/purchase", nil)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, pilot))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp service.PurchaseResponse
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				require.True(t, resp.Success)
				require.Equal(t, 500, resp.Transaction.Amount)
				return
			}
			errResp := decodeError(t, rec)
			require.Equal(t, tt.wantError, errResp.Error)
			if tt.wantDetails {
				require.Contains(t, errResp.Details, "refused")
			} else {
				require.Empty(t, errResp.Details)
			}
		})
	}
}

func TestRegisterHandler(t *testing.T) {
	t.Run("Malformed body", func(t *testing.T) {
		router := newTestRouter(t, false, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader("{")))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Invalid request body", decodeError(t, rec).Error)
	})

	t.Run("Created", func(t *testing.T) {
		router := newTestRouter(t, false, func(mr *mocks.MockRepository) {
			mr.EXPECT().CreateUser(gomock.Any(), "Pilot", "pilot@example.com", gomock.Any(), 1000).
				Return(pilot, nil)
		})
		body := `{"name":"Pilot","email":"pilot@example.com","password":"pw"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))

		require.Equal(t, http.StatusCreated, rec.Code)
		raw := rec.Body.String()
		require.NotContains(t, raw, "password")
		var resp service.AuthResponse
		require.NoError(t, json.Unmarshal([]byte(raw), &resp))
		require.NotEmpty(t, resp.Token)
		require.Equal(t, 1000, resp.User.Credits)
	})
}

func TestRecoverer(t *testing.T) {
	h := Recoverer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Internal server error", decodeError(t, rec).Error)
}
