package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"simmarket/models"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Claims is the payload of an access token.
type Claims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (s Service) Register(
	ctx context.Context,
	name, email, password string,
) (AuthResponse, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return AuthResponse{}, fail(models.ErrValidation, "All fields are required")
	}

	hashed, err := bcryptHash(password)
	if err != nil {
		return AuthResponse{}, err
	}
	user, err := s.repo.CreateUser(ctx, name, email, hashed, s.signupCredits)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return AuthResponse{}, fail(models.ErrConflict, "Email already registered")
		}
		return AuthResponse{}, err
	}
	return s.issue(user)
}

func (s Service) Login(
	ctx context.Context,
	email, password string,
) (AuthResponse, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return AuthResponse{}, fail(models.ErrValidation, "Email and password are required")
	}

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return AuthResponse{}, errInvalidCredentials
		}
		return AuthResponse{}, err
	}
	if !bcryptCompare(user.Password, password) {
		return AuthResponse{}, errInvalidCredentials
	}
	return s.issue(user)
}

// ResolveUser maps a bearer token to the stored user it was issued for. Bad
// signatures, expired tokens and tokens whose user or email no longer match all
// fail with models.ErrUnauthenticated.
func (s Service) ResolveUser(
	ctx context.Context,
	token string,
) (models.User, error) {
	unauthorized := fail(models.ErrUnauthenticated, "Unauthorized")
	if token == "" {
		return models.User{}, unauthorized
	}
	claims, err := parseJWT(token, s.jwtSecret)
	if err != nil {
		return models.User{}, unauthorized
	}
	user, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.User{}, unauthorized
		}
		return models.User{}, err
	}
	if user.Email != claims.Email {
		return models.User{}, unauthorized
	}
	return user, nil
}

func (s Service) issue(user models.User) (AuthResponse, error) {
	token, err := generateJWT(user, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return AuthResponse{}, err
	}
	return AuthResponse{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func bcryptHash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(
		[]byte(password),
		bcrypt.DefaultCost,
	)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func bcryptCompare(hashed, password string) bool {
	err := bcrypt.CompareHashAndPassword(
		[]byte(hashed),
		[]byte(password),
	)
	return err == nil
}

func generateJWT(
	user models.User,
	secret string,
	ttl time.Duration,
) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		Claims{
			UserID: user.ID,
			Email:  user.Email,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
				IssuedAt:  jwt.NewNumericDate(now),
			},
		},
	)
	tokenStr, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return tokenStr, nil
}

func parseJWT(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.ExpiresAt == nil {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
