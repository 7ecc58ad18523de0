package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ErlynFabian/WearShop-sub000/internal/api/middleware"
	"github.com/ErlynFabian/WearShop-sub000/internal/auth"
	"github.com/ErlynFabian/WearShop-sub000/internal/domain/user"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	users      *user.Service
	jwtService *auth.JWTService
}

func NewAuthHandlers(users *user.Service, jwtService *auth.JWTService) *AuthHandlers {
	return &AuthHandlers{users: users, jwtService: jwtService}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	User    UserResponse `json:"user"`
	Message string       `json:"message,omitempty"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func userResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles user registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	newUser, err := h.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrEmailTaken):
			respondJSONError(w, err.Error(), http.StatusConflict)
		case errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, user.ErrInvalidEmail),
			errors.Is(err, user.ErrInvalidName):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		default:
			respondJSONError(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	h.setAuthCookies(w, r, newUser)

	respondJSON(w, http.StatusCreated, AuthResponse{
		User:    userResponse(newUser),
		Message: "Registration successful",
	})
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidCredentials) {
			respondJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		respondJSONError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.setAuthCookies(w, r, u)

	respondJSON(w, http.StatusOK, AuthResponse{
		User:    userResponse(u),
		Message: "Login successful",
	})
}

// Logout clears the auth cookies.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearAuthCookies(w)
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Refresh handles token refresh
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie("refresh_token")
	if err != nil {
		respondJSONError(w, "No refresh token", http.StatusUnauthorized)
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		h.clearAuthCookies(w)
		respondJSONError(w, "User not found", http.StatusUnauthorized)
		return
	}

	h.setAuthCookies(w, r, u)

	respondJSON(w, http.StatusOK, map[string]string{"message": "Token refreshed"})
}

// Me returns the current authenticated user's information
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		respondJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	u, err := h.users.Get(r.Context(), claims.UserID)
	if err != nil {
		respondJSONError(w, "User not found", http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, userResponse(u))
}

func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, r *http.Request, u *user.User) {
	accessToken, accessExpiry, _ := h.jwtService.GenerateAccessToken(u.ID, u.Email, u.Role)
	refreshToken, refreshExpiry, _ := h.jwtService.GenerateRefreshToken(u.ID)

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		Path:     "/auth/refresh",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     "refresh_token",
		Value:    "",
		Path:     "/auth/refresh",
		MaxAge:   -1,
		HttpOnly: true,
	})
}
