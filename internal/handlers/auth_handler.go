package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"

	"github.com/titanbank/backend/internal/middleware"
)

// AuthHandler manages the HTTP-only session cookie. The client never stores
// or decodes the token itself; it hands the token to SetToken once and relies
// on server-side principal resolution afterwards.
type AuthHandler struct {
	redis *redis.Client
}

func NewAuthHandler(redisClient *redis.Client) *AuthHandler {
	return &AuthHandler{redis: redisClient}
}

type setTokenRequest struct {
	Token string `json:"token"`
}

type cookieResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SetToken stores the session token in the auth cookie.
func (h *AuthHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req setTokenRequest
	if err := dec.Decode(&req); err != nil {
		writeCookieResponse(w, http.StatusBadRequest, cookieResponse{Success: false, Message: "Invalid request body"})
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeCookieResponse(w, http.StatusBadRequest, cookieResponse{Success: false, Message: "Request body must only contain a single JSON object"})
		return
	}
	if req.Token == "" {
		writeCookieResponse(w, http.StatusBadRequest, cookieResponse{Success: false, Message: "No token provided"})
		return
	}

	http.SetCookie(w, sessionCookie(req.Token, 60*60*24))
	writeCookieResponse(w, http.StatusOK, cookieResponse{Success: true})
}

// Logout expires the auth cookie and blacklists the presented token until its
// natural expiry, so a stolen copy cannot be replayed.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromRequest(r); token != "" && h.redis != nil {
		viper.SetDefault("jwt.expiry_hours", 24)
		ttl := time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour
		if err := h.redis.Set(r.Context(), "blacklist:"+token, "1", ttl).Err(); err != nil {
			log.Printf("[AUTH] Failed to blacklist token: %v", err)
		}
	}

	http.SetCookie(w, sessionCookie("", -1))
	writeCookieResponse(w, http.StatusOK, cookieResponse{Success: true})
}

func sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   viper.GetString("app.env") == "production",
		SameSite: http.SameSiteStrictMode,
	}
}

func writeCookieResponse(w http.ResponseWriter, status int, resp cookieResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
