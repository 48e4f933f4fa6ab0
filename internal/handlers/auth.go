package handlers

import (
	"log/slog"
	"net/http"

	"inkpress/internal/auth"
	"inkpress/internal/middleware"
)

// Auth groups the authentication handlers.
type Auth struct {
	tokens       *auth.TokenService
	passwordHash string
	totpSecret   string
}

// NewAuth creates the auth handler group. totpSecret may be empty, which
// disables the second factor.
func NewAuth(tokens *auth.TokenService, passwordHash, totpSecret string) *Auth {
	return &Auth{
		tokens:       tokens,
		passwordHash: passwordHash,
		totpSecret:   totpSecret,
	}
}

type loginRequest struct {
	Password string `json:"password"`
	Code     string `json:"code"`
}

// Login verifies the admin password (and TOTP code when configured) and
// issues a session token. Failed attempts consume rate budget upstream, so
// the handler only has to say yes or no.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Password == "" {
		respondError(w, http.StatusBadRequest, "Password is required")
		return
	}

	if !auth.CheckPassword(req.Password, a.passwordHash) {
		slog.Warn("login failed", "reason", "bad password", "remote", r.RemoteAddr)
		respondError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	if a.totpSecret != "" && !auth.VerifyTOTP(req.Code, a.totpSecret) {
		slog.Warn("login failed", "reason", "bad totp code", "remote", r.RemoteAddr)
		respondError(w, http.StatusUnauthorized, "Invalid verification code")
		return
	}

	token, err := a.tokens.Issue(auth.RoleAdmin)
	if err != nil {
		slog.Error("token issue failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"token":     token,
		"expiresIn": int(auth.TokenTTL.Seconds()),
	})
}

// Check reports whether the request carries a valid admin token. The
// Authenticate middleware has already done the verification.
func (a *Auth) Check(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	if claims == nil || claims.Role != auth.RoleAdmin {
		respondError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	respond(w, http.StatusOK, map[string]any{"valid": true, "role": claims.Role})
}
