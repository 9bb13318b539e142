package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/idalmas/chatterbox-be/internal/apperrors"
	"github.com/idalmas/chatterbox-be/internal/auth"
	"github.com/idalmas/chatterbox-be/internal/fingerprint"
	"github.com/idalmas/chatterbox-be/internal/models"
	"github.com/idalmas/chatterbox-be/internal/services"
)

// Success message codes returned by the auth endpoints.
const (
	msgOtpSent         = "OTP_SENT"
	msgVerified        = "VERIFIED"
	msgAlreadyVerified = "ALREADY_VERIFIED"
	msgLoggedOut       = "LOGGED_OUT"
)

// AuthHandler handles HTTP requests for the auth flow.
type AuthHandler struct {
	service *services.AuthService
	users   services.UserServiceProvider
	tokens  *auth.TokenIssuer
	dev     bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *services.AuthService, users services.UserServiceProvider, tokens *auth.TokenIssuer, dev bool) *AuthHandler {
	return &AuthHandler{service: service, users: users, tokens: tokens, dev: dev}
}

// SignupPayload defines the structure for signup requests.
type SignupPayload struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOtpPayload defines the structure for verify-otp requests.
type VerifyOtpPayload struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

// ResendOtpPayload defines the structure for resend-otp requests.
type ResendOtpPayload struct {
	Email string `json:"email"`
}

// Signup registers a new account and answers with the PendingOtp signal.
// A session token is never issued here.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, apperrors.New(apperrors.Validation, apperrors.CodeMissingFields), h.dev)
		return
	}

	result, err := h.service.Signup(r.Context(), payload.Username, payload.Email, payload.Password)
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Signup rejected")
		respondError(w, err, h.dev)
		return
	}

	body := map[string]interface{}{"message": msgOtpSent, "email": result.Email}
	if result.Preview != "" {
		body["preview"] = result.Preview
	}
	respondJSON(w, http.StatusCreated, body)
}

// Login authenticates a credential pair. Unverified accounts and unknown
// fingerprints get the OTP waypoint instead of a session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, apperrors.New(apperrors.Validation, apperrors.CodeMissingFields), h.dev)
		return
	}

	fp := fingerprint.FromRequest(r)
	result, err := h.service.Login(r.Context(), payload.Email, payload.Password, fp, r.UserAgent())
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed authentication attempt")
		respondError(w, err, h.dev)
		return
	}

	if result.State == services.StatePendingOtp {
		body := map[string]interface{}{
			"message": msgOtpSent,
			"email":   payload.Email,
			"reason":  result.Reason,
		}
		if result.Preview != "" {
			body["preview"] = result.Preview
		}
		respondJSON(w, http.StatusOK, body)
		return
	}

	if err := h.issueSession(w, result.User); err != nil {
		respondError(w, err, h.dev)
		return
	}
	respondJSON(w, http.StatusOK, result.User)
}

// VerifyOtp consumes a pending code and completes authentication: the account
// becomes verified, the device trusted, and the session cookie is set.
func (h *AuthHandler) VerifyOtp(w http.ResponseWriter, r *http.Request) {
	var payload VerifyOtpPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, apperrors.New(apperrors.Validation, apperrors.CodeMissingFields), h.dev)
		return
	}

	fp := fingerprint.FromRequest(r)
	result, err := h.service.VerifyOTP(r.Context(), payload.Email, payload.Otp, fp, r.UserAgent())
	if err != nil {
		log.Warn().Err(err).Str("email", payload.Email).Msg("OTP verification failed")
		respondError(w, err, h.dev)
		return
	}

	if err := h.issueSession(w, result.User); err != nil {
		respondError(w, err, h.dev)
		return
	}

	message := msgVerified
	if result.AlreadyVerified {
		message = msgAlreadyVerified
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     message,
		"id":          result.User.ID,
		"username":    result.User.Username,
		"email":       result.User.Email,
		"isVerified":  result.User.IsVerified,
		"lastLoginAt": result.User.LastLoginAt,
	})
}

// ResendOtp issues a fresh code, invalidating any pending one.
func (h *AuthHandler) ResendOtp(w http.ResponseWriter, r *http.Request) {
	var payload ResendOtpPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, apperrors.New(apperrors.Validation, apperrors.CodeInvalidEmail), h.dev)
		return
	}

	result, err := h.service.ResendOTP(r.Context(), payload.Email)
	if err != nil {
		respondError(w, err, h.dev)
		return
	}

	if result.AlreadyVerified {
		respondJSON(w, http.StatusOK, map[string]string{"message": msgAlreadyVerified})
		return
	}

	body := map[string]interface{}{"message": msgOtpSent}
	if result.Preview != "" {
		body["preview"] = result.Preview
	}
	respondJSON(w, http.StatusOK, body)
}

// Logout clears the session cookie. Already-issued tokens stay valid until
// their natural expiry; there is no server-side revocation list.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.tokens.ClearCookie(w)
	respondJSON(w, http.StatusResetContent, map[string]string{"message": msgLoggedOut})
}

// CheckAuth returns the currently authenticated user from the token.
func (h *AuthHandler) CheckAuth(w http.ResponseWriter, r *http.Request) {
	claims, ok := r.Context().Value(auth.UserClaimsKey).(*auth.Claims)
	if !ok {
		log.Error().Msg("Could not retrieve user claims from context")
		respondError(w, apperrors.New(apperrors.Dependency, apperrors.CodeInternal), h.dev)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User from token not found")
		respondError(w, err, h.dev)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, user models.User) error {
	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate session token")
		return apperrors.Wrap(apperrors.Dependency, apperrors.CodeInternal, err)
	}
	h.tokens.SetCookie(w, token)
	return nil
}
