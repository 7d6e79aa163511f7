package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/redmonkez12/go-accounts-api/internal/account"
	"github.com/redmonkez12/go-accounts-api/internal/httputil"
	"github.com/redmonkez12/go-accounts-api/internal/logging"
)

// RateLimiter throttles the unauthenticated endpoints
type RateLimiter interface {
	CheckIPRateLimitWithPurpose(ctx context.Context, ip, purpose string) (bool, error)
	RecordIPRequestWithPurpose(ctx context.Context, ip, purpose string) error
	CheckEmailCooldown(ctx context.Context, email string) (bool, error)
	SetEmailCooldown(ctx context.Context, email string) error
}

// DefaultMaxAvatarBytes is used when the handler is built without a limit
const DefaultMaxAvatarBytes int64 = 5 << 20

var allowedAvatarTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Handler contains HTTP handlers for the account endpoints
type Handler struct {
	service        *Service
	rateLimiter    RateLimiter
	maxAvatarBytes int64
}

// NewHandler builds the handler. rateLimiter may be nil to disable throttling.
func NewHandler(service *Service, rateLimiter RateLimiter, maxAvatarBytes int64) *Handler {
	if maxAvatarBytes <= 0 {
		maxAvatarBytes = DefaultMaxAvatarBytes
	}
	return &Handler{
		service:        service,
		rateLimiter:    rateLimiter,
		maxAvatarBytes: maxAvatarBytes,
	}
}

// SignupRequest represents the signup request body
type SignupRequest struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	Name         string `json:"name,omitempty"`
	Subscription string `json:"subscription,omitempty"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&r.Name, validation.Length(0, 200)),
		validation.Field(&r.Subscription, validation.In(subscriptionValues()...)),
	)
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// SubscriptionRequest represents the subscription update body
type SubscriptionRequest struct {
	Subscription string `json:"subscription"`
}

func (r SubscriptionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Subscription, validation.Required, validation.In(subscriptionValues()...)),
	)
}

// ResendVerificationRequest represents the resend-by-email body
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

func (r ResendVerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

func subscriptionValues() []any {
	subs := account.Subscriptions()
	values := make([]any, len(subs))
	for i, s := range subs {
		values[i] = string(s)
	}
	return values
}

// Signup handles account creation
// @Summary      Create an account
// @Description  Create an unverified account. A verification email is sent in the background.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body SignupRequest true "Signup data"
// @Success      201 {object} httputil.Envelope{data=Profile}
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      409 {object} httputil.Envelope "Email in use"
// @Failure      429 {object} httputil.Envelope "Too many requests"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /api/users/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.throttleIP(w, r, "signup") {
		return
	}

	var req SignupRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": account.NormalizeEmail(req.Email)})

	profile, err := h.service.Signup(r.Context(), SignupInput{
		Email:        req.Email,
		Password:     req.Password,
		Name:         strings.TrimSpace(req.Name),
		Subscription: account.Subscription(req.Subscription),
	})
	if err != nil {
		respondServiceError(w, logger, "signup", err)
		return
	}

	logger.Info("account created")
	httputil.RespondData(w, profile, http.StatusCreated)
}

// Login handles password login
// @Summary      Log in
// @Description  Authenticate with email and password. Any previous session is replaced.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} httputil.Envelope{data=Session}
// @Failure      400 {object} httputil.Envelope "Validation error"
// @Failure      401 {object} httputil.Envelope "Invalid credential"
// @Failure      429 {object} httputil.Envelope "Too many requests"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /api/users/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.throttleIP(w, r, "login") {
		return
	}

	var req LoginRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	logger = logger.WithFields(map[string]any{"email": account.NormalizeEmail(req.Email)})

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, logger, "login", err)
		return
	}

	logger.Info("account logged in")
	httputil.RespondData(w, session, http.StatusOK)
}

// Logout clears the current session
// @Summary      Log out
// @Tags         users
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} httputil.Envelope "Not authorized"
// @Failure      500 {object} httputil.Envelope "Internal server error"
// @Router       /api/users/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	acc, ok := AccountFromContext(r.Context())
	if !ok {
		notAuthorized(w)
		return
	}

	if err := h.service.Logout(r.Context(), acc.ID); err != nil {
		respondServiceError(w, logger, "logout", err)
		return
	}

	logger.Info("account logged out")
	w.WriteHeader(http.StatusNoContent)
}

// Current returns the authenticated account
// @Summary      Current account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} httputil.Envelope{data=Profile}
// @Failure      401 {object} httputil.Envelope "Not authorized"
// @Router       /api/users/current [get]
func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	acc, ok := AccountFromContext(r.Context())
	if !ok {
		notAuthorized(w)
		return
	}

	profile, err := h.service.Current(r.Context(), acc.ID)
	if err != nil {
		respondServiceError(w, logger, "current", err)
		return
	}

	httputil.RespondData(w, profile, http.StatusOK)
}

// UpdateSubscription changes the subscription tier
// @Summary      Update subscription
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SubscriptionRequest true "New tier"
// @Success      200 {object} httputil.Envelope{data=Profile}
// @Failure      400 {object} httputil.Envelope "Invalid subscription"
// @Failure      401 {object} httputil.Envelope "Not authorized"
// @Router       /api/users [patch]
func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	acc, ok := AccountFromContext(r.Context())
	if !ok {
		notAuthorized(w)
		return
	}

	var req SubscriptionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.service.UpdateSubscription(r.Context(), acc.ID, req.Subscription)
	if err != nil {
		respondServiceError(w, logger, "update subscription", err)
		return
	}

	logger.Info("subscription updated", "subscription", profile.Subscription)
	httputil.RespondData(w, profile, http.StatusOK)
}

// UpdateAvatar replaces the avatar image
// @Summary      Update avatar
// @Description  Multipart upload in field "avatar". JPEG, PNG, GIF and WebP are accepted.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        avatar formData file true "Avatar image"
// @Success      200 {object} httputil.Envelope{data=AvatarProfile}
// @Failure      400 {object} httputil.Envelope "Missing or unsupported file"
// @Failure      401 {object} httputil.Envelope "Not authorized"
// @Router       /api/users/avatars [patch]
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())
	acc, ok := AccountFromContext(r.Context())
	if !ok {
		notAuthorized(w)
		return
	}

	// multipart framing needs some headroom above the file itself
	r.Body = http.MaxBytesReader(w, r.Body, h.maxAvatarBytes+(1<<20))
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		logger.Warn("invalid avatar upload", "error", err)
		httputil.RespondMessage(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("avatar")
	if err != nil {
		httputil.RespondMessage(w, "Avatar file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Size > h.maxAvatarBytes {
		httputil.RespondMessage(w, "Avatar file is too large", http.StatusBadRequest)
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		respondServiceError(w, logger, "update avatar", err)
		return
	}
	contentType := http.DetectContentType(head[:n])
	if !allowedAvatarTypes[contentType] {
		httputil.RespondMessage(w, "Unsupported image type", http.StatusBadRequest)
		return
	}

	profile, err := h.service.UpdateAvatar(r.Context(), acc.ID, AvatarUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        io.MultiReader(bytes.NewReader(head[:n]), file),
	})
	if err != nil {
		respondServiceError(w, logger, "update avatar", err)
		return
	}

	logger.Info("avatar updated", "avatar_url", profile.AvatarURL)
	httputil.RespondData(w, profile, http.StatusOK)
}

// VerifyEmail consumes a verification token
// @Summary      Verify email
// @Tags         users
// @Produce      json
// @Param        token path string true "Verification token"
// @Success      200 {object} httputil.Envelope "Verification successful"
// @Failure      404 {object} httputil.Envelope "User not found"
// @Router       /api/users/verify/{token} [get]
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := h.service.VerifyEmail(r.Context(), chi.URLParam(r, "token")); err != nil {
		respondServiceError(w, logger, "verify email", err)
		return
	}

	logger.Info("email verified")
	httputil.RespondMessage(w, "Verification successful", http.StatusOK)
}

// ResendVerification re-sends the email for a pending verification token
// @Summary      Resend verification email by token
// @Tags         users
// @Produce      json
// @Param        token path string true "Verification token"
// @Success      200 {object} httputil.Envelope "Verification email sent"
// @Failure      400 {object} httputil.Envelope "Verification has already been passed"
// @Failure      404 {object} httputil.Envelope "User not found"
// @Router       /api/users/verify/{token} [post]
func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.throttleIP(w, r, "resend") {
		return
	}

	if err := h.service.ResendVerification(r.Context(), chi.URLParam(r, "token")); err != nil {
		respondServiceError(w, logger, "resend verification", err)
		return
	}

	httputil.RespondMessage(w, "Verification email sent", http.StatusOK)
}

// ResendVerificationByEmail re-sends the email for an unverified address
// @Summary      Resend verification email by address
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body ResendVerificationRequest true "Account email"
// @Success      200 {object} httputil.Envelope "Verification email sent"
// @Failure      400 {object} httputil.Envelope "Verification has already been passed"
// @Failure      404 {object} httputil.Envelope "User not found"
// @Failure      429 {object} httputil.Envelope "Too many requests"
// @Router       /api/users/verify [post]
func (h *Handler) ResendVerificationByEmail(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.throttleIP(w, r, "resend") {
		return
	}

	var req ResendVerificationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	email := account.NormalizeEmail(req.Email)
	logger = logger.WithFields(map[string]any{"email": email})

	if h.rateLimiter != nil {
		cooling, err := h.rateLimiter.CheckEmailCooldown(r.Context(), email)
		if err != nil {
			logger.Error("failed to check email cooldown", "error", err.Error())
		} else if cooling {
			logger.Warn("verification email cooldown active")
			httputil.RespondMessage(w, "Too many requests, please try again later", http.StatusTooManyRequests)
			return
		}
	}

	if err := h.service.ResendVerificationByEmail(r.Context(), email); err != nil {
		respondServiceError(w, logger, "resend verification", err)
		return
	}

	if h.rateLimiter != nil {
		if err := h.rateLimiter.SetEmailCooldown(r.Context(), email); err != nil {
			logger.Error("failed to set email cooldown", "error", err.Error())
		}
	}

	httputil.RespondMessage(w, "Verification email sent", http.StatusOK)
}

// throttleIP reports whether the request was rejected. Limiter failures
// are logged and let the request through.
func (h *Handler) throttleIP(w http.ResponseWriter, r *http.Request, purpose string) bool {
	if h.rateLimiter == nil {
		return false
	}
	logger := logging.GetLoggerFromContext(r.Context())

	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimitWithPurpose(r.Context(), ip, purpose)
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
		return false
	}
	if exceeded {
		logger.Warn("IP rate limit exceeded", "ip", ip, "purpose", purpose)
		httputil.RespondMessage(w, "Too many requests, please try again later", http.StatusTooManyRequests)
		return true
	}

	if err := h.rateLimiter.RecordIPRequestWithPurpose(r.Context(), ip, purpose); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}
	return false
}

type validatable interface {
	Validate() error
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, req validatable) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		logger.Warn("invalid request body", "error", err.Error())
		httputil.RespondMessage(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	if err := req.Validate(); err != nil {
		logger.Warn("request validation failed", "error", err.Error())
		httputil.RespondMessage(w, err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// respondServiceError maps service errors onto the response envelope
func respondServiceError(w http.ResponseWriter, logger *logging.Logger, op string, err error) {
	switch {
	case errors.Is(err, ErrEmailInUse):
		logger.Warn(op+" failed: email in use")
		httputil.RespondMessage(w, "Email in use", http.StatusConflict)
	case errors.Is(err, ErrInvalidCredentials):
		logger.Warn(op + " failed: invalid credentials")
		httputil.RespondMessage(w, "Invalid credential", http.StatusUnauthorized)
	case errors.Is(err, ErrAccountNotFound):
		logger.Warn(op + " failed: account not found")
		httputil.RespondMessage(w, "User not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyVerified):
		logger.Warn(op + " failed: already verified")
		httputil.RespondMessage(w, "Verification has already been passed", http.StatusBadRequest)
	case errors.Is(err, ErrPasswordRequired):
		logger.Warn(op + " failed: password required")
		httputil.RespondMessage(w, "Password is required", http.StatusBadRequest)
	case errors.Is(err, ErrPasswordTooLong):
		logger.Warn(op + " failed: password too long")
		httputil.RespondMessage(w, "Password is too long", http.StatusBadRequest)
	case errors.Is(err, ErrInvalidSubscription):
		logger.Warn(op + " failed: invalid subscription")
		httputil.RespondMessage(w, "Invalid subscription", http.StatusBadRequest)
	default:
		logger.Error(op+" failed: internal error", "error", err.Error())
		httputil.RespondMessage(w, "Internal server error", http.StatusInternalServerError)
	}
}

// getClientIP returns the peer address. Forwarded headers are resolved
// upstream by the router, and only for trusted proxies.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
