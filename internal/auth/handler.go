package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/snapplace/server/internal/httputil"
	"github.com/snapplace/server/internal/logging"
	"github.com/snapplace/server/internal/user"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Name                 string `json:"name"`
	LastName             string `json:"last_name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type loginRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	RecaptchaResponse string `json:"recaptchaResponse"`
}

type resendRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type userData struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// registerResponse and verifyResponse are the flatter auth-flow shapes; they
// deliberately do not use httputil.Envelope.
type registerResponse struct {
	Success     bool      `json:"success"`
	Data        *userData `json:"data,omitempty"`
	Message     string    `json:"message,omitempty"`
	Error       string    `json:"error,omitempty"`
	Requires2FA bool      `json:"requires_2fa,omitempty"`
}

type loginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Requires2FA bool   `json:"requires_2fa,omitempty"`
}

type verifyResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	Token      string `json:"token,omitempty"`
	IsVerified bool   `json:"is_verified,omitempty"`
}

type validationResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if fieldErrors := validateRegister(&req); len(fieldErrors) > 0 {
		httputil.RespondJSON(w, validationResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  fieldErrors,
		}, http.StatusUnprocessableEntity)
		return
	}

	u, err := h.service.Register(r.Context(), req.Name, req.LastName, strings.ToLower(req.Email), req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			httputil.RespondJSON(w, validationResponse{
				Success: false,
				Message: "Validation failed",
				Errors:  map[string][]string{"email": {"The email has already been taken."}},
			}, http.StatusUnprocessableEntity)
		case errors.Is(err, ErrEmailDelivery):
			httputil.RespondJSON(w, registerResponse{
				Success: false,
				Message: "No se pudo enviar el código de verificación. Intenta de nuevo.",
				Error:   "email_failed",
			}, http.StatusInternalServerError)
		default:
			logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "registration failed", "error", err)
			httputil.RespondJSON(w, registerResponse{
				Success: false,
				Message: "Failed to register user",
			}, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, registerResponse{
		Success:     true,
		Data:        mapUserData(u, nil),
		Message:     "Usuario registrado. Código 2FA enviado a tu correo",
		Requires2FA: true,
	}, http.StatusCreated)
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if fieldErrors := validateLogin(&req); len(fieldErrors) > 0 {
		httputil.RespondJSON(w, validationResponse{
			Success: false,
			Message: "Validation failed",
			Errors:  fieldErrors,
		}, http.StatusUnprocessableEntity)
		return
	}

	err := h.service.Login(r.Context(), strings.ToLower(req.Email), req.Password, req.RecaptchaResponse, getClientIP(r))
	if err != nil {
		switch {
		case errors.Is(err, ErrCaptchaFailed):
			httputil.RespondJSON(w, loginResponse{
				Success: false,
				Message: "Captcha no válido",
			}, http.StatusUnprocessableEntity)
		case errors.Is(err, ErrInvalidCredentials):
			httputil.RespondJSON(w, loginResponse{
				Success: false,
				Message: "Invalid credentials",
			}, http.StatusUnauthorized)
		default:
			logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "login failed", "error", err)
			httputil.RespondJSON(w, loginResponse{
				Success: false,
				Message: "Failed to login",
			}, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, loginResponse{
		Success:     true,
		Message:     "Código 2FA enviado a tu correo",
		Requires2FA: true,
	}, http.StatusOK)
}

// Resend2FA handles POST /resend-2fa.
func (h *Handler) Resend2FA(w http.ResponseWriter, r *http.Request) {
	var req resendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if !emailRegexp.MatchString(req.Email) {
		httputil.RespondValidationError(w, "Validation failed", map[string][]string{
			"email": {"A valid email is required."},
		})
		return
	}

	err := h.service.ResendCode(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondError(w, "Usuario no encontrado", http.StatusNotFound)
			return
		}
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "resend failed", "error", err)
		httputil.RespondError(w, "Failed to resend code", http.StatusInternalServerError)
		return
	}

	httputil.RespondMessage(w, "Código 2FA reenviado a tu correo", http.StatusOK)
}

// Verify2FA handles POST /verify-2fa. The three failure messages are
// distinct on purpose: expired and already-used codes point the user at
// /resend-2fa, a mistyped code asks them to re-check it.
func (h *Handler) Verify2FA(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fieldErrors := map[string][]string{}
	if !emailRegexp.MatchString(req.Email) {
		fieldErrors["email"] = append(fieldErrors["email"], "A valid email is required.")
	}
	if req.Code == "" {
		fieldErrors["code"] = append(fieldErrors["code"], "The code field is required.")
	}
	if len(fieldErrors) > 0 {
		httputil.RespondJSON(w, validationResponse{
			Success: false,
			Message: "Validación fallida",
			Errors:  fieldErrors,
		}, http.StatusUnprocessableEntity)
		return
	}

	token, _, err := h.service.VerifyCode(r.Context(), strings.ToLower(req.Email), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			httputil.RespondJSON(w, verifyResponse{
				Success: false,
				Error:   "Usuario no encontrado",
			}, http.StatusNotFound)
		case errors.Is(err, ErrCodeExpired):
			httputil.RespondJSON(w, verifyResponse{
				Success: false,
				Error:   "Código expirado. Solicita uno nuevo con /resend-2fa",
			}, http.StatusBadRequest)
		case errors.Is(err, ErrCodeAlreadyUsed):
			httputil.RespondJSON(w, verifyResponse{
				Success: false,
				Error:   "Código ya utilizado. Solicita uno nuevo con /resend-2fa",
			}, http.StatusBadRequest)
		case errors.Is(err, ErrCodeNotFound):
			httputil.RespondJSON(w, verifyResponse{
				Success: false,
				Error:   "Código inválido. Verifica que sea correcto.",
			}, http.StatusBadRequest)
		default:
			logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "verify failed", "error", err)
			httputil.RespondJSON(w, verifyResponse{
				Success: false,
				Error:   "Error al verificar el código. Intenta de nuevo.",
			}, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, verifyResponse{
		Success:    true,
		Message:    "Autenticado correctamente",
		Token:      token,
		IsVerified: true,
	}, http.StatusOK)
}

// Logout handles POST /logout. Every session the user holds is revoked.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	if err := h.service.Logout(r.Context(), userID); err != nil {
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "logout failed", "error", err)
		httputil.RespondError(w, "Failed to logout", http.StatusInternalServerError)
		return
	}

	httputil.RespondMessage(w, "Sesión cerrada", http.StatusOK)
}

// Me handles GET /me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	u, roles, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			httputil.RespondError(w, "Usuario no encontrado", http.StatusNotFound)
			return
		}
		logging.GetLoggerFromContext(r.Context()).ErrorContext(r.Context(), "profile lookup failed", "error", err)
		httputil.RespondError(w, "Failed to load profile", http.StatusInternalServerError)
		return
	}

	httputil.RespondSuccess(w, mapUserData(u, roles), http.StatusOK)
}

func validateRegister(req *registerRequest) map[string][]string {
	fieldErrors := map[string][]string{}

	if l := len(strings.TrimSpace(req.Name)); l < 2 || l > 255 {
		fieldErrors["name"] = append(fieldErrors["name"], "The name must be between 2 and 255 characters.")
	}
	if l := len(strings.TrimSpace(req.LastName)); l < 2 || l > 255 {
		fieldErrors["last_name"] = append(fieldErrors["last_name"], "The last name must be between 2 and 255 characters.")
	}
	if !emailRegexp.MatchString(req.Email) {
		fieldErrors["email"] = append(fieldErrors["email"], "A valid email is required.")
	}
	if len(req.Password) < 8 {
		fieldErrors["password"] = append(fieldErrors["password"], "The password must be at least 8 characters.")
	}
	if req.Password != req.PasswordConfirmation {
		fieldErrors["password"] = append(fieldErrors["password"], "The password confirmation does not match.")
	}

	return fieldErrors
}

func validateLogin(req *loginRequest) map[string][]string {
	fieldErrors := map[string][]string{}

	if !emailRegexp.MatchString(req.Email) {
		fieldErrors["email"] = append(fieldErrors["email"], "A valid email is required.")
	}
	if len(req.Password) < 8 {
		fieldErrors["password"] = append(fieldErrors["password"], "The password must be at least 8 characters.")
	}
	if req.RecaptchaResponse == "" {
		fieldErrors["recaptchaResponse"] = append(fieldErrors["recaptchaResponse"], "The recaptchaResponse field is required.")
	}

	return fieldErrors
}

func mapUserData(u *user.User, roles []string) *userData {
	return &userData{
		ID:        u.ID.String(),
		Name:      u.Name,
		LastName:  u.LastName,
		Email:     u.Email,
		Roles:     roles,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// getClientIP extracts the client IP, preferring proxy headers over the
// socket address.
func getClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
