package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"

	authgate "github.com/mwhitlock/authgate"
)

// Config defines a public type used by authgate APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// BasePath prefixes every workflow route, e.g. "/auth". Empty mounts at
	// the root.
	BasePath string
	// CookieSecure marks the session cookie Secure. Session mode only.
	CookieSecure bool
}

type handler struct {
	engine *authgate.Engine
	cfg    Config
}

// NewHandler mounts the six workflow endpoints and returns the handler.
// Each call builds a fresh, independent mux; mounting is per-handler, so
// wiring the routes twice requires constructing two handlers on purpose.
func NewHandler(engine *authgate.Engine, cfg Config) http.Handler {
	h := &handler{engine: engine, cfg: cfg}

	base := strings.TrimSuffix(cfg.BasePath, "/")

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+base+"/register", h.register)
	mux.HandleFunc("POST "+base+"/login", h.login)
	mux.HandleFunc("POST "+base+"/logout", h.logout)
	mux.HandleFunc("POST "+base+"/send-verification-otp", h.sendVerificationOTP)
	mux.HandleFunc("POST "+base+"/verify-email", h.verifyEmail)
	mux.HandleFunc("POST "+base+"/send-forgot-otp", h.sendForgotOTP)
	mux.HandleFunc("POST "+base+"/reset-password", h.resetPassword)

	return mux
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decode(w, r, &req) {
		return
	}

	user, err := h.engine.Register(requestContext(r), req.Email, req.Password, req.Role)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	result, err := h.engine.Login(requestContext(r), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.SessionID != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     h.engine.SessionCookieName(),
			Value:    result.SessionID,
			Path:     "/",
			HttpOnly: true,
			Secure:   h.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	artifact := h.artifactFromRequest(r)

	if err := h.engine.Logout(requestContext(r), artifact); err != nil {
		writeError(w, err)
		return
	}

	if h.engine.Mode() == authgate.ModeSession {
		http.SetCookie(w, &http.Cookie{
			Name:     h.engine.SessionCookieName(),
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   h.cfg.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "logged out", "user": nil})
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *handler) sendVerificationOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.engine.SendVerificationCode(requestContext(r), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "verification code sent"})
}

type verifyEmailRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.engine.VerifyEmail(requestContext(r), req.Email, req.OTP); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "email verified"})
}

func (h *handler) sendForgotOTP(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.engine.SendResetCode(requestContext(r), req.Email); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "reset code sent"})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (h *handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decode(w, r, &req) {
		return
	}

	if err := h.engine.ResetPassword(requestContext(r), req.Email, req.OTP, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "password reset"})
}

func (h *handler) artifactFromRequest(r *http.Request) string {
	const bearer = "Bearer "
	if value := r.Header.Get("Authorization"); strings.HasPrefix(value, bearer) {
		return value[len(bearer):]
	}
	if h.engine.Mode() == authgate.ModeSession {
		if cookie, err := r.Cookie(h.engine.SessionCookieName()); err == nil {
			return cookie.Value
		}
	}
	return ""
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		writeError(w, authgate.ErrInvalidInput)
		return false
	}
	return true
}

// requestContext stamps the client IP onto the request context so the
// engine's rate limiter and audit events can key on it.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "" {
		ctx = authgate.WithClientIP(ctx, host)
	}

	return ctx
}
