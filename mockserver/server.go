package mockserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/MrEthical07/goAuthClient/provider/httpapi"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Options configures the router.
type Options struct {
	Logger *slog.Logger
	// Prefix mounts the auth routes under a path such as "/api".
	Prefix string
	// Trace wraps the router in an otelhttp server handler.
	Trace bool
	// Latency delays every response, to exercise client timeouts.
	Latency time.Duration
}

type server struct {
	svc    goAuthClient.CredentialService
	logger *slog.Logger
}

// NewRouter serves svc over the storefront auth routes.
func NewRouter(svc goAuthClient.CredentialService, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{svc: svc, logger: logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))
	if opts.Latency > 0 {
		r.Use(delay(opts.Latency))
	}

	r.Route(opts.Prefix+"/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/register", s.register)
		r.Post("/refresh", s.refresh)
		r.Post("/forgot-password", s.forgotPassword)
		r.Post("/reset-password", s.resetPassword)

		r.Group(func(r chi.Router) {
			r.Use(requireBearer)
			r.Post("/logout", s.logout)
			r.Get("/profile", s.getProfile)
			r.Put("/profile", s.updateProfile)
			r.Post("/change-password", s.changePassword)
		})
	})

	var h http.Handler = r
	if opts.Trace {
		h = otelhttp.NewHandler(r, "mockserver")
	}
	return h
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req goAuthClient.LoginRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.svc.Login(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, httpapi.FromAuthResponse(resp), "Login successful")
}

func (s *server) register(w http.ResponseWriter, r *http.Request) {
	var req goAuthClient.RegisterRequest
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.svc.Register(r.Context(), req)
	if err != nil {
		s.fail(w, r, err, http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusCreated, httpapi.FromAuthResponse(resp), "Registration successful")
}

func (s *server) refresh(w http.ResponseWriter, r *http.Request) {
	var req httpapi.RefreshBody
	if !decode(w, r, &req) {
		return
	}
	resp, err := s.svc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, httpapi.FromAuthResponse(resp), "")
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Logout(r.Context(), bearer(r)); err != nil {
		s.fail(w, r, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, nil, "Logged out")
}

func (s *server) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.GetProfile(r.Context(), bearer(r))
	if err != nil {
		s.fail(w, r, err, http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, user, "")
}

func (s *server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var update goAuthClient.ProfileUpdate
	if !decode(w, r, &update) {
		return
	}
	user, err := s.svc.UpdateProfile(r.Context(), bearer(r), update)
	if err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, user, "Profile updated")
}

func (s *server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req goAuthClient.ChangePasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.ChangePassword(r.Context(), bearer(r), req); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, nil, "Password changed")
}

func (s *server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req goAuthClient.ForgotPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.ForgotPassword(r.Context(), req); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, nil, "If the address is registered, reset instructions were sent")
}

func (s *server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req goAuthClient.ResetPasswordRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.ResetPassword(r.Context(), req); err != nil {
		s.fail(w, r, err, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, nil, "Password reset")
}

// fail writes rejectStatus for a rejection and 502 for anything else.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error, rejectStatus int) {
	if errors.Is(err, goAuthClient.ErrCredentialRejected) {
		writeError(w, rejectStatus, rejectionMessage(err))
		return
	}
	s.logger.ErrorContext(r.Context(), "credential service failed",
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
		"error", err,
	)
	writeError(w, http.StatusBadGateway, "Service temporarily unavailable")
}

// rejectionMessage strips the sentinel prefix from a wrapped rejection.
func rejectionMessage(err error) string {
	msg := err.Error()
	prefix := goAuthClient.ErrCredentialRejected.Error() + ": "
	if rest, ok := strings.CutPrefix(msg, prefix); ok {
		return rest
	}
	return msg
}

func requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearer(r *http.Request) string {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(httpapi.Envelope[any]{Success: true, Data: data, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(httpapi.Envelope[any]{Success: false, Message: message})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.DebugContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

func delay(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(d):
				next.ServeHTTP(w, r)
			case <-r.Context().Done():
			}
		})
	}
}
