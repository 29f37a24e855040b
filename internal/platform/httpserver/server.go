package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	finance "backoffice/contexts/finance-core/financial-request-engine"
	authorization "backoffice/contexts/identity-access/authorization-service"
	identity "backoffice/contexts/identity-access/identity-service"
	featuregate "backoffice/contexts/tenant-operations/feature-gate-service"
	membership "backoffice/contexts/tenant-operations/membership-service"
	tenant "backoffice/contexts/tenant-operations/tenant-service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	_ "backoffice/internal/platform/httpserver/docs"
)

// Modules bundles every context module mounted on the server.
type Modules struct {
	Identity      identity.Module
	Tenants       tenant.Module
	Memberships   membership.Module
	Features      featuregate.Module
	Authorization authorization.Module
	Finance       finance.Module
}

type Server struct {
	mux           *http.ServeMux
	logger        *slog.Logger
	addr          string
	jwtSecret     []byte
	identity      identity.Module
	tenants       tenant.Module
	memberships   membership.Module
	features      featuregate.Module
	authorization authorization.Module
	finance       finance.Module
}

func New(modules Modules, logger *slog.Logger, addr string, jwtSecret string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:           http.NewServeMux(),
		logger:        logger,
		addr:          addr,
		jwtSecret:     []byte(jwtSecret),
		identity:      modules.Identity,
		tenants:       modules.Tenants,
		memberships:   modules.Memberships,
		features:      modules.Features,
		authorization: modules.Authorization,
		finance:       modules.Finance,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", s.handleHealth)

	s.registerIdentityRoutes()
	s.registerTenantRoutes()
	s.registerMembershipRoutes()
	s.registerFeatureRoutes()
	s.registerAuthzRoutes()
	s.registerFinanceRoutes()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// resolveActor extracts the acting principal from the request. A valid
// HMAC-signed bearer token wins; the X-User-Id header is the fallback for
// internal traffic behind the gateway.
func (s *Server) resolveActor(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && len(s.jwtSecret) > 0 {
		token, err := jwt.Parse(strings.TrimSpace(parts[1]), func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.jwtSecret, nil
		})
		if err == nil && token.Valid {
			if subject, err := token.Claims.GetSubject(); err == nil && subject != "" {
				return subject
			}
		}
	}
	return strings.TrimSpace(r.Header.Get("X-User-Id"))
}

func (s *Server) requireActor(w http.ResponseWriter, r *http.Request, write func(http.ResponseWriter, int, string, string)) (string, bool) {
	actorID := s.resolveActor(r)
	if actorID == "" {
		write(w, http.StatusUnauthorized, "missing_user", "bearer token or X-User-Id header is required")
		return "", false
	}
	return actorID, true
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, target any, write func(http.ResponseWriter, int, string, string)) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		write(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
