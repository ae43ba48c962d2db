package transport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/akhdanrgya/teluhub-client/utils/metrics"
	"github.com/gorilla/mux"
)

// Status is the client state reported on /healthz.
type Status interface {
	IsAuthenticated() bool
}

type RestHandler struct {
	Status  Status
	Profile string
	started time.Time
}

type HealthResponse struct {
	Status        string `json:"status"`
	Profile       string `json:"profile"`
	Authenticated bool   `json:"authenticated"`
	Uptime        string `json:"uptime"`
}

// NewTransport serves the Prometheus registry and a health check for long
// running commands.
func NewTransport(status Status, profile string) http.Handler {
	router := mux.NewRouter()

	rh := &RestHandler{
		Status:  status,
		Profile: profile,
		started: time.Now(),
	}

	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", rh.Health).Methods(http.MethodGet)

	// middleware
	router.Use(LoggingMiddleware("/metrics", "/healthz"))

	return router
}

func (s *RestHandler) Health(w http.ResponseWriter, r *http.Request) {
	res := HealthResponse{
		Status:  "ok",
		Profile: s.Profile,
		Uptime:  time.Since(s.started).Truncate(time.Second).String(),
	}
	if s.Status != nil {
		res.Authenticated = s.Status.IsAuthenticated()
	}
	writeJSON(w, http.StatusOK, res)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
