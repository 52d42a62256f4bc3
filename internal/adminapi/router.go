// Package adminapi is the HTTP control surface for a running server:
// status, the player and world rosters, kick/ban/op actions, and a
// Prometheus /metrics scrape endpoint. It listens on its own address
// (config.Keys.AdminAPIAddress), separate from the game TCP port. Every
// route under /api/v1 requires a bearer token minted by IssueToken;
// /healthz, /metrics and /swagger/ are served without one.
package adminapi

import (
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/obsidian-net/classicd/internal/metrics"
	"github.com/obsidian-net/classicd/internal/repository"
	"github.com/obsidian-net/classicd/pkg/log"
)

// Gateway is the slice of *server.Server the admin API actually needs,
// kept narrow so handlers can be tested against a fake.
type Gateway interface {
	PlayerSnapshot() []PlayerSummary
	WorldSummaries() []WorldSummaryView
	KickPlayer(username, reason string) bool
	BanPlayer(username string) error
	UnbanPlayer(username string) error
	OpPlayer(username string) error
	DeopPlayer(username string) error
	SaveAll() error
}

// PlayerSummary and WorldSummaryView are the admin API's own read-only
// shapes; adapting *server.Server's richer types to these happens once,
// in internal/server/adminapi.go, so this package never imports
// internal/player or internal/world.
type PlayerSummary struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	World       string `json:"world"`
	Operator    bool   `json:"operator"`
}

type WorldSummaryView struct {
	Name         string `json:"name"`
	SizeX        uint16 `json:"sizeX"`
	SizeY        uint16 `json:"sizeY"`
	SizeZ        uint16 `json:"sizeZ"`
	Persistent   bool   `json:"persistent"`
	PlayerCount  int    `json:"playerCount"`
}

// API wires a Gateway and an optional audit repository into an
// http.Handler.
type API struct {
	gw     Gateway
	audit  *repository.Repository // nil disables audit recording, not routes
	secret []byte
}

// New builds the admin API. audit may be nil (no admin action is
// recorded, but every route still works).
func New(gw Gateway, audit *repository.Repository, secret []byte) *API {
	return &API{gw: gw, audit: audit, secret: secret}
}

// Router builds the full mux.Router, middleware included. Mount it
// directly with http.ListenAndServe or wrap it further.
func (a *API) Router() http.Handler {
	r := mux.NewRouter()
	r.StrictSlash(true)

	r.HandleFunc("/healthz", a.handleHealthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	r.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"))).Methods(http.MethodGet)

	secured := r.PathPrefix("/api/v1").Subrouter()
	secured.Use(func(next http.Handler) http.Handler { return requireBearer(a.secret, next) })

	secured.HandleFunc("/players", a.handleListPlayers).Methods(http.MethodGet)
	secured.HandleFunc("/players/{username}/kick", a.handleKick).Methods(http.MethodPost)
	secured.HandleFunc("/players/{username}/ban", a.handleBan).Methods(http.MethodPost)
	secured.HandleFunc("/players/{username}/unban", a.handleUnban).Methods(http.MethodPost)
	secured.HandleFunc("/players/{username}/op", a.handleOp).Methods(http.MethodPost)
	secured.HandleFunc("/players/{username}/deop", a.handleDeop).Methods(http.MethodPost)
	secured.HandleFunc("/worlds", a.handleListWorlds).Methods(http.MethodGet)
	secured.HandleFunc("/worlds/save", a.handleSaveAll).Methods(http.MethodPost)

	r.Use(handlers.CompressHandler)
	r.Use(handlers.RecoveryHandler(handlers.PrintRecoveryStack(true)))
	r.Use(handlers.CORS(
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
		handlers.AllowedOrigins([]string{"*"}),
	))

	return handlers.CustomLoggingHandler(io.Discard, r, func(_ io.Writer, params handlers.LogFormatterParams) {
		log.Debugf("adminapi: %s %s -> %d", params.Request.Method, params.URL.Path, params.StatusCode)
	})
}

func (a *API) handleHealthz(rw http.ResponseWriter, r *http.Request) {
	writeJSON(rw, http.StatusOK, map[string]string{"status": "ok"})
}
