package http

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kjstillabower/weather-outfit-service/internal/lifecycle"
	"github.com/kjstillabower/weather-outfit-service/internal/location"
	"github.com/kjstillabower/weather-outfit-service/internal/observability"
	"github.com/kjstillabower/weather-outfit-service/internal/recommend"
	"github.com/kjstillabower/weather-outfit-service/internal/service"
	"github.com/kjstillabower/weather-outfit-service/internal/session"
	"github.com/kjstillabower/weather-outfit-service/internal/validation"
)

// HealthConfig holds the dependencies the health handler probes.
type HealthConfig struct {
	// StorePing, when set, checks that the session store is reachable. Set for memcached and redis.
	StorePing func(ctx context.Context) error
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	weatherService   *service.WeatherService
	pages            *Pages
	healthConfig     *HealthConfig
	logger           *zap.Logger
	healthStatusMu   sync.Mutex
	healthStatusPrev string
}

// NewHandler returns a new Handler.
func NewHandler(
	weatherService *service.WeatherService,
	pages *Pages,
	healthConfig *HealthConfig,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		weatherService: weatherService,
		pages:          pages,
		healthConfig:   healthConfig,
		logger:         logger,
	}
}

// Routes mounts the page, session and API routes. Routes that may call the weather
// provider run under requestTimeout.
func (h *Handler) Routes(router *mux.Router, requestTimeout time.Duration) {
	router.HandleFunc("/", h.GetIndex).Methods(http.MethodGet)
	router.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)

	sessions := router.PathPrefix("/sessions/{id}").Subrouter()
	sessions.Use(TimeoutMiddleware(requestTimeout))
	sessions.HandleFunc("", h.GetSession).Methods(http.MethodGet)
	sessions.HandleFunc("", h.DeleteSession).Methods(http.MethodDelete)
	sessions.HandleFunc("/location", h.PostLocation).Methods(http.MethodPost)
	sessions.HandleFunc("/search", h.PostSearch).Methods(http.MethodPost)
	sessions.HandleFunc("/history/{index:[0-9]+}", h.PostHistory).Methods(http.MethodPost)
	sessions.HandleFunc("/theme", h.PostTheme).Methods(http.MethodPost)
	sessions.HandleFunc("/detail", h.PostDetail).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(TimeoutMiddleware(requestTimeout))
	api.HandleFunc("/weather", h.GetWeather).Methods(http.MethodGet)
	api.HandleFunc("/weather/city/{city}", h.GetWeatherByCity).Methods(http.MethodGet)
	api.HandleFunc("/recommendation", h.GetRecommendation).Methods(http.MethodGet)
}

// GetIndex handles GET /. Every page load starts a fresh session in the loading state.
func (h *Handler) GetIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Accept-CH", "Sec-CH-Prefers-Color-Scheme")
	w.Header().Set("Vary", "Sec-CH-Prefers-Color-Scheme")

	st, err := h.weatherService.StartSession(r.Context(), prefersDark(r))
	if err != nil {
		h.sessionFailure(w, r, err)
		return
	}
	h.render(w, r, st)
}

// GetSession handles GET /sessions/{id}. Expired sessions start over at /.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	st, err := h.weatherService.Session(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.sessionFailure(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, st)
		return
	}
	h.render(w, r, st)
}

// DeleteSession handles DELETE /sessions/{id}. Unknown IDs are not an error.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.weatherService.EndSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.sessionFailure(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PostLocation handles POST /sessions/{id}/location with the browser's geolocation outcome.
func (h *Handler) PostLocation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_LOCATION_REPORT", "malformed form body")
		return
	}
	provider, err := location.ParseReport(r.PostForm)
	if err != nil {
		if wantsJSON(r) {
			writeError(w, r, http.StatusBadRequest, "INVALID_LOCATION_REPORT", err.Error())
			return
		}
		observability.LoggerFromContext(r.Context()).Info("location report rejected", zap.Error(err))
		provider = location.RejectedReport(err)
	}
	st, err := h.weatherService.ApplyLocation(r.Context(), mux.Vars(r)["id"], provider)
	h.respond(w, r, st, err)
}

// PostSearch handles POST /sessions/{id}/search with form field city.
func (h *Handler) PostSearch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_CITY", "malformed form body")
		return
	}
	st, err := h.weatherService.Search(r.Context(), mux.Vars(r)["id"], r.PostForm.Get("city"))
	h.respond(w, r, st, err)
}

// PostHistory handles POST /sessions/{id}/history/{index}: the entry fills the search field.
func (h *Handler) PostHistory(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_HISTORY_INDEX", "index must be a number")
		return
	}
	st, err := h.weatherService.SelectHistory(r.Context(), mux.Vars(r)["id"], i)
	h.respond(w, r, st, err)
}

// PostTheme handles POST /sessions/{id}/theme.
func (h *Handler) PostTheme(w http.ResponseWriter, r *http.Request) {
	st, err := h.weatherService.ToggleDarkMode(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, st, err)
}

// PostDetail handles POST /sessions/{id}/detail, opening or closing the clothing overlay.
func (h *Handler) PostDetail(w http.ResponseWriter, r *http.Request) {
	st, err := h.weatherService.ToggleDetail(r.Context(), mux.Vars(r)["id"])
	h.respond(w, r, st, err)
}

// GetWeather handles GET /api/weather?lat=&lon=.
func (h *Handler) GetWeather(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(q.Get("lat")), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(q.Get("lon")), 64)
	if latErr != nil || lonErr != nil || math.IsNaN(lat) || math.IsNaN(lon) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		writeError(w, r, http.StatusBadRequest, "INVALID_COORDINATES", "lat and lon must be valid decimal degrees")
		return
	}
	view, err := h.weatherService.LookupCoordinates(r.Context(), lat, lon)
	if err != nil {
		writeLookupError(w, r, err, service.KindCoordinates)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// GetWeatherByCity handles GET /api/weather/city/{city}. Korean city names are resolved.
func (h *Handler) GetWeatherByCity(w http.ResponseWriter, r *http.Request) {
	city, err := validation.ValidateCity(mux.Vars(r)["city"], h.weatherService.MaxQueryLength())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_CITY", err.Error())
		return
	}
	view, err := h.weatherService.LookupCity(r.Context(), city)
	if err != nil {
		writeLookupError(w, r, err, service.KindCity)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

type recommendationResponse struct {
	Band         string   `json:"band"`
	Description  string   `json:"description"`
	Emoji        string   `json:"emoji"`
	Items        []string `json:"items"`
	Illustration string   `json:"illustration"`
}

// GetRecommendation handles GET /api/recommendation?temp=. Without temp it lists every
// band, warmest first.
func (h *Handler) GetRecommendation(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.URL.Query().Get("temp"))
	if raw == "" {
		bands := recommend.Bands()
		out := make([]recommendationResponse, 0, len(bands))
		for _, b := range bands {
			out = append(out, h.recommendation(b))
		}
		writeJSON(w, http.StatusOK, out)
		return
	}
	temp, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(temp) || math.IsInf(temp, 0) {
		writeError(w, r, http.StatusBadRequest, "INVALID_TEMPERATURE", "temp must be a number in °C")
		return
	}
	writeJSON(w, http.StatusOK, h.recommendation(recommend.BandFor(temp)))
}

func (h *Handler) recommendation(b recommend.Band) recommendationResponse {
	return recommendationResponse{
		Band:         b.Label(),
		Description:  b.Description,
		Emoji:        b.Emoji,
		Items:        b.Items(),
		Illustration: recommend.CatImageAt(h.weatherService.ImagePrefix(), b.Min),
	}
}

// healthResult holds the computed health status and metadata for logging.
type healthResult struct {
	status     string
	statusCode int
	reason     string
	checks     map[string]string
}

// GetHealth handles GET /health.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	result := h.computeHealthStatus(r.Context())

	h.healthStatusMu.Lock()
	prev := h.healthStatusPrev
	if prev != "" && prev != result.status {
		h.logger.Info("health status transition",
			zap.String("previous_status", prev),
			zap.String("current_status", result.status),
			zap.String("reason", result.reason))
	}
	h.healthStatusPrev = result.status
	h.healthStatusMu.Unlock()

	writeJSON(w, result.statusCode, map[string]interface{}{
		"status":        result.status,
		"service":       "weather-outfit-service",
		"version":       "dev",
		"checks":        result.checks,
		"uptimeSeconds": int64(lifecycle.Uptime().Seconds()),
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
	})
}

// computeHealthStatus evaluates, in order: shutting-down, session store reachability, healthy.
func (h *Handler) computeHealthStatus(ctx context.Context) healthResult {
	checks := map[string]string{}
	if lifecycle.IsShuttingDown() {
		return healthResult{"shutting-down", http.StatusServiceUnavailable, "signal", checks}
	}
	if h.healthConfig != nil && h.healthConfig.StorePing != nil {
		if err := h.healthConfig.StorePing(ctx); err != nil {
			checks["sessionStore"] = "unhealthy"
			return healthResult{"degraded", http.StatusServiceUnavailable, "session_store_unreachable", checks}
		}
		checks["sessionStore"] = "healthy"
	}
	return healthResult{"healthy", http.StatusOK, "", checks}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, st *session.State) {
	data := PageData{
		State:          st,
		Location:       h.weatherService.LocationOptions(),
		ScriptURL:      ScriptURL,
		MaxQueryLength: h.weatherService.MaxQueryLength(),
	}
	if err := h.pages.Render(w, data); err != nil {
		observability.LoggerFromContext(r.Context()).Error("render page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// respond finishes a session mutation: JSON clients get the new state, browsers are
// redirected back to the page (post/redirect/get).
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, st *session.State, err error) {
	if err != nil {
		h.sessionFailure(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, st)
		return
	}
	http.Redirect(w, r, "/sessions/"+st.ID, http.StatusSeeOther)
}

func (h *Handler) sessionFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		if wantsJSON(r) {
			writeError(w, r, http.StatusNotFound, "SESSION_NOT_FOUND", "session expired or unknown")
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	observability.LoggerFromContext(r.Context()).Warn("session store failure", zap.Error(err))
	writeError(w, r, http.StatusServiceUnavailable, "SESSION_STORE_UNAVAILABLE", "session store unavailable")
}

// prefersDark reads the color-scheme client hint the page advertises via Accept-CH.
func prefersDark(r *http.Request) bool {
	return strings.EqualFold(strings.Trim(r.Header.Get("Sec-CH-Prefers-Color-Scheme"), `" `), "dark")
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code, message,
// and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": observability.CorrelationIDFromContext(r.Context()),
		},
	})
}

// writeLookupError writes 502 with the user-facing message for a failed provider lookup.
func writeLookupError(w http.ResponseWriter, r *http.Request, err error, kind service.LookupKind) {
	writeError(w, r, http.StatusBadGateway, "WEATHER_LOOKUP_FAILED", service.UserMessage(err, kind))
	observability.LoggerFromContext(r.Context()).Debug("upstream error", zap.Error(err))
}
