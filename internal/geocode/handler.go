package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org/search"
	requestTimeout = 5 * time.Second
	cacheTTL       = 24 * time.Hour
)

// Result is one geocoding hit, trimmed to what the frontend needs.
type Result struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Handler proxies the remote geocoding API. Results are cached per
// normalized query; the remote call runs under a hard timeout.
type Handler struct {
	baseURL string
	client  *http.Client
	cache   *redis.Client
	log     *slog.Logger
}

func NewHandler(baseURL string, cache *redis.Client, log *slog.Logger) *Handler {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
		cache:   cache,
		log:     log,
	}
}

// GET /api/geocode?q=
func (h *Handler) Geocode(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	key := "geocode:" + strings.ToLower(query)

	if h.cache != nil {
		if data, err := h.cache.Get(r.Context(), key).Bytes(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
			return
		}
	}

	results, err := h.lookup(r.Context(), query)
	if err != nil {
		h.log.Error("geocode lookup failed", "query", query, "error", err)
		writeError(w, http.StatusBadGateway, "geocoding service unavailable")
		return
	}
	data, err := json.Marshal(results)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if h.cache != nil {
		if err := h.cache.Set(r.Context(), key, data, cacheTTL).Err(); err != nil {
			h.log.Warn("geocode cache set failed", "error", err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *Handler) lookup(ctx context.Context, query string) ([]Result, error) {
	u := fmt.Sprintf("%s?format=json&limit=5&q=%s", h.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "skilllinkup-backend")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}
	var results []Result
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []Result{}
	}
	return results, nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
