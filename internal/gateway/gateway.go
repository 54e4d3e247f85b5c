package gateway

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"securestream/internal/logging"
	"securestream/internal/metrics"
	"securestream/internal/objectstore"
	"securestream/internal/token"
)

// thumbnailCacheControl is served on public thumbnails; protected objects
// are cacheable only by the requesting client.
const (
	thumbnailCacheControl = "public, max-age=3600"
	protectedCacheControl = "private, max-age=60"
)

// Config carries gateway settings.
type Config struct {
	// JWTSecret verifies playback tokens.
	JWTSecret []byte
	// AllowedOrigins is the CORS allow-list. A single "*" entry allows
	// every origin.
	AllowedOrigins []string
}

// Handler serves bucket objects over HTTP: thumbnails publicly, video
// assets behind a scoped playback token.
type Handler struct {
	store objectstore.Store
	cfg   Config
}

// New creates a gateway Handler backed by the given object store.
func New(store objectstore.Store, cfg Config) *Handler {
	return &Handler{store: store, cfg: cfg}
}

// Routes mounts the gateway on a fresh router.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.PathPrefix("/thumbnails/").HandlerFunc(h.handleThumbnail)
	r.PathPrefix("/").HandlerFunc(h.handleProtected)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleThumbnail serves /thumbnails/ objects without authentication.
func (h *Handler) handleThumbnail(w http.ResponseWriter, r *http.Request) {
	if h.handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w)
		return
	}

	h.applyCORS(w, r)
	key := strings.TrimPrefix(r.URL.Path, "/")
	h.serveObject(w, r, key, thumbnailCacheControl, "thumbnail")
}

// handleProtected serves every other bucket key, gated by a playback token
// whose scope must cover the requested key.
func (h *Handler) handleProtected(w http.ResponseWriter, r *http.Request) {
	if h.handlePreflight(w, r) {
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		h.methodNotAllowed(w)
		return
	}

	h.applyCORS(w, r)

	tokenString, fromQuery := extractToken(r)
	if tokenString == "" {
		metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}

	claims, err := token.Verify(h.cfg.JWTSecret, tokenString)
	if err != nil {
		metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
		logging.Debug("Token verification failed: %v", err)
		http.Error(w, "Invalid token", http.StatusForbidden)
		return
	}

	key := strings.TrimPrefix(r.URL.Path, "/")
	if !token.Authorizes(claims.VideoPath, key) {
		metrics.TokenVerificationsTotal.WithLabelValues("scope_denied").Inc()
		http.Error(w, "Token not valid for this resource", http.StatusForbidden)
		return
	}
	metrics.TokenVerificationsTotal.WithLabelValues("ok").Inc()

	// A query-supplied token is promoted to a cookie so segment requests
	// that follow the playlist do not need to carry it in the URL.
	if fromQuery {
		http.SetCookie(w, &http.Cookie{
			Name:     "token",
			Value:    tokenString,
			Path:     "/",
			Secure:   true,
			HttpOnly: true,
			SameSite: http.SameSiteNoneMode,
		})
	}

	h.serveObject(w, r, key, protectedCacheControl, "protected")
}

// serveObject streams one bucket object, honoring conditional requests.
func (h *Handler) serveObject(w http.ResponseWriter, r *http.Request, key, cacheControl, kind string) {
	obj, err := h.store.Get(r.Context(), key)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}
		logging.Error("Object fetch failed for %s: %v", key, err)
		http.Error(w, "Upstream error", http.StatusBadGateway)
		return
	}
	defer obj.Body.Close()

	w.Header().Set("Cache-Control", cacheControl)
	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.ETag != "" {
		w.Header().Set("ETag", obj.ETag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == obj.ETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}

	metrics.ObjectsServedTotal.WithLabelValues(kind).Inc()

	if r.Method == http.MethodHead {
		w.WriteHeader(http.StatusOK)
		return
	}
	if _, err := io.Copy(w, obj.Body); err != nil {
		logging.Debug("Streaming %s aborted: %v", key, err)
	}
}

// handlePreflight answers OPTIONS requests. Preflight always succeeds;
// whether the browser may proceed is decided by the echoed CORS headers.
func (h *Handler) handlePreflight(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodOptions {
		return false
	}
	if h.applyCORS(w, r) {
		w.Header().Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Range, If-None-Match")
		w.Header().Set("Access-Control-Max-Age", "86400")
	}
	w.WriteHeader(http.StatusNoContent)
	return true
}

// applyCORS echoes the request origin when the allow-list permits it and
// reports whether it did.
func (h *Handler) applyCORS(w http.ResponseWriter, r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || !h.originAllowed(origin) {
		return false
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Add("Vary", "Origin")
	return true
}

func (h *Handler) originAllowed(origin string) bool {
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter) {
	w.Header().Set("Allow", "GET, HEAD, OPTIONS")
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

// extractToken pulls the playback token from the query string first, then
// from the token cookie. The boolean reports a query-string hit.
func extractToken(r *http.Request) (string, bool) {
	if t := r.URL.Query().Get("token"); t != "" {
		return t, true
	}
	if c, err := r.Cookie("token"); err == nil && c.Value != "" {
		return c.Value, false
	}
	return "", false
}
