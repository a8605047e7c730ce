package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/mkrutov/heattrack/internal/track"
	"github.com/mkrutov/heattrack/internal/tracker"
)

// newServer builds the HTTP control surface: start, stop and clear the
// recording session and inspect its status remotely.
func newServer(addr string, tr *tracker.Tracker, logger *slog.Logger) *http.Server {
	h := &handlers{tracker: tr, logger: logger}

	r := mux.NewRouter()
	r.HandleFunc("/status", h.status).Methods(http.MethodGet)
	r.HandleFunc("/track", h.track).Methods(http.MethodGet)
	r.HandleFunc("/track/start", h.start).Methods(http.MethodPost)
	r.HandleFunc("/track/stop", h.stop).Methods(http.MethodPost)
	r.HandleFunc("/track/clear", h.clear).Methods(http.MethodPost)

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type handlers struct {
	tracker *tracker.Tracker
	logger  *slog.Logger
}

type statusResponse struct {
	State   string `json:"state"`
	Status  string `json:"status"`
	Samples int    `json:"samples"`
}

type trackResponse struct {
	Samples []track.Sample `json:"samples"`
	Summary summaryJSON    `json:"summary"`
}

type summaryJSON struct {
	Count     int     `json:"count"`
	CenterLat float64 `json:"centerLat"`
	CenterLon float64 `json:"centerLon"`
}

type clearResponse struct {
	Removed int64 `json:"removed"`
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		State:   h.tracker.State().String(),
		Status:  h.tracker.Status(),
		Samples: len(h.tracker.Samples()),
	})
}

func (h *handlers) track(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Reload(r.Context()); err != nil {
		h.fail(w, err)
		return
	}

	samples := h.tracker.Samples()
	sum := track.Summarize(samples)

	writeJSON(w, http.StatusOK, trackResponse{
		Samples: samples,
		Summary: summaryJSON{
			Count:     sum.Count,
			CenterLat: sum.CenterLat,
			CenterLon: sum.CenterLon,
		},
	})
}

func (h *handlers) start(w http.ResponseWriter, r *http.Request) {
	err := h.tracker.Start()
	switch {
	case errors.Is(err, tracker.ErrPermissionDenied):
		writeJSON(w, http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, tracker.ErrAlreadyTracking):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case err != nil:
		h.fail(w, err)
	default:
		h.status(w, r)
	}
}

func (h *handlers) stop(w http.ResponseWriter, r *http.Request) {
	if err := h.tracker.Stop(); err != nil {
		if errors.Is(err, tracker.ErrNotTracking) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		h.fail(w, err)
		return
	}
	h.status(w, r)
}

func (h *handlers) clear(w http.ResponseWriter, r *http.Request) {
	removed, err := h.tracker.Clear(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}

func (h *handlers) fail(w http.ResponseWriter, err error) {
	h.logger.Error("request failed", slog.String("error", err.Error()))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
