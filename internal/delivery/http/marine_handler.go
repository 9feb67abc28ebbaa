package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/marine"
)

const marineCacheControl = "public, s-maxage=1800, stale-while-revalidate=3600"

type marineEnvelope struct {
	Success   bool      `json:"success"`
	Data      any       `json:"data,omitempty"`
	Cached    bool      `json:"cached"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

func badMarineRequest(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, marineEnvelope{
		Error:     err.Error(),
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) writeMarine(w http.ResponseWriter, op string, data any, cached bool, err error) {
	if err != nil {
		h.log.Error("Marine upstream failed", zap.String("op", op), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, marineEnvelope{
			Error:     err.Error(),
			Timestamp: time.Now().UTC(),
		})
		return
	}
	w.Header().Set("Cache-Control", marineCacheControl)
	writeJSON(w, http.StatusOK, marineEnvelope{
		Success:   true,
		Data:      data,
		Cached:    cached,
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) handleMarineWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := marine.ParseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		badMarineRequest(w, err)
		return
	}
	data, cached, err := h.Marine.Weather(r.Context(), lat, lon)
	h.writeMarine(w, "weather", data, cached, err)
}

func (h *Handler) handleMarineConditions(w http.ResponseWriter, r *http.Request) {
	lat, lon, err := marine.ParseCoordinates(r.URL.Query().Get("lat"), r.URL.Query().Get("lon"))
	if err != nil {
		badMarineRequest(w, err)
		return
	}
	data, cached, err := h.Marine.Conditions(r.Context(), lat, lon)
	h.writeMarine(w, "conditions", data, cached, err)
}

func (h *Handler) handleMarineTides(w http.ResponseWriter, r *http.Request) {
	station, err := marine.ParseStation(r.URL.Query().Get("station"))
	if err != nil {
		badMarineRequest(w, err)
		return
	}
	data, err := h.Marine.Tides(r.Context(), station, queryInt(r, "days", 10))
	h.writeMarine(w, "tides", data, false, err)
}
