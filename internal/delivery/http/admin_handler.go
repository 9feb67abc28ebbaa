package http

import (
	"errors"
	"net/http"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

type publicSettings struct {
	SiteName              string  `json:"siteName"`
	Logo                  string  `json:"logo"`
	PrimaryColor          string  `json:"primaryColor"`
	ContactEmail          string  `json:"contactEmail"`
	FreeShippingThreshold float64 `json:"freeShippingThreshold"`
	FlatShipping          float64 `json:"flatShipping"`
	TaxRate               float64 `json:"taxRate"`
}

func (h *Handler) handlePublicSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Settings.Get(r.Context())
	if err != nil {
		h.fail(w, "public settings", err, "Failed to fetch settings")
		return
	}
	writeJSON(w, http.StatusOK, publicSettings{
		SiteName:              s.SiteName,
		Logo:                  s.Logo,
		PrimaryColor:          s.PrimaryColor,
		ContactEmail:          s.ContactEmail,
		FreeShippingThreshold: s.FreeShippingThreshold,
		FlatShipping:          s.FlatShipping,
		TaxRate:               s.TaxRate,
	})
}

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.Settings.Get(r.Context())
	if err != nil {
		h.fail(w, "get settings", err, "Failed to fetch settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var in service.SettingsInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "update settings", err, "")
		return
	}
	s, err := h.Settings.Update(r.Context(), in)
	if err != nil {
		h.fail(w, "update settings", err, "Failed to update settings")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) handleRunSync(w http.ResponseWriter, r *http.Request) {
	results, next, err := h.Sync.Run(r.Context())
	if errors.Is(err, service.ErrSyncInProgress) {
		last, _ := h.Sync.LastSync(r.Context())
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"error":    "Sync already in progress",
			"lastSync": last,
		})
		return
	}
	if err != nil {
		h.fail(w, "sync database", err, "Database sync failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":           true,
		"results":           results,
		"lastSync":          results.EndTime,
		"nextSyncAvailable": next,
	})
}

func (h *Handler) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	st, err := h.Sync.Status(r.Context())
	if err != nil {
		h.fail(w, "sync status", err, "Failed to fetch sync status")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) handleListStaff(w http.ResponseWriter, r *http.Request) {
	staff, stats, err := h.Staff.List(r.Context())
	if err != nil {
		h.fail(w, "list staff", err, "Failed to fetch staff")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"staff": staff, "stats": stats})
}

func (h *Handler) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var in service.StaffInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "create staff", err, "")
		return
	}
	u, err := h.Staff.Create(r.Context(), in, userID(r))
	if err != nil {
		h.fail(w, "create staff", err, "Failed to create staff member")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "user": u})
}

func (h *Handler) handleUpdateStaff(w http.ResponseWriter, r *http.Request) {
	var in service.StaffUpdate
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "update staff", err, "")
		return
	}
	u, err := h.Staff.Update(r.Context(), r.PathValue("id"), in, userID(r))
	if err != nil {
		h.fail(w, "update staff", err, "Failed to update staff member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": u})
}

func (h *Handler) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	if err := h.Staff.Delete(r.Context(), r.PathValue("id"), userID(r)); err != nil {
		h.fail(w, "delete staff", err, "Failed to delete staff member")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleAnalyticsOverview(w http.ResponseWriter, r *http.Request) {
	o, err := h.Analytics.Overview(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		h.fail(w, "analytics overview", err, "Failed to fetch analytics")
		return
	}
	writeJSON(w, http.StatusOK, o)
}
