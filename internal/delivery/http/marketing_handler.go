package http

import (
	"errors"
	"net/http"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/ai"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

func (h *Handler) handleGenerateEmail(w http.ResponseWriter, r *http.Request) {
	var in service.GenerateEmailInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "generate email", err, "")
		return
	}
	draft, err := h.Marketing.GenerateEmail(r.Context(), in)
	if errors.Is(err, ai.ErrInvalidOutput) {
		h.log.Warn("Generated email was not valid JSON")
		writeError(w, http.StatusInternalServerError, "Failed to generate valid email content")
		return
	}
	if err != nil {
		h.fail(w, "generate email", err, "Failed to generate email")
		return
	}
	writeJSON(w, http.StatusOK, draft)
}

func (h *Handler) handleGenerateSocialPost(w http.ResponseWriter, r *http.Request) {
	var in service.SocialPostInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "generate social post", err, "")
		return
	}
	post, err := h.Marketing.GenerateSocialPost(r.Context(), in)
	if err != nil {
		h.fail(w, "generate social post", err, "Failed to generate social post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) handleSchedulePost(w http.ResponseWriter, r *http.Request) {
	var in service.SchedulePostInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "schedule post", err, "")
		return
	}
	post, err := h.Marketing.SchedulePost(r.Context(), in, userID(r))
	if err != nil {
		h.fail(w, "schedule post", err, "Failed to schedule post")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "post": post})
}

func (h *Handler) handleListScheduledPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.Marketing.Posts(r.Context())
	if err != nil {
		h.fail(w, "list scheduled posts", err, "Failed to fetch scheduled posts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *Handler) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	campaigns, err := h.Marketing.Campaigns(r.Context())
	if err != nil {
		h.fail(w, "list campaigns", err, "Failed to fetch campaigns")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"campaigns": campaigns})
}

func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var in service.CampaignInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "create campaign", err, "")
		return
	}
	c, err := h.Marketing.CreateCampaign(r.Context(), in, userID(r))
	if err != nil {
		h.fail(w, "create campaign", err, "Failed to create campaign")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleSendCampaign(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Marketing.SendCampaign(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "send campaign", err, "Failed to send campaign")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "stats": stats})
}
