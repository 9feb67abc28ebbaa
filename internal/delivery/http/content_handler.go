package http

import (
	"net/http"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

func (h *Handler) handleProductReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Reviews.ForProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "product reviews", err, "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, reviews)
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	var in service.ReviewInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "submit review", err, "")
		return
	}
	review, err := h.Reviews.Submit(r.Context(), r.PathValue("id"), in, userID(r))
	if err != nil {
		h.fail(w, "submit review", err, "Failed to submit review")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"review":  review,
		"message": "Thank you! Your review will appear once it has been approved.",
	})
}

func (h *Handler) handleReviewHighlights(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Reviews.Highlights(r.Context(), queryInt(r, "limit", 6))
	if err != nil {
		h.fail(w, "review highlights", err, "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews})
}

func (h *Handler) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, summary, err := h.Reviews.Moderation(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, "list reviews", err, "Failed to fetch reviews")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": reviews, "summary": summary})
}

func (h *Handler) handleModerateReview(w http.ResponseWriter, r *http.Request) {
	var in service.ModerationInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "moderate review", err, "")
		return
	}
	review, err := h.Reviews.Moderate(r.Context(), in)
	if err != nil {
		h.fail(w, "moderate review", err, "Failed to update review")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "review": review})
}

func (h *Handler) handleListPublishedPosts(w http.ResponseWriter, r *http.Request) {
	posts, total, err := h.Blog.Published(r.Context(), page(r, 12, 50))
	if err != nil {
		h.fail(w, "list published posts", err, "Failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "total": total})
}

func (h *Handler) handleGetPublishedPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Blog.PublishedBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		h.fail(w, "get published post", err, "Failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) handleListPosts(w http.ResponseWriter, r *http.Request) {
	status := entity.PostStatus(r.URL.Query().Get("status"))
	posts, total, err := h.Blog.List(r.Context(), status, page(r, 50, 200))
	if err != nil {
		h.fail(w, "list posts", err, "Failed to fetch posts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": posts, "total": total})
}

func (h *Handler) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Blog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "get post", err, "Failed to fetch post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in service.BlogInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "create post", err, "")
		return
	}
	post, err := h.Blog.Create(r.Context(), in, userID(r))
	if err != nil {
		h.fail(w, "create post", err, "Failed to create post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *Handler) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var in service.BlogInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "update post", err, "")
		return
	}
	post, err := h.Blog.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, "update post", err, "Failed to update post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := h.Blog.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "delete post", err, "Failed to delete post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handlePublishPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.Blog.Publish(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "publish post", err, "Failed to publish post")
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *Handler) handleGenerateBlog(w http.ResponseWriter, r *http.Request) {
	var in service.GenerateBlogInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "generate blog", err, "")
		return
	}
	post, err := h.Blog.Generate(r.Context(), in, userID(r))
	if err != nil {
		h.fail(w, "generate blog", err, "Failed to generate blog post")
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (h *Handler) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, "subscribe", err, "")
		return
	}
	sub, err := h.Newsletter.Subscribe(r.Context(), req.Email, req.Name)
	if err != nil {
		h.fail(w, "subscribe", err, "Failed to subscribe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"message":    "Successfully subscribed to newsletter!",
		"subscriber": sub,
	})
}

func (h *Handler) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, "unsubscribe", err, "")
		return
	}
	if err := h.Newsletter.Unsubscribe(r.Context(), req.Email); err != nil {
		h.fail(w, "unsubscribe", err, "Failed to unsubscribe")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Successfully unsubscribed from newsletter",
	})
}

func (h *Handler) handleListSubscribers(w http.ResponseWriter, r *http.Request) {
	subs, err := h.Newsletter.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, "list subscribers", err, "Failed to fetch subscribers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": subs, "total": len(subs)})
}

func (h *Handler) handleDeleteSubscriber(w http.ResponseWriter, r *http.Request) {
	if err := h.Newsletter.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "delete subscriber", err, "Failed to delete subscriber")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
