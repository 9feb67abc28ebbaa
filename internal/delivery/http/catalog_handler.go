package http

import (
	"net/http"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

const maxUploadBytes = 10 << 20

func productFilter(r *http.Request) repository.ProductFilter {
	q := r.URL.Query()
	inStock := queryBool(r, "inStock")
	return repository.ProductFilter{
		Page:         page(r, 24, 100),
		CategorySlug: q.Get("category"),
		Featured:     queryBool(r, "featured"),
		Query:        q.Get("q"),
		InStock:      inStock != nil && *inStock,
	}
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, total, err := h.Catalog.ListProducts(r.Context(), productFilter(r))
	if err != nil {
		h.fail(w, "list products", err, "Failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products, "total": total})
}

func (h *Handler) handleFeaturedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.Featured(r.Context(), queryInt(r, "limit", 8))
	if err != nil {
		h.fail(w, "featured products", err, "Failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.Product(r.Context(), r.PathValue("idOrSlug"))
	if err != nil {
		h.fail(w, "get product", err, "Failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleSimilarProducts(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("productId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	recs, err := h.Recommend.Similar(r.Context(), id, queryInt(r, "limit", service.DefaultRecommendations))
	if err != nil {
		h.fail(w, "similar products", err, "Failed to get recommendations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "recommendations": recs, "count": len(recs)})
}

// handlePersonalized uses the signed-in customer's orders when there is a session.
func (h *Handler) handlePersonalized(w http.ResponseWriter, r *http.Request) {
	recs, personalized, err := h.Recommend.Personalized(r.Context(), userID(r), queryInt(r, "limit", service.DefaultRecommendations))
	if err != nil {
		h.fail(w, "personalized recommendations", err, "Failed to get recommendations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"recommendations": recs,
		"count":           len(recs),
		"personalized":    personalized,
	})
}

func (h *Handler) handleCartUpsells(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("productId")
	if id == "" {
		writeError(w, http.StatusBadRequest, "productId is required")
		return
	}
	recs, err := h.Recommend.BoughtTogether(r.Context(), id, queryInt(r, "limit", service.DefaultUpsells))
	if err != nil {
		h.fail(w, "cart upsells", err, "Failed to get recommendations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "recommendations": recs, "count": len(recs)})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	products, err := h.Catalog.Search(r.Context(), r.URL.Query().Get("q"), queryInt(r, "limit", 20))
	if err != nil {
		h.fail(w, "search", err, "Search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Catalog.Categories(r.Context())
	if err != nil {
		h.fail(w, "list categories", err, "Failed to fetch categories")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

func (h *Handler) handleAdminListProducts(w http.ResponseWriter, r *http.Request) {
	f := productFilter(r)
	f.IncludeInactive = true
	products, total, err := h.Catalog.ListProducts(r.Context(), f)
	if err != nil {
		h.fail(w, "admin list products", err, "Failed to fetch products")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products, "total": total})
}

func (h *Handler) handleAdminGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.AdminProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "admin get product", err, "Failed to fetch product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "create product", err, "")
		return
	}
	p, err := h.Catalog.CreateProduct(r.Context(), in)
	if err != nil {
		h.fail(w, "create product", err, "Failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "update product", err, "")
		return
	}
	p, err := h.Catalog.UpdateProduct(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, "update product", err, "Failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteProduct(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "delete product", err, "Failed to delete product")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "create category", err, "")
		return
	}
	c, err := h.Catalog.CreateCategory(r.Context(), in)
	if err != nil {
		h.fail(w, "create category", err, "Failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "update category", err, "")
		return
	}
	c, err := h.Catalog.UpdateCategory(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, "update category", err, "Failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "delete category", err, "Failed to delete category")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	asset, err := h.Catalog.UploadImage(r.Context(), header.Filename, file)
	if err != nil {
		h.fail(w, "upload image", err, "Failed to upload image")
		return
	}
	writeJSON(w, http.StatusOK, asset)
}
