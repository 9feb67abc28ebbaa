package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/entity"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/repository"
	"github.com/softwareprosdev/lapesqueriaoutfitters-sub005/internal/service"
)

type validateDiscountRequest struct {
	Code     string  `json:"code"`
	Subtotal float64 `json:"subtotal"`
	Email    string  `json:"email,omitempty"`
}

func (h *Handler) handleValidateDiscount(w http.ResponseWriter, r *http.Request) {
	var req validateDiscountRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, "validate discount", err, "")
		return
	}
	applied, err := h.Discounts.Validate(r.Context(), req.Code, req.Subtotal, req.Email)
	if err != nil {
		h.fail(w, "validate discount", err, "Failed to validate discount code")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "discount": applied})
}

func (h *Handler) handleActiveDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.Discounts.Active(r.Context())
	if err != nil {
		h.fail(w, "active discounts", err, "Failed to fetch discounts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"discounts": discounts})
}

func (h *Handler) handleListDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := h.Discounts.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, "list discounts", err, "Failed to fetch discounts")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"discounts": discounts})
}

func (h *Handler) handleGetDiscount(w http.ResponseWriter, r *http.Request) {
	d, err := h.Discounts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "get discount", err, "Failed to fetch discount")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleCreateDiscount(w http.ResponseWriter, r *http.Request) {
	var in service.DiscountInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "create discount", err, "")
		return
	}
	d, err := h.Discounts.Create(r.Context(), in, userID(r))
	if err != nil {
		h.fail(w, "create discount", err, "Failed to create discount")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handler) handleUpdateDiscount(w http.ResponseWriter, r *http.Request) {
	var in service.DiscountInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "update discount", err, "")
		return
	}
	d, err := h.Discounts.Update(r.Context(), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, "update discount", err, "Failed to update discount")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *Handler) handleDeleteDiscount(w http.ResponseWriter, r *http.Request) {
	if err := h.Discounts.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "delete discount", err, "Failed to delete discount")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) handleAdjustInventory(w http.ResponseWriter, r *http.Request) {
	var in service.AdjustInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "adjust inventory", err, "")
		return
	}
	res, err := h.Inventory.Adjust(r.Context(), in, userID(r))
	if err != nil {
		h.fail(w, "adjust inventory", err, "Failed to adjust inventory")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleListInventory(w http.ResponseWriter, r *http.Request) {
	low := queryBool(r, "lowStock")
	variants, err := h.Inventory.Variants(r.Context(), low != nil && *low, r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, "list inventory", err, "Failed to fetch inventory")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"variants": variants})
}

func (h *Handler) handleInventoryAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.Inventory.Alerts(r.Context())
	if err != nil {
		h.fail(w, "inventory alerts", err, "Failed to fetch stock alerts")
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (h *Handler) handleInventoryTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.Inventory.Transactions(r.Context(), r.URL.Query().Get("variantId"), queryInt(r, "limit", 50))
	if err != nil {
		h.fail(w, "inventory transactions", err, "Failed to fetch transactions")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

func (h *Handler) handleExportInventory(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Inventory.ExportCSV(r.Context(), &buf); err != nil {
		h.fail(w, "export inventory", err, "Failed to export inventory")
		return
	}
	attachment(w, "text/csv", "inventory.csv")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req service.CheckoutRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, "create checkout session", err, "")
		return
	}
	sess, err := h.Checkout.CreateSession(r.Context(), req, userID(r))
	if err != nil {
		h.fail(w, "create checkout session", err, "Failed to create checkout session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"sessionId": sess.ID, "url": sess.URL})
}

func (h *Handler) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	res, err := h.Checkout.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		h.fail(w, "stripe webhook", err, "Webhook handler failed")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	orders, total, err := h.Orders.List(r.Context(), repository.OrderFilter{
		Page:   page(r, 50, 200),
		Status: entity.OrderStatus(q.Get("status")),
		Query:  q.Get("q"),
	})
	if err != nil {
		h.fail(w, "list orders", err, "Failed to fetch orders")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": orders, "total": total})
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "get order", err, "Failed to fetch order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateOrderInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "update order", err, "")
		return
	}
	o, err := h.Orders.Update(r.Context(), r.PathValue("id"), in, userID(r))
	if err != nil {
		h.fail(w, "update order", err, "Failed to update order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleBulkOrders(w http.ResponseWriter, r *http.Request) {
	var in service.BulkOrderInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "bulk orders", err, "")
		return
	}
	res, err := h.Orders.Bulk(r.Context(), in, userID(r))
	if err != nil {
		h.fail(w, "bulk orders", err, "Failed to update orders")
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *Handler) handleAddOrderNote(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, "add order note", err, "")
		return
	}
	n, err := h.Orders.AddNote(r.Context(), r.PathValue("id"), userID(r), req.Note)
	if err != nil {
		h.fail(w, "add order note", err, "Failed to add note")
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *Handler) handleOrderTimeline(w http.ResponseWriter, r *http.Request) {
	t, err := h.Orders.Timeline(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "order timeline", err, "Failed to fetch order history")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handler) handleOrderInvoice(w http.ResponseWriter, r *http.Request) {
	o, pdf, err := h.Orders.Invoice(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "order invoice", err, "Failed to generate invoice")
		return
	}
	attachment(w, "application/pdf", "invoice-"+o.OrderNumber+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleListReturns(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	returns, stats, err := h.Returns.List(r.Context(), repository.ReturnFilter{
		Page:   page(r, 20, 100),
		Status: entity.ReturnStatus(q.Get("status")),
		Query:  q.Get("search"),
	})
	if err != nil {
		h.fail(w, "list returns", err, "Failed to fetch returns")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"returns": returns, "stats": stats, "total": stats.Total})
}

func (h *Handler) handleCreateReturn(w http.ResponseWriter, r *http.Request) {
	var in service.CreateReturnInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "create return", err, "")
		return
	}
	rt, err := h.Returns.Create(r.Context(), in)
	if err != nil {
		h.fail(w, "create return", err, "Failed to create return")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"return": rt})
}

func (h *Handler) handleGetReturn(w http.ResponseWriter, r *http.Request) {
	rt, err := h.Returns.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, "get return", err, "Failed to fetch return")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"return": rt})
}

func (h *Handler) handleUpdateReturn(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateReturnInput
	if err := decode(w, r, &in); err != nil {
		h.fail(w, "update return", err, "")
		return
	}
	rt, err := h.Returns.Update(r.Context(), r.PathValue("id"), in, userID(r))
	if err != nil {
		h.fail(w, "update return", err, "Failed to update return")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"return": rt})
}

func (h *Handler) handleDeleteReturn(w http.ResponseWriter, r *http.Request) {
	if err := h.Returns.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.fail(w, "delete return", err, "Failed to delete return")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Return deleted successfully"})
}
