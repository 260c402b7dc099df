package report

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/platform/httpx"
	"github.com/faktura-erp/faktura/internal/shared"
)

// Handler exposes PDF rendering for billing documents.
type Handler struct {
	logger    *slog.Logger
	documents *documents.Service
	customers documents.CustomerLookup
	companies documents.CompanyLookup
	gotenberg *Client
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, docs *documents.Service, customerLookup documents.CustomerLookup, companyLookup documents.CompanyLookup, gotenberg *Client) *Handler {
	return &Handler{
		logger:    logger,
		documents: docs,
		customers: customerLookup,
		companies: companyLookup,
		gotenberg: gotenberg,
	}
}

// MountRoutes registers the PDF route on the documents subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/pdf", h.PDF)
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	companyID := shared.CompanyIDFromContext(r.Context())

	doc, err := h.documents.Get(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	company, err := h.companies.Get(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	customer, err := h.customers.Get(r.Context(), companyID, doc.CustomerID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	html, err := RenderInvoiceHTML(doc, company, customer)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Render Failed", err.Error())
		return
	}

	pdf, err := h.gotenberg.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("pdf conversion failed",
			slog.String("number", doc.Number),
			slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Conversion Failed", "pdf service unavailable")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Number+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
