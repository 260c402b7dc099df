package einvoice

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/platform/httpx"
	"github.com/faktura-erp/faktura/internal/shared"
)

// Handler exposes e-invoice XML export for billing documents.
type Handler struct {
	logger    *slog.Logger
	documents *documents.Service
	customers documents.CustomerLookup
	companies documents.CompanyLookup
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, docs *documents.Service, customerLookup documents.CustomerLookup, companyLookup documents.CompanyLookup) *Handler {
	return &Handler{
		logger:    logger,
		documents: docs,
		customers: customerLookup,
		companies: companyLookup,
	}
}

// MountRoutes registers the export route on the documents subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/e-invoice", h.Export)
}

// Export renders the document in the requested format (?format=xrechnung,
// the default, or ?format=zugferd).
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
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

	format := Format(r.URL.Query().Get("format"))
	if format == "" {
		format = FormatXRechnung
	}

	var out []byte
	switch format {
	case FormatXRechnung:
		out, err = XRechnungUBL(doc, company, customer)
	case FormatZUGFeRD:
		out, err = ZUGFeRDCII(doc, company, customer)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Invalid Format", fmt.Sprintf("unknown format %q", format))
		return
	}
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Export Failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", fmt.Sprintf("%s-%s.xml", doc.Number, format)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}
