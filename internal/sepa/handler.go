package sepa

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/platform/httpx"
	"github.com/faktura-erp/faktura/internal/shared"
)

// Handler exposes the payment QR payload for open billing documents.
type Handler struct {
	logger    *slog.Logger
	documents *documents.Service
	companies documents.CompanyLookup
}

func NewHandler(logger *slog.Logger, docs *documents.Service, companyLookup documents.CompanyLookup) *Handler {
	return &Handler{logger: logger, documents: docs, companies: companyLookup}
}

// MountRoutes registers the payload route on the documents subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/{id}/sepa", h.Payload)
}

// Payload returns the EPC QR payload for the document's open amount. Only
// payable documents with a remaining balance qualify.
func (h *Handler) Payload(w http.ResponseWriter, r *http.Request) {
	companyID := shared.CompanyIDFromContext(r.Context())

	doc, err := h.documents.Get(r.Context(), companyID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if !doc.Type.Payable() {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Not Payable",
			fmt.Sprintf("documents of type %s carry no payment amount", doc.Type))
		return
	}
	if doc.Totals.RemainingAmount <= 0 {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Nothing Open",
			"document has no remaining amount")
		return
	}

	company, err := h.companies.Get(r.Context(), companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if company.IBAN == "" {
		httpx.Problem(w, http.StatusUnprocessableEntity, "No Bank Account",
			"company has no IBAN configured")
		return
	}

	payload, err := EncodePayload(Payment{
		Name:       company.Name,
		IBAN:       company.IBAN,
		BIC:        company.BIC,
		Amount:     doc.Totals.RemainingAmount,
		Remittance: doc.Number,
	})
	if err != nil {
		h.logger.Error("encode sepa payload", slog.String("document_id", doc.ID), slog.Any("error", err))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Encoding Failed", err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(payload))
}
