package documents

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
	"github.com/faktura-erp/faktura/internal/shared"
)

// Handler wires HTTP endpoints for document operations.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companyID := shared.CompanyIDFromContext(r.Context())

	var filter ListFilter
	if v := r.URL.Query().Get("document_type"); v != "" {
		t := DocumentType(v)
		filter.Type = &t
	}
	if v := r.URL.Query().Get("status"); v != "" {
		s := DocumentStatus(v)
		filter.Status = &s
	}
	filter.Search = r.URL.Query().Get("search")

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pg := shared.NewPagination(page, perPage, 0)
	filter.Limit = pg.PerPage
	filter.Offset = pg.Offset()

	docs, total, err := h.service.List(r.Context(), companyID, filter)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":      docs,
		"pagination": shared.NewPagination(pg.Page, pg.PerPage, total),
	})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Get(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.Create(r.Context(), shared.CompanyIDFromContext(r.Context()), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateDocumentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.Update(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteDraft(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	var req ChangeStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.ChangeStatus(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Cancel(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) CreditNote(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.CreateCreditNote(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	var req ConvertQuoteRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
			return
		}
	}
	doc, err := h.service.ConvertQuoteToInvoice(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) PartialInvoice(w http.ResponseWriter, r *http.Request) {
	var req PartialInvoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.CreatePartialInvoice(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, doc)
}

func (h *Handler) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req AddPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.AddPayment(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) AddReminder(w http.ResponseWriter, r *http.Request) {
	var req AddReminderRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
			return
		}
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	doc, err := h.service.AddReminder(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Related(w http.ResponseWriter, r *http.Request) {
	rel, err := h.service.Related(r.Context(), shared.CompanyIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rel)
}

// respondError maps the document error taxonomy to problem responses.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDocumentNotFound),
		errors.Is(err, ErrCustomerNotFound),
		errors.Is(err, ErrProductNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrWrongDocumentType),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrExceedsRemaining),
		errors.Is(err, ErrExceedsSourceAmount),
		errors.Is(err, ErrMaxLevelReached),
		errors.Is(err, ErrAlreadyCancelled):
		httpx.Problem(w, http.StatusBadRequest, "Business Rule Violation", err.Error())
	case errors.Is(err, ErrVersionConflict):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("document operation failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
