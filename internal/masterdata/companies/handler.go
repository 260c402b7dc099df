package companies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
	"github.com/faktura-erp/faktura/internal/shared"
)

// CompanyRequest updates the tenant's master data and billing settings.
type CompanyRequest struct {
	Name                string  `json:"name" validate:"required"`
	Street              string  `json:"street"`
	ZipCode             string  `json:"zip_code"`
	City                string  `json:"city"`
	Country             string  `json:"country"`
	TaxID               string  `json:"tax_id,omitempty"`
	VATID               string  `json:"vat_id,omitempty"`
	IBAN                string  `json:"iban,omitempty"`
	BIC                 string  `json:"bic,omitempty"`
	SmallBusinessExempt bool    `json:"is_small_business_exempt"`
	DefaultVATRate      float64 `json:"default_vat_rate" validate:"gte=0,lte=1"`
	PaymentTermsDays    int     `json:"payment_terms_days" validate:"gte=0"`
}

// Handler wires HTTP endpoints for the tenant's own company settings.
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

// MountRoutes registers company settings routes. The company is addressed
// implicitly through the tenant header, never by path id.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Put("/", h.Update)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), shared.CompanyIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req CompanyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	current, err := h.service.Get(r.Context(), shared.CompanyIDFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	current.Name = req.Name
	current.Street = req.Street
	current.ZipCode = req.ZipCode
	current.City = req.City
	current.Country = req.Country
	current.TaxID = req.TaxID
	current.VATID = req.VATID
	current.IBAN = req.IBAN
	current.BIC = req.BIC
	current.SmallBusinessExempt = req.SmallBusinessExempt
	current.DefaultVATRate = req.DefaultVATRate
	current.PaymentTermsDays = req.PaymentTermsDays

	c, err := h.service.Update(r.Context(), current)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}
