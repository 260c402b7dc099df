package stats

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/faktura-erp/faktura/internal/platform/httpx"
	"github.com/faktura-erp/faktura/internal/shared"
)

// Handler wires HTTP endpoints for dashboard statistics.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers statistics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/overview", h.Overview)
	r.Get("/revenue", h.Revenue)
	r.Get("/customers", h.Customers)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.service.Overview(r.Context(), shared.CompanyIDFromContext(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, overview)
}

func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	if year == 0 {
		year = time.Now().UTC().Year()
	}
	months, err := h.service.MonthlyRevenue(r.Context(), shared.CompanyIDFromContext(r.Context()), year)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if months == nil {
		months = []MonthlyRevenue{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"year":   year,
		"months": months,
	})
}

func (h *Handler) Customers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	ranked, err := h.service.TopCustomers(r.Context(), shared.CompanyIDFromContext(r.Context()), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if ranked == nil {
		ranked = []CustomerRevenue{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": ranked})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	h.logger.Error("stats query failed", slog.Any("error", err))
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}
