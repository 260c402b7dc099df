package documents

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers document routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/status", h.ChangeStatus)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/credit-note", h.CreditNote)
	r.Post("/{id}/convert", h.Convert)
	r.Post("/{id}/partial-invoice", h.PartialInvoice)
	r.Post("/{id}/payments", h.AddPayment)
	r.Post("/{id}/reminders", h.AddReminder)
	r.Get("/{id}/related", h.Related)
}
