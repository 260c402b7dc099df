package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/faktura-erp/faktura/internal/billing/documents"
	"github.com/faktura-erp/faktura/internal/billing/numbering"
	"github.com/faktura-erp/faktura/internal/einvoice"
	"github.com/faktura-erp/faktura/internal/masterdata/companies"
	"github.com/faktura-erp/faktura/internal/masterdata/customers"
	"github.com/faktura-erp/faktura/internal/masterdata/products"
	"github.com/faktura-erp/faktura/internal/platform/httpx"
	"github.com/faktura-erp/faktura/internal/sepa"
	"github.com/faktura-erp/faktura/internal/shared"
	"github.com/faktura-erp/faktura/internal/stats"
	"github.com/faktura-erp/faktura/jobs"
	"github.com/faktura-erp/faktura/report"
)

// NewRouter assembles the HTTP API. All /api routes require the tenant
// header; health stays open for probes.
func NewRouter(cfg *Config, logger *slog.Logger, pool *pgxpool.Pool, redisClient *redis.Client) http.Handler {
	customerService := customers.NewService(customers.NewRepository(pool))
	productService := products.NewService(products.NewRepository(pool))
	companyService := companies.NewService(companies.NewRepository(pool))

	documentService := documents.NewService(
		logger,
		documents.NewRepository(pool),
		numbering.NewAuthority(numbering.NewRepository(pool)),
		customerService,
		productService,
		companyService,
		cfg.MaxReminderLevel,
	)

	statsService := stats.NewService(logger, stats.NewRepository(pool), redisClient, cfg.StatsCacheTTL)

	documentHandler := documents.NewHandler(logger, documentService)
	customerHandler := customers.NewHandler(logger, customerService)
	productHandler := products.NewHandler(logger, productService)
	companyHandler := companies.NewHandler(logger, companyService)
	statsHandler := stats.NewHandler(logger, statsService)
	einvoiceHandler := einvoice.NewHandler(logger, documentService, customerService, companyService)
	sepaHandler := sepa.NewHandler(logger, documentService, companyService)
	reportHandler := report.NewHandler(logger, documentService, customerService, companyService, report.NewClient(cfg.GotenbergURL))

	jobsHandler := jobs.NewHandler(logger, jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr}))

	r := chi.NewRouter()
	r.Use(MiddlewareStack(cfg)...)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(shared.TenantMiddleware)

		r.Route("/documents", func(r chi.Router) {
			documentHandler.MountRoutes(r)
			einvoiceHandler.MountRoutes(r)
			sepaHandler.MountRoutes(r)
			reportHandler.MountRoutes(r)
		})
		r.Route("/customers", customerHandler.MountRoutes)
		r.Route("/products", productHandler.MountRoutes)
		r.Route("/company", companyHandler.MountRoutes)
		r.Route("/stats", statsHandler.MountRoutes)
		r.Route("/jobs", jobsHandler.MountRoutes)
	})

	return r
}
