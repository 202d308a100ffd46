package router

import (
	"net/http"
	"time"

	"erp-backend/internal/application/approvals"
	"erp-backend/internal/application/costs"
	itemsvc "erp-backend/internal/application/items"
	projsvc "erp-backend/internal/application/projects"
	quotesvc "erp-backend/internal/application/quotations"
	termsvc "erp-backend/internal/application/terms"
	"erp-backend/internal/config"
	"erp-backend/internal/infrastructure/database"
	"erp-backend/internal/infrastructure/keylock"
	"erp-backend/internal/interfaces/handlers/costbreakdown"
	healthhandler "erp-backend/internal/interfaces/handlers/health"
	itemhandler "erp-backend/internal/interfaces/handlers/items"
	projhandler "erp-backend/internal/interfaces/handlers/projects"
	quotehandler "erp-backend/internal/interfaces/handlers/quotations"
	termhandler "erp-backend/internal/interfaces/handlers/terms"
	"erp-backend/internal/metrics"
	"erp-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CreateApp opens the database and the optional Redis client from cfg and builds the app on top of them.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	dsn := cfg.DatabaseURL
	if cfg.DatabaseDriver == "sqlite" {
		dsn = cfg.SQLitePath
	}
	db, err := database.Open(cfg.DatabaseDriver, dsn)
	if err != nil {
		return nil, nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	return New(cfg, db, rdb), db, rdb, nil
}

// New wires services and routes over an open database. rdb may be nil: the quotation lock then
// falls back to an in-process lock and traffic stats are disabled.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.Metrics())

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &database.Pinger{DB: db},
		HealthAdminKey: cfg.HealthAdminKey,
		StartedAt:      time.Now(),
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	var locker keylock.Locker = keylock.NewMemory()
	if rdb != nil {
		locker = keylock.NewRedis(rdb)
	}

	qs := &quotesvc.Service{DB: db, Locker: locker, ApproverRoles: cfg.ApproverRoles}
	ps := &projsvc.Service{DB: db, Locker: locker}
	api := app.Group("/api/v1")

	// Quotations
	qh := &quotehandler.Handlers{Service: qs, Projects: ps, Ledger: &approvals.Ledger{DB: db}}
	qg := api.Group("/quotations")
	qg.Get("/", qh.List)
	qg.Post("/", qh.Create)
	qg.Get("/:id", qh.Get)
	qg.Put("/:id", qh.Update)
	qg.Delete("/:id", qh.Delete)
	qg.Post("/:id/clone", qh.Clone)
	qg.Post("/:id/submit", qh.Submit)
	qg.Post("/:id/approve", qh.Approve)
	qg.Post("/:id/reject", qh.Reject)
	qg.Post("/:id/convert", qh.Convert)
	qg.Get("/:id/approvals", qh.Approvals)

	// Items and terms
	ih := &itemhandler.Handlers{Service: &itemsvc.Service{DB: db, Locker: locker}}
	qg.Get("/:qid/items", ih.List)
	qg.Post("/:qid/items", ih.Create)
	qg.Get("/:qid/items/:itemId", ih.Get)
	qg.Put("/:qid/items/:itemId", ih.Update)
	qg.Delete("/:qid/items/:itemId", ih.Delete)

	th := &termhandler.Handlers{Service: &termsvc.Service{DB: db, Locker: locker}}
	qg.Get("/:qid/terms", th.List)
	qg.Post("/:qid/terms", th.Create)
	qg.Put("/:qid/terms/:termId", th.Update)
	qg.Delete("/:qid/terms/:termId", th.Delete)

	// Cost breakdown
	cb := &costbreakdown.Handlers{Engine: &costs.Engine{DB: db}}
	api.Get("/cost-breakdown", cb.Get)
	api.Get("/cost-breakdown/export", cb.Export)

	// Projects
	ph := &projhandler.Handlers{Service: ps}
	pg := api.Group("/projects")
	pg.Get("/", ph.List)
	pg.Post("/", ph.Create)
	pg.Get("/:id", ph.Get)
	pg.Put("/:id/budget", ph.SetBudget)

	return app
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
