package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/scanledger/internal/application/inventory"
	"github.com/jhoicas/scanledger/internal/application/scan"
	"github.com/jhoicas/scanledger/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ScanService *scan.Service
	Resolver    *scan.Resolver
	Stations    *scan.Stations
	ItemUC      *inventory.ItemUseCase
	LedgerUC    *inventory.StockLedgerUseCase
	Log         *logger.Logger
	JWTSecret   string // vacío = sin autenticación (modo desarrollo)
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.NewNop()
	}
	log = log.Component("http")

	// Con JWT, todas las rutas exigen Bearer Token; el user_id queda como performed_by.
	api := app.Group("/api")
	admin := func(c *fiber.Ctx) error { return c.Next() }
	if deps.JWTSecret != "" {
		api = app.Group("/api", AuthMiddleware(deps.JWTSecret))
		admin = RequireRole(RoleAdmin)
	}

	scanHandler := NewScanHandler(deps.ScanService, deps.Resolver, deps.Stations, log)
	api.Post("/scan", scanHandler.Scan)
	api.Delete("/scan/prompts", scanHandler.DismissPrompt)
	api.Get("/codes/exists", scanHandler.CodeExists)

	stations := api.Group("/stations")
	stations.Post("/:station/keys", scanHandler.StationKeys)
	stations.Get("/:station/decision", scanHandler.StationDecision)

	items := api.Group("/items")
	itemHandler := NewItemHandler(deps.ItemUC, deps.LedgerUC, deps.ScanService, log)
	items.Post("/", itemHandler.Register)
	items.Get("/next-code", itemHandler.NextCode)
	items.Get("/low-stock", itemHandler.LowStock)
	items.Get("/:id", itemHandler.GetByID)
	items.Get("/:id/ledger", itemHandler.History)
	items.Get("/:id/verify", itemHandler.Verify)
	items.Put("/:id/alternate-codes", admin, itemHandler.SyncAlternateCodes)
	items.Post("/:id/checkout", itemHandler.CheckOut)
	items.Post("/:id/checkin", itemHandler.CheckIn)
	items.Post("/:id/status", itemHandler.ChangeStatus)
}
