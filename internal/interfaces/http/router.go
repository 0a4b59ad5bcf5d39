package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger    *LedgerHandler
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	ledgerGroup := api.Group("/ledger", AuthMiddleware(deps.JWTSecret))
	h := deps.Ledger

	operators := RequireRole(RoleAdmin, RoleBodeguero)
	sellers := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)
	admins := RequireRole(RoleAdmin)

	// Lecturas: cualquier rol autenticado
	ledgerGroup.Get("/rows", sellers, h.ListRowsByDate)
	ledgerGroup.Get("/products/:productId/rows", sellers, h.ListRowsByProduct)
	ledgerGroup.Get("/products/:productId/rows/:date", sellers, h.GetRow)
	ledgerGroup.Get("/transactions", sellers, h.ListTransactions)
	ledgerGroup.Get("/transactions/:id", sellers, h.GetTransaction)
	ledgerGroup.Get("/repackings/:id", sellers, h.GetRepacking)
	ledgerGroup.Get("/samples/:id", sellers, h.GetSample)
	ledgerGroup.Post("/availability", sellers, h.CheckAvailability)

	// Ventas
	ledgerGroup.Post("/sales", sellers, h.RecordSale)
	ledgerGroup.Post("/sales/reversals", sellers, h.ReverseSale)
	ledgerGroup.Post("/samples/:id/convert", sellers, h.ConvertSampleToSale)

	// Bodega
	ledgerGroup.Post("/production", operators, h.RecordProduction)
	ledgerGroup.Post("/purchases", operators, h.RecordPurchase)
	ledgerGroup.Post("/material-consumptions", operators, h.RecordMaterialConsumption)
	ledgerGroup.Post("/repackings", operators, h.RecordRepacking)
	ledgerGroup.Post("/samples", operators, h.RecordSampleOut)
	ledgerGroup.Post("/samples/:id/return", operators, h.RecordSampleReturn)
	ledgerGroup.Post("/waste", operators, h.RecordWaste)
	ledgerGroup.Post("/reconciliations", operators, h.ReconcileStock)

	// Correcciones de saldo: solo admin
	ledgerGroup.Post("/adjustments", admins, h.AdjustStock)
	ledgerGroup.Post("/stock-counts", admins, h.ImportStockCount)
	ledgerGroup.Put("/thresholds", admins, h.SetThresholds)
}
