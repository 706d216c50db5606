package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Movements   *inventory.MovementUseCase
	Queries     *inventory.StockQueryUseCase
	WarehouseUC *usecase.WarehouseUseCase
	MaterialUC  *usecase.MaterialUseCase
	JWTSecret   string
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
// Lectura: viewer o storekeeper. Posteo y ajustes: storekeeper. Edición, eliminación y datos maestros: admin.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	read := RequireRole(RoleViewer, RoleStorekeeper)
	post := RequireRole(RoleStorekeeper)
	admin := RequireRole(RoleAdmin)

	for path, docType := range map[string]string{
		"/receipts": entity.DocumentTypeReceipt,
		"/issues":   entity.DocumentTypeIssue,
	} {
		h := NewMovementHandler(docType, deps.Movements, deps.Queries)
		g := api.Group(path)
		g.Post("/", post, h.Create)
		g.Get("/", read, h.List)
		g.Get("/:id", read, h.GetByID)
		g.Put("/:id", admin, h.Update)
		g.Delete("/:id", admin, h.Delete)
		g.Get("/:id/history", read, h.History)
	}

	stockHandler := NewStockHandler(deps.Movements, deps.Queries)
	stock := api.Group("/stock")
	stock.Post("/adjustments", post, stockHandler.Adjust)
	stock.Get("/current", read, stockHandler.Current)
	stock.Get("/low", read, stockHandler.LowStock)
	api.Get("/stock-ledger", read, stockHandler.Ledger)

	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses := api.Group("/warehouses")
	warehouses.Post("/", admin, warehouseHandler.Create)
	warehouses.Get("/", read, warehouseHandler.List)
	warehouses.Get("/:id", read, warehouseHandler.GetByID)
	warehouses.Patch("/:id", admin, warehouseHandler.Update)

	materialHandler := NewMaterialHandler(deps.MaterialUC)
	materials := api.Group("/materials")
	materials.Post("/", admin, materialHandler.Create)
	materials.Get("/", read, materialHandler.List)
	materials.Get("/:id", read, materialHandler.GetByID)
	materials.Patch("/:id", admin, materialHandler.Update)
}
