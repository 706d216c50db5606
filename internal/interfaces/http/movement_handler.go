package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
)

// MovementHandler documentos de un tipo (receipt o issue). Se monta una instancia por ruta.
type MovementHandler struct {
	docType   string
	movements *inventory.MovementUseCase
	queries   *inventory.StockQueryUseCase
}

// NewMovementHandler construye el handler para docType.
func NewMovementHandler(docType string, movements *inventory.MovementUseCase, queries *inventory.StockQueryUseCase) *MovementHandler {
	return &MovementHandler{docType: docType, movements: movements, queries: queries}
}

// Create godoc
// @Summary      Registrar documento (entrada o salida) y postear sus líneas
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovementRequest  true  "Cabecera y líneas"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
// @Router       /api/issues [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.MovementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	doc, err := h.movements.CreateMovement(c.Context(), in.ToInput(h.docType, GetUserID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(doc))
}

// List godoc
// @Summary      Listar documentos
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite"  default(100)
// @Param        offset  query  int  false  "Offset"  default(0)
// @Success      200     {object}  dto.MovementListResponse
// @Router       /api/receipts [get]
// @Router       /api/issues [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	limit, offset := page(c)
	docs, err := h.queries.ListMovements(c.Context(), h.docType, limit, offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementResponse, 0, len(docs))
	for _, d := range docs {
		items = append(items, dto.NewMovementResponse(d))
	}
	return c.JSON(dto.MovementListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

// GetByID godoc
// @Summary      Obtener documento con sus líneas
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [get]
// @Router       /api/issues/{id} [get]
func (h *MovementHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	doc, err := h.queries.GetMovement(c.Context(), h.docType, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(doc))
}

// Update godoc
// @Summary      Editar documento: compensa el posteo anterior y postea el nuevo
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del documento"
// @Param        body  body  dto.MovementRequest  true  "Cabecera y líneas completas"
// @Success      200   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [put]
// @Router       /api/issues/{id} [put]
func (h *MovementHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	var in dto.MovementRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	if _, err := h.queries.GetMovement(c.Context(), h.docType, id); err != nil {
		return writeError(c, err)
	}
	doc, err := h.movements.ReviseMovement(c.Context(), id, in.ToInput(h.docType, GetUserID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewMovementResponse(doc))
}

// Delete godoc
// @Summary      Eliminar documento; el kardex conserva el posteo y su reversa
// @Tags         movements
// @Security     Bearer
// @Param        id  path  string  true  "ID del documento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/receipts/{id} [delete]
// @Router       /api/issues/{id} [delete]
func (h *MovementHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	if _, err := h.queries.GetMovement(c.Context(), h.docType, id); err != nil {
		return writeError(c, err)
	}
	if err := h.movements.DeleteMovement(c.Context(), id, GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// History godoc
// @Summary      Registros del kardex del documento (posteo, reversas, ediciones)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/receipts/{id}/history [get]
// @Router       /api/issues/{id}/history [get]
func (h *MovementHandler) History(c *fiber.Ctx) error {
	id, err := pathID(c)
	if err != nil {
		return writeError(c, err)
	}
	entries, err := h.queries.MovementHistory(c.Context(), h.docType, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewLedgerEntryResponses(entries))
}
