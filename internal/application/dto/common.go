package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=1000"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP. Details lleva el detalle estructurado (faltantes, campo inválido).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// FieldErrorDetail campo rechazado por validación.
type FieldErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ShortfallDetail faltante de stock de un par (bodega, material).
type ShortfallDetail struct {
	MaterialID  string `json:"material_id"`
	WarehouseID string `json:"warehouse_id"`
	Requested   string `json:"requested"`
	Available   string `json:"available"`
	Shortfall   string `json:"shortfall"`
}
