package inventory

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/pkg/logger"
)

// DefaultCurrency moneda cuando ni el documento ni la línea la indican.
const DefaultCurrency = "UAH"

// RetryPolicy reintentos ante ConcurrencyError. La operación se repite completa, nunca se reanuda.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration // espera lineal: Backoff * intento
}

// MovementUseCase motor de consistencia de inventario: registra, edita, elimina documentos
// y ajustes manteniendo saldo y kardex conciliados dentro de una sola transacción por llamada.
type MovementUseCase struct {
	txRunner      TxRunner
	materialRepo  repository.MaterialRepository
	warehouseRepo repository.WarehouseRepository
	clock         Clock
	ids           IDGenerator
	metrics       Metrics
	log           *logger.Logger
	retry         RetryPolicy
}

// Option configura dependencias opcionales del caso de uso.
type Option func(*MovementUseCase)

func WithClock(c Clock) Option             { return func(uc *MovementUseCase) { uc.clock = c } }
func WithIDGenerator(g IDGenerator) Option { return func(uc *MovementUseCase) { uc.ids = g } }
func WithMetrics(m Metrics) Option         { return func(uc *MovementUseCase) { uc.metrics = m } }
func WithLogger(l *logger.Logger) Option   { return func(uc *MovementUseCase) { uc.log = l } }
func WithRetryPolicy(p RetryPolicy) Option { return func(uc *MovementUseCase) { uc.retry = p } }

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(
	txRunner TxRunner,
	materialRepo repository.MaterialRepository,
	warehouseRepo repository.WarehouseRepository,
	opts ...Option,
) *MovementUseCase {
	uc := &MovementUseCase{
		txRunner:      txRunner,
		materialRepo:  materialRepo,
		warehouseRepo: warehouseRepo,
		clock:         SystemClock{},
		ids:           UUIDGenerator{},
		metrics:       nopMetrics{},
		log:           logger.Nop(),
		retry:         RetryPolicy{MaxRetries: 3, Backoff: 20 * time.Millisecond},
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// MovementLineInput línea de un documento tal como llega del llamador.
type MovementLineInput struct {
	MaterialID  string
	WarehouseID string
	Qty         decimal.Decimal
	UnitPrice   decimal.Decimal
	Currency    string
	Notes       string
}

// MovementInput cabecera y líneas de un documento de entrada o salida.
// Type es obligatorio al crear; al editar, si viene debe coincidir con el del documento.
type MovementInput struct {
	Type           string
	DocumentNumber string
	Date           *time.Time
	CounterpartyID string
	Currency       string
	Notes          string
	UserID         string
	Items          []MovementLineInput
}

// CreateMovement registra un documento nuevo: valida, verifica disponibilidad (salidas),
// escribe líneas, kardex y saldos, y persiste la cabecera con el total. Todo o nada.
func (uc *MovementUseCase) CreateMovement(ctx context.Context, in MovementInput) (*entity.Document, error) {
	if !entity.IsValidDocumentType(in.Type) {
		return nil, domain.NewValidationError("type", "debe ser receipt o issue")
	}
	items, err := uc.buildItems(ctx, in)
	if err != nil {
		return nil, err
	}
	header, err := buildHeader(in)
	if err != nil {
		return nil, err
	}

	doc := header
	doc.ID = uc.ids.NewID()
	doc.Type = in.Type
	doc.CreatedBy = in.UserID
	doc.Items = uc.assignItemIDs(doc.ID, items)
	doc.TotalAmount = totalOf(doc.Items)

	err = uc.run(ctx, "create_movement", func(tx txRepos) error {
		exists, err := tx.documents.NumberExists(ctx, doc.Type, doc.DocumentNumber, "")
		if err != nil {
			return err
		}
		if exists {
			return &domain.DuplicateDocumentNumberError{DocumentType: doc.Type, DocumentNumber: doc.DocumentNumber}
		}

		locked, err := lockPairs(ctx, tx.balances, itemKeys(doc.Items))
		if err != nil {
			return err
		}
		if doc.Type == entity.DocumentTypeIssue {
			if err := checkAvailability(locked, doc.Items); err != nil {
				return err
			}
		}

		now := uc.clock.Now()
		if doc.Date.IsZero() {
			doc.Date = now
		}
		doc.CreatedAt = now
		doc.UpdatedAt = now
		if err := uc.postLines(ctx, tx, locked, doc, doc.MovementKind(), now, in.UserID); err != nil {
			return err
		}
		return tx.documents.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().
		Str("document_id", doc.ID).
		Str("type", doc.Type).
		Str("document_number", doc.DocumentNumber).
		Str("total_amount", doc.TotalAmount.StringFixed(inventory.MoneyScale)).
		Int("lines", len(doc.Items)).
		Msg("documento registrado")
	return doc, nil
}

// buildItems valida y cuantiza las líneas. Material y bodega deben existir.
func (uc *MovementUseCase) buildItems(ctx context.Context, in MovementInput) ([]entity.DocumentItem, error) {
	if len(in.Items) == 0 {
		return nil, domain.NewValidationError("items", "el documento no tiene líneas")
	}
	docCurrency := strings.TrimSpace(in.Currency)
	if docCurrency == "" {
		docCurrency = DefaultCurrency
	}

	checkedMaterials := map[string]bool{}
	checkedWarehouses := map[string]bool{}
	items := make([]entity.DocumentItem, 0, len(in.Items))
	for i, line := range in.Items {
		if line.MaterialID == "" {
			return nil, domain.NewValidationError(lineField(i, "material_id"), "requerido")
		}
		if line.WarehouseID == "" {
			return nil, domain.NewValidationError(lineField(i, "warehouse_id"), "requerido")
		}
		qty := inventory.Quantity(line.Qty)
		if !qty.IsPositive() {
			return nil, domain.NewValidationError(lineField(i, "qty"), "debe ser mayor que cero")
		}
		if err := inventory.CheckQuantity(lineField(i, "qty"), qty); err != nil {
			return nil, err
		}
		price := inventory.Money(line.UnitPrice)
		if price.IsNegative() {
			return nil, domain.NewValidationError(lineField(i, "unit_price"), "no puede ser negativo")
		}
		if err := inventory.CheckMoney(lineField(i, "unit_price"), price); err != nil {
			return nil, err
		}
		total := inventory.LineTotal(qty, price)
		if err := inventory.CheckMoney(lineField(i, "total_price"), total); err != nil {
			return nil, err
		}

		if !checkedMaterials[line.MaterialID] {
			if err := uc.ensureMaterial(ctx, line.MaterialID); err != nil {
				return nil, err
			}
			checkedMaterials[line.MaterialID] = true
		}
		if !checkedWarehouses[line.WarehouseID] {
			if err := uc.ensureWarehouse(ctx, line.WarehouseID); err != nil {
				return nil, err
			}
			checkedWarehouses[line.WarehouseID] = true
		}

		currency := strings.TrimSpace(line.Currency)
		if currency == "" {
			currency = docCurrency
		}
		items = append(items, entity.DocumentItem{
			LineNo:      i + 1,
			MaterialID:  line.MaterialID,
			WarehouseID: line.WarehouseID,
			Qty:         qty,
			UnitPrice:   price,
			Currency:    currency,
			TotalPrice:  total,
			Notes:       line.Notes,
		})
	}
	if err := inventory.CheckMoney("total_amount", totalOf(items)); err != nil {
		return nil, err
	}
	return items, nil
}

func (uc *MovementUseCase) ensureMaterial(ctx context.Context, id string) error {
	m, err := uc.materialRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return &domain.NotFoundError{Resource: "material", ID: id}
	}
	if !m.IsActive {
		return domain.NewValidationError("material_id", "el material "+m.Code+" está inactivo")
	}
	return nil
}

func (uc *MovementUseCase) ensureWarehouse(ctx context.Context, id string) error {
	w, err := uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if w == nil {
		return &domain.NotFoundError{Resource: "bodega", ID: id}
	}
	return nil
}

func (uc *MovementUseCase) assignItemIDs(documentID string, items []entity.DocumentItem) []entity.DocumentItem {
	for i := range items {
		items[i].ID = uc.ids.NewID()
		items[i].DocumentID = documentID
	}
	return items
}

// buildHeader arma la cabecera (sin ID ni tipo) desde la entrada.
func buildHeader(in MovementInput) (*entity.Document, error) {
	number := strings.TrimSpace(in.DocumentNumber)
	if number == "" {
		return nil, domain.NewValidationError("document_number", "requerido")
	}
	if len(number) > 100 {
		return nil, domain.NewValidationError("document_number", "máximo 100 caracteres")
	}
	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	doc := &entity.Document{
		DocumentNumber: number,
		CounterpartyID: in.CounterpartyID,
		Currency:       currency,
		Notes:          in.Notes,
	}
	if in.Date != nil {
		doc.Date = in.Date.UTC()
	}
	return doc, nil
}

func totalOf(items []entity.DocumentItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.TotalPrice)
	}
	return inventory.Money(total)
}

func itemKeys(items []entity.DocumentItem) []entity.StockKey {
	keys := make([]entity.StockKey, 0, len(items))
	for i := range items {
		keys = append(keys, items[i].Key())
	}
	return keys
}

func lineField(i int, name string) string {
	return "items[" + strconv.Itoa(i) + "]." + name
}

// run ejecuta fn en una transacción y la repite completa ante ConcurrencyError.
func (uc *MovementUseCase) run(ctx context.Context, op string, fn func(tx txRepos) error) error {
	start := time.Now()
	attempts := uc.retry.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = uc.txRunner.Run(ctx, func(
			ledgerRepo repository.LedgerRepository,
			balanceRepo repository.BalanceRepository,
			documentRepo repository.DocumentRepository,
		) error {
			return fn(txRepos{ledger: ledgerRepo, balances: balanceRepo, documents: documentRepo})
		})
		if err == nil || !errors.Is(err, domain.ErrConcurrency) || attempt == attempts {
			break
		}

		uc.metrics.IncRetry(op)
		uc.log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Msg("conflicto de concurrencia, reintentando")
		wait := uc.retry.Backoff * time.Duration(attempt)
		select {
		case <-ctx.Done():
			uc.metrics.ObserveOperation(op, outcomeOf(err), time.Since(start))
			return &domain.ConcurrencyError{Op: op, Err: ctx.Err()}
		case <-time.After(wait):
		}
	}

	uc.metrics.ObserveOperation(op, outcomeOf(err), time.Since(start))
	if err != nil && domain.IsRetryable(err) {
		uc.log.Error().Err(err).Str("op", op).Msg("operación de inventario fallida")
	}
	return err
}

// outcomeOf etiqueta de métricas para el resultado de una operación.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, domain.ErrConcurrency):
		return "concurrency"
	case errors.Is(err, domain.ErrPersistence):
		return "persistence"
	default:
		return "error"
	}
}
