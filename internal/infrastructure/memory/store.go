// Package memory implementa los repositorios del motor de inventario en memoria.
// Tiene bloqueos exclusivos reales por fila con espera acotada y commit/rollback con buffer,
// por lo que sirve como doble de pruebas y como almacén de desarrollo (STORE_DRIVER=memory).
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// DefaultLockTimeout espera máxima por un bloqueo de fila.
const DefaultLockTimeout = 5 * time.Second

var (
	errLockTimeout = errors.New("tiempo de espera de bloqueo agotado")
	errNotLocked   = errors.New("el par no está bloqueado por la transacción")
)

// Store estado confirmado más la tabla de bloqueos.
type Store struct {
	mu         sync.RWMutex
	balances   map[entity.StockKey]entity.Balance
	ledger     []entity.LedgerEntry
	documents  map[string]*entity.Document
	warehouses map[string]entity.Warehouse
	materials  map[string]entity.Material

	nextEntryID atomic.Int64
	locks       *lockTable
	lockTimeout time.Duration
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout cambia la espera máxima por bloqueo.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		balances:    make(map[entity.StockKey]entity.Balance),
		documents:   make(map[string]*entity.Document),
		warehouses:  make(map[string]entity.Warehouse),
		materials:   make(map[string]entity.Material),
		locks:       newLockTable(),
		lockTimeout: DefaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run abre una transacción, ejecuta fn con repositorios atados a ella y confirma si fn no falla.
// Cualquier error descarta lo escrito y libera los bloqueos.
func (s *Store) Run(ctx context.Context, fn func(
	ledgerRepo repository.LedgerRepository,
	balanceRepo repository.BalanceRepository,
	documentRepo repository.DocumentRepository,
) error) error {
	tx := s.begin()
	defer tx.release()

	if err := fn(&LedgerRepo{store: s, tx: tx}, &BalanceRepo{store: s, tx: tx}, &DocumentRepo{store: s, tx: tx}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &domain.ConcurrencyError{Op: "commit", Err: err}
	}
	return tx.commit()
}

// Ledger repositorio de kardex fuera de transacción.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{store: s} }

// Balances repositorio de saldos fuera de transacción.
func (s *Store) Balances() *BalanceRepo { return &BalanceRepo{store: s} }

// Documents repositorio de documentos fuera de transacción.
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{store: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{store: s} }

// Materials repositorio de materiales.
func (s *Store) Materials() *MaterialRepo { return &MaterialRepo{store: s} }

// Snapshot copia de todos los saldos confirmados, ordenada por par.
func (s *Store) Snapshot() []entity.Balance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Balance, 0, len(s.balances))
	for _, b := range s.balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key().Less(out[j].Key()) })
	return out
}

// LedgerLen cantidad de registros confirmados en el kardex.
func (s *Store) LedgerLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ledger)
}

// scope ejecuta fn dentro de tx, o en una transacción propia con autocommit si tx es nil.
func (s *Store) scope(tx *memTx, fn func(tx *memTx) error) error {
	if tx != nil {
		return fn(tx)
	}
	own := s.begin()
	defer own.release()
	if err := fn(own); err != nil {
		return err
	}
	return own.commit()
}

// lockTable un canal de capacidad 1 por clave: enviar = tomar el bloqueo.
type lockTable struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newLockTable() *lockTable {
	return &lockTable{slots: make(map[string]chan struct{})}
}

func (t *lockTable) slot(key string) chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch, ok := t.slots[key]
	if !ok {
		ch = make(chan struct{}, 1)
		t.slots[key] = ch
	}
	return ch
}

func (t *lockTable) acquire(ctx context.Context, key string, timeout time.Duration) error {
	ch := t.slot(key)
	select {
	case ch <- struct{}{}:
		return nil
	default:
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return &domain.ConcurrencyError{Op: "lock " + key, Err: errLockTimeout}
	case <-ctx.Done():
		return &domain.ConcurrencyError{Op: "lock " + key, Err: ctx.Err()}
	}
}

func (t *lockTable) release(key string) {
	<-t.slot(key)
}

// memTx cambios pendientes de una transacción. Solo se publican en commit.
type memTx struct {
	store    *Store
	held     map[string]bool
	balances map[entity.StockKey]entity.Balance
	entries  []entity.LedgerEntry
	docs     map[string]*entity.Document // nil = eliminado
	docOrder []string
}

func (s *Store) begin() *memTx {
	return &memTx{
		store:    s,
		held:     make(map[string]bool),
		balances: make(map[entity.StockKey]entity.Balance),
		docs:     make(map[string]*entity.Document),
	}
}

func (tx *memTx) lock(ctx context.Context, key string) error {
	if tx.held[key] {
		return nil
	}
	if err := tx.store.locks.acquire(ctx, key, tx.store.lockTimeout); err != nil {
		return err
	}
	tx.held[key] = true
	return nil
}

func (tx *memTx) release() {
	for key := range tx.held {
		tx.store.locks.release(key)
	}
	tx.held = nil
}

func (tx *memTx) stageDoc(doc *entity.Document) {
	if _, ok := tx.docs[doc.ID]; !ok {
		tx.docOrder = append(tx.docOrder, doc.ID)
	}
	tx.docs[doc.ID] = doc
}

func (tx *memTx) stageDelete(id string) {
	if _, ok := tx.docs[id]; !ok {
		tx.docOrder = append(tx.docOrder, id)
	}
	tx.docs[id] = nil
}

// document versión visible para la transacción; ok=false si no existe.
func (tx *memTx) document(id string) (*entity.Document, bool) {
	if doc, staged := tx.docs[id]; staged {
		return doc, doc != nil
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	doc, ok := tx.store.documents[id]
	if !ok {
		return nil, false
	}
	return cloneDocument(doc), true
}

func (tx *memTx) balance(key entity.StockKey) (entity.Balance, bool) {
	if b, ok := tx.balances[key]; ok {
		return b, true
	}
	tx.store.mu.RLock()
	defer tx.store.mu.RUnlock()
	b, ok := tx.store.balances[key]
	return b, ok
}

// commit publica los cambios. La unicidad de número de documento se verifica de nuevo aquí,
// bajo el mutex, para cubrir dos altas concurrentes con el mismo número.
func (tx *memTx) commit() error {
	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range tx.docOrder {
		doc := tx.docs[id]
		if doc == nil {
			continue
		}
		for otherID, other := range s.documents {
			if otherID == id || other.Type != doc.Type || other.DocumentNumber != doc.DocumentNumber {
				continue
			}
			if staged, ok := tx.docs[otherID]; ok && (staged == nil || staged.DocumentNumber != doc.DocumentNumber) {
				continue
			}
			return &domain.DuplicateDocumentNumberError{DocumentType: doc.Type, DocumentNumber: doc.DocumentNumber}
		}
	}

	for key, b := range tx.balances {
		s.balances[key] = b
	}
	s.ledger = append(s.ledger, tx.entries...)
	for _, id := range tx.docOrder {
		if doc := tx.docs[id]; doc != nil {
			s.documents[id] = doc
		} else {
			delete(s.documents, id)
		}
	}
	tx.entries = nil
	tx.balances = nil
	tx.docs = nil
	return nil
}

func pairLockKey(warehouseID, materialID string) string {
	return "pair:" + warehouseID + "/" + materialID
}

func documentLockKey(id string) string {
	return "document:" + id
}

func cloneDocument(doc *entity.Document) *entity.Document {
	if doc == nil {
		return nil
	}
	c := *doc
	c.Items = append([]entity.DocumentItem(nil), doc.Items...)
	return &c
}

var (
	_ inventory.TxRunner             = (*Store)(nil)
	_ repository.LedgerRepository    = (*LedgerRepo)(nil)
	_ repository.BalanceRepository   = (*BalanceRepo)(nil)
	_ repository.DocumentRepository  = (*DocumentRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.MaterialRepository  = (*MaterialRepo)(nil)
)
