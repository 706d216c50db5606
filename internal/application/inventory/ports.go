package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn retorna error se hace Rollback; si no, Commit. Garantiza atomicidad para el motor de inventario.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		balanceRepo repository.BalanceRepository,
		documentRepo repository.DocumentRepository,
	) error) error
}

// Clock fuente de tiempo para los timestamps del kardex.
type Clock interface {
	Now() time.Time
}

// IDGenerator genera IDs únicos para documentos y líneas.
type IDGenerator interface {
	NewID() string
}

// Metrics registra el resultado de las operaciones del motor.
type Metrics interface {
	ObserveOperation(op, outcome string, elapsed time.Duration)
	IncRetry(op string)
}

// SystemClock reloj real en UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator IDs con google/uuid.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID() string { return uuid.New().String() }

type nopMetrics struct{}

func (nopMetrics) ObserveOperation(string, string, time.Duration) {}
func (nopMetrics) IncRetry(string)                                {}

// txRepos repositorios atados a la transacción en curso.
type txRepos struct {
	ledger    repository.LedgerRepository
	balances  repository.BalanceRepository
	documents repository.DocumentRepository
}
