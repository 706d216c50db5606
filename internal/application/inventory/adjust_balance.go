package inventory

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
)

// AdjustmentInput ajuste manual de un saldo. Delta con signo.
type AdjustmentInput struct {
	WarehouseID string
	MaterialID  string
	Delta       decimal.Decimal
	UnitPrice   *decimal.Decimal
	Currency    string
	Remarks     string
	UserID      string
}

// AdjustBalance aplica un cambio directo al saldo sin documento de respaldo.
// No verifica disponibilidad: un ajuste puede dejar la cantidad en negativo.
func (uc *MovementUseCase) AdjustBalance(ctx context.Context, in AdjustmentInput) (*entity.LedgerEntry, error) {
	if in.WarehouseID == "" {
		return nil, domain.NewValidationError("warehouse_id", "requerido")
	}
	if in.MaterialID == "" {
		return nil, domain.NewValidationError("material_id", "requerido")
	}
	delta := inventory.Quantity(in.Delta)
	if delta.IsZero() {
		return nil, domain.NewValidationError("delta", "no puede ser cero")
	}
	if err := inventory.CheckQuantity("delta", delta); err != nil {
		return nil, err
	}
	var unitPrice *decimal.Decimal
	if in.UnitPrice != nil {
		p := inventory.Money(*in.UnitPrice)
		if p.IsNegative() {
			return nil, domain.NewValidationError("unit_price", "no puede ser negativo")
		}
		if err := inventory.CheckMoney("unit_price", p); err != nil {
			return nil, err
		}
		if err := inventory.CheckMoney("total_price", inventory.Money(delta.Mul(p))); err != nil {
			return nil, err
		}
		unitPrice = &p
	}
	if err := uc.ensureMaterial(ctx, in.MaterialID); err != nil {
		return nil, err
	}
	if err := uc.ensureWarehouse(ctx, in.WarehouseID); err != nil {
		return nil, err
	}
	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = DefaultCurrency
	}
	remarks := strings.TrimSpace(in.Remarks)
	if remarks == "" {
		remarks = "Manual adjustment"
	}

	var posted *entity.LedgerEntry
	err := uc.run(ctx, "adjust_balance", func(tx txRepos) error {
		key := entity.StockKey{WarehouseID: in.WarehouseID, MaterialID: in.MaterialID}
		if _, err := lockPairs(ctx, tx.balances, []entity.StockKey{key}); err != nil {
			return err
		}
		now := uc.clock.Now()
		entry := &entity.LedgerEntry{
			Timestamp:        now,
			WarehouseID:      in.WarehouseID,
			MaterialID:       in.MaterialID,
			Kind:             entity.MovementKindAdjustment,
			QtyChange:        delta,
			UnitPrice:        unitPrice,
			Currency:         currency,
			ReferenceDocType: entity.ReferenceDocAdjustment,
			Remarks:          remarks,
			CreatedBy:        in.UserID,
		}
		if unitPrice != nil {
			total := inventory.Money(delta.Mul(*unitPrice))
			entry.TotalPrice = &total
		}
		if err := tx.ledger.Append(ctx, entry); err != nil {
			return err
		}
		b, err := tx.balances.ApplyDelta(ctx, in.WarehouseID, in.MaterialID, delta, now)
		if err != nil {
			return err
		}
		if err := inventory.CheckQuantity("quantity", b.Quantity); err != nil {
			return err
		}
		posted = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Debug().
		Int64("entry_id", posted.ID).
		Str("warehouse_id", posted.WarehouseID).
		Str("material_id", posted.MaterialID).
		Str("delta", posted.QtyChange.StringFixed(inventory.QuantityScale)).
		Msg("ajuste aplicado")
	return posted, nil
}
