package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/inventory"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// lockedBalances saldos bloqueados por la transacción en curso, con su último valor conocido.
type lockedBalances map[entity.StockKey]*entity.Balance

// lockPairs bloquea (SELECT FOR UPDATE) cada par una sola vez y en orden ascendente
// (bodega, material), para que dos transacciones nunca se esperen en orden cruzado.
func lockPairs(ctx context.Context, balances repository.BalanceRepository, keys []entity.StockKey) (lockedBalances, error) {
	unique := make([]entity.StockKey, 0, len(keys))
	seen := make(map[entity.StockKey]bool, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			unique = append(unique, k)
		}
	}
	sort.Slice(unique, func(i, j int) bool { return unique[i].Less(unique[j]) })

	locked := make(lockedBalances, len(unique))
	for _, k := range unique {
		b, err := balances.GetForUpdate(ctx, k.WarehouseID, k.MaterialID)
		if err != nil {
			return nil, err
		}
		locked[k] = b
	}
	return locked, nil
}

// checkAvailability verifica disponible = cantidad - reservada contra lo solicitado,
// sumando las líneas del mismo par. Se ejecuta antes de escribir cualquier fila.
func checkAvailability(locked lockedBalances, items []entity.DocumentItem) error {
	requested := make(map[entity.StockKey]decimal.Decimal, len(items))
	order := make([]entity.StockKey, 0, len(items))
	for i := range items {
		k := items[i].Key()
		if _, ok := requested[k]; !ok {
			order = append(order, k)
			requested[k] = decimal.Zero
		}
		requested[k] = requested[k].Add(items[i].Qty)
	}
	for _, k := range order {
		b, ok := locked[k]
		if !ok {
			return domain.NewValidationError("items", "par sin bloqueo: "+k.WarehouseID+"/"+k.MaterialID)
		}
		available := b.Available()
		if available.LessThan(requested[k]) {
			return &domain.InsufficientStockError{
				MaterialID:  k.MaterialID,
				WarehouseID: k.WarehouseID,
				Requested:   inventory.Quantity(requested[k]),
				Available:   inventory.Quantity(available),
			}
		}
	}
	return nil
}

// postLines aplica las líneas del documento en orden: un registro de kardex con la cantidad
// con signo y el delta sobre el saldo bloqueado. kind es receipt/issue al crear y edit al editar.
func (uc *MovementUseCase) postLines(
	ctx context.Context,
	tx txRepos,
	locked lockedBalances,
	doc *entity.Document,
	kind string,
	now time.Time,
	userID string,
) error {
	remarks := doc.ReferenceType() + " " + doc.DocumentNumber
	if kind == entity.MovementKindEdit {
		remarks = "Edit of " + remarks
	}
	for i := range doc.Items {
		item := &doc.Items[i]
		signed := inventory.Signed(doc.Type, item.Qty)
		if err := uc.post(ctx, tx, locked, item, doc, kind, signed, now, userID, remarks); err != nil {
			return err
		}
	}
	return nil
}

// compensate emite por cada línea vigente un registro reversal que niega exactamente su efecto
// y aplica esa negación al saldo. No borra nada: el historial original queda intacto.
func (uc *MovementUseCase) compensate(
	ctx context.Context,
	tx txRepos,
	locked lockedBalances,
	doc *entity.Document,
	now time.Time,
	userID string,
) error {
	remarks := "Reversal of " + doc.ReferenceType() + " " + doc.DocumentNumber
	for i := range doc.Items {
		item := &doc.Items[i]
		signed := inventory.Signed(doc.Type, item.Qty).Neg()
		if err := uc.post(ctx, tx, locked, item, doc, entity.MovementKindReversal, signed, now, userID, remarks); err != nil {
			return err
		}
	}
	return nil
}

func (uc *MovementUseCase) post(
	ctx context.Context,
	tx txRepos,
	locked lockedBalances,
	item *entity.DocumentItem,
	doc *entity.Document,
	kind string,
	signed decimal.Decimal,
	now time.Time,
	userID, remarks string,
) error {
	key := item.Key()
	if _, ok := locked[key]; !ok {
		return domain.NewValidationError("items", "par sin bloqueo: "+key.WarehouseID+"/"+key.MaterialID)
	}
	unitPrice := item.UnitPrice
	total := inventory.Money(signed.Mul(unitPrice))
	entry := &entity.LedgerEntry{
		Timestamp:        now,
		WarehouseID:      item.WarehouseID,
		MaterialID:       item.MaterialID,
		Kind:             kind,
		QtyChange:        signed,
		UnitPrice:        &unitPrice,
		Currency:         item.Currency,
		TotalPrice:       &total,
		ReferenceDocType: doc.ReferenceType(),
		ReferenceDocID:   doc.ID,
		Remarks:          remarks,
		CreatedBy:        userID,
	}
	if err := tx.ledger.Append(ctx, entry); err != nil {
		return err
	}
	b, err := tx.balances.ApplyDelta(ctx, item.WarehouseID, item.MaterialID, signed, now)
	if err != nil {
		return err
	}
	if err := inventory.CheckQuantity("quantity", b.Quantity); err != nil {
		return err
	}
	locked[key] = b
	return nil
}
