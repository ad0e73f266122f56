package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/tavern-pos/tavern-pos/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetStock(ctx context.Context, productID int64) (StockLevel, error)
	ListMovements(ctx context.Context, productID int64, from, to time.Time, limit int) ([]Movement, error)
}

// AuditPort records who touched stock and why.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns the live stock counters. Every mutation happens inside one
// transaction with the product rows locked, so no caller can observe stock
// removed from one location but not yet added to the other.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// GetStock returns the current balance for one product.
func (s *Service) GetStock(ctx context.Context, productID int64) (StockLevel, error) {
	return s.repo.GetStock(ctx, productID)
}

// Movements lists journal rows for one product.
func (s *Service) Movements(ctx context.Context, productID int64, from, to time.Time, limit int) ([]Movement, error) {
	return s.repo.ListMovements(ctx, productID, from, to, limit)
}

// Transfer atomically moves quantity between the two locations of a product.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (StockLevel, error) {
	if input.Quantity <= 0 {
		return StockLevel{}, ErrInvalidQuantity
	}
	if !input.From.Valid() || !input.To.Valid() || input.From == input.To {
		return StockLevel{}, ErrInvalidLocation
	}

	var after StockLevel
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		level, err := tx.GetStockForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if level.At(input.From) < input.Quantity {
			return fmt.Errorf("%w: have %d, need %d", ErrInsufficientStock, level.At(input.From), input.Quantity)
		}
		after = applyMove(level, input.From, input.To, input.Quantity)
		if err := tx.SetStock(ctx, input.ProductID, after.Godown, after.Counter); err != nil {
			return err
		}
		_, err = tx.InsertMovement(ctx, Movement{
			ProductID: input.ProductID,
			Type:      MovementTransfer,
			Quantity:  input.Quantity,
			From:      input.From,
			To:        input.To,
			Note:      input.Note,
			RefModule: input.RefModule,
			RefID:     input.RefID,
			StaffID:   input.StaffID,
		})
		return err
	})
	if err != nil {
		return StockLevel{}, err
	}
	s.recordAudit(ctx, input.StaffID, "ledger:transfer", input.ProductID, map[string]any{
		"quantity": input.Quantity,
		"from":     string(input.From),
		"to":       string(input.To),
	})
	return after, nil
}

// TransferBatch applies several godown-to-counter moves as one unit. Every
// line is validated against the locked rows before any stock changes, so a
// failing line leaves no partial update behind.
func (s *Service) TransferBatch(ctx context.Context, moves []BatchMove, from, to Location, refModule, refID string, staffID int64) ([]StockLevel, error) {
	if len(moves) == 0 {
		return nil, ErrInvalidQuantity
	}
	if !from.Valid() || !to.Valid() || from == to {
		return nil, ErrInvalidLocation
	}
	for _, m := range moves {
		if m.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidQuantity, m.ProductID)
		}
	}

	// Lock rows in ascending product order so two concurrent batches cannot
	// deadlock against each other.
	ordered := make([]BatchMove, len(moves))
	copy(ordered, moves)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	results := make(map[int64]StockLevel, len(moves))
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		levels := make(map[int64]StockLevel, len(ordered))
		for _, m := range ordered {
			level, err := tx.GetStockForUpdate(ctx, m.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", m.ProductID, err)
			}
			levels[m.ProductID] = level
		}
		for _, m := range ordered {
			if levels[m.ProductID].At(from) < m.Quantity {
				return fmt.Errorf("product %d: %w: have %d, need %d",
					m.ProductID, ErrInsufficientStock, levels[m.ProductID].At(from), m.Quantity)
			}
		}
		for _, m := range ordered {
			after := applyMove(levels[m.ProductID], from, to, m.Quantity)
			if err := tx.SetStock(ctx, m.ProductID, after.Godown, after.Counter); err != nil {
				return err
			}
			if _, err := tx.InsertMovement(ctx, Movement{
				ProductID: m.ProductID,
				Type:      MovementTransfer,
				Quantity:  m.Quantity,
				From:      from,
				To:        to,
				RefModule: refModule,
				RefID:     refID,
				StaffID:   staffID,
			}); err != nil {
				return err
			}
			results[m.ProductID] = after
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Report results in the caller's original order.
	out := make([]StockLevel, 0, len(moves))
	for _, m := range moves {
		out = append(out, results[m.ProductID])
	}
	s.recordAudit(ctx, staffID, "ledger:transfer_batch", 0, map[string]any{
		"lines": len(moves),
		"from":  string(from),
		"to":    string(to),
		"ref":   refID,
	})
	return out, nil
}

// UpdateStock overwrites both counters. This is the manual correction path
// used by the stock-edit screen, not by the transfer workflow.
func (s *Service) UpdateStock(ctx context.Context, productID int64, godown, counter int, note string, staffID int64) (StockLevel, error) {
	if godown < 0 || counter < 0 {
		return StockLevel{}, ErrNegativeStock
	}
	var after StockLevel
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		level, err := tx.GetStockForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if err := tx.SetStock(ctx, productID, godown, counter); err != nil {
			return err
		}
		after = StockLevel{ProductID: productID, Godown: godown, Counter: counter}
		delta := (godown + counter) - level.Total()
		_, err = tx.InsertMovement(ctx, Movement{
			ProductID: productID,
			Type:      MovementAdjust,
			Quantity:  abs(delta),
			Note:      note,
			RefModule: "LEDGER",
			StaffID:   staffID,
		})
		return err
	})
	if err != nil {
		return StockLevel{}, err
	}
	s.recordAudit(ctx, staffID, "ledger:update_stock", productID, map[string]any{
		"godown":  godown,
		"counter": counter,
		"note":    note,
	})
	return after, nil
}

// ConsumeCounter removes sold quantity from counter stock for a bill line.
func (s *Service) ConsumeCounter(ctx context.Context, productID int64, quantity int, refModule, refID string, staffID int64) (StockLevel, error) {
	return s.moveCounter(ctx, productID, quantity, MovementSale, refModule, refID, staffID)
}

// ReturnCounter puts quantity back on the counter for a voided bill line.
func (s *Service) ReturnCounter(ctx context.Context, productID int64, quantity int, refModule, refID string, staffID int64) (StockLevel, error) {
	return s.moveCounter(ctx, productID, quantity, MovementReturn, refModule, refID, staffID)
}

func (s *Service) moveCounter(ctx context.Context, productID int64, quantity int, mt MovementType, refModule, refID string, staffID int64) (StockLevel, error) {
	if quantity <= 0 {
		return StockLevel{}, ErrInvalidQuantity
	}
	var after StockLevel
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		level, err := tx.GetStockForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		counter := level.Counter
		if mt == MovementSale {
			if counter < quantity {
				return fmt.Errorf("%w: counter has %d, need %d", ErrInsufficientStock, counter, quantity)
			}
			counter -= quantity
		} else {
			counter += quantity
		}
		if err := tx.SetStock(ctx, productID, level.Godown, counter); err != nil {
			return err
		}
		after = StockLevel{ProductID: productID, Godown: level.Godown, Counter: counter}
		_, err = tx.InsertMovement(ctx, Movement{
			ProductID: productID,
			Type:      mt,
			Quantity:  quantity,
			From:      LocationCounter,
			RefModule: refModule,
			RefID:     refID,
			StaffID:   staffID,
		})
		return err
	})
	if err != nil {
		return StockLevel{}, err
	}
	return after, nil
}

func (s *Service) recordAudit(ctx context.Context, staffID int64, action string, productID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entityID := "batch"
	if productID != 0 {
		entityID = fmt.Sprintf("%d", productID)
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		StaffID:  staffID,
		Action:   action,
		Entity:   "stock",
		EntityID: entityID,
		Meta:     meta,
	})
}

func applyMove(level StockLevel, from, to Location, qty int) StockLevel {
	switch from {
	case LocationGodown:
		level.Godown -= qty
	case LocationCounter:
		level.Counter -= qty
	}
	switch to {
	case LocationGodown:
		level.Godown += qty
	case LocationCounter:
		level.Counter += qty
	}
	return level
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
