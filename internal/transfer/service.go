package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/shared"
)

// LedgerPort is what the workflow needs from the stock ledger.
type LedgerPort interface {
	GetStock(ctx context.Context, productID int64) (ledger.StockLevel, error)
	TransferBatch(ctx context.Context, moves []ledger.BatchMove, from, to ledger.Location, refModule, refID string, staffID int64) ([]ledger.StockLevel, error)
}

// CatalogPort resolves product details for staged entries.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (catalog.ProductView, error)
}

// RecordRepositoryPort persists committed transfer records.
type RecordRepositoryPort interface {
	Insert(ctx context.Context, rec Record) (int64, error)
	Get(ctx context.Context, id int64) (Record, error)
	ListByRange(ctx context.Context, from, to time.Time) ([]Record, error)
}

// IdempotencyPort guards against double-submitted commits.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Service runs the daily transfer workflow: stage godown-to-counter moves,
// commit them as one batch, and keep an append-only history of what moved.
type Service struct {
	logger  *slog.Logger
	store   *StagingStore
	records RecordRepositoryPort
	ledger  LedgerPort
	catalog CatalogPort
	idem    IdempotencyPort
}

// NewService builds Service.
func NewService(logger *slog.Logger, store *StagingStore, records RecordRepositoryPort, ledgerPort LedgerPort, catalogPort CatalogPort, idem IdempotencyPort) *Service {
	return &Service{logger: logger, store: store, records: records, ledger: ledgerPort, catalog: catalogPort, idem: idem}
}

// StartSession opens a fresh empty staging session.
func (s *Service) StartSession(ctx context.Context) (Session, error) {
	return s.store.Create(ctx)
}

// GetSession returns the current staging list.
func (s *Service) GetSession(ctx context.Context, sessionID string) (Session, error) {
	return s.store.Get(ctx, sessionID)
}

// AddToStaging stages one more unit of the product, capped at its current
// godown stock. Adding an out-of-stock product stages it at quantity zero so
// the user sees it cannot move.
func (s *Service) AddToStaging(ctx context.Context, sessionID string, productID int64) (Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return Session{}, err
	}
	level, err := s.ledger.GetStock(ctx, productID)
	if err != nil {
		return Session{}, err
	}
	sess.Add(productID, product.Name, product.SKU, product.Variant, level.Godown)
	if err := s.store.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// SetQuantity clamps the requested quantity to [0, current godown stock].
// Zero-quantity entries stay in the list until removed explicitly.
func (s *Service) SetQuantity(ctx context.Context, sessionID string, productID int64, quantity int) (Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	level, err := s.ledger.GetStock(ctx, productID)
	if err != nil {
		return Session{}, err
	}
	if !sess.SetQuantity(productID, quantity, level.Godown) {
		return Session{}, ErrEntryNotFound
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// RemoveFromStaging deletes the entry unconditionally.
func (s *Service) RemoveFromStaging(ctx context.Context, sessionID string, productID int64) (Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if !sess.Remove(productID) {
		return Session{}, ErrEntryNotFound
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// ClearStaging empties the session without committing.
func (s *Service) ClearStaging(ctx context.Context, sessionID string) (Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	sess.Entries = []StagingEntry{}
	if err := s.store.Save(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Commit validates the staging list and applies every staged move through
// the ledger as one all-or-nothing batch. On success the session is cleared
// and an immutable Record is persisted; on failure the staging list is kept
// so the user can fix it and retry.
func (s *Service) Commit(ctx context.Context, sessionID string, staffID int64, idempotencyKey string) (Record, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	if sess.IsEmpty() {
		return Record{}, ErrEmptyTransfer
	}
	for _, entry := range sess.Entries {
		if entry.Quantity == 0 {
			return Record{}, fmt.Errorf("%w: %s", ErrZeroQuantity, entry.Name)
		}
	}

	now := time.Now()
	code := fmt.Sprintf("TRF-%d", now.UnixNano())
	if idempotencyKey == "" {
		idempotencyKey = sessionID + ":" + code
	}
	insertedKey := false
	if s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, idempotencyKey, "transfer"); err != nil {
			return Record{}, err
		}
		insertedKey = true
	}
	releaseKey := func() {
		if insertedKey {
			_ = s.idem.Delete(ctx, idempotencyKey)
		}
	}

	// Staged list order carries straight into the batch.
	moves := make([]ledger.BatchMove, 0, len(sess.Entries))
	for _, entry := range sess.Entries {
		moves = append(moves, ledger.BatchMove{ProductID: entry.ProductID, Quantity: entry.Quantity})
	}
	if _, err := s.ledger.TransferBatch(ctx, moves, ledger.LocationGodown, ledger.LocationCounter, "TRANSFER", code, staffID); err != nil {
		releaseKey()
		return Record{}, err
	}

	rec := Record{
		Code:          code,
		TransferDate:  shared.DayStart(now),
		TotalItems:    len(sess.Entries),
		TotalQuantity: sess.TotalQuantity(),
		CreatedAt:     now,
	}
	for _, entry := range sess.Entries {
		rec.Items = append(rec.Items, RecordItem{
			ProductID:    entry.ProductID,
			Name:         entry.Name,
			Variant:      entry.Variant,
			Quantity:     entry.Quantity,
			TransferTime: now,
		})
	}
	id, err := s.records.Insert(ctx, rec)
	if err != nil {
		// Stock already moved; surface the error but do not release the key,
		// otherwise a retry would move the same stock again.
		s.logger.Error("transfer record insert failed after stock moved",
			slog.String("code", code), slog.Any("error", err))
		return Record{}, fmt.Errorf("transfer: stock moved but record not saved (%s): %w", code, err)
	}
	rec.ID = id

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Warn("clear staging session failed", slog.String("session", sessionID), slog.Any("error", err))
	}
	return rec, nil
}

// History returns records inside the inclusive date range, newest first.
func (s *Service) History(ctx context.Context, rng shared.DateRange) ([]Record, error) {
	return s.records.ListByRange(ctx, rng.From, rng.To)
}

// GetRecord loads one transfer record.
func (s *Service) GetRecord(ctx context.Context, id int64) (Record, error) {
	return s.records.Get(ctx, id)
}
