package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/shared"
)

type fakeLedger struct {
	levels   map[int64]*ledger.StockLevel
	batches  int
	lastFrom ledger.Location
	lastTo   ledger.Location
}

func (f *fakeLedger) GetStock(_ context.Context, productID int64) (ledger.StockLevel, error) {
	level, ok := f.levels[productID]
	if !ok {
		return ledger.StockLevel{}, ledger.ErrNotFound
	}
	return *level, nil
}

func (f *fakeLedger) TransferBatch(_ context.Context, moves []ledger.BatchMove, from, to ledger.Location, _, _ string, _ int64) ([]ledger.StockLevel, error) {
	// Validate everything before touching anything, same contract as the
	// real ledger.
	for _, m := range moves {
		level, ok := f.levels[m.ProductID]
		if !ok {
			return nil, ledger.ErrNotFound
		}
		if m.Quantity <= 0 {
			return nil, ledger.ErrInvalidQuantity
		}
		if level.Godown < m.Quantity {
			return nil, fmt.Errorf("%w: product %d", ledger.ErrInsufficientStock, m.ProductID)
		}
	}
	out := make([]ledger.StockLevel, 0, len(moves))
	for _, m := range moves {
		level := f.levels[m.ProductID]
		level.Godown -= m.Quantity
		level.Counter += m.Quantity
		out = append(out, *level)
	}
	f.batches++
	f.lastFrom, f.lastTo = from, to
	return out, nil
}

type fakeCatalog struct {
	products map[int64]catalog.ProductView
}

func (f *fakeCatalog) Get(_ context.Context, id int64) (catalog.ProductView, error) {
	p, ok := f.products[id]
	if !ok {
		return catalog.ProductView{}, catalog.ErrNotFound
	}
	return p, nil
}

type memoryRecords struct {
	nextID  int64
	records []Record
	failing bool
}

func (m *memoryRecords) Insert(_ context.Context, rec Record) (int64, error) {
	if m.failing {
		return 0, fmt.Errorf("records: insert failed")
	}
	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *memoryRecords) Get(_ context.Context, id int64) (Record, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, ErrRecordNotFound
}

func (m *memoryRecords) ListByRange(_ context.Context, from, to time.Time) ([]Record, error) {
	var out []Record
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		if !r.TransferDate.Before(from) && !r.TransferDate.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type memoryIdem struct {
	keys map[string]bool
}

func (m *memoryIdem) CheckAndInsert(_ context.Context, key, _ string) error {
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if m.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	m.keys[key] = true
	return nil
}

func (m *memoryIdem) Delete(_ context.Context, key string) error {
	delete(m.keys, key)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeLedger, *memoryRecords) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStagingStore(client, time.Hour)

	led := &fakeLedger{levels: map[int64]*ledger.StockLevel{
		1: {ProductID: 1, Godown: 50, Counter: 10},
		2: {ProductID: 2, Godown: 3, Counter: 0},
		3: {ProductID: 3, Godown: 0, Counter: 5},
	}}
	cat := &fakeCatalog{products: map[int64]catalog.ProductView{
		1: {Product: catalog.Product{ID: 1, Name: "Old Monk", SKU: "OM-750", Variant: "750ml"}},
		2: {Product: catalog.Product{ID: 2, Name: "Kingfisher", SKU: "KF-650"}},
		3: {Product: catalog.Product{ID: 3, Name: "Signature", SKU: "SG-180", Variant: "180ml"}},
	}}
	records := &memoryRecords{}
	svc := NewService(slog.Default(), store, records, led, cat, &memoryIdem{})
	return svc, led, records
}

func TestAddToStagingIncrementsAndCaps(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)

	sess, err = svc.AddToStaging(ctx, sess.ID, 2)
	require.NoError(t, err)
	require.Len(t, sess.Entries, 1)
	require.Equal(t, 1, sess.Entries[0].Quantity)

	sess, err = svc.AddToStaging(ctx, sess.ID, 2)
	require.NoError(t, err)
	require.Equal(t, 2, sess.Entries[0].Quantity)

	// Godown holds 3; adding past that sticks at the cap.
	for i := 0; i < 4; i++ {
		sess, err = svc.AddToStaging(ctx, sess.ID, 2)
		require.NoError(t, err)
	}
	require.Equal(t, 3, sess.Entries[0].Quantity)
}

func TestAddOutOfStockStagesZero(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	sess, err = svc.AddToStaging(ctx, sess.ID, 3)
	require.NoError(t, err)
	require.Len(t, sess.Entries, 1)
	require.Equal(t, 0, sess.Entries[0].Quantity)
}

func TestSetQuantityClamps(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 1)
	require.NoError(t, err)

	sess, err = svc.SetQuantity(ctx, sess.ID, 1, -5)
	require.NoError(t, err)
	require.Equal(t, 0, sess.Entries[0].Quantity)

	sess, err = svc.SetQuantity(ctx, sess.ID, 1, 150)
	require.NoError(t, err)
	require.Equal(t, 50, sess.Entries[0].Quantity)

	_, err = svc.SetQuantity(ctx, sess.ID, 99, 1)
	require.ErrorIs(t, err, ErrEntryNotFound)
}

func TestRemoveAndClear(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 2)
	require.NoError(t, err)

	sess, err = svc.RemoveFromStaging(ctx, sess.ID, 1)
	require.NoError(t, err)
	require.Len(t, sess.Entries, 1)

	sess, err = svc.ClearStaging(ctx, sess.ID)
	require.NoError(t, err)
	require.True(t, sess.IsEmpty())
}

func TestCommitEmptyRejected(t *testing.T) {
	svc, led, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.Commit(ctx, sess.ID, 7, "")
	require.ErrorIs(t, err, ErrEmptyTransfer)
	require.Zero(t, led.batches)
}

func TestCommitZeroQuantityRejectedBeforeAnyMove(t *testing.T) {
	svc, led, records := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 3) // out of stock, stages at zero
	require.NoError(t, err)

	_, err = svc.Commit(ctx, sess.ID, 7, "")
	require.ErrorIs(t, err, ErrZeroQuantity)
	require.Zero(t, led.batches)
	require.Empty(t, records.records)
	require.Equal(t, 50, led.levels[1].Godown)

	// Staging list survives the failed commit.
	sess, err = svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, sess.Entries, 2)
}

func TestCommitMovesStockAndClearsSession(t *testing.T) {
	svc, led, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, sess.ID, 1, 12)
	require.NoError(t, err)

	rec, err := svc.Commit(ctx, sess.ID, 7, "")
	require.NoError(t, err)
	require.NotEmpty(t, rec.Code)
	require.Equal(t, 1, rec.TotalItems)
	require.Equal(t, 12, rec.TotalQuantity)
	require.Len(t, rec.Items, 1)
	require.Equal(t, "Old Monk", rec.Items[0].Name)

	require.Equal(t, 38, led.levels[1].Godown)
	require.Equal(t, 22, led.levels[1].Counter)
	require.Equal(t, 60, led.levels[1].Godown+led.levels[1].Counter)
	require.Equal(t, ledger.LocationGodown, led.lastFrom)
	require.Equal(t, ledger.LocationCounter, led.lastTo)

	_, err = svc.GetSession(ctx, sess.ID)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCommitInsufficientStockKeepsSession(t *testing.T) {
	svc, led, records := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 2)
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, sess.ID, 2, 3)
	require.NoError(t, err)

	// Stock drains between staging and commit.
	led.levels[2].Godown = 1

	_, err = svc.Commit(ctx, sess.ID, 7, "")
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)
	require.Empty(t, records.records)

	sess, err = svc.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, sess.Entries, 1)
}

func TestCommitIdempotencyKeyBlocksReplay(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = svc.Commit(ctx, sess.ID, 7, "terminal-1-commit-9")
	require.NoError(t, err)

	sess2, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess2.ID, 1)
	require.NoError(t, err)
	_, err = svc.Commit(ctx, sess2.ID, 7, "terminal-1-commit-9")
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestCommitRecordInsertFailureKeepsKey(t *testing.T) {
	svc, led, records := newTestService(t)
	records.failing = true
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 1)
	require.NoError(t, err)

	_, err = svc.Commit(ctx, sess.ID, 7, "key-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "stock moved but record not saved")
	// Stock did move.
	require.Equal(t, 1, led.batches)
	// The key stays burned so a blind retry cannot double-move stock.
	_, err = svc.Commit(ctx, sess.ID, 7, "key-1")
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestHistoryReturnsCommittedBatch(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(ctx)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 1)
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, sess.ID, 1, 5)
	require.NoError(t, err)
	_, err = svc.AddToStaging(ctx, sess.ID, 2)
	require.NoError(t, err)
	_, err = svc.SetQuantity(ctx, sess.ID, 2, 3)
	require.NoError(t, err)

	rec, err := svc.Commit(ctx, sess.ID, 7, "")
	require.NoError(t, err)

	today := shared.SingleDay(time.Now())
	list, err := svc.History(ctx, today)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, rec.Code, list[0].Code)
	require.Equal(t, 2, list[0].TotalItems)
	require.Equal(t, 8, list[0].TotalQuantity)

	got, err := svc.GetRecord(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, rec.Code, got.Code)

	yesterday := shared.SingleDay(time.Now().AddDate(0, 0, -1))
	list, err = svc.History(ctx, yesterday)
	require.NoError(t, err)
	require.Empty(t, list)
}
