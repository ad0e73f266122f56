package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	levels    map[int64]StockLevel
	movements []Movement
	nextID    int64
}

type memoryTx struct {
	repo    *memoryRepo
	pending map[int64]StockLevel
	journal []Movement
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{levels: map[int64]StockLevel{}}
}

func (r *memoryRepo) seed(productID int64, godown, counter int) {
	r.levels[productID] = StockLevel{ProductID: productID, Godown: godown, Counter: counter}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: r, pending: map[int64]StockLevel{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, level := range tx.pending {
		r.levels[id] = level
	}
	r.movements = append(r.movements, tx.journal...)
	return nil
}

func (r *memoryRepo) GetStock(ctx context.Context, productID int64) (StockLevel, error) {
	level, ok := r.levels[productID]
	if !ok {
		return StockLevel{}, ErrNotFound
	}
	return level, nil
}

func (r *memoryRepo) ListMovements(ctx context.Context, productID int64, from, to time.Time, limit int) ([]Movement, error) {
	out := []Movement{}
	for i := len(r.movements) - 1; i >= 0; i-- {
		if r.movements[i].ProductID == productID {
			out = append(out, r.movements[i])
		}
	}
	return out, nil
}

func (tx *memoryTx) GetStockForUpdate(ctx context.Context, productID int64) (StockLevel, error) {
	if level, ok := tx.pending[productID]; ok {
		return level, nil
	}
	return tx.repo.GetStock(ctx, productID)
}

func (tx *memoryTx) SetStock(ctx context.Context, productID int64, godown, counter int) error {
	if _, ok := tx.repo.levels[productID]; !ok {
		return ErrNotFound
	}
	tx.pending[productID] = StockLevel{ProductID: productID, Godown: godown, Counter: counter}
	return nil
}

func (tx *memoryTx) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	tx.repo.nextID++
	m.ID = tx.repo.nextID
	tx.journal = append(tx.journal, m)
	return m.ID, nil
}

func TestTransferConservation(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 50, 10)
	svc := NewService(repo, nil)
	ctx := context.Background()

	after, err := svc.Transfer(ctx, TransferInput{ProductID: 1, Quantity: 12, From: LocationGodown, To: LocationCounter})
	require.NoError(t, err)
	require.Equal(t, 38, after.Godown)
	require.Equal(t, 22, after.Counter)
	require.Equal(t, 60, after.Total())

	// Journal captured the move.
	movements, err := svc.Movements(ctx, 1, time.Time{}, time.Time{}, 10)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Equal(t, MovementTransfer, movements[0].Type)
	require.Equal(t, 12, movements[0].Quantity)
}

func TestTransferInsufficientStockLeavesLevelsUntouched(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 5, 2)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Transfer(ctx, TransferInput{ProductID: 1, Quantity: 6, From: LocationGodown, To: LocationCounter})
	require.ErrorIs(t, err, ErrInsufficientStock)

	level, err := svc.GetStock(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 5, level.Godown)
	require.Equal(t, 2, level.Counter)
	require.Empty(t, repo.movements)
}

func TestTransferValidation(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 5, 2)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.Transfer(ctx, TransferInput{ProductID: 1, Quantity: 0, From: LocationGodown, To: LocationCounter})
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = svc.Transfer(ctx, TransferInput{ProductID: 1, Quantity: 1, From: LocationGodown, To: LocationGodown})
	require.ErrorIs(t, err, ErrInvalidLocation)

	_, err = svc.Transfer(ctx, TransferInput{ProductID: 1, Quantity: 1, From: "cellar", To: LocationCounter})
	require.ErrorIs(t, err, ErrInvalidLocation)

	_, err = svc.Transfer(ctx, TransferInput{ProductID: 99, Quantity: 1, From: LocationGodown, To: LocationCounter})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransferBatchAllOrNothing(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 10, 0)
	repo.seed(2, 3, 0)
	svc := NewService(repo, nil)
	ctx := context.Background()

	// Second line exceeds available stock; the first must not be applied.
	_, err := svc.TransferBatch(ctx, []BatchMove{
		{ProductID: 1, Quantity: 5},
		{ProductID: 2, Quantity: 4},
	}, LocationGodown, LocationCounter, "TRANSFER", "", 0)
	require.ErrorIs(t, err, ErrInsufficientStock)

	level, _ := svc.GetStock(ctx, 1)
	require.Equal(t, 10, level.Godown)
	require.Equal(t, 0, level.Counter)
	require.Empty(t, repo.movements)
}

func TestTransferBatchAppliesInOrder(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 10, 0)
	repo.seed(2, 8, 1)
	svc := NewService(repo, nil)
	ctx := context.Background()

	levels, err := svc.TransferBatch(ctx, []BatchMove{
		{ProductID: 2, Quantity: 3},
		{ProductID: 1, Quantity: 5},
	}, LocationGodown, LocationCounter, "TRANSFER", "batch-1", 7)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	// Results come back in the caller's order.
	require.Equal(t, int64(2), levels[0].ProductID)
	require.Equal(t, 5, levels[0].Godown)
	require.Equal(t, 4, levels[0].Counter)
	require.Equal(t, int64(1), levels[1].ProductID)
	require.Equal(t, 5, levels[1].Godown)
	require.Equal(t, 5, levels[1].Counter)
	require.Len(t, repo.movements, 2)
}

func TestUpdateStockOverwrite(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 10, 5)
	svc := NewService(repo, nil)
	ctx := context.Background()

	after, err := svc.UpdateStock(ctx, 1, 30, 0, "recount", 3)
	require.NoError(t, err)
	require.Equal(t, 30, after.Godown)
	require.Equal(t, 0, after.Counter)

	_, err = svc.UpdateStock(ctx, 1, -1, 0, "", 3)
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestConsumeAndReturnCounter(t *testing.T) {
	repo := newMemoryRepo()
	repo.seed(1, 10, 4)
	svc := NewService(repo, nil)
	ctx := context.Background()

	after, err := svc.ConsumeCounter(ctx, 1, 3, "BILLING", "bill-1", 0)
	require.NoError(t, err)
	require.Equal(t, 1, after.Counter)
	require.Equal(t, 10, after.Godown)

	_, err = svc.ConsumeCounter(ctx, 1, 2, "BILLING", "bill-1", 0)
	require.ErrorIs(t, err, ErrInsufficientStock)

	after, err = svc.ReturnCounter(ctx, 1, 2, "BILLING", "bill-1", 0)
	require.NoError(t, err)
	require.Equal(t, 3, after.Counter)
}
