package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tavern-pos/tavern-pos/internal/catalog"
	"github.com/tavern-pos/tavern-pos/internal/ledger"
	"github.com/tavern-pos/tavern-pos/internal/shared"
)

// RepositoryPort is the persistence surface the service needs.
type RepositoryPort interface {
	Insert(ctx context.Context, b Bill) (int64, error)
	Get(ctx context.Context, id int64) (Bill, error)
	InsertLine(ctx context.Context, l Line) (int64, error)
	VoidLine(ctx context.Context, billID, lineID int64) error
	UpdateTotals(ctx context.Context, billID int64, subtotal, total float64) error
	SetStatus(ctx context.Context, billID int64, status BillStatus, mode PaymentMode, settledAt *time.Time) error
	ListByStatus(ctx context.Context, status BillStatus) ([]Bill, error)
	ListSettledByRange(ctx context.Context, from, to time.Time) ([]Bill, error)
}

// LedgerPort moves counter stock as lines are sold, voided or cancelled.
type LedgerPort interface {
	ConsumeCounter(ctx context.Context, productID int64, quantity int, refModule, refID string, staffID int64) (ledger.StockLevel, error)
	ReturnCounter(ctx context.Context, productID int64, quantity int, refModule, refID string, staffID int64) (ledger.StockLevel, error)
}

// CatalogPort resolves product name and price at sale time.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (catalog.ProductView, error)
}

// AuditPort records who did what.
type AuditPort interface {
	Record(ctx context.Context, entry shared.AuditLog) error
}

// Service runs the sales surface: open a bill, sell lines against counter
// stock, settle or cancel. Stock moves line by line so the counter level on
// screen always reflects what is physically left to sell.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	ledger LedgerPort
	cat    CatalogPort
	audit  AuditPort
}

// NewService builds Service.
func NewService(logger *slog.Logger, repo RepositoryPort, ledgerPort LedgerPort, cat CatalogPort, audit AuditPort) *Service {
	return &Service{logger: logger, repo: repo, ledger: ledgerPort, cat: cat, audit: audit}
}

// Open creates an empty OPEN bill.
func (s *Service) Open(ctx context.Context, req OpenBillRequest, staffID int64) (Bill, error) {
	if !req.Type.Valid() {
		return Bill{}, ErrInvalidType
	}
	if req.Type == BillTypeTable && req.TableNo == "" {
		return Bill{}, ErrTableRequired
	}
	if req.Type == BillTypeParcel {
		req.TableNo = ""
	}
	b := Bill{
		Number:    "BILL-" + uuid.NewString()[:8],
		Type:      req.Type,
		TableNo:   req.TableNo,
		Status:    BillStatusOpen,
		StaffID:   staffID,
		CreatedAt: time.Now(),
	}
	id, err := s.repo.Insert(ctx, b)
	if err != nil {
		return Bill{}, err
	}
	b.ID = id
	s.recordAudit(ctx, staffID, "bill.open", id, map[string]any{"type": b.Type, "table": b.TableNo})
	return b, nil
}

// Get loads a bill.
func (s *Service) Get(ctx context.Context, id int64) (Bill, error) {
	return s.repo.Get(ctx, id)
}

// Pending lists OPEN bills, newest first.
func (s *Service) Pending(ctx context.Context) ([]Bill, error) {
	return s.repo.ListByStatus(ctx, BillStatusOpen)
}

// SettledBetween lists settled bills inside the range. Reporting uses it to
// compute daily revenue.
func (s *Service) SettledBetween(ctx context.Context, rng shared.DateRange) ([]Bill, error) {
	return s.repo.ListSettledByRange(ctx, rng.From, rng.To)
}

// AddLine sells quantity units of the product on the bill, consuming counter
// stock first so an out-of-stock item can never be billed.
func (s *Service) AddLine(ctx context.Context, billID int64, req AddLineRequest, staffID int64) (Bill, error) {
	if req.Quantity <= 0 {
		return Bill{}, ErrInvalidQuantity
	}
	b, err := s.repo.Get(ctx, billID)
	if err != nil {
		return Bill{}, err
	}
	if b.Status != BillStatusOpen {
		return Bill{}, fmt.Errorf("%w: %s", ErrBillNotOpen, b.Status)
	}
	product, err := s.cat.Get(ctx, req.ProductID)
	if err != nil {
		return Bill{}, err
	}

	ref := fmt.Sprintf("%d", billID)
	if _, err := s.ledger.ConsumeCounter(ctx, req.ProductID, req.Quantity, "SALE", ref, staffID); err != nil {
		return Bill{}, err
	}

	line := Line{
		BillID:    billID,
		ProductID: req.ProductID,
		Name:      product.Name,
		Variant:   product.Variant,
		Quantity:  req.Quantity,
		UnitPrice: product.Price,
		LineTotal: float64(req.Quantity) * product.Price,
		CreatedAt: time.Now(),
	}
	if _, err := s.repo.InsertLine(ctx, line); err != nil {
		// Undo the consumption so stock and bill stay consistent.
		if _, rerr := s.ledger.ReturnCounter(ctx, req.ProductID, req.Quantity, "SALE", ref, staffID); rerr != nil {
			s.logger.Error("stock return after failed line insert failed",
				slog.Int64("bill", billID), slog.Any("error", rerr))
		}
		return Bill{}, err
	}
	return s.refreshTotals(ctx, billID)
}

// VoidLine removes a line from the total and returns its stock to the counter.
func (s *Service) VoidLine(ctx context.Context, billID, lineID int64, staffID int64) (Bill, error) {
	b, err := s.repo.Get(ctx, billID)
	if err != nil {
		return Bill{}, err
	}
	if b.Status != BillStatusOpen {
		return Bill{}, fmt.Errorf("%w: %s", ErrBillNotOpen, b.Status)
	}
	var target *Line
	for i := range b.Lines {
		if b.Lines[i].ID == lineID && !b.Lines[i].Voided {
			target = &b.Lines[i]
			break
		}
	}
	if target == nil {
		return Bill{}, ErrLineNotFound
	}
	if err := s.repo.VoidLine(ctx, billID, lineID); err != nil {
		return Bill{}, err
	}
	ref := fmt.Sprintf("%d", billID)
	if _, err := s.ledger.ReturnCounter(ctx, target.ProductID, target.Quantity, "SALE", ref, staffID); err != nil {
		s.logger.Error("stock return for voided line failed",
			slog.Int64("bill", billID), slog.Int64("line", lineID), slog.Any("error", err))
	}
	s.recordAudit(ctx, staffID, "bill.void_line", billID, map[string]any{"line": lineID, "product": target.ProductID})
	return s.refreshTotals(ctx, billID)
}

// Settle closes the bill with a payment mode. Settled bills are immutable and
// count toward the day's revenue.
func (s *Service) Settle(ctx context.Context, billID int64, req SettleBillRequest, staffID int64) (Bill, error) {
	if !req.PaymentMode.Valid() {
		return Bill{}, ErrInvalidPayment
	}
	b, err := s.repo.Get(ctx, billID)
	if err != nil {
		return Bill{}, err
	}
	if b.Status != BillStatusOpen {
		return Bill{}, fmt.Errorf("%w: %s", ErrBillNotOpen, b.Status)
	}
	active := 0
	for _, l := range b.Lines {
		if !l.Voided {
			active++
		}
	}
	if active == 0 {
		return Bill{}, ErrEmptyBill
	}
	now := time.Now()
	if err := s.repo.SetStatus(ctx, billID, BillStatusSettled, req.PaymentMode, &now); err != nil {
		return Bill{}, err
	}
	s.recordAudit(ctx, staffID, "bill.settle", billID, map[string]any{"mode": req.PaymentMode, "total": b.Total})
	return s.repo.Get(ctx, billID)
}

// Cancel voids an open bill and returns all non-voided line stock.
func (s *Service) Cancel(ctx context.Context, billID int64, staffID int64) (Bill, error) {
	b, err := s.repo.Get(ctx, billID)
	if err != nil {
		return Bill{}, err
	}
	if b.Status != BillStatusOpen {
		return Bill{}, fmt.Errorf("%w: %s", ErrBillNotOpen, b.Status)
	}
	ref := fmt.Sprintf("%d", billID)
	for _, l := range b.Lines {
		if l.Voided {
			continue
		}
		if _, err := s.ledger.ReturnCounter(ctx, l.ProductID, l.Quantity, "SALE", ref, staffID); err != nil {
			s.logger.Error("stock return on cancel failed",
				slog.Int64("bill", billID), slog.Int64("product", l.ProductID), slog.Any("error", err))
		}
	}
	if err := s.repo.SetStatus(ctx, billID, BillStatusCancelled, "", nil); err != nil {
		return Bill{}, err
	}
	s.recordAudit(ctx, staffID, "bill.cancel", billID, nil)
	return s.repo.Get(ctx, billID)
}

func (s *Service) refreshTotals(ctx context.Context, billID int64) (Bill, error) {
	b, err := s.repo.Get(ctx, billID)
	if err != nil {
		return Bill{}, err
	}
	b.Recalculate()
	if err := s.repo.UpdateTotals(ctx, billID, b.Subtotal, b.Total); err != nil {
		return Bill{}, err
	}
	return b, nil
}

func (s *Service) recordAudit(ctx context.Context, staffID int64, action string, billID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	entry := shared.AuditLog{
		StaffID:  staffID,
		Action:   action,
		Entity:   "bill",
		EntityID: fmt.Sprintf("%d", billID),
		Meta:     meta,
		At:       time.Now(),
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
