package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
	"github.com/kassahq/terminal-api/internal/domain/repository"
	"github.com/kassahq/terminal-api/internal/infrastructure/remote"
	"github.com/kassahq/terminal-api/pkg/apperror"
	"github.com/kassahq/terminal-api/pkg/pagination"
)

// Checkout outcomes visible to the register UI. Every checkout ends in
// exactly one of these (or a rejection error); a sale is never silently lost.
const (
	// CheckoutSynced means the sale reached the back office immediately.
	CheckoutSynced = "synced"
	// CheckoutQueued means the sale is durable locally and will be delivered
	// by a later sync.
	CheckoutQueued = "queued"
)

// CheckoutService is the offline transaction pipeline: it takes ownership of
// a finalized sale, guarantees local durability before any network attempt,
// then delivers the sale to the back office immediately or via a later sync.
type CheckoutService struct {
	carts        *CartService
	queue        repository.SaleQueueRepository
	gateway      remote.Gateway
	connectivity remote.Connectivity
	registerID   string
	debtDueDays  int
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	carts *CartService,
	queue repository.SaleQueueRepository,
	gateway remote.Gateway,
	connectivity remote.Connectivity,
	registerID string,
	debtDueDays int,
) *CheckoutService {
	return &CheckoutService{
		carts:        carts,
		queue:        queue,
		gateway:      gateway,
		connectivity: connectivity,
		registerID:   registerID,
		debtDueDays:  debtDueDays,
	}
}

// CheckoutInput is the cashier's confirmation of the working cart.
type CheckoutInput struct {
	PaymentType string
	Paid        int64
}

// CheckoutResult reports the observable outcome of a checkout.
type CheckoutResult struct {
	Sale        *entity.PendingSale `json:"sale"`
	Status      string              `json:"status"`
	Notice      string              `json:"notice,omitempty"`
	DebtWarning string              `json:"debt_warning,omitempty"`
}

// Checkout finalizes the working cart and runs the pipeline. The local write
// is unconditional and happens before any network attempt; it is the only
// step whose failure rejects the checkout. The cart is cleared as soon as the
// sale is locally durable, so the register is usable while the submission is
// in flight.
func (s *CheckoutService) Checkout(ctx context.Context, input *CheckoutInput) (*CheckoutResult, error) {
	if input.Paid < 0 {
		return nil, apperror.NewBadRequestError("Paid amount must not be negative")
	}

	var sale *entity.PendingSale
	err := s.carts.Checkout(func(cart *entity.Cart) error {
		finalized, err := cart.Finalize(input.PaymentType, input.Paid, s.registerID)
		if err != nil {
			return err
		}
		if err := s.queue.Save(ctx, finalized); err != nil {
			return apperror.NewLocalPersistenceError(err)
		}
		sale = finalized
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &CheckoutResult{
		Sale:   sale,
		Status: CheckoutQueued,
		Notice: "Sale saved offline, will sync later",
	}

	if !s.connectivity.Online(ctx) {
		return result, nil
	}

	debtWarning, err := s.submitOne(ctx, sale)
	if err != nil {
		// Expected, not exceptional: the sale stays pending for the next sync
		log.Printf("Sale %s submission failed, left pending: %v", sale.LocalID, err)
		return result, nil
	}

	result.Status = CheckoutSynced
	result.Notice = ""
	result.DebtWarning = debtWarning
	return result, nil
}

// submitOne delivers a single locally persisted sale: submit, mark synced,
// delete. Mark and delete are separate steps; a crash in between leaves a
// synced row that SweepSynced clears later. The returned string is a debt
// registration warning, empty when no debt applies or it succeeded.
func (s *CheckoutService) submitOne(ctx context.Context, sale *entity.PendingSale) (string, error) {
	if err := s.gateway.SubmitReceipt(ctx, sale); err != nil {
		return "", apperror.NewRemoteSubmissionError(err)
	}

	ids := []uuid.UUID{sale.LocalID}
	if err := s.queue.MarkSynced(ctx, ids); err != nil {
		// The back office has the sale; dedup by local ID makes the inevitable
		// resubmission harmless, so leave the row pending.
		return "", apperror.NewRemoteSubmissionError(err)
	}
	if err := s.queue.DeleteSynced(ctx, ids); err != nil {
		log.Printf("Sale %s synced but not deleted, sweep will collect it: %v", sale.LocalID, err)
	}

	return s.registerDebtIfNeeded(ctx, sale), nil
}

// registerDebtIfNeeded applies the partial-payment side effect after a
// successful submission, whether immediate or deferred. Best-effort only:
// the synced sale stands regardless.
func (s *CheckoutService) registerDebtIfNeeded(ctx context.Context, sale *entity.PendingSale) string {
	if !sale.NeedsDebtRecord() {
		return ""
	}

	debt := &remote.DebtRequest{
		CustomerID:  *sale.CustomerID,
		Amount:      sale.Due(),
		Description: fmt.Sprintf("Balance for receipt %s", sale.LocalID),
		DueDate:     time.Now().AddDate(0, 0, s.debtDueDays),
		Type:        "pos_sale",
	}
	if err := s.gateway.RegisterDebt(ctx, debt); err != nil {
		warning := apperror.NewDebtRegistrationError(err).Error()
		log.Printf("Sale %s: %s", sale.LocalID, warning)
		return warning
	}
	return ""
}

// SyncReport summarizes a manual sync sweep.
type SyncReport struct {
	Attempted    int      `json:"attempted"`
	Succeeded    int      `json:"succeeded"`
	Remaining    int64    `json:"remaining"`
	FirstError   string   `json:"first_error,omitempty"`
	DebtWarnings []string `json:"debt_warnings,omitempty"`
}

// SyncPending sweeps all pending sales, attempting delivery one at a time.
// One sale failing never aborts the sweep; the report carries the success
// count and the first error encountered. Running with nothing pending is a
// no-op.
func (s *CheckoutService) SyncPending(ctx context.Context) (*SyncReport, error) {
	pending, err := s.queue.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Attempted: len(pending)}
	for i := range pending {
		debtWarning, err := s.submitOne(ctx, &pending[i])
		if err != nil {
			if report.FirstError == "" {
				report.FirstError = err.Error()
			}
			continue
		}
		report.Succeeded++
		if debtWarning != "" {
			report.DebtWarnings = append(report.DebtWarnings, debtWarning)
		}
	}

	remaining, err := s.queue.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	report.Remaining = remaining

	if report.Attempted > 0 {
		log.Printf("Manual sync: %d/%d sales delivered, %d remaining", report.Succeeded, report.Attempted, report.Remaining)
	}
	return report, nil
}

// SweepSynced deletes sales that reached synced but were not removed (a crash
// between mark and delete). Safe to run any time; it never touches pending
// rows.
func (s *CheckoutService) SweepSynced(ctx context.Context) (int, error) {
	stuck, err := s.queue.ListSynced(ctx)
	if err != nil {
		return 0, err
	}
	if len(stuck) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(stuck))
	for i := range stuck {
		ids[i] = stuck[i].LocalID
	}
	if err := s.queue.DeleteSynced(ctx, ids); err != nil {
		return 0, err
	}

	log.Printf("Swept %d synced sales left over from an interrupted cleanup", len(ids))
	return len(ids), nil
}

// QueueStatus reports the state of the offline queue for the register UI.
type QueueStatus struct {
	Pending       int64 `json:"pending"`
	Online        bool  `json:"online"`
	ForcedOffline bool  `json:"forced_offline"`
}

// Status returns the current backlog size and connectivity view.
func (s *CheckoutService) Status(ctx context.Context) (*QueueStatus, error) {
	pending, err := s.queue.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	return &QueueStatus{
		Pending:       pending,
		Online:        s.connectivity.Online(ctx),
		ForcedOffline: s.connectivity.ForcedOffline(),
	}, nil
}

// ListPending returns a page of the offline queue.
func (s *CheckoutService) ListPending(ctx context.Context, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.PendingSale], error) {
	sales, total, err := s.queue.ListPendingPage(ctx, params)
	if err != nil {
		return nil, err
	}
	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(sales, pag), nil
}

// SetForcedOffline toggles the operator's offline override.
func (s *CheckoutService) SetForcedOffline(forced bool) {
	s.connectivity.SetForcedOffline(forced)
}

// RecoverOnStartup clears the crash window leftovers and logs the backlog.
// Pending rows need no replay; they simply wait for the next sync.
func (s *CheckoutService) RecoverOnStartup(ctx context.Context) error {
	if _, err := s.SweepSynced(ctx); err != nil {
		return err
	}
	pending, err := s.queue.CountPending(ctx)
	if err != nil {
		return err
	}
	if pending > 0 {
		log.Printf("Recovered offline queue: %d sales awaiting sync", pending)
	}
	return nil
}
