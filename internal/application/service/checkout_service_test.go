package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/domain/entity"
	"github.com/kassahq/terminal-api/internal/infrastructure/remote"
	"github.com/kassahq/terminal-api/pkg/apperror"
	"github.com/kassahq/terminal-api/pkg/pagination"
)

// --- In-memory fakes ---

type memSaleQueue struct {
	mu       sync.Mutex
	sales    map[uuid.UUID]*entity.PendingSale
	order    []uuid.UUID
	failSave bool
	failDel  bool
}

func newMemSaleQueue() *memSaleQueue {
	return &memSaleQueue{sales: make(map[uuid.UUID]*entity.PendingSale)}
}

func (m *memSaleQueue) Save(ctx context.Context, sale *entity.PendingSale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("disk full")
	}
	cp := *sale
	m.sales[sale.LocalID] = &cp
	m.order = append(m.order, sale.LocalID)
	return nil
}

func (m *memSaleQueue) GetByLocalID(ctx context.Context, localID uuid.UUID) (*entity.PendingSale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sale, ok := m.sales[localID]
	if !ok {
		return nil, nil
	}
	cp := *sale
	return &cp, nil
}

func (m *memSaleQueue) listByStatus(status entity.SyncStatus) []entity.PendingSale {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.PendingSale
	for _, id := range m.order {
		if sale, ok := m.sales[id]; ok && sale.Status == status {
			out = append(out, *sale)
		}
	}
	return out
}

func (m *memSaleQueue) ListPending(ctx context.Context) ([]entity.PendingSale, error) {
	return m.listByStatus(entity.SyncStatusPending), nil
}

func (m *memSaleQueue) ListPendingPage(ctx context.Context, params *pagination.PaginationParams) ([]entity.PendingSale, int64, error) {
	pending := m.listByStatus(entity.SyncStatusPending)
	return pending, int64(len(pending)), nil
}

func (m *memSaleQueue) MarkSynced(ctx context.Context, localIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range localIDs {
		if sale, ok := m.sales[id]; ok {
			sale.Status = entity.SyncStatusSynced
		}
	}
	return nil
}

func (m *memSaleQueue) DeleteSynced(ctx context.Context, localIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failDel {
		return errors.New("delete failed")
	}
	for _, id := range localIDs {
		if sale, ok := m.sales[id]; ok && sale.Status == entity.SyncStatusSynced {
			delete(m.sales, id)
		}
	}
	return nil
}

func (m *memSaleQueue) ListSynced(ctx context.Context) ([]entity.PendingSale, error) {
	return m.listByStatus(entity.SyncStatusSynced), nil
}

func (m *memSaleQueue) CountPending(ctx context.Context) (int64, error) {
	return int64(len(m.listByStatus(entity.SyncStatusPending))), nil
}

type fakeGateway struct {
	mu          sync.Mutex
	submissions []uuid.UUID
	debts       []remote.DebtRequest
	failSubmit  map[uuid.UUID]bool
	failAll     bool
	failDebt    bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{failSubmit: make(map[uuid.UUID]bool)}
}

func (g *fakeGateway) SubmitReceipt(ctx context.Context, sale *entity.PendingSale) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failAll || g.failSubmit[sale.LocalID] {
		return errors.New("connection reset")
	}
	g.submissions = append(g.submissions, sale.LocalID)
	return nil
}

func (g *fakeGateway) RegisterDebt(ctx context.Context, debt *remote.DebtRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failDebt {
		return errors.New("debt endpoint unavailable")
	}
	g.debts = append(g.debts, *debt)
	return nil
}

func (g *fakeGateway) FetchProducts(ctx context.Context) ([]entity.Product, error) {
	return nil, nil
}

func (g *fakeGateway) Ping(ctx context.Context) error {
	return nil
}

func (g *fakeGateway) submitCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.submissions)
}

type stubConnectivity struct {
	online bool
	forced bool
}

func (s *stubConnectivity) Online(ctx context.Context) bool   { return s.online && !s.forced }
func (s *stubConnectivity) SetForcedOffline(forced bool)      { s.forced = forced }
func (s *stubConnectivity) ForcedOffline() bool               { return s.forced }

type memProducts struct {
	products map[uuid.UUID]*entity.Product
}

func newMemProducts(products ...*entity.Product) *memProducts {
	m := &memProducts{products: make(map[uuid.UUID]*entity.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *memProducts) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Product, int64, error) {
	var out []entity.Product
	for _, p := range m.products {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (m *memProducts) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	return m.products[id], nil
}

func (m *memProducts) GetByCode(ctx context.Context, code string) (*entity.Product, error) {
	for _, p := range m.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, nil
}

func (m *memProducts) ReplaceAll(ctx context.Context, products []entity.Product) error {
	m.products = make(map[uuid.UUID]*entity.Product)
	for i := range products {
		m.products[products[i].ID] = &products[i]
	}
	return nil
}

type memSuspended struct {
	carts map[uuid.UUID]*entity.SuspendedCart
}

func newMemSuspended() *memSuspended {
	return &memSuspended{carts: make(map[uuid.UUID]*entity.SuspendedCart)}
}

func (m *memSuspended) Save(ctx context.Context, cart *entity.SuspendedCart) error {
	m.carts[cart.ID] = cart
	return nil
}

func (m *memSuspended) GetByID(ctx context.Context, id uuid.UUID) (*entity.SuspendedCart, error) {
	return m.carts[id], nil
}

func (m *memSuspended) List(ctx context.Context) ([]entity.SuspendedCart, error) {
	var out []entity.SuspendedCart
	for _, c := range m.carts {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memSuspended) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.carts, id)
	return nil
}

// --- Fixture ---

type fixture struct {
	carts    *CartService
	checkout *CheckoutService
	queue    *memSaleQueue
	gateway  *fakeGateway
	conn     *stubConnectivity
	product  *entity.Product
}

func newFixture(t *testing.T, online bool) *fixture {
	t.Helper()

	product := &entity.Product{
		ID:        uuid.New(),
		Name:      "rice",
		Code:      "P-001",
		BasePrice: 1000,
		IsActive:  true,
	}

	queue := newMemSaleQueue()
	gateway := newFakeGateway()
	conn := &stubConnectivity{online: online}
	carts := NewCartService(newMemProducts(product), newMemSuspended())
	checkout := NewCheckoutService(carts, queue, gateway, conn, "register-1", 30)

	return &fixture{
		carts:    carts,
		checkout: checkout,
		queue:    queue,
		gateway:  gateway,
		conn:     conn,
		product:  product,
	}
}

func (f *fixture) addToCart(t *testing.T, quantity int) {
	t.Helper()
	if _, err := f.carts.AddProduct(context.Background(), f.product.ID); err != nil {
		t.Fatalf("AddProduct: %v", err)
	}
	if quantity > 1 {
		if _, err := f.carts.SetQuantity(f.product.ID, quantity); err != nil {
			t.Fatalf("SetQuantity: %v", err)
		}
	}
}

// --- Tests ---

func TestCheckoutOfflineQueuesSale(t *testing.T) {
	f := newFixture(t, false)
	f.addToCart(t, 1)

	result, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 1150})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if result.Status != CheckoutQueued {
		t.Errorf("status = %s, want queued", result.Status)
	}
	if f.gateway.submitCount() != 0 {
		t.Errorf("expected no remote call while offline, got %d", f.gateway.submitCount())
	}

	pending, _ := f.queue.ListPending(context.Background())
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending record, got %d", len(pending))
	}
	if pending[0].Status != entity.SyncStatusPending {
		t.Errorf("status = %s, want pending", pending[0].Status)
	}
	if len(f.carts.Snapshot().Items) != 0 {
		t.Error("expected cart cleared after accepted checkout")
	}
}

func TestCheckoutOnlineSyncsAndDeletes(t *testing.T) {
	f := newFixture(t, true)
	f.addToCart(t, 1)

	result, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "card", Paid: 1150})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if result.Status != CheckoutSynced {
		t.Errorf("status = %s, want synced", result.Status)
	}
	if f.gateway.submitCount() != 1 {
		t.Errorf("expected 1 submission, got %d", f.gateway.submitCount())
	}

	// Record removed after the synced-then-delete transition
	sale, _ := f.queue.GetByLocalID(context.Background(), result.Sale.LocalID)
	if sale != nil {
		t.Errorf("expected record deleted after sync, found status %s", sale.Status)
	}
}

func TestCheckoutLocalWritePrecedesNetwork(t *testing.T) {
	// Even with the network up and the submission failing mid-flight, the
	// sale must already be durable locally.
	f := newFixture(t, true)
	f.gateway.failAll = true
	f.addToCart(t, 1)

	result, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 1150})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if result.Status != CheckoutQueued {
		t.Errorf("status = %s, want queued after failed submission", result.Status)
	}
	pending, _ := f.queue.ListPending(context.Background())
	if len(pending) != 1 {
		t.Fatalf("expected sale kept pending after failed submission, got %d records", len(pending))
	}
}

func TestCheckoutLocalPersistenceFailureIsFatal(t *testing.T) {
	f := newFixture(t, true)
	f.queue.failSave = true
	f.addToCart(t, 1)

	_, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 1150})
	if err == nil {
		t.Fatal("expected checkout to fail when local store is unavailable")
	}
	if !apperror.IsLocalPersistenceError(err) {
		t.Errorf("expected LocalPersistenceError, got %T: %v", err, err)
	}
	if f.gateway.submitCount() != 0 {
		t.Error("expected no network attempt after local write failure")
	}
	// Cart stays intact so the cashier can retry
	if len(f.carts.Snapshot().Items) != 1 {
		t.Error("expected cart preserved after rejected checkout")
	}
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	f := newFixture(t, true)

	_, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash"})
	if !errors.Is(err, apperror.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestManualSyncDeliversQueuedSales(t *testing.T) {
	f := newFixture(t, false)

	// Queue two sales while offline
	for i := 0; i < 2; i++ {
		f.addToCart(t, 1)
		if _, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 1150}); err != nil {
			t.Fatalf("Checkout: %v", err)
		}
	}

	// Network comes back; manual sync sweeps the backlog
	f.conn.online = true
	report, err := f.checkout.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("SyncPending: %v", err)
	}

	if report.Attempted != 2 || report.Succeeded != 2 {
		t.Errorf("report = %+v, want 2/2", report)
	}
	if report.Remaining != 0 {
		t.Errorf("remaining = %d, want 0", report.Remaining)
	}
	if f.gateway.submitCount() != 2 {
		t.Errorf("expected 2 submissions, got %d", f.gateway.submitCount())
	}

	// Sync again: nothing left, no duplicate submissions
	report, err = f.checkout.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("second SyncPending: %v", err)
	}
	if report.Attempted != 0 {
		t.Errorf("expected no-op second sync, attempted %d", report.Attempted)
	}
	if f.gateway.submitCount() != 2 {
		t.Errorf("expected submissions unchanged at 2, got %d", f.gateway.submitCount())
	}
}

func TestManualSyncOneFailureDoesNotAbortSweep(t *testing.T) {
	f := newFixture(t, false)

	for i := 0; i < 3; i++ {
		f.addToCart(t, 1)
		if _, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 1150}); err != nil {
			t.Fatalf("Checkout: %v", err)
		}
	}

	pending, _ := f.queue.ListPending(context.Background())
	f.gateway.failSubmit[pending[0].LocalID] = true

	f.conn.online = true
	report, err := f.checkout.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("SyncPending: %v", err)
	}

	if report.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", report.Succeeded)
	}
	if report.Remaining != 1 {
		t.Errorf("remaining = %d, want 1", report.Remaining)
	}
	if report.FirstError == "" {
		t.Error("expected first error to be reported")
	}
}

func TestDebtRegisteredForPartiallyPaidCustomerSale(t *testing.T) {
	f := newFixture(t, true)
	f.addToCart(t, 1)
	customerID := uuid.New()
	f.carts.SetCustomer(&customerID)

	result, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 150})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if result.Status != CheckoutSynced {
		t.Fatalf("status = %s, want synced", result.Status)
	}
	if result.DebtWarning != "" {
		t.Errorf("unexpected debt warning: %s", result.DebtWarning)
	}

	if len(f.gateway.debts) != 1 {
		t.Fatalf("expected 1 debt registration, got %d", len(f.gateway.debts))
	}
	debt := f.gateway.debts[0]
	if debt.CustomerID != customerID {
		t.Errorf("debt customer = %s, want %s", debt.CustomerID, customerID)
	}
	if debt.Amount != 1000 {
		t.Errorf("debt amount = %d, want 1000", debt.Amount)
	}
}

func TestDebtFailureIsWarningOnly(t *testing.T) {
	f := newFixture(t, true)
	f.gateway.failDebt = true
	f.addToCart(t, 1)
	customerID := uuid.New()
	f.carts.SetCustomer(&customerID)

	result, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 150})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if result.Status != CheckoutSynced {
		t.Errorf("status = %s, want synced despite debt failure", result.Status)
	}
	if result.DebtWarning == "" {
		t.Error("expected a debt warning")
	}
	// The synced sale stands: record deleted locally
	if sale, _ := f.queue.GetByLocalID(context.Background(), result.Sale.LocalID); sale != nil {
		t.Error("expected sale deleted despite debt failure")
	}
}

func TestDebtRegisteredOnDeferredSyncToo(t *testing.T) {
	f := newFixture(t, false)
	f.addToCart(t, 1)
	customerID := uuid.New()
	f.carts.SetCustomer(&customerID)

	if _, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 150}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if len(f.gateway.debts) != 0 {
		t.Fatal("no debt should be registered while the sale is queued")
	}

	f.conn.online = true
	if _, err := f.checkout.SyncPending(context.Background()); err != nil {
		t.Fatalf("SyncPending: %v", err)
	}

	if len(f.gateway.debts) != 1 {
		t.Fatalf("expected debt registered on deferred sync, got %d", len(f.gateway.debts))
	}
}

func TestNoDebtForReturnsOrFullyPaid(t *testing.T) {
	f := newFixture(t, true)

	// Fully paid sale with a customer: no debt
	f.addToCart(t, 1)
	customerID := uuid.New()
	f.carts.SetCustomer(&customerID)
	if _, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 1150}); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if len(f.gateway.debts) != 0 {
		t.Errorf("expected no debt for fully paid sale, got %d", len(f.gateway.debts))
	}
}

func TestSweepSyncedClearsCrashWindow(t *testing.T) {
	f := newFixture(t, true)
	f.queue.failDel = true
	f.addToCart(t, 1)

	result, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 1150})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	// Delete failed: the record is stuck in synced, exactly the crash window
	sale, _ := f.queue.GetByLocalID(context.Background(), result.Sale.LocalID)
	if sale == nil || sale.Status != entity.SyncStatusSynced {
		t.Fatalf("expected a synced-but-present record, got %+v", sale)
	}

	f.queue.failDel = false
	swept, err := f.checkout.SweepSynced(context.Background())
	if err != nil {
		t.Fatalf("SweepSynced: %v", err)
	}
	if swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}
	if sale, _ := f.queue.GetByLocalID(context.Background(), result.Sale.LocalID); sale != nil {
		t.Error("expected stuck record removed by sweep")
	}

	// The sweep never touches pending rows and never resubmits
	if f.gateway.submitCount() != 1 {
		t.Errorf("expected submissions unchanged at 1, got %d", f.gateway.submitCount())
	}
}

func TestOfflineCheckoutThenManualSyncEndToEnd(t *testing.T) {
	f := newFixture(t, false)

	// Ring up a cart while offline
	f.addToCart(t, 4)
	view := f.carts.Snapshot()
	if view.Total != 4600 {
		t.Fatalf("cart total = %d, want 4600", view.Total)
	}

	result, err := f.checkout.Checkout(context.Background(), &CheckoutInput{PaymentType: "cash", Paid: 4600})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if result.Status != CheckoutQueued {
		t.Fatalf("status = %s, want queued", result.Status)
	}

	status, err := f.checkout.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Pending != 1 {
		t.Errorf("pending = %d, want 1", status.Pending)
	}

	// Connectivity restored; manual sync delivers and cleans up
	f.conn.online = true
	report, err := f.checkout.SyncPending(context.Background())
	if err != nil {
		t.Fatalf("SyncPending: %v", err)
	}
	if report.Succeeded != 1 {
		t.Fatalf("succeeded = %d, want 1", report.Succeeded)
	}

	if sale, _ := f.queue.GetByLocalID(context.Background(), result.Sale.LocalID); sale != nil {
		t.Error("expected record removed from local store after sync")
	}
}
