package checkout

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/apperrors"
	"storefront/cart"
	"storefront/clients"
	"storefront/models"
	"storefront/pricing"
	"storefront/session"
)

// nullPersister keeps the cart store purely in memory for tests.
type nullPersister struct{}

func (nullPersister) Load(ctx context.Context) ([]models.CartItem, error) { return nil, nil }

func (nullPersister) Save(ctx context.Context, items []models.CartItem) error { return nil }

func (nullPersister) Delete(ctx context.Context) error { return nil }

type stubSessionAPI struct{}

func (stubSessionAPI) CurrentMember(ctx context.Context) (*models.Member, error) {
	return nil, errors.New("probe not used in these tests")
}
func (stubSessionAPI) SignOut(ctx context.Context) error { return nil }
func (stubSessionAPI) SessionToken() string              { return "" }

// mockOrderAPI records order-creation calls and serves a scripted
// response.
type mockOrderAPI struct {
	mu       sync.Mutex
	calls    int
	requests []clients.CreateOrderRequest
	order    *models.Order
	err      error
	block    chan struct{}
}

func (m *mockOrderAPI) CreateOrder(ctx context.Context, req clients.CreateOrderRequest) (*models.Order, error) {
	m.mu.Lock()
	m.calls++
	m.requests = append(m.requests, req)
	block := m.block
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *mockOrderAPI) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type fixture struct {
	flow     *Orchestrator
	sessions *session.Store
	carts    *cart.Store
	api      *mockOrderAPI
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	sessions := session.NewStore(stubSessionAPI{}, logger)
	carts := cart.NewStore(nullPersister{}, logger)
	api := &mockOrderAPI{
		order: &models.Order{ID: 42, CreatedAt: time.Now(), PaymentMethod: PaymentMethodDefault},
	}

	return &fixture{
		flow:     NewOrchestrator(sessions, carts, api, logger),
		sessions: sessions,
		carts:    carts,
		api:      api,
	}
}

// fill puts two checked lines and one unchecked line in the cart.
func (f *fixture) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, f.carts.AddItem(ctx, models.Product{ID: 1, Name: "keyboard", Price: 810600}, 2))
	require.NoError(t, f.carts.AddItem(ctx, models.Product{ID: 2, Name: "mouse", Price: 405300}, 1))
	require.NoError(t, f.carts.AddItem(ctx, models.Product{ID: 3, Name: "cable", Price: 9000}, 1))
	f.carts.ToggleChecked(ctx, 1)
	f.carts.ToggleChecked(ctx, 2)
}

func (f *fixture) signIn() {
	f.sessions.SetMember(&models.Member{ID: 9, Email: "shopper@example.com", Authority: models.AuthorityGeneral})
}

func (f *fixture) acceptAll(t *testing.T) {
	t.Helper()
	require.NoError(t, f.flow.SetAgreement(models.AgreementAll, true))
}

func TestBegin_EmptySelection(t *testing.T) {
	f := newFixture(t)

	err := f.flow.Begin(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrEmptyCart)
	assert.False(t, f.flow.Active())
}

func TestBegin_SnapshotsCheckedLines(t *testing.T) {
	f := newFixture(t)
	f.fill(t)

	require.NoError(t, f.flow.Begin(context.Background()))
	assert.True(t, f.flow.Active())

	sheet, err := f.flow.Sheet()
	require.NoError(t, err)
	assert.Equal(t, StatusReviewing, sheet.Status)
	assert.Len(t, sheet.Draft.Items, 2)
	assert.Equal(t, int64(2026500), sheet.Draft.TotalAmount)
	assert.Equal(t, models.AgreementSet{}, sheet.Agreements)
}

func TestSheet_DraftDetachedFromCart(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	ctx := context.Background()
	require.NoError(t, f.flow.Begin(ctx))

	// Mutate the cart after checkout started.
	f.carts.SetQuantity(ctx, 1, 99)
	f.carts.RemoveItem(ctx, 2)

	sheet, err := f.flow.Sheet()
	require.NoError(t, err)
	assert.Equal(t, int64(2), sheet.Draft.Items[0].Quantity)
	assert.Len(t, sheet.Draft.Items, 2)
}

func TestSheet_RecomputesBreakdown(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	require.NoError(t, f.flow.Begin(context.Background()))

	first, err := f.flow.Sheet()
	require.NoError(t, err)
	assert.Equal(t, pricing.Compute(first.Draft, pricing.Options{}), first.Breakdown)

	require.NoError(t, f.flow.ApplyCoupon(5000))
	second, err := f.flow.Sheet()
	require.NoError(t, err)
	assert.Equal(t, int64(5000), second.Breakdown.CouponDiscount)
	assert.Equal(t, first.Breakdown.FinalAmount-5000, second.Breakdown.FinalAmount)
}

func TestSubmit_AgreementGateBlocks(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.signIn()
	require.NoError(t, f.flow.Begin(context.Background()))

	_, err := f.flow.Submit(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAgreementsIncomplete)

	// No network call, sequence still in Reviewing, message recorded.
	assert.Equal(t, 0, f.api.callCount())
	sheet, sheetErr := f.flow.Sheet()
	require.NoError(t, sheetErr)
	assert.Equal(t, StatusReviewing, sheet.Status)
	assert.NotEmpty(t, sheet.ValidationMessage)
}

func TestToggleAgreement_FlipsAndClearsValidation(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.signIn()
	require.NoError(t, f.flow.Begin(context.Background()))

	_, err := f.flow.Submit(context.Background())
	require.ErrorIs(t, err, apperrors.ErrAgreementsIncomplete)

	require.NoError(t, f.flow.ToggleAgreement(models.AgreementAll))
	sheet, sheetErr := f.flow.Sheet()
	require.NoError(t, sheetErr)
	assert.True(t, sheet.Agreements.All)
	assert.True(t, sheet.Agreements.Payment)
	assert.Empty(t, sheet.ValidationMessage)

	require.NoError(t, f.flow.ToggleAgreement(models.AgreementPayment))
	sheet, sheetErr = f.flow.Sheet()
	require.NoError(t, sheetErr)
	assert.False(t, sheet.Agreements.All)
	assert.False(t, sheet.Agreements.Payment)
	assert.True(t, sheet.Agreements.PersonalInfo)
}

func TestToggleAgreement_RequiresDraft(t *testing.T) {
	f := newFixture(t)

	err := f.flow.ToggleAgreement(models.AgreementAll)
	assert.ErrorIs(t, err, apperrors.ErrNoOrderDraft)
}

func TestSubmit_PartialAgreementsStillBlock(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.signIn()
	require.NoError(t, f.flow.Begin(context.Background()))
	require.NoError(t, f.flow.SetAgreement(models.AgreementPersonalInfo, true))
	require.NoError(t, f.flow.SetAgreement(models.AgreementPayment, true))

	_, err := f.flow.Submit(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrAgreementsIncomplete)
	assert.Equal(t, 0, f.api.callCount())
}

func TestSubmit_WithoutMemberFails(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	require.NoError(t, f.flow.Begin(context.Background()))
	f.acceptAll(t)

	_, err := f.flow.Submit(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSessionRequired)
	assert.Equal(t, 0, f.api.callCount())

	sheet, sheetErr := f.flow.Sheet()
	require.NoError(t, sheetErr)
	assert.Equal(t, StatusFailed, sheet.Status)
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.signIn()
	require.NoError(t, f.flow.Begin(context.Background()))
	f.acceptAll(t)

	order, err := f.flow.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
	assert.Equal(t, 1, f.api.callCount())

	req := f.api.requests[0]
	assert.Equal(t, int64(9), req.MemberID)
	assert.Equal(t, PaymentMethodDefault, req.PaymentMethod)
	assert.Len(t, req.OrderDetails, 2)
	assert.Equal(t, int64(pricing.ShippingFee), req.DeliveryCost)

	// Payment amount is the final breakdown amount: 2,026,500 minus
	// the 10% discount plus shipping.
	assert.Equal(t, int64(2026500-202650+3000), req.PaymentAmount)

	confirmed, err := f.flow.Confirmation()
	require.NoError(t, err)
	assert.Equal(t, int64(42), confirmed.ID)

	// Purchased lines left the cart; the unchecked one stays.
	items := f.carts.Items()
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Product.ID)
}

func TestSubmit_RemoteErrorPreservesSheet(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.signIn()
	require.NoError(t, f.flow.Begin(context.Background()))
	f.acceptAll(t)
	f.api.err = &clients.APIError{Status: 500, Message: "order service unavailable"}

	_, err := f.flow.Submit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, f.api.callCount())

	sheet, sheetErr := f.flow.Sheet()
	require.NoError(t, sheetErr)
	assert.Equal(t, StatusFailed, sheet.Status)
	assert.Equal(t, "order service unavailable", sheet.ErrorMessage)
	assert.Len(t, sheet.Draft.Items, 2)
	assert.True(t, sheet.Agreements.All)

	// Cart untouched by the failed attempt.
	assert.Len(t, f.carts.Items(), 3)

	// Retry after the remote recovers succeeds from the same sheet.
	f.api.err = nil
	order, err := f.flow.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), order.ID)
}

func TestSubmit_ReentryRefusedWhileInFlight(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.signIn()
	require.NoError(t, f.flow.Begin(context.Background()))
	f.acceptAll(t)

	f.api.block = make(chan struct{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.flow.Submit(context.Background())
	}()

	// Wait until the first call is in flight.
	require.Eventually(t, func() bool { return f.api.callCount() == 1 }, time.Second, time.Millisecond)

	_, err := f.flow.Submit(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSubmitInFlight)

	close(f.api.block)
	<-done

	assert.Equal(t, 1, f.api.callCount())
}

func TestSubmit_AfterConfirmationRefused(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.signIn()
	require.NoError(t, f.flow.Begin(context.Background()))
	f.acceptAll(t)

	_, err := f.flow.Submit(context.Background())
	require.NoError(t, err)

	_, err = f.flow.Submit(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSubmitInFlight)
	assert.Equal(t, 1, f.api.callCount())
}

func TestContinueShopping_DiscardsCheckoutState(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	f.signIn()
	require.NoError(t, f.flow.Begin(context.Background()))
	f.acceptAll(t)
	_, err := f.flow.Submit(context.Background())
	require.NoError(t, err)

	f.flow.ContinueShopping()
	assert.False(t, f.flow.Active())

	_, err = f.flow.Sheet()
	assert.ErrorIs(t, err, apperrors.ErrNoOrderDraft)
	_, err = f.flow.Confirmation()
	assert.Error(t, err)
}

func TestConfirmation_OnlyAfterSuccess(t *testing.T) {
	f := newFixture(t)
	f.fill(t)
	require.NoError(t, f.flow.Begin(context.Background()))

	_, err := f.flow.Confirmation()
	assert.Error(t, err)
}
