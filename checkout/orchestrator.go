package checkout

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/apperrors"
	"storefront/cart"
	"storefront/clients"
	"storefront/models"
	"storefront/pricing"
	"storefront/session"
)

// PaymentMethodDefault is the fixed payment method this client
// submits; no gateway integration sits behind it.
const PaymentMethodDefault = "CARD"

// OrderAPI is the slice of the shop client the orchestrator needs.
type OrderAPI interface {
	CreateOrder(ctx context.Context, req clients.CreateOrderRequest) (*models.Order, error)
}

// Sheet is the order-review page data: the draft, the freshly derived
// breakdown, the consent state, and any message to show.
type Sheet struct {
	Draft             models.OrderDraft      `json:"draft"`
	Breakdown         models.AmountBreakdown `json:"breakdown"`
	Agreements        models.AgreementSet    `json:"agreements"`
	Status            Status                 `json:"status"`
	ValidationMessage string                 `json:"validation_message,omitempty"`
	ErrorMessage      string                 `json:"error_message,omitempty"`
}

// Orchestrator drives the purchase sequence: cart snapshot, order
// review, agreement gate, submission, confirmation. One instance per
// application, like the stores it composes.
type Orchestrator struct {
	mu sync.Mutex

	status         Status
	draft          models.OrderDraft
	hasDraft       bool
	agreements     models.AgreementSet
	pricingOpts    pricing.Options
	idempotencyKey string

	result        *models.Order
	validationMsg string
	errorMsg      string

	sessions *session.Store
	carts    *cart.Store
	api      OrderAPI
	logger   *zap.Logger
}

func NewOrchestrator(sessions *session.Store, carts *cart.Store, api OrderAPI, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		carts:    carts,
		api:      api,
		logger:   logger,
	}
}

// Begin snapshots the checked cart lines into a fresh draft and
// resets the sequence to Reviewing. An empty selection is a local
// validation failure; nothing leaves the process.
func (o *Orchestrator) Begin(ctx context.Context) error {
	draft := o.carts.Snapshot()
	if draft.Empty() {
		return apperrors.ErrEmptyCart
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.status = StatusReviewing
	o.draft = draft
	o.hasDraft = true
	o.agreements = models.AgreementSet{}
	o.pricingOpts = pricing.Options{}
	o.idempotencyKey = uuid.NewString()
	o.result = nil
	o.validationMsg = ""
	o.errorMsg = ""

	o.logger.Info("Checkout started",
		zap.Int("items", len(draft.Items)),
		zap.Int64("total_amount", draft.TotalAmount),
	)
	return nil
}

// Active reports whether a draft was carried into checkout. Handlers
// redirect to the catalog root when it is false.
func (o *Orchestrator) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hasDraft
}

// Sheet derives the order-review page data. The breakdown is
// recomputed from the draft on every call, never stored.
func (o *Orchestrator) Sheet() (Sheet, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasDraft {
		return Sheet{}, apperrors.ErrNoOrderDraft
	}

	return Sheet{
		Draft:             o.draft,
		Breakdown:         pricing.Compute(o.draft, o.pricingOpts),
		Agreements:        o.agreements,
		Status:            o.status,
		ValidationMessage: o.validationMsg,
		ErrorMessage:      o.errorMsg,
	}, nil
}

// SetAgreement updates one consent flag. Any change drops the refusal
// message from a blocked attempt.
func (o *Orchestrator) SetAgreement(name models.Agreement, value bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasDraft {
		return apperrors.ErrNoOrderDraft
	}
	if o.status == StatusSubmitting || o.status == StatusConfirmed {
		return apperrors.ErrSubmitInFlight
	}

	o.agreements.Set(name, value)
	o.validationMsg = ""
	return nil
}

// ToggleAgreement flips one consent flag, the checkbox-click form of
// SetAgreement.
func (o *Orchestrator) ToggleAgreement(name models.Agreement) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasDraft {
		return apperrors.ErrNoOrderDraft
	}
	if o.status == StatusSubmitting || o.status == StatusConfirmed {
		return apperrors.ErrSubmitInFlight
	}

	o.agreements.Toggle(name)
	o.validationMsg = ""
	return nil
}

// ApplyCoupon records a coupon discount for the current draft.
func (o *Orchestrator) ApplyCoupon(amount int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasDraft {
		return apperrors.ErrNoOrderDraft
	}
	if amount < 0 {
		return apperrors.ErrBadRequest
	}
	o.pricingOpts.CouponDiscount = amount
	return nil
}

// ApplyMiles records a mileage deduction for the current draft.
func (o *Orchestrator) ApplyMiles(amount int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.hasDraft {
		return apperrors.ErrNoOrderDraft
	}
	if amount < 0 {
		return apperrors.ErrBadRequest
	}
	o.pricingOpts.Miles = amount
	return nil
}

// Submit runs the agreement gate and, when it holds, issues the
// order-creation call exactly once. Re-entry while a call is in
// flight is refused. Failure keeps the draft and agreements so the
// shopper can retry from the same sheet.
func (o *Orchestrator) Submit(ctx context.Context) (*models.Order, error) {
	o.mu.Lock()

	if !o.hasDraft {
		o.mu.Unlock()
		return nil, apperrors.ErrNoOrderDraft
	}
	if !o.status.canSubmit() {
		o.mu.Unlock()
		return nil, apperrors.ErrSubmitInFlight
	}

	if !o.agreements.All {
		// Blocked is instantaneous: the attempt is refused with a
		// message and the sheet stays in Reviewing. No side effects.
		o.validationMsg = apperrors.ErrAgreementsIncomplete.Message
		o.status = StatusReviewing
		o.logger.Warn("Order submission refused",
			zap.String("state", StatusBlocked.String()),
			zap.String("reason", o.validationMsg),
		)
		o.mu.Unlock()
		return nil, apperrors.ErrAgreementsIncomplete
	}

	member := o.sessions.Member()
	if member == nil {
		o.status = StatusFailed
		o.errorMsg = apperrors.ErrSessionRequired.Message
		o.mu.Unlock()
		return nil, apperrors.ErrSessionRequired
	}

	breakdown := pricing.Compute(o.draft, o.pricingOpts)
	req := clients.CreateOrderRequest{
		MemberID:       member.ID,
		PaymentMethod:  PaymentMethodDefault,
		PaymentAmount:  breakdown.FinalAmount,
		DeliveryCost:   breakdown.ShippingFee,
		IdempotencyKey: o.idempotencyKey,
	}
	for _, item := range o.draft.Items {
		req.OrderDetails = append(req.OrderDetails, clients.OrderDetailRequest{
			ProductID:    item.Product.ID,
			ProductCount: item.Quantity,
		})
	}

	o.status = StatusSubmitting
	o.mu.Unlock()

	order, err := o.api.CreateOrder(ctx, req)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err != nil {
		o.status = StatusFailed
		o.errorMsg = submissionMessage(err)
		o.logger.Error("Order submission failed", zap.Error(err))
		return nil, err
	}

	o.status = StatusConfirmed
	o.result = order
	o.errorMsg = ""
	o.logger.Info("Order confirmed",
		zap.Int64("order_id", order.ID),
		zap.Int64("payment_amount", order.PaymentAmount),
	)

	// Purchased lines leave the cart; unchecked lines stay.
	o.carts.RemoveChecked(ctx)

	return order, nil
}

// Confirmation returns the accepted order for the confirmation page.
func (o *Orchestrator) Confirmation() (*models.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.status != StatusConfirmed || o.result == nil {
		return nil, apperrors.ErrNoOrderDraft
	}
	return o.result, nil
}

// ContinueShopping discards all checkout state.
func (o *Orchestrator) ContinueShopping() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.status = ""
	o.draft = models.OrderDraft{}
	o.hasDraft = false
	o.agreements = models.AgreementSet{}
	o.pricingOpts = pricing.Options{}
	o.idempotencyKey = ""
	o.result = nil
	o.validationMsg = ""
	o.errorMsg = ""
}

// submissionMessage extracts a shopper-facing message from a failed
// order-creation call.
func submissionMessage(err error) string {
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "Order could not be completed. Please try again."
}
