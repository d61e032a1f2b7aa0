// Package order owns the draft of one in-progress sale: its lifecycle state
// machine, cart and replication mutations, submission validation, and the
// receipt summary handed to the print collaborator. All mutation goes through
// a Session so that at most one change is ever in flight per draft.
package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"billingdesk/backend/internal/cache"
	"billingdesk/backend/internal/cart"
	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/lookup"
	"billingdesk/backend/internal/money"
	"billingdesk/backend/internal/store"
	"billingdesk/backend/internal/xid"
)

type State string

const (
	StateNew             State = "new"
	StateComposing       State = "composing"
	StateAwaitingPayment State = "awaiting_payment"
	StateViewing         State = "viewing"
	StateEditing         State = "editing"
	StateSaving          State = "saving"
)

// ValidationError wraps store.ErrValidationFailed with a human-readable
// detail so callers can both branch on the kind and show the message.
type ValidationError struct {
	Details string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", store.ErrValidationFailed.Error(), e.Details)
}

func (e *ValidationError) Unwrap() error {
	return store.ErrValidationFailed
}

type Session struct {
	mu           sync.Mutex
	id           string
	repo         store.Repository
	prices       cache.PriceCache
	priceTTL     time.Duration
	draft        domain.OrderDraft
	state        State
	quotes       []domain.PriceQuote
	editSnapshot *domain.OrderDraft
	now          func() time.Time

	searchQuiet time.Duration
	search      *lookup.Debounced[[]domain.Product]
	lastSearch  searchOutcome
}

func NewSession(repo store.Repository, prices cache.PriceCache, priceTTL time.Duration) *Session {
	if prices == nil {
		prices = cache.NoopPriceCache{}
	}
	s := &Session{
		id:          xid.New("sess"),
		repo:        repo,
		prices:      prices,
		priceTTL:    priceTTL,
		now:         func() time.Time { return time.Now().UTC() },
		searchQuiet: 250 * time.Millisecond,
	}
	s.resetLocked()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Draft returns a deep copy; callers never hold a reference into live state.
func (s *Session) Draft() domain.OrderDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

func (s *Session) Quotes() []domain.PriceQuote {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.PriceQuote, len(s.quotes))
	copy(out, s.quotes)
	return out
}

func (s *Session) resetLocked() {
	now := s.now()
	s.draft = domain.OrderDraft{
		Date:            now.Format("2006-01-02"),
		Time:            now.Format("15:04:05"),
		TransactionType: domain.TransactionTypeCash,
		DeliveryMode:    domain.DeliveryModePickup,
		Cart:            domain.EmptyCart(),
		Customer:        domain.CashBinding(),
		Mode:            domain.DraftModeNew,
	}
	s.quotes = nil
	s.editSnapshot = nil
	s.state = StateNew
	s.recomputeLocked()
}

// Clear discards the draft and starts a fresh New one.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// recomputeLocked re-derives totals and the composing state. Runs after every
// mutation; totals are pure functions of the draft and never drift.
func (s *Session) recomputeLocked() {
	s.draft.Totals = money.ComputeTotals(s.draft.Cart.Items, s.draft.Discount, s.draft.Expenses, s.draft.AmountReceived)

	switch s.state {
	case StateNew:
		if len(s.draft.Cart.Items) > 0 {
			s.state = StateComposing
		}
	case StateComposing, StateAwaitingPayment:
		if len(s.draft.Cart.Items) == 0 {
			s.state = StateNew
		}
	}
}

func (s *Session) AddProduct(ctx context.Context, productID string, qty decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	products, err := s.repo.GetProductsByIDs(ctx, []string{productID})
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}
	product, ok := products[productID]
	if !ok {
		return fmt.Errorf("%w: product %s", store.ErrNotFound, productID)
	}

	s.draft.Cart = cart.AddOrMerge(s.draft.Cart, product, qty)
	s.recomputeLocked()
	return nil
}

func (s *Session) AdjustQuantity(productID string, delta decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Cart = cart.AdjustQuantity(s.draft.Cart, productID, delta)
	s.recomputeLocked()
}

func (s *Session) SetQuantity(productID string, value decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Cart = cart.SetQuantity(s.draft.Cart, productID, value)
	s.recomputeLocked()
}

func (s *Session) RemoveLine(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Cart = cart.Remove(s.draft.Cart, productID)
	s.recomputeLocked()
}

func (s *Session) SetUnitOfMeasure(productID string, unitID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Cart = cart.SetUnitOfMeasure(s.draft.Cart, productID, unitID)
	s.recomputeLocked()
}

// AdjustFocused applies a keyboard +/- to the focused row.
func (s *Session) AdjustFocused(delta decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	focused, ok := s.draft.Cart.FocusedItem()
	if !ok {
		return
	}
	s.draft.Cart = cart.AdjustQuantity(s.draft.Cart, focused.ProductID, delta)
	s.recomputeLocked()
}

func (s *Session) SetDiscount(v decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Discount = clampNonNegative(v)
	s.recomputeLocked()
}

func (s *Session) SetExpenses(v decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Expenses = clampNonNegative(v)
	s.recomputeLocked()
}

func (s *Session) SetAmountReceived(v decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.AmountReceived = clampNonNegative(v)
	s.recomputeLocked()
}

func (s *Session) SetRemarks(remarks string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Remarks = strings.TrimSpace(remarks)
}

func (s *Session) SetBillingMeta(meta domain.BillingMeta) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.BillingMeta = meta
}

func (s *Session) SetPrintFlags(flags domain.PrintFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.PrintFlags = flags
}

func (s *Session) SetDeliveryMode(mode string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mode == domain.DeliveryModePickup || mode == domain.DeliveryModeDelivery {
		s.draft.DeliveryMode = mode
	}
}

func (s *Session) BindCashCustomer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Customer = domain.CashBinding()
	s.draft.TransactionType = domain.TransactionTypeCash
	s.recomputeLocked()
}

func (s *Session) BindCreditCustomer(ctx context.Context, customerID string) error {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return &ValidationError{Details: "credit sale requires a resolved customer"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	balance, err := s.repo.GetCustomerBalance(ctx, customerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: customer %s", store.ErrNotFound, customerID)
		}
		return fmt.Errorf("%w: %v", store.ErrLookupFailed, err)
	}

	name := customerID
	if customers, err := s.repo.ListCustomers(ctx, customerID, domain.Page{Number: 1, Size: 5}); err == nil {
		for _, c := range customers {
			if c.ID == customerID {
				name = c.Name
				break
			}
		}
	}

	s.draft.Customer = domain.CustomerBinding{
		Kind:            domain.BindingCredit,
		CustomerID:      customerID,
		CustomerName:    name,
		PreviousBalance: balance,
	}
	s.draft.TransactionType = domain.TransactionTypeCredit
	s.recomputeLocked()
	return nil
}

// OpenPayment moves the draft to the payment step. Guarded on a non-empty
// cart, matching the F4 dispatch guard.
func (s *Session) OpenPayment() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.draft.Cart.Items) == 0 {
		return &ValidationError{Details: "cart is empty"}
	}
	s.state = StateAwaitingPayment
	s.recomputeLocked()
	return nil
}

// Validate enforces the submission rules: non-empty cart, a resolved
// customer for credit sales, and a non-negative amount received. Violations
// are reported, never silently coerced.
func (s *Session) Validate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validateDraft(s.draft)
}

func validateDraft(d domain.OrderDraft) error {
	if len(d.Cart.Items) == 0 {
		return &ValidationError{Details: "cart is empty"}
	}
	if d.Customer.Kind == domain.BindingCredit && strings.TrimSpace(d.Customer.CustomerID) == "" {
		return &ValidationError{Details: "credit sale requires a resolved customer"}
	}
	if d.AmountReceived.IsNegative() {
		return &ValidationError{Details: "amount received cannot be negative"}
	}
	return nil
}

// Commit persists the draft and resets the session to a fresh New draft.
// final=false saves a persisted-but-not-final draft invoice. A failed commit
// leaves the draft exactly as the user left it for resubmission.
func (s *Session) Commit(ctx context.Context, final bool) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateDraft(s.draft); err != nil {
		return nil, err
	}

	invoice := draftToInvoice(s.draft, s.now())
	if final {
		invoice.Status = domain.InvoiceStatusCommitted
	} else {
		invoice.Status = domain.InvoiceStatusDraft
	}

	created, err := s.repo.CreateInvoice(ctx, invoice)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrCommitFailed, err)
	}

	log.Printf("[order] committed invoice %s status=%s net=%s", created.Number, created.Status, created.NetTotal)
	s.resetLocked()
	return created, nil
}

func draftToInvoice(d domain.OrderDraft, at time.Time) domain.Invoice {
	items := make([]domain.InvoiceItem, 0, len(d.Cart.Items))
	for _, line := range d.Cart.Items {
		items = append(items, domain.InvoiceItem{
			ProductID: line.ProductID,
			Code:      line.Code,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			UnitID:    line.UnitID,
			LineTotal: line.LineTotal,
		})
	}
	return domain.Invoice{
		ID:              d.InvoiceID,
		Number:          d.InvoiceNumber,
		Date:            d.Date,
		Time:            d.Time,
		TransactionType: d.TransactionType,
		DeliveryMode:    d.DeliveryMode,
		CustomerID:      d.Customer.CustomerID,
		CustomerName:    d.Customer.CustomerName,
		Items:           items,
		Discount:        d.Discount,
		Expenses:        d.Expenses,
		AmountReceived:  d.AmountReceived,
		Subtotal:        d.Totals.Subtotal,
		NetTotal:        d.Totals.NetTotal,
		PreviousBalance: d.Customer.PreviousBalance,
		BillingMeta:     d.BillingMeta,
		PrintFlags:      d.PrintFlags,
		Remarks:         d.Remarks,
		CreatedAt:       at,
	}
}

func clampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}
