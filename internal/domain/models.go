package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	UnitID       string          `json:"unit_id"`
	Stock        decimal.Decimal `json:"stock"`
	Active       bool            `json:"active"`
}

// Pricing is the current-catalog view of one product used by replication:
// the general selling price plus any per-unit overrides.
type Pricing struct {
	ProductID    string                     `json:"product_id"`
	SellingPrice decimal.Decimal            `json:"selling_price"`
	ByUnit       map[string]decimal.Decimal `json:"by_unit,omitempty"`
}

type PriceChange struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	OldPrice  decimal.Decimal `json:"old_price"`
	NewPrice  decimal.Decimal `json:"new_price"`
	ChangedAt time.Time       `json:"changed_at"`
}

type LastSale struct {
	ProductID  string          `json:"product_id"`
	CustomerID string          `json:"customer_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	SoldAt     time.Time       `json:"sold_at"`
}

type Customer struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Phone   string          `json:"phone"`
	Balance decimal.Decimal `json:"balance"`
}

type UnitOfMeasure struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LineItem is one row of the live cart. LineTotal is always
// Quantity × UnitPrice; the cart operations maintain that invariant.
type LineItem struct {
	ProductID string          `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitID    string          `json:"unit_id"`
	LineTotal decimal.Decimal `json:"line_total"`
	StockHint decimal.Decimal `json:"stock_hint"`
}

// Cart is the ordered line collection of one in-progress order, at most one
// line per product id. Focused is the index of the row targeted by keyboard
// quantity commands, -1 when no row is focused.
type Cart struct {
	Items   []LineItem `json:"items"`
	Focused int        `json:"focused"`
}

func EmptyCart() Cart {
	return Cart{Items: nil, Focused: -1}
}

func (c Cart) FocusedItem() (LineItem, bool) {
	if c.Focused < 0 || c.Focused >= len(c.Items) {
		return LineItem{}, false
	}
	return c.Items[c.Focused], true
}

func (c Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy; cart operations never mutate a shared slice.
func (c Cart) Clone() Cart {
	out := Cart{Focused: c.Focused}
	if len(c.Items) > 0 {
		out.Items = make([]LineItem, len(c.Items))
		copy(out.Items, c.Items)
	}
	return out
}

// PriceQuote is one replication line: the historical price, the resolved
// current price, and which of the two is in effect.
type PriceQuote struct {
	ProductID          string          `json:"product_id"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	UnitID             string          `json:"unit_id"`
	Quantity           decimal.Decimal `json:"quantity"`
	HistoricalQuantity decimal.Decimal `json:"historical_quantity"`
	OldPrice           decimal.Decimal `json:"old_price"`
	NewPrice           decimal.Decimal `json:"new_price"`
	UseNewPrice        bool            `json:"use_new_price"`
	LineTotal          decimal.Decimal `json:"line_total"`
}

func (q PriceQuote) EffectivePrice() decimal.Decimal {
	if q.UseNewPrice {
		return q.NewPrice
	}
	return q.OldPrice
}

// Totals are derived from the cart plus discount/expenses/amount received.
// They are recomputed after every mutation and never stored independently.
type Totals struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	NetTotal       decimal.Decimal `json:"net_total"`
	ChangeToReturn decimal.Decimal `json:"change_to_return"`
	BalanceDue     decimal.Decimal `json:"balance_due"`
}

type CustomerBinding struct {
	Kind            string          `json:"kind"`
	CustomerID      string          `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
}

func CashBinding() CustomerBinding {
	return CustomerBinding{Kind: BindingCash}
}

type BillingMeta struct {
	No      string `json:"no"`
	Date    string `json:"date"`
	Packing string `json:"packing"`
	Adda    string `json:"adda"`
}

type PrintFlags struct {
	WithoutHeader  bool `json:"without_header"`
	WithoutBalance bool `json:"without_balance"`
}

// OrderDraft is the live order being built. Created when a billing session
// opens, mutated by every user action, reset to a fresh New draft on commit,
// explicit clear, or navigation away.
type OrderDraft struct {
	InvoiceID       string          `json:"invoice_id,omitempty"`
	InvoiceNumber   string          `json:"invoice_number,omitempty"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	TransactionType string          `json:"transaction_type"`
	DeliveryMode    string          `json:"delivery_mode"`
	Cart            Cart            `json:"cart"`
	Customer        CustomerBinding `json:"customer"`
	Discount        decimal.Decimal `json:"discount"`
	Expenses        decimal.Decimal `json:"expenses"`
	AmountReceived  decimal.Decimal `json:"amount_received"`
	BillingMeta     BillingMeta     `json:"billing_meta"`
	PrintFlags      PrintFlags      `json:"print_flags"`
	Remarks         string          `json:"remarks"`
	Mode            string          `json:"mode"`
	Totals          Totals          `json:"totals"`
}

// Clone returns a deep copy, including the cart's item order. Edit-mode
// snapshots rely on this being exact.
func (d OrderDraft) Clone() OrderDraft {
	out := d
	out.Cart = d.Cart.Clone()
	return out
}

type Invoice struct {
	ID              string          `json:"id"`
	Number          string          `json:"number"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	TransactionType string          `json:"transaction_type"`
	DeliveryMode    string          `json:"delivery_mode"`
	CustomerID      string          `json:"customer_id,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	Items           []InvoiceItem   `json:"items"`
	Discount        decimal.Decimal `json:"discount"`
	Expenses        decimal.Decimal `json:"expenses"`
	AmountReceived  decimal.Decimal `json:"amount_received"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	NetTotal        decimal.Decimal `json:"net_total"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Status          string          `json:"status"`
	BillingMeta     BillingMeta     `json:"billing_meta"`
	PrintFlags      PrintFlags      `json:"print_flags"`
	Remarks         string          `json:"remarks"`
	CreatedAt       time.Time       `json:"created_at"`
}

type InvoiceItem struct {
	ProductID string          `json:"product_id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	UnitID    string          `json:"unit_id"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// ReceiptSummary is the structured breakdown handed to the external
// print-rendering collaborator. The engine never builds markup.
type ReceiptSummary struct {
	InvoiceNumber   string          `json:"invoice_number"`
	Date            string          `json:"date"`
	Time            string          `json:"time"`
	CustomerName    string          `json:"customer_name"`
	Lines           []ReceiptLine   `json:"lines"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	Discount        decimal.Decimal `json:"discount"`
	Expenses        decimal.Decimal `json:"expenses"`
	NetTotal        decimal.Decimal `json:"net_total"`
	AmountReceived  decimal.Decimal `json:"amount_received"`
	ChangeToReturn  decimal.Decimal `json:"change_to_return"`
	BalanceDue      decimal.Decimal `json:"balance_due"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	WithThisBill    decimal.Decimal `json:"with_this_bill"`
	PrintFlags      PrintFlags      `json:"print_flags"`
	Remarks         string          `json:"remarks"`
}

type ReceiptLine struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitName    string          `json:"unit_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

type Page struct {
	Number int `json:"number"`
	Size   int `json:"size"`
}

type InvoiceFilter struct {
	Date       string `json:"date,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	Status     string `json:"status,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

const (
	BindingCash   = "cash"
	BindingCredit = "credit"
)

const (
	DraftModeNew             = "new"
	DraftModeReplicated      = "replicated"
	DraftModeEditingExisting = "editing_existing"
)

const (
	InvoiceStatusCommitted = "committed"
	InvoiceStatusDraft     = "draft"
)

const (
	TransactionTypeCash   = "cash"
	TransactionTypeCredit = "credit"
)

const (
	DeliveryModePickup   = "pickup"
	DeliveryModeDelivery = "delivery"
)
