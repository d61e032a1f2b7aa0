package store

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"billingdesk/backend/internal/domain"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrValidationFailed blocks a submission; the draft is retained unchanged.
	ErrValidationFailed = errors.New("validation failed")
	// ErrLookupFailed marks a non-fatal search/navigation failure; callers
	// show an empty state rather than stale data.
	ErrLookupFailed = errors.New("lookup failed")
	// ErrCommitFailed marks a rejected create/update; the draft is preserved
	// so the user can correct and resubmit.
	ErrCommitFailed = errors.New("commit failed")
)

type NavDirection string

const (
	NavFirst NavDirection = "first"
	NavPrev  NavDirection = "prev"
	NavNext  NavDirection = "next"
	NavLast  NavDirection = "last"
)

// Repository is the persistence collaborator consumed by the billing engine.
// The engine calls these operations and never implements them itself.
type Repository interface {
	// Invoices.
	ListInvoices(ctx context.Context, filter domain.InvoiceFilter, page domain.Page) ([]domain.Invoice, error)
	GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error)
	GetInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error)
	CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error)
	UpdateInvoice(ctx context.Context, id string, invoice domain.Invoice) (*domain.Invoice, error)
	// NavigateInvoices walks first/prev/next/last within one calendar date.
	// currentID is ignored for first/last. ErrNotFound means "no result";
	// the caller must not leave the previous record displayed ambiguously.
	NavigateInvoices(ctx context.Context, date string, currentID string, direction NavDirection) (*domain.Invoice, error)

	// Products.
	ListProducts(ctx context.Context, query string, page domain.Page) ([]domain.Product, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error)
	GetPricing(ctx context.Context, ids []string) (map[string]domain.Pricing, error)
	ListPriceHistory(ctx context.Context, productID string, limit int) ([]domain.PriceChange, error)
	GetLastSale(ctx context.Context, productID string, customerID string) (*domain.LastSale, error)

	// Customers.
	ListCustomers(ctx context.Context, query string, page domain.Page) ([]domain.Customer, error)
	GetCustomerBalance(ctx context.Context, id string) (decimal.Decimal, error)

	// Units of measure.
	ListUnits(ctx context.Context) ([]domain.UnitOfMeasure, error)

	// Auth accounts.
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
}
