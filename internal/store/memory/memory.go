package memory

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/store"
	"billingdesk/backend/internal/xid"
)

type Store struct {
	mu               sync.RWMutex
	products         map[string]domain.Product
	pricing          map[string]domain.Pricing
	priceHistory     map[string][]domain.PriceChange
	lastSales        map[string]domain.LastSale
	customers        map[string]domain.Customer
	units            []domain.UnitOfMeasure
	invoicesByID     map[string]domain.Invoice
	invoicesByNumber map[string]string
	seqByDate        map[string]int
	usersByUsername  map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_OPERATOR_PASSWORD; if
// unset, hardcoded dev defaults are used with a warning. These credentials
// are never used in production (the backend uses PostgreSQL when
// DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	operatorPwd := envOr("SEED_OPERATOR_PASSWORD", "operator123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_OPERATOR_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_OPERATOR_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"operator", operatorPwd, "operator"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		log.Fatalf("[memory-store] bad seed decimal %q: %v", s, err)
	}
	return d
}

func NewSeeded() *Store {
	units := []domain.UnitOfMeasure{
		{ID: "pcs", Name: "Piece"},
		{ID: "box", Name: "Box"},
		{ID: "kg", Name: "Kilogram"},
		{ID: "bag", Name: "Bag"},
		{ID: "dozen", Name: "Dozen"},
	}

	products := []domain.Product{
		{ID: "prod-rice-5", Code: "RICE-5", Name: "Basmati Rice 5kg", SellingPrice: dec("1250"), UnitID: "bag", Stock: dec("48"), Active: true},
		{ID: "prod-flour-10", Code: "FLR-10", Name: "Wheat Flour 10kg", SellingPrice: dec("980"), UnitID: "bag", Stock: dec("36"), Active: true},
		{ID: "prod-sugar-1", Code: "SGR-1", Name: "Sugar 1kg", SellingPrice: dec("110"), UnitID: "kg", Stock: dec("120"), Active: true},
		{ID: "prod-oil-5", Code: "OIL-5", Name: "Cooking Oil 5L", SellingPrice: dec("1600"), UnitID: "pcs", Stock: dec("30"), Active: true},
		{ID: "prod-tea-250", Code: "TEA-250", Name: "Black Tea 250g", SellingPrice: dec("240"), UnitID: "pcs", Stock: dec("80"), Active: true},
		{ID: "prod-soap-72", Code: "SOAP-72", Name: "Laundry Soap Carton", SellingPrice: dec("2100"), UnitID: "box", Stock: dec("14"), Active: true},
		{ID: "prod-matches", Code: "MTCH", Name: "Matches Dozen Pack", SellingPrice: dec("60"), UnitID: "dozen", Stock: dec("200"), Active: true},
		{ID: "prod-salt-800", Code: "SALT-800", Name: "Iodized Salt 800g", SellingPrice: dec("45"), UnitID: "pcs", Stock: dec("150"), Active: true},
	}

	pricing := map[string]domain.Pricing{}
	for _, p := range products {
		pricing[p.ID] = domain.Pricing{ProductID: p.ID, SellingPrice: p.SellingPrice}
	}
	// Per-unit overrides for products commonly sold in more than one unit.
	pricing["prod-sugar-1"] = domain.Pricing{
		ProductID:    "prod-sugar-1",
		SellingPrice: dec("110"),
		ByUnit:       map[string]decimal.Decimal{"bag": dec("5200")},
	}
	pricing["prod-tea-250"] = domain.Pricing{
		ProductID:    "prod-tea-250",
		SellingPrice: dec("240"),
		ByUnit:       map[string]decimal.Decimal{"box": dec("5500")},
	}

	history := map[string][]domain.PriceChange{
		"prod-rice-5": {
			{ID: xid.New("pch"), ProductID: "prod-rice-5", OldPrice: dec("1180"), NewPrice: dec("1250"), ChangedAt: time.Now().UTC().AddDate(0, 0, -14)},
		},
		"prod-oil-5": {
			{ID: xid.New("pch"), ProductID: "prod-oil-5", OldPrice: dec("1480"), NewPrice: dec("1600"), ChangedAt: time.Now().UTC().AddDate(0, 0, -7)},
		},
	}

	customers := []domain.Customer{
		{ID: "cust-karim", Name: "Karim Traders", Phone: "0301-5550101", Balance: dec("3400")},
		{ID: "cust-bashir", Name: "Bashir General Store", Phone: "0301-5550102", Balance: dec("0")},
		{ID: "cust-noor", Name: "Noor Kiryana", Phone: "0301-5550103", Balance: dec("780")},
		{ID: "cust-hamid", Name: "Hamid & Sons", Phone: "0301-5550104", Balance: dec("12150")},
	}

	s := &Store{
		products:         map[string]domain.Product{},
		pricing:          pricing,
		priceHistory:     history,
		lastSales:        map[string]domain.LastSale{},
		customers:        map[string]domain.Customer{},
		units:            units,
		invoicesByID:     map[string]domain.Invoice{},
		invoicesByNumber: map[string]string{},
		seqByDate:        map[string]int{},
		usersByUsername:  seedUsers(),
	}
	for _, p := range products {
		s.products[p.ID] = p
	}
	for _, c := range customers {
		s.customers[c.ID] = c
	}
	s.seedInvoices()
	return s
}

// seedInvoices backfills a couple of business days of committed invoices so
// navigation and replication have history to work against.
func (s *Store) seedInvoices() {
	today := time.Now().UTC().Format("2006-01-02")
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	seed := []struct {
		date       string
		at         string
		customerID string
		txType     string
		items      []domain.InvoiceItem
		received   string
	}{
		{
			date: yesterday, at: "10:12:40", customerID: "cust-karim", txType: domain.TransactionTypeCredit,
			items: []domain.InvoiceItem{
				{ProductID: "prod-rice-5", Code: "RICE-5", Name: "Basmati Rice 5kg", Quantity: dec("4"), UnitPrice: dec("1180"), UnitID: "bag"},
				{ProductID: "prod-sugar-1", Code: "SGR-1", Name: "Sugar 1kg", Quantity: dec("10"), UnitPrice: dec("104"), UnitID: "kg"},
			},
			received: "3000",
		},
		{
			date: yesterday, at: "13:45:02", customerID: "", txType: domain.TransactionTypeCash,
			items: []domain.InvoiceItem{
				{ProductID: "prod-oil-5", Code: "OIL-5", Name: "Cooking Oil 5L", Quantity: dec("2"), UnitPrice: dec("1480"), UnitID: "pcs"},
			},
			received: "2960",
		},
		{
			date: today, at: "09:05:11", customerID: "cust-noor", txType: domain.TransactionTypeCredit,
			items: []domain.InvoiceItem{
				{ProductID: "prod-tea-250", Code: "TEA-250", Name: "Black Tea 250g", Quantity: dec("6"), UnitPrice: dec("240"), UnitID: "pcs"},
				{ProductID: "prod-matches", Code: "MTCH", Name: "Matches Dozen Pack", Quantity: dec("3"), UnitPrice: dec("60"), UnitID: "dozen"},
			},
			received: "1000",
		},
	}

	for _, row := range seed {
		inv := domain.Invoice{
			Date:            row.date,
			Time:            row.at,
			TransactionType: row.txType,
			DeliveryMode:    domain.DeliveryModePickup,
			CustomerID:      row.customerID,
			Items:           row.items,
			AmountReceived:  dec(row.received),
			Status:          domain.InvoiceStatusCommitted,
		}
		if c, ok := s.customers[row.customerID]; ok {
			inv.CustomerName = c.Name
			inv.PreviousBalance = c.Balance
		}
		subtotal := decimal.Zero
		for i := range inv.Items {
			inv.Items[i].LineTotal = inv.Items[i].Quantity.Mul(inv.Items[i].UnitPrice)
			subtotal = subtotal.Add(inv.Items[i].LineTotal)
		}
		inv.Subtotal = subtotal
		inv.NetTotal = subtotal
		if _, err := s.createInvoiceLocked(inv); err != nil {
			log.Fatalf("[memory-store] bad seed invoice: %v", err)
		}
	}
}

func (s *Store) ListInvoices(_ context.Context, filter domain.InvoiceFilter, page domain.Page) ([]domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Invoice, 0, len(s.invoicesByID))
	for _, inv := range s.invoicesByID {
		if filter.Date != "" && inv.Date != filter.Date {
			continue
		}
		if filter.CustomerID != "" && inv.CustomerID != filter.CustomerID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, cloneInvoice(inv))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Number < out[j].Number
	})
	return paginate(out, page), nil
}

func (s *Store) GetInvoiceByID(_ context.Context, id string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inv, ok := s.invoicesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneInvoice(inv)
	return &out, nil
}

func (s *Store) GetInvoiceByNumber(_ context.Context, number string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.invoicesByNumber[strings.TrimSpace(number)]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := cloneInvoice(s.invoicesByID[id])
	return &out, nil
}

func (s *Store) CreateInvoice(_ context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createInvoiceLocked(invoice)
}

func (s *Store) createInvoiceLocked(invoice domain.Invoice) (*domain.Invoice, error) {
	if invoice.Date == "" {
		invoice.Date = time.Now().UTC().Format("2006-01-02")
	}
	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if _, exists := s.invoicesByID[invoice.ID]; exists {
		return nil, fmt.Errorf("invoice %s already exists", invoice.ID)
	}
	if invoice.Number == "" {
		s.seqByDate[invoice.Date]++
		invoice.Number = xid.InvoiceNumber(invoice.Date, s.seqByDate[invoice.Date])
	}
	if _, exists := s.invoicesByNumber[invoice.Number]; exists {
		return nil, fmt.Errorf("invoice number %s already exists", invoice.Number)
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}

	s.invoicesByID[invoice.ID] = cloneInvoice(invoice)
	s.invoicesByNumber[invoice.Number] = invoice.ID
	s.recordLastSalesLocked(invoice)
	out := cloneInvoice(invoice)
	return &out, nil
}

func (s *Store) UpdateInvoice(_ context.Context, id string, invoice domain.Invoice) (*domain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.invoicesByID[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	// Identity and numbering are immutable under edit.
	invoice.ID = existing.ID
	invoice.Number = existing.Number
	invoice.CreatedAt = existing.CreatedAt
	s.invoicesByID[id] = cloneInvoice(invoice)
	s.recordLastSalesLocked(invoice)
	out := cloneInvoice(invoice)
	return &out, nil
}

func (s *Store) recordLastSalesLocked(invoice domain.Invoice) {
	if invoice.Status != domain.InvoiceStatusCommitted {
		return
	}
	for _, item := range invoice.Items {
		s.lastSales[item.ProductID+"|"+invoice.CustomerID] = domain.LastSale{
			ProductID:  item.ProductID,
			CustomerID: invoice.CustomerID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			SoldAt:     invoice.CreatedAt,
		}
	}
}

func (s *Store) NavigateInvoices(_ context.Context, date string, currentID string, direction store.NavDirection) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	day := make([]domain.Invoice, 0)
	for _, inv := range s.invoicesByID {
		if inv.Date == date {
			day = append(day, inv)
		}
	}
	if len(day) == 0 {
		return nil, store.ErrNotFound
	}
	sort.Slice(day, func(i, j int) bool {
		if day[i].Time != day[j].Time {
			return day[i].Time < day[j].Time
		}
		return day[i].Number < day[j].Number
	})

	idx := -1
	for i, inv := range day {
		if inv.ID == currentID {
			idx = i
			break
		}
	}

	var pick int
	switch direction {
	case store.NavFirst:
		pick = 0
	case store.NavLast:
		pick = len(day) - 1
	case store.NavPrev:
		if idx <= 0 {
			return nil, store.ErrNotFound
		}
		pick = idx - 1
	case store.NavNext:
		if idx < 0 || idx >= len(day)-1 {
			return nil, store.ErrNotFound
		}
		pick = idx + 1
	default:
		return nil, fmt.Errorf("unknown direction %q", direction)
	}

	out := cloneInvoice(day[pick])
	return &out, nil
}

func (s *Store) ListProducts(_ context.Context, query string, page domain.Page) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Code), q) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, page), nil
}

func (s *Store) GetProductsByIDs(_ context.Context, ids []string) (map[string]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Product, len(ids))
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (s *Store) GetPricing(_ context.Context, ids []string) (map[string]domain.Pricing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]domain.Pricing, len(ids))
	for _, id := range ids {
		if p, ok := s.pricing[id]; ok {
			out[id] = clonePricing(p)
		}
	}
	return out, nil
}

func (s *Store) ListPriceHistory(_ context.Context, productID string, limit int) ([]domain.PriceChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.priceHistory[productID]
	out := make([]domain.PriceChange, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool { return out[i].ChangedAt.After(out[j].ChangedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) GetLastSale(_ context.Context, productID string, customerID string) (*domain.LastSale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, ok := s.lastSales[productID+"|"+customerID]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := sale
	return &out, nil
}

func (s *Store) ListCustomers(_ context.Context, query string, page domain.Page) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(strings.ToLower(c.ID), q) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, page), nil
}

func (s *Store) GetCustomerBalance(_ context.Context, id string) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.customers[id]
	if !ok {
		return decimal.Zero, store.ErrNotFound
	}
	return c.Balance, nil
}

func (s *Store) ListUnits(_ context.Context) ([]domain.UnitOfMeasure, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UnitOfMeasure, len(s.units))
	copy(out, s.units)
	return out, nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func cloneInvoice(inv domain.Invoice) domain.Invoice {
	out := inv
	if len(inv.Items) > 0 {
		out.Items = make([]domain.InvoiceItem, len(inv.Items))
		copy(out.Items, inv.Items)
	}
	return out
}

func clonePricing(p domain.Pricing) domain.Pricing {
	out := p
	if len(p.ByUnit) > 0 {
		out.ByUnit = make(map[string]decimal.Decimal, len(p.ByUnit))
		for k, v := range p.ByUnit {
			out.ByUnit[k] = v
		}
	}
	return out
}

func paginate[T any](items []T, page domain.Page) []T {
	if page.Size <= 0 {
		return items
	}
	if page.Number <= 0 {
		page.Number = 1
	}
	start := (page.Number - 1) * page.Size
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
