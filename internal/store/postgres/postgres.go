package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/store"
	"billingdesk/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

const invoiceColumns = `
	id, number, date, time, transaction_type, delivery_mode,
	customer_id, customer_name, items, discount, expenses, amount_received,
	subtotal, net_total, previous_balance, status,
	billing_no, billing_date, billing_packing, billing_adda,
	without_header, without_balance, remarks, created_at
`

func scanInvoice(row interface{ Scan(...any) error }) (*domain.Invoice, error) {
	var inv domain.Invoice
	var itemsJSON []byte
	var customerID, customerName sql.NullString
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.Date, &inv.Time, &inv.TransactionType, &inv.DeliveryMode,
		&customerID, &customerName, &itemsJSON, &inv.Discount, &inv.Expenses, &inv.AmountReceived,
		&inv.Subtotal, &inv.NetTotal, &inv.PreviousBalance, &inv.Status,
		&inv.BillingMeta.No, &inv.BillingMeta.Date, &inv.BillingMeta.Packing, &inv.BillingMeta.Adda,
		&inv.PrintFlags.WithoutHeader, &inv.PrintFlags.WithoutBalance, &inv.Remarks, &inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.CustomerID = customerID.String
	inv.CustomerName = customerName.String
	if len(itemsJSON) > 0 {
		if err := json.Unmarshal(itemsJSON, &inv.Items); err != nil {
			return nil, fmt.Errorf("decode invoice items: %w", err)
		}
	}
	return &inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter domain.InvoiceFilter, page domain.Page) ([]domain.Invoice, error) {
	conds := []string{"1=1"}
	args := []any{}
	if filter.Date != "" {
		args = append(args, filter.Date)
		conds = append(conds, fmt.Sprintf("date = $%d", len(args)))
	}
	if filter.CustomerID != "" {
		args = append(args, filter.CustomerID)
		conds = append(conds, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	limit := 100
	offset := 0
	if page.Size > 0 {
		limit = page.Size
		if page.Number > 1 {
			offset = (page.Number - 1) * page.Size
		}
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`
		SELECT %s FROM invoices
		WHERE %s
		ORDER BY date, time, number
		LIMIT $%d OFFSET $%d
	`, invoiceColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	invoices := make([]domain.Invoice, 0, limit)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (s *Store) GetInvoiceByID(ctx context.Context, id string) (*domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM invoices WHERE id = $1`, invoiceColumns), id)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return inv, err
}

func (s *Store) GetInvoiceByNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM invoices WHERE number = $1`, invoiceColumns), strings.TrimSpace(number))
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return inv, err
}

func (s *Store) CreateInvoice(ctx context.Context, invoice domain.Invoice) (*domain.Invoice, error) {
	if invoice.Date == "" {
		invoice.Date = time.Now().UTC().Format("2006-01-02")
	}
	if invoice.ID == "" {
		invoice.ID = xid.New("inv")
	}
	if invoice.CreatedAt.IsZero() {
		invoice.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if invoice.Number == "" {
		var seq int
		err = tx.QueryRowContext(ctx, `
			INSERT INTO invoice_sequences (date, seq) VALUES ($1, 1)
			ON CONFLICT (date) DO UPDATE SET seq = invoice_sequences.seq + 1
			RETURNING seq
		`, invoice.Date).Scan(&seq)
		if err != nil {
			return nil, err
		}
		invoice.Number = xid.InvoiceNumber(invoice.Date, seq)
	}

	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoices (
			id, number, date, time, transaction_type, delivery_mode,
			customer_id, customer_name, items, discount, expenses, amount_received,
			subtotal, net_total, previous_balance, status,
			billing_no, billing_date, billing_packing, billing_adda,
			without_header, without_balance, remarks, created_at
		) VALUES (
			$1,$2,$3,$4,$5,$6,
			NULLIF($7,''),NULLIF($8,''),$9,$10,$11,$12,
			$13,$14,$15,$16,
			$17,$18,$19,$20,
			$21,$22,$23,$24
		)
	`,
		invoice.ID, invoice.Number, invoice.Date, invoice.Time, invoice.TransactionType, invoice.DeliveryMode,
		invoice.CustomerID, invoice.CustomerName, itemsJSON, invoice.Discount, invoice.Expenses, invoice.AmountReceived,
		invoice.Subtotal, invoice.NetTotal, invoice.PreviousBalance, invoice.Status,
		invoice.BillingMeta.No, invoice.BillingMeta.Date, invoice.BillingMeta.Packing, invoice.BillingMeta.Adda,
		invoice.PrintFlags.WithoutHeader, invoice.PrintFlags.WithoutBalance, invoice.Remarks, invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("invoice %s already exists", invoice.Number)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) UpdateInvoice(ctx context.Context, id string, invoice domain.Invoice) (*domain.Invoice, error) {
	existing, err := s.GetInvoiceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	invoice.ID = existing.ID
	invoice.Number = existing.Number
	invoice.CreatedAt = existing.CreatedAt

	itemsJSON, err := json.Marshal(invoice.Items)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET
			date=$2, time=$3, transaction_type=$4, delivery_mode=$5,
			customer_id=NULLIF($6,''), customer_name=NULLIF($7,''), items=$8,
			discount=$9, expenses=$10, amount_received=$11,
			subtotal=$12, net_total=$13, previous_balance=$14, status=$15,
			billing_no=$16, billing_date=$17, billing_packing=$18, billing_adda=$19,
			without_header=$20, without_balance=$21, remarks=$22
		WHERE id=$1
	`,
		invoice.ID, invoice.Date, invoice.Time, invoice.TransactionType, invoice.DeliveryMode,
		invoice.CustomerID, invoice.CustomerName, itemsJSON,
		invoice.Discount, invoice.Expenses, invoice.AmountReceived,
		invoice.Subtotal, invoice.NetTotal, invoice.PreviousBalance, invoice.Status,
		invoice.BillingMeta.No, invoice.BillingMeta.Date, invoice.BillingMeta.Packing, invoice.BillingMeta.Adda,
		invoice.PrintFlags.WithoutHeader, invoice.PrintFlags.WithoutBalance, invoice.Remarks,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, store.ErrNotFound
	}
	return &invoice, nil
}

func (s *Store) NavigateInvoices(ctx context.Context, date string, currentID string, direction store.NavDirection) (*domain.Invoice, error) {
	var (
		query string
		args  []any
	)

	switch direction {
	case store.NavFirst:
		query = fmt.Sprintf(`SELECT %s FROM invoices WHERE date = $1 ORDER BY time, number LIMIT 1`, invoiceColumns)
		args = []any{date}
	case store.NavLast:
		query = fmt.Sprintf(`SELECT %s FROM invoices WHERE date = $1 ORDER BY time DESC, number DESC LIMIT 1`, invoiceColumns)
		args = []any{date}
	case store.NavPrev:
		query = fmt.Sprintf(`
			SELECT %s FROM invoices
			WHERE date = $1 AND (time, number) < (SELECT time, number FROM invoices WHERE id = $2)
			ORDER BY time DESC, number DESC LIMIT 1
		`, invoiceColumns)
		args = []any{date, currentID}
	case store.NavNext:
		query = fmt.Sprintf(`
			SELECT %s FROM invoices
			WHERE date = $1 AND (time, number) > (SELECT time, number FROM invoices WHERE id = $2)
			ORDER BY time, number LIMIT 1
		`, invoiceColumns)
		args = []any{date, currentID}
	default:
		return nil, fmt.Errorf("unknown direction %q", direction)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	inv, err := scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return inv, err
}

func (s *Store) ListProducts(ctx context.Context, query string, page domain.Page) ([]domain.Product, error) {
	limit := 50
	if page.Size > 0 {
		limit = page.Size
	}
	offset := 0
	if page.Number > 1 {
		offset = (page.Number - 1) * limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, selling_price, unit_id, stock, active
		FROM products
		WHERE active = true AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR code ILIKE '%' || $1 || '%')
		ORDER BY name
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(query), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, limit)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.SellingPrice, &p.UnitID, &p.Stock, &p.Active); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) GetProductsByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	out := make(map[string]domain.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, name, selling_price, unit_id, stock, active
		FROM products
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.SellingPrice, &p.UnitID, &p.Stock, &p.Active); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (s *Store) GetPricing(ctx context.Context, ids []string) (map[string]domain.Pricing, error) {
	out := make(map[string]domain.Pricing, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.selling_price, COALESCE(u.by_unit, '{}'::jsonb)
		FROM products p
		LEFT JOIN product_unit_prices u ON u.product_id = p.id
		WHERE p.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var pricing domain.Pricing
		var byUnitJSON []byte
		if err := rows.Scan(&pricing.ProductID, &pricing.SellingPrice, &byUnitJSON); err != nil {
			return nil, err
		}
		if len(byUnitJSON) > 0 {
			if err := json.Unmarshal(byUnitJSON, &pricing.ByUnit); err != nil {
				return nil, fmt.Errorf("decode unit prices for %s: %w", pricing.ProductID, err)
			}
		}
		out[pricing.ProductID] = pricing
	}
	return out, rows.Err()
}

func (s *Store) ListPriceHistory(ctx context.Context, productID string, limit int) ([]domain.PriceChange, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, product_id, old_price, new_price, changed_at
		FROM price_history
		WHERE product_id = $1
		ORDER BY changed_at DESC
		LIMIT $2
	`, productID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]domain.PriceChange, 0, limit)
	for rows.Next() {
		var pc domain.PriceChange
		if err := rows.Scan(&pc.ID, &pc.ProductID, &pc.OldPrice, &pc.NewPrice, &pc.ChangedAt); err != nil {
			return nil, err
		}
		history = append(history, pc)
	}
	return history, rows.Err()
}

func (s *Store) GetLastSale(ctx context.Context, productID string, customerID string) (*domain.LastSale, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT i.customer_id, item->>'product_id', item->>'quantity', item->>'unit_price', i.created_at
		FROM invoices i, jsonb_array_elements(i.items) item
		WHERE i.customer_id = $2 AND item->>'product_id' = $1 AND i.status = 'committed'
		ORDER BY i.created_at DESC
		LIMIT 1
	`, productID, customerID)

	var sale domain.LastSale
	var qty, price string
	err := row.Scan(&sale.CustomerID, &sale.ProductID, &qty, &price, &sale.SoldAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if sale.Quantity, err = decimal.NewFromString(qty); err != nil {
		return nil, err
	}
	if sale.UnitPrice, err = decimal.NewFromString(price); err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) ListCustomers(ctx context.Context, query string, page domain.Page) ([]domain.Customer, error) {
	limit := 50
	if page.Size > 0 {
		limit = page.Size
	}
	offset := 0
	if page.Number > 1 {
		offset = (page.Number - 1) * limit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(phone, ''), balance
		FROM customers
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2 OFFSET $3
	`, strings.TrimSpace(query), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, limit)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Balance); err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (s *Store) GetCustomerBalance(ctx context.Context, id string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.QueryRowContext(ctx, `SELECT balance FROM customers WHERE id = $1`, id).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, store.ErrNotFound
	}
	return balance, err
}

func (s *Store) ListUnits(ctx context.Context) ([]domain.UnitOfMeasure, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM units ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := make([]domain.UnitOfMeasure, 0, 16)
	for rows.Next() {
		var u domain.UnitOfMeasure
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		WHERE active = true
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 8)
	for rows.Next() {
		var u domain.UserAccount
		if err := rows.Scan(&u.Username, &u.Password, &u.Role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
