package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"billingdesk/backend/internal/cache"
	"billingdesk/backend/internal/dispatch"
	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/navigate"
	"billingdesk/backend/internal/order"
	"billingdesk/backend/internal/replicate"
	"billingdesk/backend/internal/store"
)

type API struct {
	repo          store.Repository
	nav           *navigate.Navigator
	prices        cache.PriceCache
	priceTTL      time.Duration
	searchQuiet   time.Duration
	auth          *AuthManager
	allowedOrigin string
	loginLimiter  *attemptLimiter

	mu       sync.Mutex
	sessions map[string]*order.Session
}

func New(repo store.Repository, prices cache.PriceCache, priceTTL, searchQuiet time.Duration, auth *AuthManager, allowedOrigin string) *API {
	return &API{
		repo:          repo,
		nav:           navigate.New(repo),
		prices:        prices,
		priceTTL:      priceTTL,
		searchQuiet:   searchQuiet,
		auth:          auth,
		allowedOrigin: allowedOrigin,
		loginLimiter:  newAttemptLimiter(5, time.Minute),
		sessions:      make(map[string]*order.Session),
	}
}

type attemptLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string][]time.Time
}

func newAttemptLimiter(max int, window time.Duration) *attemptLimiter {
	if max < 1 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &attemptLimiter{max: max, window: window, entries: make(map[string][]time.Time)}
}

func (l *attemptLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	now := time.Now()
	cutoff := now.Add(-l.window)

	l.mu.Lock()
	defer l.mu.Unlock()

	history := l.entries[key]
	kept := make([]time.Time, 0, len(history)+1)
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.entries[key] = kept
		return false
	}
	kept = append(kept, now)
	l.entries[key] = kept
	return true
}

func clientKey(r *http.Request) string {
	host := strings.TrimSpace(r.RemoteAddr)
	if host == "" {
		return "unknown"
	}
	if addr, err := netip.ParseAddrPort(host); err == nil {
		return addr.Addr().String()
	}
	if idx := strings.LastIndex(host, ":"); idx > 0 {
		return host[:idx]
	}
	return host
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/auth/login", a.handleLogin)

	mux.HandleFunc("/api/v1/sessions", a.requireAuth(a.handleSessions, "operator", "admin"))
	mux.HandleFunc("/api/v1/sessions/", a.requireAuth(a.handleSessionActions, "operator", "admin"))

	mux.HandleFunc("/api/v1/invoices", a.requireAuth(a.handleInvoices, "operator", "admin"))
	mux.HandleFunc("/api/v1/invoices/navigate", a.requireAuth(a.handleInvoiceNavigate, "operator", "admin"))
	mux.HandleFunc("/api/v1/invoices/by-number/", a.requireAuth(a.handleInvoiceByNumber, "operator", "admin"))
	mux.HandleFunc("/api/v1/invoices/", a.requireAuth(a.handleInvoiceByID, "operator", "admin"))

	mux.HandleFunc("/api/v1/products", a.requireAuth(a.handleProducts, "operator", "admin"))
	mux.HandleFunc("/api/v1/products/price-history/", a.requireAuth(a.handlePriceHistory, "operator", "admin"))
	mux.HandleFunc("/api/v1/products/last-sale", a.requireAuth(a.handleLastSale, "operator", "admin"))

	mux.HandleFunc("/api/v1/customers", a.requireAuth(a.handleCustomers, "operator", "admin"))
	mux.HandleFunc("/api/v1/customers/", a.requireAuth(a.handleCustomerBalance, "operator", "admin"))

	mux.HandleFunc("/api/v1/units", a.requireAuth(a.handleUnits, "operator", "admin"))

	return a.withMiddleware(mux)
}

func (a *API) requireAuth(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authorization := strings.TrimSpace(r.Header.Get("Authorization"))
		if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
			writeError(w, http.StatusUnauthorized, errors.New("missing bearer token"))
			return
		}

		token := strings.TrimSpace(authorization[len("Bearer "):])
		actor, err := a.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, err)
			return
		}

		if len(roles) > 0 && !isRoleAllowed(actor.Role, roles) {
			writeError(w, http.StatusForbidden, errors.New("forbidden role"))
			return
		}

		next(w, r)
	}
}

func isRoleAllowed(role string, allowed []string) bool {
	for _, candidate := range allowed {
		if candidate == role {
			return true
		}
	}
	return false
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if !a.loginLimiter.Allow(clientKey(r)) {
		writeError(w, http.StatusTooManyRequests, errors.New("too many login attempts"))
		return
	}

	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := a.auth.Login(req)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// sessionView is the wire shape of one billing session: the draft, its
// lifecycle state, and any pending replication quotes.
type sessionView struct {
	ID     string              `json:"id"`
	State  order.State         `json:"state"`
	Draft  domain.OrderDraft   `json:"draft"`
	Quotes []domain.PriceQuote `json:"quotes,omitempty"`
}

func (a *API) view(s *order.Session) sessionView {
	return sessionView{
		ID:     s.ID(),
		State:  s.State(),
		Draft:  s.Draft(),
		Quotes: s.Quotes(),
	}
}

func (a *API) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	s := order.NewSession(a.repo, a.prices, a.priceTTL)
	s.SetSearchQuiet(a.searchQuiet)
	a.mu.Lock()
	a.sessions[s.ID()] = s
	a.mu.Unlock()

	writeJSON(w, http.StatusCreated, a.view(s))
}

func (a *API) session(id string) (*order.Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sessions[id]
	return s, ok
}

func (a *API) handleSessionActions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	parts := strings.SplitN(rest, "/", 2)
	if parts[0] == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing session id"))
		return
	}

	s, ok := a.session(parts[0])
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("session not found"))
		return
	}

	action := ""
	if len(parts) == 2 {
		action = parts[1]
	}

	if action == "" {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, a.view(s))
		case http.MethodDelete:
			a.mu.Lock()
			delete(a.sessions, s.ID())
			a.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
		default:
			writeMethodNotAllowed(w)
		}
		return
	}

	if action == "receipt" {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		summary, err := s.Receipt(r.Context())
		if err != nil {
			a.writeErrorFor(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summary)
		return
	}

	if action == "search" {
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		query, products, err := s.SearchResults()
		body := map[string]any{"query": query, "products": products}
		if err != nil {
			body["error"] = err.Error()
		}
		writeJSON(w, http.StatusOK, body)
		return
	}

	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	a.dispatchSessionAction(w, r, s, action)
}

func (a *API) dispatchSessionAction(w http.ResponseWriter, r *http.Request, s *order.Session, action string) {
	var err error
	var committed *domain.Invoice

	switch action {
	case "cart/add":
		var req struct {
			ProductID string `json:"product_id"`
			Quantity  string `json:"quantity"`
		}
		if err = decodeJSON(r, &req); err == nil {
			err = s.AddProduct(r.Context(), req.ProductID, toDecimal(req.Quantity))
		}
	case "cart/adjust":
		var req struct {
			ProductID string `json:"product_id"`
			Delta     string `json:"delta"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.AdjustQuantity(req.ProductID, toDecimal(req.Delta))
		}
	case "cart/quantity":
		var req struct {
			ProductID string `json:"product_id"`
			Value     string `json:"value"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetQuantity(req.ProductID, toDecimal(req.Value))
		}
	case "cart/remove":
		var req struct {
			ProductID string `json:"product_id"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.RemoveLine(req.ProductID)
		}
	case "cart/uom":
		var req struct {
			ProductID string `json:"product_id"`
			UnitID    string `json:"unit_id"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetUnitOfMeasure(req.ProductID, req.UnitID)
		}
	case "discount":
		var req struct {
			Value string `json:"value"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetDiscount(toDecimal(req.Value))
		}
	case "expenses":
		var req struct {
			Value string `json:"value"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetExpenses(toDecimal(req.Value))
		}
	case "amount-received":
		var req struct {
			Value string `json:"value"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetAmountReceived(toDecimal(req.Value))
		}
	case "remarks":
		var req struct {
			Remarks string `json:"remarks"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetRemarks(req.Remarks)
		}
	case "billing-meta":
		var req domain.BillingMeta
		if err = decodeJSON(r, &req); err == nil {
			s.SetBillingMeta(req)
		}
	case "print-flags":
		var req domain.PrintFlags
		if err = decodeJSON(r, &req); err == nil {
			s.SetPrintFlags(req)
		}
	case "delivery-mode":
		var req struct {
			Mode string `json:"mode"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetDeliveryMode(req.Mode)
		}
	case "customer/cash":
		s.BindCashCustomer()
	case "customer/credit":
		var req struct {
			CustomerID string `json:"customer_id"`
		}
		if err = decodeJSON(r, &req); err == nil {
			err = s.BindCreditCustomer(r.Context(), req.CustomerID)
		}
	case "payment/open":
		err = s.OpenPayment()
	case "commit":
		var req struct {
			Final bool `json:"final"`
		}
		if err = decodeJSON(r, &req); err == nil {
			committed, err = s.Commit(r.Context(), req.Final)
		}
	case "clear":
		s.Clear()
	case "replicate/start":
		var req struct {
			InvoiceNumber string `json:"invoice_number"`
		}
		if err = decodeJSON(r, &req); err == nil {
			err = s.StartReplication(r.Context(), req.InvoiceNumber)
		}
	case "replicate/toggle":
		var req struct {
			ProductID   string `json:"product_id"`
			UseNewPrice bool   `json:"use_new_price"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetQuoteUseNew(req.ProductID, req.UseNewPrice)
		}
	case "replicate/toggle-all":
		var req struct {
			UseNewPrice bool `json:"use_new_price"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SetAllQuotesUseNew(req.UseNewPrice)
		}
	case "replicate/increased":
		s.SelectIncreasedQuotes()
	case "replicate/decreased":
		s.SelectDecreasedQuotes()
	case "replicate/scale":
		var req struct {
			Mode string `json:"mode"`
		}
		if err = decodeJSON(r, &req); err == nil {
			var mode replicate.ScaleMode
			if mode, err = parseScaleMode(req.Mode); err == nil {
				s.ScaleQuotes(mode)
			}
		}
	case "replicate/remove":
		var req struct {
			Index int `json:"index"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.RemoveQuote(req.Index)
		}
	case "replicate/apply":
		err = s.ApplyReplication()
	case "edit/begin":
		var req struct {
			InvoiceID string `json:"invoice_id"`
		}
		if err = decodeJSON(r, &req); err == nil {
			err = s.BeginEdit(r.Context(), req.InvoiceID)
		}
	case "edit/cancel":
		err = s.CancelEdit()
	case "edit/save":
		committed, err = s.SaveEdit(r.Context())
	case "search/trigger":
		var req struct {
			Query string `json:"query"`
		}
		if err = decodeJSON(r, &req); err == nil {
			s.SearchProducts(req.Query)
		}
	case "search/cancel":
		s.CancelSearch()
	case "keys/resolve":
		a.handleKeyResolve(w, r)
		return
	default:
		writeError(w, http.StatusNotFound, errors.New("unknown action"))
		return
	}

	if err != nil {
		a.writeErrorFor(w, err)
		return
	}

	resp := map[string]any{"session": a.view(s)}
	if committed != nil {
		resp["invoice"] = committed
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) handleKeyResolve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Key     string           `json:"key"`
		Ctrl    bool             `json:"ctrl"`
		Context dispatch.Context `json:"context"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	intent, ok := dispatch.Resolve(dispatch.KeyEvent{Key: req.Key, Ctrl: req.Ctrl}, req.Context)
	writeJSON(w, http.StatusOK, map[string]any{"intent": intent, "matched": ok})
}

func (a *API) handleInvoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	filter := domain.InvoiceFilter{
		Date:       strings.TrimSpace(q.Get("date")),
		CustomerID: strings.TrimSpace(q.Get("customer_id")),
		Status:     strings.TrimSpace(q.Get("status")),
	}
	invoices, err := a.repo.ListInvoices(r.Context(), filter, pageFromQuery(r))
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

func (a *API) handleInvoiceNavigate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	direction := store.NavDirection(strings.TrimSpace(q.Get("direction")))
	switch direction {
	case store.NavFirst, store.NavPrev, store.NavNext, store.NavLast:
	default:
		writeError(w, http.StatusBadRequest, errors.New("direction must be first, prev, next, or last"))
		return
	}

	inv, err := a.nav.Step(r.Context(), date, strings.TrimSpace(q.Get("current_id")), direction)
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (a *API) handleInvoiceByNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	number := strings.TrimPrefix(r.URL.Path, "/api/v1/invoices/by-number/")
	inv, err := a.nav.ByNumber(r.Context(), number)
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (a *API) handleInvoiceByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/invoices/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, errors.New("invalid invoice id"))
		return
	}
	inv, err := a.repo.GetInvoiceByID(r.Context(), id)
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	products, err := a.repo.ListProducts(r.Context(), r.URL.Query().Get("q"), pageFromQuery(r))
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (a *API) handlePriceHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	productID := strings.TrimPrefix(r.URL.Path, "/api/v1/products/price-history/")
	limit := parsePositiveLimit(r.URL.Query().Get("limit"), 20, 100)
	history, err := a.repo.ListPriceHistory(r.Context(), productID, limit)
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (a *API) handleLastSale(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	sale, err := a.repo.GetLastSale(r.Context(), q.Get("product_id"), q.Get("customer_id"))
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sale)
}

func (a *API) handleCustomers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	customers, err := a.repo.ListCustomers(r.Context(), r.URL.Query().Get("q"), pageFromQuery(r))
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (a *API) handleCustomerBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/customers/")
	id, ok := strings.CutSuffix(rest, "/balance")
	if !ok || id == "" {
		writeError(w, http.StatusNotFound, errors.New("not found"))
		return
	}
	balance, err := a.repo.GetCustomerBalance(r.Context(), id)
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer_id": id, "balance": balance})
}

func (a *API) handleUnits(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	units, err := a.repo.ListUnits(r.Context())
	if err != nil {
		a.writeErrorFor(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"units": units})
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost && strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

// writeErrorFor maps the engine's error kinds onto HTTP statuses.
func (a *API) writeErrorFor(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, store.ErrValidationFailed):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, store.ErrCommitFailed):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, store.ErrLookupFailed):
		writeError(w, http.StatusBadGateway, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func pageFromQuery(r *http.Request) domain.Page {
	q := r.URL.Query()
	number, _ := strconv.Atoi(q.Get("page"))
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size > 100 {
		size = 100
	}
	return domain.Page{Number: number, Size: size}
}

// toDecimal normalizes a form value: non-numeric or empty input becomes 0,
// never an error.
func toDecimal(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseScaleMode(raw string) (replicate.ScaleMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "same":
		return replicate.ScaleSame, nil
	case "double":
		return replicate.ScaleDouble, nil
	case "half":
		return replicate.ScaleHalf, nil
	}
	return replicate.ScaleSame, errors.New("mode must be same, double, or half")
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return err
	}
	return nil
}

func parsePositiveLimit(raw string, fallback int, max int) int {
	limit := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if max > 0 && limit > max {
		return max
	}
	return limit
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx messages are replaced with a generic string so internal details
	// never reach clients; 4xx messages are user-facing.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
