package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billingdesk/backend/internal/cache"
	"billingdesk/backend/internal/domain"
	"billingdesk/backend/internal/store/memory"
)

// newTestAPI builds a full API with an in-memory store and a real
// AuthManager so handler tests exercise the complete request path.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	repo := memory.NewSeeded()
	auth := NewAuthManager("test-secret-key", time.Hour, repo)
	return New(repo, cache.NoopPriceCache{}, time.Minute, 5*time.Millisecond, auth, "*")
}

func loginToken(t *testing.T, handler http.Handler) string {
	t.Helper()

	payload, _ := json.Marshal(map[string]string{
		"username": "admin",
		"password": "admin123",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp domain.LoginResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return resp.AccessToken
}

func doJSON(t *testing.T, handler http.Handler, token string, method string, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Handler(), "", http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequestsWithoutTokenRejected(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Handler(), "", http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	api := newTestAPI(t)
	rec := doJSON(t, api.Handler(), "", http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLoginRateLimited(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()

	var last int
	for i := 0; i < 7; i++ {
		rec := doJSON(t, handler, "", http.MethodPost, "/api/v1/auth/login", map[string]string{
			"username": "admin",
			"password": "wrong",
		})
		last = rec.Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after repeated failures, got %d", last)
	}
}

type sessionResp struct {
	Session struct {
		ID     string              `json:"id"`
		State  string              `json:"state"`
		Draft  domain.OrderDraft   `json:"draft"`
		Quotes []domain.PriceQuote `json:"quotes"`
	} `json:"session"`
	Invoice *domain.Invoice `json:"invoice"`
}

func createSession(t *testing.T, handler http.Handler, token string) string {
	t.Helper()
	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: %d (body: %s)", rec.Code, rec.Body.String())
	}
	var view struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	return view.ID
}

func seededProductID(t *testing.T, handler http.Handler, token string) string {
	t.Helper()
	rec := doJSON(t, handler, token, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products: %d", rec.Code)
	}
	var resp struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode products: %v", err)
	}
	if len(resp.Products) == 0 {
		t.Fatalf("no seeded products")
	}
	return resp.Products[0].ID
}

func TestBillingSessionFlow(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)
	sessionID := createSession(t, handler, token)
	productID := seededProductID(t, handler, token)
	base := "/api/v1/sessions/" + sessionID

	rec := doJSON(t, handler, token, http.MethodPost, base+"/cart/add", map[string]string{
		"product_id": productID,
		"quantity":   "2",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cart add: %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp sessionResp
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.State != "composing" {
		t.Fatalf("expected composing, got %s", resp.Session.State)
	}
	if len(resp.Session.Draft.Cart.Items) != 1 {
		t.Fatalf("expected one cart line")
	}

	rec = doJSON(t, handler, token, http.MethodPost, base+"/payment/open", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("open payment: %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, token, http.MethodPost, base+"/amount-received", map[string]string{"value": "100000"})
	if rec.Code != http.StatusOK {
		t.Fatalf("amount received: %d", rec.Code)
	}

	rec = doJSON(t, handler, token, http.MethodPost, base+"/commit", map[string]bool{"final": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("commit: %d (body: %s)", rec.Code, rec.Body.String())
	}
	resp = sessionResp{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode commit: %v", err)
	}
	if resp.Invoice == nil || resp.Invoice.Number == "" {
		t.Fatalf("expected a committed invoice in the response")
	}
	if resp.Session.State != "new" {
		t.Fatalf("expected a fresh draft after commit, got %s", resp.Session.State)
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/invoices/by-number/"+resp.Invoice.Number, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("fetch committed invoice: %d", rec.Code)
	}
}

func TestCommitEmptyCartRejected(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)
	sessionID := createSession(t, handler, token)

	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/sessions/"+sessionID+"/commit", map[string]bool{"final": true})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d (body: %s)", rec.Code, rec.Body.String())
	}
}

func TestReplicationOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)
	sessionID := createSession(t, handler, token)
	base := "/api/v1/sessions/" + sessionID

	rec := doJSON(t, handler, token, http.MethodGet, "/api/v1/invoices", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list invoices: %d", rec.Code)
	}
	var listResp struct {
		Invoices []domain.Invoice `json:"invoices"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode invoices: %v", err)
	}
	if len(listResp.Invoices) == 0 {
		t.Fatalf("no seeded invoices")
	}
	number := listResp.Invoices[0].Number

	rec = doJSON(t, handler, token, http.MethodPost, base+"/replicate/start", map[string]string{"invoice_number": number})
	if rec.Code != http.StatusOK {
		t.Fatalf("replicate start: %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp sessionResp
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Session.Quotes) == 0 {
		t.Fatalf("expected quotes after replicate start")
	}

	rec = doJSON(t, handler, token, http.MethodPost, base+"/replicate/apply", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("replicate apply: %d (body: %s)", rec.Code, rec.Body.String())
	}
	resp = sessionResp{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Session.Draft.Cart.Items) == 0 {
		t.Fatalf("expected cart lines after apply")
	}

	rec = doJSON(t, handler, token, http.MethodPost, base+"/replicate/start", map[string]string{"invoice_number": "INV-19700101-9"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown invoice number should be 404, got %d", rec.Code)
	}
}

func TestInvoiceNavigateEndpoint(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodGet, "/api/v1/invoices", nil)
	var listResp struct {
		Invoices []domain.Invoice `json:"invoices"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&listResp); err != nil {
		t.Fatalf("decode invoices: %v", err)
	}
	if len(listResp.Invoices) == 0 {
		t.Fatalf("no seeded invoices")
	}
	date := listResp.Invoices[0].Date

	rec = doJSON(t, handler, token, http.MethodGet, fmt.Sprintf("/api/v1/invoices/navigate?date=%s&direction=first", date), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("navigate first: %d (body: %s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/invoices/navigate?date=1970-01-01&direction=first", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("empty date should be 404, got %d", rec.Code)
	}

	rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/invoices/navigate?date=2024-01-01&direction=sideways", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad direction should be 400, got %d", rec.Code)
	}
}

func TestKeyResolveEndpoint(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)
	sessionID := createSession(t, handler, token)

	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/sessions/"+sessionID+"/keys/resolve", map[string]any{
		"key": "F4",
		"context": map[string]bool{
			"CartNonEmpty": true,
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("key resolve: %d (body: %s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Intent  string `json:"intent"`
		Matched bool   `json:"matched"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Matched || resp.Intent != "open_payment" {
		t.Fatalf("expected open_payment, got %+v", resp)
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)

	rec := doJSON(t, handler, token, http.MethodGet, "/api/v1/sessions/sess-missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestProductSearchOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	handler := api.Handler()
	token := loginToken(t, handler)
	sessionID := createSession(t, handler, token)

	rec := doJSON(t, handler, token, http.MethodPost, "/api/v1/sessions/"+sessionID+"/search/trigger", map[string]string{
		"query": "rice",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("trigger search: %d (body: %s)", rec.Code, rec.Body.String())
	}

	type searchResp struct {
		Query    string           `json:"query"`
		Products []domain.Product `json:"products"`
	}
	var result searchResp
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = doJSON(t, handler, token, http.MethodGet, "/api/v1/sessions/"+sessionID+"/search", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("read search results: %d", rec.Code)
		}
		result = searchResp{}
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if result.Query == "rice" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("search never delivered, last query %q", result.Query)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(result.Products) == 0 {
		t.Fatalf("expected products matching rice")
	}

	rec = doJSON(t, handler, token, http.MethodPost, "/api/v1/sessions/"+sessionID+"/search/cancel", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel search: %d", rec.Code)
	}
}
