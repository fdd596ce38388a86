package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/facterra/oracle-service/internal/app"
	"github.com/facterra/oracle-service/internal/domain"
	"github.com/facterra/oracle-service/internal/store"
	"github.com/facterra/oracle-service/pkg/rabbitmq"
	"github.com/facterra/oracle-service/pkg/suiclient"
)

type stubLedger struct {
	events  []suiclient.Event
	objects map[string]*suiclient.ObjectResponse
}

func (f *stubLedger) QueryEvents(ctx context.Context, eventType string, limit int, descending bool) (*suiclient.EventPage, error) {
	return &suiclient.EventPage{Data: f.events}, nil
}

func (f *stubLedger) GetObject(ctx context.Context, objectID string) (*suiclient.ObjectResponse, error) {
	resp, ok := f.objects[objectID]
	if !ok {
		return &suiclient.ObjectResponse{Error: &suiclient.ObjectNotFound{Code: "notExists", ObjectID: objectID}}, nil
	}
	return resp, nil
}

func (f *stubLedger) Ping(ctx context.Context) error { return nil }

type stubPublisher struct{}

func (stubPublisher) PublishAttestationIssued(ctx context.Context, event rabbitmq.AttestationIssuedEvent) error {
	return nil
}

func (stubPublisher) PublishKYCSubmitted(ctx context.Context, event rabbitmq.KYCSubmittedEvent) error {
	return nil
}

func (stubPublisher) Close() {}

func testRouter(t *testing.T, ledger *stubLedger) http.Handler {
	t.Helper()
	svc := app.NewService(ledger, app.NewMockSigner(), store.NewMemoryKYCStore(), stubPublisher{}, "0xpkg", 50)
	return Routes(NewHandlers(svc), app.NewMemoryRateLimiter(), RouterConfig{
		AllowedOrigins:      []string{"*"},
		RequestTimeout:      time.Minute,
		RateLimitWindow:     time.Minute,
		KYCRatePerWindow:    5,
		OracleRatePerWindow: 10,
	})
}

func testAddress(last byte) string {
	return "0x" + strings.Repeat("0", 63) + string(last)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t, &stubLedger{})

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var report struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	decodeResponse(t, rec, &report)
	if report.Status != "healthy" {
		t.Fatalf("expected healthy, got %q", report.Status)
	}
	if report.Services["blockchain"] != "up" || report.Services["database"] != "up" {
		t.Fatalf("unexpected services map: %v", report.Services)
	}
}

func TestSubmitKYCApproves(t *testing.T) {
	router := testRouter(t, &stubLedger{})

	before := time.Now().Unix()
	rec := doJSON(t, router, http.MethodPost, "/kyc/submit", domain.KYCSubmitRequest{Address: testAddress('1')})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var record domain.KYCStatus
	decodeResponse(t, rec, &record)
	if record.Status != domain.KYCApproved {
		t.Fatalf("expected approved, got %q", record.Status)
	}
	if record.VerifiedAt == nil || *record.VerifiedAt < before {
		t.Fatalf("expected verified_at at submission time, got %v", record.VerifiedAt)
	}
}

func TestSubmitKYCAggregatesFieldErrors(t *testing.T) {
	router := testRouter(t, &stubLedger{})

	rec := doJSON(t, router, http.MethodPost, "/kyc/submit", domain.KYCSubmitRequest{
		Address: "not-an-address",
		Email:   "not-an-email",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body errorResponse
	decodeResponse(t, rec, &body)
	if body.Error != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %q", body.Error)
	}
	if _, ok := body.Details["address"]; !ok {
		t.Fatal("expected address in details")
	}
	if _, ok := body.Details["email"]; !ok {
		t.Fatal("expected email in details, validation must not stop at the first failure")
	}
}

func TestKYCStatusAutoApprovesUnknownAddress(t *testing.T) {
	router := testRouter(t, &stubLedger{})

	rec := doJSON(t, router, http.MethodGet, "/kyc/status/"+testAddress('2'), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var record domain.KYCStatus
	decodeResponse(t, rec, &record)
	if record.Status != domain.KYCApproved {
		t.Fatalf("expected approved, got %q", record.Status)
	}
}

func TestSignIssuanceReturnsAttestation(t *testing.T) {
	router := testRouter(t, &stubLedger{})
	bps := 320.0

	rec := doJSON(t, router, http.MethodPost, "/oracle/sign-issuance", domain.SignIssuanceRequest{
		Issuer:      testAddress('3'),
		BuyerHash:   strings.Repeat("ab", 32),
		Amount:      100000,
		DueDate:     float64(time.Now().Unix() + 3600),
		DocHash:     "QmXoypizjW3WknFiJnKLwHCnL72vedxjQkDDP1mXWo6uco",
		DiscountBps: &bps,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var attestation domain.SignIssuanceResponse
	decodeResponse(t, rec, &attestation)
	if !strings.HasPrefix(attestation.Signature, "0x") || len(attestation.Signature) != 130 {
		t.Fatalf("unexpected signature shape: %q", attestation.Signature)
	}
	if len(attestation.Nonce) != 64 {
		t.Fatalf("unexpected nonce length: %d", len(attestation.Nonce))
	}
	if attestation.OraclePubkey != "0x"+strings.Repeat("a", 64) {
		t.Fatalf("unexpected oracle pubkey: %q", attestation.OraclePubkey)
	}
}

func TestSignIssuanceAggregatesFieldErrors(t *testing.T) {
	router := testRouter(t, &stubLedger{})

	rec := doJSON(t, router, http.MethodPost, "/oracle/sign-issuance", map[string]interface{}{
		"issuer":     "bad",
		"buyer_hash": "bad",
		"amount":     -5,
		"due_date":   1000,
		"doc_hash":   "bad",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var body errorResponse
	decodeResponse(t, rec, &body)
	for _, field := range []string{"issuer", "buyer_hash", "amount", "due_date", "doc_hash", "discount_bps"} {
		if _, ok := body.Details[field]; !ok {
			t.Fatalf("expected %s in details, got %v", field, body.Details)
		}
	}
}

func TestSignPaymentRateLimited(t *testing.T) {
	router := testRouter(t, &stubLedger{})
	payload := domain.SignPaymentRequest{InvoiceID: "0xabc", Amount: 500}

	for i := 0; i < 10; i++ {
		rec := doJSON(t, router, http.MethodPost, "/oracle/sign-payment", payload)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d: %s", i+1, rec.Code, rec.Body.String())
		}
	}

	rec := doJSON(t, router, http.MethodPost, "/oracle/sign-payment", payload)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on the 11th request, got %d", rec.Code)
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Fatalf("expected remaining 0, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}

	var body errorResponse
	decodeResponse(t, rec, &body)
	if body.Error != "RATE_LIMIT_EXCEEDED" {
		t.Fatalf("expected RATE_LIMIT_EXCEEDED, got %q", body.Error)
	}
}

func TestRateLimitScopesAreIndependent(t *testing.T) {
	router := testRouter(t, &stubLedger{})
	payload := domain.SignPaymentRequest{InvoiceID: "0xabc", Amount: 500}

	for i := 0; i < 10; i++ {
		doJSON(t, router, http.MethodPost, "/oracle/sign-payment", payload)
	}

	// Oracle window exhausted; KYC must still be open.
	rec := doJSON(t, router, http.MethodPost, "/kyc/submit", domain.KYCSubmitRequest{Address: testAddress('4')})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected kyc scope to be unaffected, got %d", rec.Code)
	}
}

func TestGetInvoiceNotFound(t *testing.T) {
	router := testRouter(t, &stubLedger{objects: map[string]*suiclient.ObjectResponse{}})

	rec := doJSON(t, router, http.MethodGet, "/invoices/0xmissing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var body errorResponse
	decodeResponse(t, rec, &body)
	if body.Error != "NOT_FOUND" {
		t.Fatalf("expected NOT_FOUND, got %q", body.Error)
	}
}

func TestListInvoicesRejectsBadStatusFilter(t *testing.T) {
	router := testRouter(t, &stubLedger{})

	rec := doJSON(t, router, http.MethodGet, "/invoices?status=WHATEVER", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListInvoicesReturnsPage(t *testing.T) {
	objects := make(map[string]*suiclient.ObjectResponse)
	events := make([]suiclient.Event, 0, 3)
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("0x%d", i)
		events = append(events, suiclient.Event{ParsedJSON: map[string]interface{}{"invoice_id": id}})
		objects[id] = &suiclient.ObjectResponse{
			Data: &suiclient.ObjectData{
				ObjectID: id,
				Content: &suiclient.ObjectContent{
					DataType: "moveObject",
					Fields: map[string]interface{}{
						"invoice_number": fmt.Sprintf("INV-%d", i),
						"issuer":         testAddress('9'),
						"buyer":          strings.Repeat("ab", 32),
						"amount":         fmt.Sprintf("%d", i*1000),
						"due_date":       "9999999999",
						"created_at":     fmt.Sprintf("%d", i),
						"status":         float64(0),
					},
				},
			},
		}
	}
	router := testRouter(t, &stubLedger{events: events, objects: objects})

	rec := doJSON(t, router, http.MethodGet, "/invoices?limit=2", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp domain.InvoiceListResponse
	decodeResponse(t, rec, &resp)
	if resp.Total != 3 {
		t.Fatalf("expected total 3, got %d", resp.Total)
	}
	if len(resp.Invoices) != 2 {
		t.Fatalf("expected page of 2, got %d", len(resp.Invoices))
	}
	if resp.Invoices[0].ID != "0x3" {
		t.Fatalf("expected newest first, got %s", resp.Invoices[0].ID)
	}
}

func TestAnalyticsSummaryEndpoint(t *testing.T) {
	router := testRouter(t, &stubLedger{})

	rec := doJSON(t, router, http.MethodGet, "/analytics/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var summary domain.AnalyticsSummary
	decodeResponse(t, rec, &summary)
	if summary.TotalInvoices != 0 {
		t.Fatalf("expected empty marketplace, got %+v", summary)
	}
}

func TestPortfolioEndpointValidatesAddress(t *testing.T) {
	router := testRouter(t, &stubLedger{})

	rec := doJSON(t, router, http.MethodGet, "/analytics/portfolio/nope", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
