/**
 * @description
 * This file contains the HTTP handlers for the oracle-service's API endpoints.
 * Handlers parse incoming requests, run the request validators, call the
 * application service, and write the response. Validation aggregates every
 * field error into one response instead of stopping at the first failure, so
 * a client can fix a whole form in one round trip.
 *
 * Error bodies follow one shape everywhere:
 *   {"error": <code>, "message": <text>, "status": <http status>, "details": {field: reason}}
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - github.com/go-chi/chi/v5: URL parameter extraction.
 * - internal/app, internal/domain: Service logic, validators, and models.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/facterra/oracle-service/internal/app"
	"github.com/facterra/oracle-service/internal/domain"
)

// Handlers holds the application service that handlers will use.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

type errorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("level=error component=api msg=\"failed to encode response\" err=%v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string, details map[string]string) {
	writeJSON(w, status, errorResponse{
		Error:   code,
		Message: message,
		Status:  status,
		Details: details,
	})
}

func writeValidationError(w http.ResponseWriter, details map[string]string) {
	writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", details)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Request body must be valid JSON", nil)
		return false
	}
	return true
}

// HealthHandler reports the service and its dependencies.
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	report := h.service.Health(r.Context())

	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// SignIssuanceHandler validates an issuance attestation request and returns
// the signed attestation.
func (h *Handlers) SignIssuanceHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.SignIssuanceRequest
	if !decodeBody(w, r, &req) {
		return
	}

	details := make(map[string]string)
	if !app.IsValidLedgerAddress(req.Issuer) {
		details["issuer"] = "must be a 0x-prefixed 64-character hex address"
	}
	if !app.IsValidHexHash(req.BuyerHash) {
		details["buyer_hash"] = "must be a 64-character hex string"
	}
	if !app.IsPositiveInteger(req.Amount) {
		details["amount"] = "must be a positive integer"
	}
	if !app.IsFutureTimestamp(req.DueDate, h.service.Now().Unix()) {
		details["due_date"] = "must be a unix timestamp in the future, at most five years out"
	}
	if !app.IsValidContentID(req.DocHash) {
		details["doc_hash"] = "must be a valid content identifier"
	}
	if req.DiscountBps == nil {
		details["discount_bps"] = "is required"
	} else if !app.IsValidDiscountBps(*req.DiscountBps) {
		details["discount_bps"] = "must be an integer between 0 and 10000"
	}
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	attestation, err := h.service.SignIssuance(r.Context(), req)
	if err != nil {
		log.Printf("level=error component=api endpoint=sign_issuance msg=\"signing failed\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign issuance attestation", nil)
		return
	}
	writeJSON(w, http.StatusOK, attestation)
}

// SignPaymentHandler validates a payment attestation request and returns the
// signed attestation.
func (h *Handlers) SignPaymentHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.SignPaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	details := make(map[string]string)
	if req.InvoiceID == "" || !strings.HasPrefix(req.InvoiceID, "0x") {
		details["invoice_id"] = "must be a 0x-prefixed object identifier"
	}
	if !app.IsPositiveInteger(req.Amount) {
		details["amount"] = "must be a positive integer"
	}
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	attestation, err := h.service.SignPayment(r.Context(), req)
	if err != nil {
		log.Printf("level=error component=api endpoint=sign_payment msg=\"signing failed\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to sign payment attestation", nil)
		return
	}
	writeJSON(w, http.StatusOK, attestation)
}

// SubmitKYCHandler records an identity submission.
func (h *Handlers) SubmitKYCHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.KYCSubmitRequest
	if !decodeBody(w, r, &req) {
		return
	}

	details := make(map[string]string)
	if !app.IsValidLedgerAddress(req.Address) {
		details["address"] = "must be a 0x-prefixed 64-character hex address"
	}
	if req.Email != "" && !app.IsValidEmail(req.Email) {
		details["email"] = "must be a valid email address"
	}
	for _, doc := range req.Documents {
		if !app.IsValidContentID(doc) {
			details["documents"] = "every entry must be a valid content identifier"
			break
		}
	}
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	record, err := h.service.SubmitKYC(r.Context(), req)
	if err != nil {
		log.Printf("level=error component=api endpoint=kyc_submit msg=\"submission failed\" address=%s err=%v", req.Address, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to record KYC submission", nil)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// KYCStatusHandler returns the verification record for an address.
func (h *Handlers) KYCStatusHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !app.IsValidLedgerAddress(address) {
		writeValidationError(w, map[string]string{"address": "must be a 0x-prefixed 64-character hex address"})
		return
	}

	record, err := h.service.KYCStatus(r.Context(), address)
	if err != nil {
		log.Printf("level=error component=api endpoint=kyc_status msg=\"lookup failed\" address=%s err=%v", address, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to look up KYC status", nil)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// ListInvoicesHandler returns the filtered, sorted, paginated invoice list.
func (h *Handlers) ListInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	filters, details := parseInvoiceFilters(r)
	if len(details) > 0 {
		writeValidationError(w, details)
		return
	}

	resp, err := h.service.ListInvoices(r.Context(), filters)
	if err != nil {
		log.Printf("level=error component=api endpoint=list_invoices msg=\"read model rebuild failed\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch invoices from the ledger", nil)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetInvoiceHandler returns one invoice by its ledger object ID.
func (h *Handlers) GetInvoiceHandler(w http.ResponseWriter, r *http.Request) {
	invoiceID := chi.URLParam(r, "id")
	if invoiceID == "" || !strings.HasPrefix(invoiceID, "0x") {
		writeValidationError(w, map[string]string{"id": "must be a 0x-prefixed object identifier"})
		return
	}

	invoice, err := h.service.GetInvoice(r.Context(), invoiceID)
	if errors.Is(err, app.ErrInvoiceNotFound) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Invoice not found", nil)
		return
	}
	if err != nil {
		log.Printf("level=error component=api endpoint=get_invoice msg=\"fetch failed\" invoice_id=%s err=%v", invoiceID, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch invoice from the ledger", nil)
		return
	}
	writeJSON(w, http.StatusOK, invoice)
}

// FinancierInvoicesHandler returns the invoices financed by one address.
func (h *Handlers) FinancierInvoicesHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !app.IsValidLedgerAddress(address) {
		writeValidationError(w, map[string]string{"address": "must be a 0x-prefixed 64-character hex address"})
		return
	}

	invoices, err := h.service.ListInvoicesForFinancier(r.Context(), address)
	if err != nil {
		log.Printf("level=error component=api endpoint=financier_invoices msg=\"read model rebuild failed\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch invoices from the ledger", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    len(invoices),
	})
}

// AnalyticsSummaryHandler returns marketplace-wide aggregates.
func (h *Handlers) AnalyticsSummaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.AnalyticsSummary(r.Context())
	if err != nil {
		log.Printf("level=error component=api endpoint=analytics_summary msg=\"aggregation failed\" err=%v", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute analytics summary", nil)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// PortfolioHandler returns one financier's portfolio metrics.
func (h *Handlers) PortfolioHandler(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !app.IsValidLedgerAddress(address) {
		writeValidationError(w, map[string]string{"address": "must be a 0x-prefixed 64-character hex address"})
		return
	}

	metrics, err := h.service.PortfolioMetrics(r.Context(), address)
	if err != nil {
		log.Printf("level=error component=api endpoint=portfolio msg=\"aggregation failed\" address=%s err=%v", address, err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute portfolio metrics", nil)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func parseInvoiceFilters(r *http.Request) (domain.InvoiceFilters, map[string]string) {
	query := r.URL.Query()
	details := make(map[string]string)
	var filters domain.InvoiceFilters

	if status := query.Get("status"); status != "" {
		upper := domain.InvoiceStatus(strings.ToUpper(status))
		switch upper {
		case domain.StatusIssued, domain.StatusFinanced, domain.StatusPaid, domain.StatusDisputed, domain.StatusCanceled:
			filters.Status = upper
		default:
			details["status"] = "must be one of ISSUED, FINANCED, PAID, DISPUTED, CANCELED"
		}
	}

	filters.Financier = query.Get("financier")
	if filters.Financier != "" && !app.IsValidLedgerAddress(filters.Financier) {
		details["financier"] = "must be a 0x-prefixed 64-character hex address"
	}

	filters.MinAmount = parseQueryInt(query.Get("min_amount"), details, "min_amount")
	filters.MaxAmount = parseQueryInt(query.Get("max_amount"), details, "max_amount")

	if sortBy := query.Get("sort_by"); sortBy != "" {
		switch sortBy {
		case domain.SortByFaceValue, domain.SortByDueDate, domain.SortByCreatedAt:
			filters.SortBy = sortBy
		default:
			details["sort_by"] = "must be one of face_value, due_date, created_at"
		}
	}
	if order := query.Get("order"); order != "" {
		switch order {
		case domain.OrderAsc, domain.OrderDesc:
			filters.Order = order
		default:
			details["order"] = "must be asc or desc"
		}
	}

	filters.Limit = int(parseQueryInt(query.Get("limit"), details, "limit"))
	filters.Offset = int(parseQueryInt(query.Get("offset"), details, "offset"))

	return filters, details
}

func parseQueryInt(raw string, details map[string]string, field string) int64 {
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		details[field] = "must be a non-negative integer"
		return 0
	}
	return n
}
