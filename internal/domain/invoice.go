/**
 * @description
 * This file defines the core domain models for the oracle-service's invoice
 * read-model. Invoices live on the ledger as shared objects; this service only
 * reconstructs an application-level view of them by replaying creation events
 * and fetching the referenced objects. Nothing here is authoritative storage.
 *
 * @notes
 * - Amounts are `int64` in the ledger's smallest unit to avoid floating-point
 *   inaccuracies with financial data, mirroring how the object encodes them as
 *   numeric strings.
 * - The on-chain status is a small integer; it is decoded into the string
 *   constants below at the read-model boundary.
 */

package domain

// InvoiceStatus is the lifecycle state of an invoice as decoded from the ledger.
type InvoiceStatus string

const (
	StatusIssued   InvoiceStatus = "ISSUED"
	StatusFinanced InvoiceStatus = "FINANCED"
	StatusPaid     InvoiceStatus = "PAID"
	StatusDisputed InvoiceStatus = "DISPUTED"
	StatusCanceled InvoiceStatus = "CANCELED"
)

// statusCodes maps the on-chain u8 status encoding to application statuses.
var statusCodes = map[int64]InvoiceStatus{
	0: StatusIssued,
	1: StatusFinanced,
	2: StatusPaid,
	3: StatusDisputed,
	4: StatusCanceled,
}

// StatusFromCode decodes the ledger's numeric status encoding.
func StatusFromCode(code int64) (InvoiceStatus, bool) {
	status, ok := statusCodes[code]
	return status, ok
}

// Financed reports whether the status implies a financier is attached.
func (s InvoiceStatus) Financed() bool {
	return s == StatusFinanced || s == StatusPaid
}

// Invoice is the read-model projection of one on-chain invoice object.
// FinancedBy and FinancedAmount are populated only once the invoice has been
// financed; the decoder clears them for earlier lifecycle states.
type Invoice struct {
	ID             string        `json:"invoice_id"`
	InvoiceNumber  string        `json:"invoice_number"`
	Issuer         string        `json:"issuer"`
	BuyerHash      string        `json:"buyer_hash"`
	FaceValue      int64         `json:"face_value"`
	DueDate        int64         `json:"due_date"` // unix seconds
	Description    string        `json:"description,omitempty"`
	Status         InvoiceStatus `json:"status"`
	CreatedAt      int64         `json:"created_at"` // unix seconds
	FinancedBy     *string       `json:"financed_by,omitempty"`
	FinancedAmount int64         `json:"financed_amount,omitempty"`
}

// Sort field names accepted by the invoice list endpoints.
const (
	SortByFaceValue = "face_value"
	SortByDueDate   = "due_date"
	SortByCreatedAt = "created_at"
)

const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// InvoiceFilters narrows and orders the fetched read-model page. All fields
// are optional; zero values mean "no constraint".
type InvoiceFilters struct {
	Status    InvoiceStatus
	Financier string
	MinAmount int64
	MaxAmount int64
	SortBy    string
	Order     string
	Limit     int
	Offset    int
}

// InvoiceListResponse is the payload returned by the invoice list endpoints.
type InvoiceListResponse struct {
	Invoices []Invoice `json:"invoices"`
	Total    int       `json:"total"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// AnalyticsSummary aggregates marketplace-wide figures over the current
// read-model page. Settlement latency figures are not derivable from the
// on-chain object (it carries no financed_at/paid_at timestamps), so the
// summary sticks to counts and volume.
type AnalyticsSummary struct {
	TotalInvoices    int   `json:"total_invoices"`
	TotalFinanced    int   `json:"total_financed"`
	TotalSettled     int   `json:"total_settled"`
	TotalVolume      int64 `json:"total_volume"`
	ActiveSuppliers  int   `json:"active_suppliers"`
	ActiveFinanciers int   `json:"active_financiers"`
}

// PortfolioMetrics summarizes one financier's position across the invoices
// they have financed.
type PortfolioMetrics struct {
	TotalInvested        int64   `json:"total_invested"`
	TotalReturns         int64   `json:"total_returns"`
	ActiveInvestments    int     `json:"active_investments"`
	CompletedInvestments int     `json:"completed_investments"`
	AverageAPY           float64 `json:"average_apy"`
	SuccessRate          float64 `json:"success_rate"`
}
