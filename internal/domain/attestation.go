/**
 * @description
 * Oracle attestation DTOs. An attestation is a signed assertion that a
 * ledger-observable fact (invoice issuance, off-chain payment) occurred.
 * Numeric request fields are float64 on purpose: JSON has no integer type, and
 * the validators must be able to reject fractional values with a field-level
 * error instead of failing the whole body decode.
 */

package domain

// SignIssuanceRequest carries the fields of an invoice issuance to attest to.
type SignIssuanceRequest struct {
	Issuer      string   `json:"issuer"`
	BuyerHash   string   `json:"buyer_hash"`
	Amount      float64  `json:"amount"`
	DueDate     float64  `json:"due_date"` // unix seconds
	DocHash     string   `json:"doc_hash"` // content identifier
	DiscountBps *float64 `json:"discount_bps"`
}

// SignIssuanceResponse is the attestation returned for an issuance request.
type SignIssuanceResponse struct {
	Signature    string `json:"signature"` // 0x + 128 hex chars
	Nonce        string `json:"nonce"`     // 64 hex chars
	Timestamp    int64  `json:"timestamp"` // unix seconds
	OraclePubkey string `json:"oracle_pubkey"`
}

// SignPaymentRequest carries the fields of an observed payment to attest to.
type SignPaymentRequest struct {
	InvoiceID    string  `json:"invoice_id"`
	Amount       float64 `json:"amount"`
	PaymentProof string  `json:"payment_proof,omitempty"`
}

// SignPaymentResponse is the attestation returned for a payment confirmation.
type SignPaymentResponse struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	Nonce     string `json:"nonce"`
}
