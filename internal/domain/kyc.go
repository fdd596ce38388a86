/**
 * @description
 * KYC domain models. The verification flow is mocked: every submitted or
 * queried identity is auto-approved immediately. A production rollout would
 * introduce a pending state and an asynchronous review transition; the status
 * constants already reserve room for that.
 */

package domain

const (
	KYCApproved = "approved"
	KYCPending  = "pending"
	KYCRejected = "rejected"
)

// KYCStatus is the per-address verification record.
type KYCStatus struct {
	Address     string `json:"address"`
	Status      string `json:"status"`
	SubmittedAt int64  `json:"timestamp"` // unix seconds
	VerifiedAt  *int64 `json:"verified_at,omitempty"`
}

// KYCSubmitRequest is the DTO for incoming KYC submissions. Only the address
// is mandatory; the remaining fields are collected for the eventual real
// verification flow.
type KYCSubmitRequest struct {
	Address   string   `json:"address"`
	FullName  string   `json:"full_name,omitempty"`
	Email     string   `json:"email,omitempty"`
	Documents []string `json:"documents,omitempty"` // content identifiers
}
