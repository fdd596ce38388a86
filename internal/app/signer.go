/**
 * @description
 * Attestation signing. The Signer interface is the seam where a real
 * key-management service plugs in; MockSigner is the development stand-in
 * that fabricates syntactically valid signatures from a non-cryptographic
 * random source. It performs no real signing and keeps no record of issued
 * nonces, so it offers no replay protection.
 *
 * A production signer must Ed25519-sign a canonical encoding of the request
 * fields with a securely stored private key and persist nonces for replay
 * checks. Do not ship MockSigner outside test and staging environments.
 */

package app

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/facterra/oracle-service/internal/domain"
)

const (
	signatureHexLen = 128
	nonceHexLen     = 64
)

// Signer produces oracle attestations for validated requests.
type Signer interface {
	SignIssuance(ctx context.Context, req domain.SignIssuanceRequest) (*domain.SignIssuanceResponse, error)
	SignPayment(ctx context.Context, req domain.SignPaymentRequest) (*domain.SignPaymentResponse, error)
	PublicKey() string
}

// MockSigner fabricates attestations with random hex strings.
type MockSigner struct {
	pubkey string
	now    func() time.Time
}

// NewMockSigner returns a signer with the fixed development oracle pubkey.
func NewMockSigner() *MockSigner {
	return &MockSigner{
		pubkey: "0x" + strings.Repeat("a", 64),
		now:    time.Now,
	}
}

func (s *MockSigner) PublicKey() string {
	return s.pubkey
}

func (s *MockSigner) SignIssuance(ctx context.Context, req domain.SignIssuanceRequest) (*domain.SignIssuanceResponse, error) {
	return &domain.SignIssuanceResponse{
		Signature:    "0x" + randomHex(signatureHexLen),
		Nonce:        randomHex(nonceHexLen),
		Timestamp:    s.now().Unix(),
		OraclePubkey: s.pubkey,
	}, nil
}

func (s *MockSigner) SignPayment(ctx context.Context, req domain.SignPaymentRequest) (*domain.SignPaymentResponse, error) {
	return &domain.SignPaymentResponse{
		Signature: "0x" + randomHex(signatureHexLen),
		Timestamp: s.now().Unix(),
		Nonce:     randomHex(nonceHexLen),
	}, nil
}

const hexDigits = "0123456789abcdef"

func randomHex(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(hexDigits[rand.Intn(len(hexDigits))])
	}
	return b.String()
}
