/**
 * @description
 * The application service wires the oracle signer, the KYC store, the ledger
 * read-model, and the audit-event producer behind one struct the HTTP layer
 * calls into. Audit publishing is best-effort: a broker failure is logged and
 * never fails the request that triggered it.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/facterra/oracle-service/internal/domain"
	"github.com/facterra/oracle-service/internal/store"
	"github.com/facterra/oracle-service/pkg/rabbitmq"
)

// Service is the application core behind the HTTP handlers.
type Service struct {
	ledger         LedgerClient
	signer         Signer
	kyc            store.KYCStore
	producer       rabbitmq.Publisher
	packageID      string
	eventPageLimit int
	now            func() time.Time
}

func NewService(ledger LedgerClient, signer Signer, kyc store.KYCStore, producer rabbitmq.Publisher, packageID string, eventPageLimit int) *Service {
	return &Service{
		ledger:         ledger,
		signer:         signer,
		kyc:            kyc,
		producer:       producer,
		packageID:      packageID,
		eventPageLimit: eventPageLimit,
		now:            time.Now,
	}
}

// Now exposes the service clock so the HTTP layer validates timestamps
// against the same source the tests can fake.
func (s *Service) Now() time.Time {
	return s.now()
}

// SignIssuance produces an issuance attestation for an already-validated
// request and publishes an audit event.
func (s *Service) SignIssuance(ctx context.Context, req domain.SignIssuanceRequest) (*domain.SignIssuanceResponse, error) {
	attestation, err := s.signer.SignIssuance(ctx, req)
	if err != nil {
		return nil, err
	}

	purchasePrice := PurchasePrice(int64(req.Amount), int64(*req.DiscountBps))
	log.Printf("level=info component=service msg=\"issuance attestation signed\" issuer=%s amount=%d purchase_price=%d nonce=%s",
		req.Issuer, int64(req.Amount), purchasePrice, attestation.Nonce)

	s.publishAttestation(ctx, "issuance", req.Issuer, attestation.Nonce)
	return attestation, nil
}

// SignPayment produces a payment attestation for an already-validated request
// and publishes an audit event.
func (s *Service) SignPayment(ctx context.Context, req domain.SignPaymentRequest) (*domain.SignPaymentResponse, error) {
	attestation, err := s.signer.SignPayment(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Printf("level=info component=service msg=\"payment attestation signed\" invoice_id=%s amount=%d nonce=%s",
		req.InvoiceID, int64(req.Amount), attestation.Nonce)

	s.publishAttestation(ctx, "payment", req.InvoiceID, attestation.Nonce)
	return attestation, nil
}

func (s *Service) publishAttestation(ctx context.Context, kind, subject, nonce string) {
	event := rabbitmq.AttestationIssuedEvent{
		ID:        uuid.New(),
		Kind:      kind,
		Subject:   subject,
		Nonce:     nonce,
		Timestamp: s.now(),
	}
	if err := s.producer.PublishAttestationIssued(ctx, event); err != nil {
		log.Printf("level=warn component=service msg=\"attestation audit event publish failed\" kind=%s err=%v", kind, err)
	}
}

// SubmitKYC records a verification submission. Verification itself is mocked:
// every submission is approved on the spot.
func (s *Service) SubmitKYC(ctx context.Context, req domain.KYCSubmitRequest) (*domain.KYCStatus, error) {
	return s.approveKYC(ctx, req.Address)
}

// KYCStatus returns the verification record for an address, creating an
// approved one on first sight so reads and submissions behave alike.
func (s *Service) KYCStatus(ctx context.Context, address string) (*domain.KYCStatus, error) {
	record, err := s.kyc.Get(ctx, address)
	if err == nil {
		return record, nil
	}
	if err != store.ErrKYCNotFound {
		return nil, err
	}
	return s.approveKYC(ctx, address)
}

func (s *Service) approveKYC(ctx context.Context, address string) (*domain.KYCStatus, error) {
	nowUnix := s.now().Unix()
	verifiedAt := nowUnix
	record := domain.KYCStatus{
		Address:     address,
		Status:      domain.KYCApproved,
		SubmittedAt: nowUnix,
		VerifiedAt:  &verifiedAt,
	}
	if err := s.kyc.Set(ctx, record); err != nil {
		return nil, err
	}

	log.Printf("level=info component=service msg=\"kyc record approved\" address=%s", address)

	event := rabbitmq.KYCSubmittedEvent{
		ID:        uuid.New(),
		Address:   address,
		Status:    record.Status,
		Timestamp: s.now(),
	}
	if err := s.producer.PublishKYCSubmitted(ctx, event); err != nil {
		log.Printf("level=warn component=service msg=\"kyc audit event publish failed\" address=%s err=%v", address, err)
	}
	return &record, nil
}

// HealthReport describes the service and its dependencies.
type HealthReport struct {
	Status    string            `json:"status"`
	Timestamp int64             `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Health pings every dependency. The report is "healthy" only when all of
// them answer.
func (s *Service) Health(ctx context.Context) *HealthReport {
	services := map[string]string{
		"database":   "up",
		"blockchain": "up",
		"ipfs":       "up", // document storage is client-side; nothing to ping
	}

	if err := s.kyc.Ping(ctx); err != nil {
		log.Printf("level=warn component=service msg=\"database health check failed\" err=%v", err)
		services["database"] = "down"
	}
	if err := s.ledger.Ping(ctx); err != nil {
		log.Printf("level=warn component=service msg=\"ledger health check failed\" err=%v", err)
		services["blockchain"] = "down"
	}

	status := "healthy"
	for _, state := range services {
		if state != "up" {
			status = "unhealthy"
			break
		}
	}

	return &HealthReport{
		Status:    status,
		Timestamp: s.now().Unix(),
		Services:  services,
	}
}

// AnalyticsSummary aggregates marketplace figures over the current read-model
// page.
func (s *Service) AnalyticsSummary(ctx context.Context) (*domain.AnalyticsSummary, error) {
	invoices, err := s.fetchInvoicePage(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.AnalyticsSummary{TotalInvoices: len(invoices)}
	suppliers := make(map[string]struct{})
	financiers := make(map[string]struct{})

	for _, inv := range invoices {
		summary.TotalVolume += inv.FaceValue
		suppliers[inv.Issuer] = struct{}{}

		if inv.Status.Financed() {
			summary.TotalFinanced++
			if inv.FinancedBy != nil {
				financiers[*inv.FinancedBy] = struct{}{}
			}
		}
		if inv.Status == domain.StatusPaid {
			summary.TotalSettled++
		}
	}

	summary.ActiveSuppliers = len(suppliers)
	summary.ActiveFinanciers = len(financiers)
	return summary, nil
}

// PortfolioMetrics summarizes one financier's position. APY per invoice is
// computed over the created-to-due horizon, the only dates the on-chain
// object carries.
func (s *Service) PortfolioMetrics(ctx context.Context, financier string) (*domain.PortfolioMetrics, error) {
	invoices, err := s.ListInvoicesForFinancier(ctx, financier)
	if err != nil {
		return nil, err
	}

	metrics := &domain.PortfolioMetrics{}
	var apySum float64
	var apyCount int

	for _, inv := range invoices {
		metrics.TotalInvested += inv.FinancedAmount

		switch inv.Status {
		case domain.StatusFinanced:
			metrics.ActiveInvestments++
		case domain.StatusPaid:
			metrics.CompletedInvestments++
			metrics.TotalReturns += inv.FaceValue
		}

		days := DaysBetween(inv.CreatedAt, inv.DueDate)
		if apy := APY(inv.FaceValue, inv.FinancedAmount, days); apy > 0 {
			apySum += apy
			apyCount++
		}
	}

	if apyCount > 0 {
		metrics.AverageAPY = apySum / float64(apyCount)
	}
	if settled := metrics.ActiveInvestments + metrics.CompletedInvestments; settled > 0 {
		metrics.SuccessRate = float64(metrics.CompletedInvestments) / float64(settled) * 100
	}
	return metrics, nil
}
