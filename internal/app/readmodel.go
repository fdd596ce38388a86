/**
 * @description
 * The invoice read-model builder. Invoices are reconstructed from the ledger
 * in three stages: a paged creation-event query, a concurrent object
 * fetch-and-decode with per-item failure isolation, and a pure in-memory
 * filter/sort/paginate pass. The builder never caches: every call re-queries
 * the ledger, trading efficiency for always-fresh-enough data under the UI's
 * polling interval.
 *
 * Failure semantics: an event-query failure fails the whole operation; a
 * failure to fetch or decode one object only omits that invoice from the
 * result, preferring partial results over total failure.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"

	"github.com/facterra/oracle-service/internal/domain"
	"github.com/facterra/oracle-service/pkg/suiclient"
)

// ErrInvoiceNotFound is returned when the requested invoice object does not
// exist on the ledger (or no longer carries content).
var ErrInvoiceNotFound = errors.New("invoice not found")

// LedgerClient is the read-only surface of the ledger RPC the builder needs.
type LedgerClient interface {
	QueryEvents(ctx context.Context, eventType string, limit int, descending bool) (*suiclient.EventPage, error)
	GetObject(ctx context.Context, objectID string) (*suiclient.ObjectResponse, error)
	Ping(ctx context.Context) error
}

func (s *Service) createdEventType() string {
	return s.packageID + "::invoice_financing::InvoiceCreated"
}

// ListInvoices rebuilds the invoice view from the latest page of creation
// events, then filters, sorts, and paginates in memory.
func (s *Service) ListInvoices(ctx context.Context, filters domain.InvoiceFilters) (*domain.InvoiceListResponse, error) {
	invoices, err := s.fetchInvoicePage(ctx)
	if err != nil {
		return nil, err
	}

	filtered := applyInvoiceFilters(invoices, filters)
	sortInvoices(filtered, filters.SortBy, filters.Order)

	limit := filters.Limit
	if limit <= 0 || limit > s.eventPageLimit {
		limit = s.eventPageLimit
	}
	offset := filters.Offset
	if offset < 0 {
		offset = 0
	}

	return &domain.InvoiceListResponse{
		Invoices: paginateInvoices(filtered, offset, limit),
		Total:    len(filtered),
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// GetInvoice fetches and decodes a single invoice object by its ledger ID.
func (s *Service) GetInvoice(ctx context.Context, invoiceID string) (*domain.Invoice, error) {
	obj, err := s.ledger.GetObject(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("fetch invoice object: %w", err)
	}
	if obj.Data == nil || obj.Data.Content == nil {
		return nil, ErrInvoiceNotFound
	}

	invoice, err := decodeInvoice(obj.Data)
	if err != nil {
		return nil, fmt.Errorf("decode invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

// ListInvoicesForFinancier returns the invoices on the current event page that
// the given address has financed, newest first.
func (s *Service) ListInvoicesForFinancier(ctx context.Context, financier string) ([]domain.Invoice, error) {
	invoices, err := s.fetchInvoicePage(ctx)
	if err != nil {
		return nil, err
	}

	financed := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if inv.FinancedBy != nil && *inv.FinancedBy == financier {
			financed = append(financed, inv)
		}
	}
	sortInvoices(financed, domain.SortByCreatedAt, domain.OrderDesc)
	return financed, nil
}

// fetchInvoicePage runs the first two pipeline stages: event query, then
// concurrent fetch-and-decode.
func (s *Service) fetchInvoicePage(ctx context.Context) ([]domain.Invoice, error) {
	page, err := s.ledger.QueryEvents(ctx, s.createdEventType(), s.eventPageLimit, true)
	if err != nil {
		return nil, fmt.Errorf("query invoice creation events: %w", err)
	}
	return s.fetchAndDecode(ctx, extractInvoiceIDs(page)), nil
}

func extractInvoiceIDs(page *suiclient.EventPage) []string {
	ids := make([]string, 0, len(page.Data))
	for _, event := range page.Data {
		id, ok := event.ParsedJSON["invoice_id"].(string)
		if ok && id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// fetchAndDecode fetches every object concurrently. Results keep the event
// page order; failed fetches and undecodable objects are logged and omitted.
func (s *Service) fetchAndDecode(ctx context.Context, ids []string) []domain.Invoice {
	results := make([]*domain.Invoice, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(slot int, objectID string) {
			defer wg.Done()

			obj, err := s.ledger.GetObject(ctx, objectID)
			if err != nil {
				log.Printf("level=warn component=readmodel msg=\"invoice fetch failed; omitting\" invoice_id=%s err=%v", objectID, err)
				return
			}
			if obj.Data == nil || obj.Data.Content == nil {
				log.Printf("level=warn component=readmodel msg=\"invoice object has no content; omitting\" invoice_id=%s", objectID)
				return
			}

			invoice, err := decodeInvoice(obj.Data)
			if err != nil {
				log.Printf("level=warn component=readmodel msg=\"invoice decode failed; omitting\" invoice_id=%s err=%v", objectID, err)
				return
			}
			results[slot] = invoice
		}(i, id)
	}
	wg.Wait()

	invoices := make([]domain.Invoice, 0, len(ids))
	for _, inv := range results {
		if inv != nil {
			invoices = append(invoices, *inv)
		}
	}
	return invoices
}

// decodeInvoice translates the on-ledger field encoding into the read-model
// record: byte vectors to text, numeric strings to integers, the status code
// to its named constant.
func decodeInvoice(data *suiclient.ObjectData) (*domain.Invoice, error) {
	fields := data.Content.Fields

	faceValue, err := decodeIntField(fields["amount"])
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	dueDate, err := decodeIntField(fields["due_date"])
	if err != nil {
		return nil, fmt.Errorf("due_date: %w", err)
	}
	createdAt, err := decodeIntField(fields["created_at"])
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	statusCode, err := decodeIntField(fields["status"])
	if err != nil {
		return nil, fmt.Errorf("status: %w", err)
	}
	status, ok := domain.StatusFromCode(statusCode)
	if !ok {
		return nil, fmt.Errorf("unknown status code %d", statusCode)
	}

	invoice := &domain.Invoice{
		ID:            data.ObjectID,
		InvoiceNumber: decodeTextField(fields["invoice_number"]),
		Issuer:        decodeTextField(fields["issuer"]),
		BuyerHash:     decodeTextField(fields["buyer"]),
		FaceValue:     faceValue,
		DueDate:       dueDate,
		Description:   decodeTextField(fields["description"]),
		Status:        status,
		CreatedAt:     createdAt,
	}

	// financed_by / financed_amount are meaningful only once financed.
	if status.Financed() {
		if financier, ok := fields["financed_by"].(string); ok && financier != "" {
			invoice.FinancedBy = &financier
		}
		if amount, err := decodeIntField(fields["financed_amount"]); err == nil {
			invoice.FinancedAmount = amount
		}
	}

	return invoice, nil
}

// decodeTextField handles the encodings a Move vector<u8> shows up as in RPC
// JSON: a plain string or an array of byte values.
func decodeTextField(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case []interface{}:
		buf := make([]byte, 0, len(value))
		for _, item := range value {
			n, ok := item.(float64)
			if !ok {
				return ""
			}
			buf = append(buf, byte(int(n)))
		}
		return string(buf)
	default:
		return ""
	}
}

func decodeIntField(v interface{}) (int64, error) {
	switch value := v.(type) {
	case string:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("not a numeric string: %q", value)
		}
		return n, nil
	case float64:
		return int64(value), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported numeric encoding: %T", v)
	}
}

func applyInvoiceFilters(invoices []domain.Invoice, f domain.InvoiceFilters) []domain.Invoice {
	filtered := make([]domain.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if f.MinAmount > 0 && inv.FaceValue < f.MinAmount {
			continue
		}
		if f.MaxAmount > 0 && inv.FaceValue > f.MaxAmount {
			continue
		}
		if f.Financier != "" && (inv.FinancedBy == nil || *inv.FinancedBy != f.Financier) {
			continue
		}
		filtered = append(filtered, inv)
	}
	return filtered
}

// sortInvoices orders in place. Default is newest first (created_at desc),
// matching the event page order the UI expects.
func sortInvoices(invoices []domain.Invoice, sortBy, order string) {
	if sortBy == "" {
		sortBy = domain.SortByCreatedAt
	}
	desc := order != domain.OrderAsc

	sort.SliceStable(invoices, func(i, j int) bool {
		a := sortKey(invoices[i], sortBy)
		b := sortKey(invoices[j], sortBy)
		if desc {
			return a > b
		}
		return a < b
	})
}

func sortKey(inv domain.Invoice, sortBy string) int64 {
	switch sortBy {
	case domain.SortByFaceValue:
		return inv.FaceValue
	case domain.SortByDueDate:
		return inv.DueDate
	default:
		return inv.CreatedAt
	}
}

func paginateInvoices(invoices []domain.Invoice, offset, limit int) []domain.Invoice {
	if offset >= len(invoices) {
		return []domain.Invoice{}
	}
	end := offset + limit
	if end > len(invoices) {
		end = len(invoices)
	}
	return invoices[offset:end]
}
