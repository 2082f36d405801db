// Package gateway is the HTTP client for the external ledger API. Uploads
// are routed to the expense or income endpoint by transaction kind; every
// failure comes back as an error value so callers can keep processing the
// rest of a batch.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-importer/internal/models"
)

// DefaultTimeout bounds every call to the ledger so an unresponsive API
// degrades to an ordinary failure instead of a hang.
const DefaultTimeout = 10 * time.Second

// Client talks to the ledger API.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a ledger client. A zero timeout falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// uploadPayload is the wire shape the ledger expects for a new transaction.
type uploadPayload struct {
	ID            string  `json:"Id"`
	User          string  `json:"User"`
	Title         string  `json:"Title"`
	Amount        float64 `json:"Amount"`
	Tag           string  `json:"Tag"`
	Type          string  `json:"Type"`
	Date          string  `json:"Date"`
	PaymentMethod string  `json:"Paymentmethod"`
	Description   string  `json:"Description"`
}

// Upload posts a single transaction to the ledger endpoint for its kind.
// Transport failures, non-2xx statuses and encoding problems all surface as
// errors; the ledger is never retried here.
func (c *Client) Upload(ctx context.Context, owner, credential string, item models.TransactionCandidate) error {
	endpoint := "income/add/"
	ledgerType := "Income"
	if item.Kind == models.KindExpense {
		endpoint = "expenses/add/"
		ledgerType = "Expenses"
	}

	payload := uploadPayload{
		ID:            item.ID,
		User:          owner,
		Title:         item.Title,
		Amount:        item.Amount.InexactFloat64(),
		Tag:           string(item.Category),
		Type:          ledgerType,
		Date:          item.Date,
		PaymentMethod: item.PaymentMethod,
		Description:   item.Note,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode transaction %s: %w", item.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request for %s: %w", item.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ledger rejected %s: status %d", item.ID, resp.StatusCode)
	}
	return nil
}

// LedgerTransaction is one committed transaction read back from the ledger.
type LedgerTransaction struct {
	Kind   models.Kind
	Amount decimal.Decimal
	Date   time.Time
}

// FetchTransactions reads the owner's committed expenses and incomes. A
// failing endpoint is tolerated so a partial ledger outage still yields the
// other series; the error is non-nil only when both endpoints fail.
func (c *Client) FetchTransactions(ctx context.Context, owner, credential string) ([]LedgerTransaction, error) {
	var all []LedgerTransaction
	var lastErr error

	for _, src := range []struct {
		path string
		kind models.Kind
	}{
		{fmt.Sprintf("expenses/%s/", owner), models.KindExpense},
		{fmt.Sprintf("incomes/%s/", owner), models.KindIncome},
	} {
		items, err := c.fetchKind(ctx, src.path, credential, src.kind)
		if err != nil {
			lastErr = err
			continue
		}
		all = append(all, items...)
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}

// ledgerRow tolerates the ledger serializing amounts as numbers or strings.
type ledgerRow struct {
	Amount flexNumber `json:"Amount"`
	Date   string     `json:"Date"`
}

// flexNumber accepts both 100.5 and "100.50" on the wire.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	*n = flexNumber(strings.Trim(string(b), `"`))
	return nil
}

func (c *Client) fetchKind(ctx context.Context, path, credential string, kind models.Kind) ([]LedgerTransaction, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("get %s: status %d", path, resp.StatusCode)
	}

	var rows []ledgerRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	var items []LedgerTransaction
	for _, row := range rows {
		amount, err := decimal.NewFromString(string(row.Amount))
		if err != nil {
			continue
		}
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			continue
		}
		items = append(items, LedgerTransaction{Kind: kind, Amount: amount, Date: date})
	}
	return items, nil
}
