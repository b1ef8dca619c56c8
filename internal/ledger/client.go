// Package ledger is the gateway to the external finance ledger service.
// Every durable read and write goes through its single JSON-over-HTTP
// endpoint; this process keeps no state of its own.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/m3rciful/finbot/core/logger"
)

// Client issues commands to the ledger backend.
// Calls are not retried: the user re-issues input to retry.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

// Options configures a Client.
type Options struct {
	// URL is the single backend endpoint. Required.
	URL string
	// Timeout bounds every call end to end.
	Timeout time.Duration
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// NewClient builds a ledger client.
func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		url:     opts.URL,
		timeout: timeout,
		http:    hc,
	}
}

type envelope struct {
	OK    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// Call posts `{"cmd": cmd, <params>, "user_id": userID}` and returns the raw
// data sub-object. The gateway knows nothing about per-command schemas beyond
// the ok/data/error envelope; typed wrappers decode the payload.
func (c *Client) Call(ctx context.Context, cmd string, params map[string]any, userID int64) (json.RawMessage, error) {
	body := make(map[string]any, len(params)+2)
	for k, v := range params {
		body[k] = v
	}
	body["cmd"] = cmd
	body["user_id"] = userID

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, &TransportError{Cmd: cmd, Reason: "encode request", Err: err}
	}

	reqID := uuid.NewString()
	start := time.Now()
	logger.Debug(ctx, "ledger", "call.start",
		slog.String("cmd", cmd),
		slog.String("req_id", reqID),
		slog.Int64("user_id", userID),
	)

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.url, bytes.NewReader(buf))
	if err != nil {
		return nil, &TransportError{Cmd: cmd, Reason: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logFinish(ctx, cmd, reqID, start, "transport", err)
		return nil, &TransportError{Cmd: cmd, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("status %s", resp.Status)
		c.logFinish(ctx, cmd, reqID, start, "transport", err)
		return nil, &TransportError{Cmd: cmd, Reason: "unexpected status", Err: err}
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.logFinish(ctx, cmd, reqID, start, "transport", err)
		return nil, &TransportError{Cmd: cmd, Reason: "non-JSON response", Err: err}
	}

	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = "ledger error"
		}
		c.logFinish(ctx, cmd, reqID, start, "backend", fmt.Errorf("%s", msg))
		return nil, &BackendError{Cmd: cmd, Message: msg}
	}

	c.logFinish(ctx, cmd, reqID, start, "", nil)
	return env.Data, nil
}

func (c *Client) logFinish(ctx context.Context, cmd, reqID string, start time.Time, kind string, err error) {
	attrs := []slog.Attr{
		slog.String("cmd", cmd),
		slog.String("req_id", reqID),
		slog.Int64("duration_ms", logger.Took(start).Milliseconds()),
	}
	if err == nil {
		attrs = append(attrs, slog.String("status", "ok"))
		logger.Debug(ctx, "ledger", "call.finish", attrs...)
		return
	}
	attrs = append(attrs,
		slog.String("status", "fail"),
		slog.String("kind", kind),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	logger.Warn(ctx, "ledger", "call.finish", attrs...)
}

func (c *Client) decode(ctx context.Context, cmd string, params map[string]any, userID int64, out any) error {
	raw, err := c.Call(ctx, cmd, params, userID)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Cmd: cmd, Reason: "decode payload", Err: err}
	}
	return nil
}

// SummaryMonth fetches the owner's month overview.
func (c *Client) SummaryMonth(ctx context.Context, userID int64) (*Summary, error) {
	var s Summary
	if err := c.decode(ctx, "summary_month", nil, userID, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LastTransactions fetches up to limit most recent operations.
func (c *Client) LastTransactions(ctx context.Context, userID int64, limit int) ([]Transaction, error) {
	var out struct {
		Transactions []Transaction `json:"transactions"`
	}
	params := map[string]any{"limit": limit}
	if err := c.decode(ctx, "get_last_transactions", params, userID, &out); err != nil {
		return nil, err
	}
	return out.Transactions, nil
}

// Categories fetches the selectable categories and payment methods.
func (c *Client) Categories(ctx context.Context, userID int64) (*Catalog, error) {
	var cat Catalog
	if err := c.decode(ctx, "get_categories", nil, userID, &cat); err != nil {
		return nil, err
	}
	return &cat, nil
}

// AllBalances fetches per-method balances.
func (c *Client) AllBalances(ctx context.Context, userID int64) (*Balances, error) {
	var b Balances
	if err := c.decode(ctx, "get_all_balances", nil, userID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Add submits a completed transaction draft.
func (c *Client) Add(ctx context.Context, userID int64, d Draft) error {
	params := map[string]any{
		"type":         d.Kind,
		"category":     d.Category,
		"amount":       d.Amount,
		"payment_type": d.PaymentType,
		"comment":      d.Comment,
	}
	return c.decode(ctx, "add", params, userID, nil)
}

// AnalysisIncome fetches the income breakdown for a period.
func (c *Client) AnalysisIncome(ctx context.Context, userID int64, period string) (*Breakdown, error) {
	var b Breakdown
	params := map[string]any{"period": period}
	if err := c.decode(ctx, "analysis_income", params, userID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// AnalysisExpense fetches the expense breakdown for a period.
func (c *Client) AnalysisExpense(ctx context.Context, userID int64, period string) (*Breakdown, error) {
	var b Breakdown
	params := map[string]any{"period": period}
	if err := c.decode(ctx, "analysis_expense", params, userID, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// CompareMonths fetches the month-by-month comparison for the current year.
func (c *Client) CompareMonths(ctx context.Context, userID int64) (*Comparison, error) {
	var cmp Comparison
	if err := c.decode(ctx, "compare_months", nil, userID, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// AverageCheck fetches the average check report.
func (c *Client) AverageCheck(ctx context.Context, userID int64) (*AverageCheck, error) {
	var ac AverageCheck
	if err := c.decode(ctx, "average_check", nil, userID, &ac); err != nil {
		return nil, err
	}
	return &ac, nil
}

// TopExpenses fetches the ranked expense categories for the current month.
func (c *Client) TopExpenses(ctx context.Context, userID int64) (*TopExpenses, error) {
	var top TopExpenses
	if err := c.decode(ctx, "top_expenses", nil, userID, &top); err != nil {
		return nil, err
	}
	return &top, nil
}

// SetBalance overwrites one payment method's balance.
func (c *Client) SetBalance(ctx context.Context, userID int64, amount float64, paymentKind string) error {
	params := map[string]any{"amount": amount, "payment_type": paymentKind}
	return c.decode(ctx, "set_balance", params, userID, nil)
}

// Debts fetches the aggregate for one debt direction.
func (c *Client) Debts(ctx context.Context, userID int64, debtKind string) (float64, error) {
	var out struct {
		Debts float64 `json:"debts"`
	}
	params := map[string]any{"debt_type": debtKind}
	if err := c.decode(ctx, "get_debts", params, userID, &out); err != nil {
		return 0, err
	}
	return out.Debts, nil
}

// SetDebts overwrites the aggregate for one debt direction.
func (c *Client) SetDebts(ctx context.Context, userID int64, amount float64, debtKind string) error {
	params := map[string]any{"amount": amount, "debt_type": debtKind}
	return c.decode(ctx, "set_debts", params, userID, nil)
}
