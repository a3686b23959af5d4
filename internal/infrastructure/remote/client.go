package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/kassahq/terminal-api/internal/config"
	"github.com/kassahq/terminal-api/internal/domain/entity"
)

// Gateway is the terminal's view of the back office: receipt ingestion, debt
// registration, and a reachability probe. The wire schema beyond these
// payloads belongs to the back office.
type Gateway interface {
	SubmitReceipt(ctx context.Context, sale *entity.PendingSale) error
	RegisterDebt(ctx context.Context, debt *DebtRequest) error
	FetchProducts(ctx context.Context) ([]entity.Product, error)
	Ping(ctx context.Context) error
}

// DebtRequest registers an outstanding amount against a customer after a
// partially paid sale has been delivered.
type DebtRequest struct {
	CustomerID  uuid.UUID `json:"customer_id"`
	Amount      int64     `json:"amount"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"due_date"`
	Type        string    `json:"type"`
}

type receiptItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
}

type receiptRequest struct {
	LocalID     uuid.UUID     `json:"local_id"`
	RegisterID  string        `json:"register_id"`
	Items       []receiptItem `json:"items"`
	Total       int64         `json:"total"`
	Paid        int64         `json:"paid"`
	PaymentType string        `json:"payment_type"`
	IsReturn    bool          `json:"is_return"`
	CustomerID  *uuid.UUID    `json:"customer_id,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Client is the HTTP implementation of Gateway.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	probe      *http.Client
}

// NewClient creates a back-office HTTP client
func NewClient(cfg *config.BackofficeConfig) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		probe:      &http.Client{Timeout: cfg.ProbeTimeout},
	}
}

// SubmitReceipt delivers a finalized sale. The sale's local ID travels as the
// Idempotency-Key header, so resubmitting after an ambiguous failure cannot
// create a duplicate receipt server-side.
func (c *Client) SubmitReceipt(ctx context.Context, sale *entity.PendingSale) error {
	items := make([]receiptItem, len(sale.Items))
	for i := range sale.Items {
		items[i] = receiptItem{
			ProductID: sale.Items[i].ProductID,
			Name:      sale.Items[i].Name,
			Code:      sale.Items[i].Code,
			Price:     sale.Items[i].UnitPrice,
			Quantity:  sale.Items[i].Quantity,
		}
	}

	payload := receiptRequest{
		LocalID:     sale.LocalID,
		RegisterID:  sale.RegisterID,
		Items:       items,
		Total:       sale.Total,
		Paid:        sale.Paid,
		PaymentType: sale.PaymentType,
		IsReturn:    sale.IsReturn,
		CustomerID:  sale.CustomerID,
		CreatedAt:   sale.CreatedAt,
	}

	return c.post(ctx, "/api/v1/receipts", payload, map[string]string{
		"Idempotency-Key": sale.LocalID.String(),
	})
}

// RegisterDebt records an outstanding amount against a customer.
func (c *Client) RegisterDebt(ctx context.Context, debt *DebtRequest) error {
	return c.post(ctx, "/api/v1/debts", debt, nil)
}

// FetchProducts pulls the current catalog snapshot for the local mirror.
func (c *Client) FetchProducts(ctx context.Context) ([]entity.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/products", nil)
	if err != nil {
		return nil, err
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("back office returned %d: %s", resp.StatusCode, string(msg))
	}

	var products []entity.Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, err
	}
	return products, nil
}

// Ping probes the back office with a short timeout.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.probe.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("back office health returned %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}, headers map[string]string) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("back office returned %d: %s", resp.StatusCode, string(msg))
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}
