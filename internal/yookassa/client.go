package yookassa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const apiBase = "https://api.yookassa.ru/v3"

// Статусы платежа на стороне ЮKassa
const (
	StatusPending   = "pending"
	StatusSucceeded = "succeeded"
	StatusCanceled  = "canceled"
)

// Client минимальный клиент API ЮKassa: создание платежа,
// чтение статуса и возврат. Авторизация — Basic shopID:secret.
type Client struct {
	shopID    string
	secretKey string
	returnURL string
	http      *http.Client
}

func NewClient(shopID, secretKey, returnURL string) *Client {
	return &Client{
		shopID:    shopID,
		secretKey: secretKey,
		returnURL: returnURL,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

// Payment платёж в терминах API ЮKassa
type Payment struct {
	ID           string            `json:"id"`
	Status       string            `json:"status"`
	Paid         bool              `json:"paid"`
	Amount       Amount            `json:"amount"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Succeeded платёж прошёл
func (p *Payment) Succeeded() bool {
	return p.Status == StatusSucceeded
}

// ConfirmationURL ссылка, по которой пользователь оплачивает
func (p *Payment) ConfirmationURL() string {
	if p.Confirmation == nil {
		return ""
	}
	return p.Confirmation.ConfirmationURL
}

type createPaymentRequest struct {
	Amount       Amount            `json:"amount"`
	Capture      bool              `json:"capture"`
	Confirmation Confirmation      `json:"confirmation"`
	Description  string            `json:"description,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// CreatePayment создаёт платёж с редиректом на страницу оплаты
func (c *Client) CreatePayment(ctx context.Context, amount decimal.Decimal, description string, metadata map[string]string) (*Payment, error) {
	req := createPaymentRequest{
		Amount:       rub(amount),
		Capture:      true,
		Confirmation: Confirmation{Type: "redirect", ReturnURL: c.returnURL},
		Description:  description,
		Metadata:     metadata,
	}

	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payments", req, &payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return &payment, nil
}

// GetPayment читает платёж по id. Статус из API — единственный
// источник правды, телу вебхука не доверяем.
func (c *Client) GetPayment(ctx context.Context, id string) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/payments/"+id, nil, &payment); err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &payment, nil
}

type refundRequest struct {
	PaymentID string `json:"payment_id"`
	Amount    Amount `json:"amount"`
}

type refundResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Refund возвращает платёж целиком
func (c *Client) Refund(ctx context.Context, paymentID string, amount decimal.Decimal) error {
	req := refundRequest{PaymentID: paymentID, Amount: rub(amount)}

	var resp refundResponse
	if err := c.do(ctx, http.MethodPost, "/refunds", req, &resp); err != nil {
		return fmt.Errorf("refund payment: %w", err)
	}
	if resp.Status != StatusSucceeded {
		return fmt.Errorf("refund payment: unexpected status %q", resp.Status)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiBase+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.SetBasicAuth(c.shopID, c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	if method == http.MethodPost {
		// Ключ идемпотентности обязателен для всех создающих запросов
		req.Header.Set("Idempotence-Key", uuid.NewString())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("yookassa %s %s: status %d: %s", method, path, resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func rub(d decimal.Decimal) Amount {
	return Amount{Value: d.StringFixed(2), Currency: "RUB"}
}
