// Package payment creates gateway orders and waits for their capture.
package payment

import (
	"context"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// StatusCaptured is the only payment status treated as paid.
const StatusCaptured = "captured"

var ErrMalformedResponse = errors.New("malformed payment gateway response")

// Order is a gateway order. Amount is in the currency's smallest unit.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Gateway is the narrow payment contract the session flow depends on.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency string) (Order, error)
	PaymentStatuses(ctx context.Context, orderID string) ([]string, error)
}

type razorpayGateway struct {
	client *razorpay.Client
}

// NewRazorpayGateway returns nil when either key is missing, which the
// session flow treats as "payment waived".
func NewRazorpayGateway(keyID, keySecret string) Gateway {
	if keyID == "" || keySecret == "" {
		return nil
	}
	return &razorpayGateway{client: razorpay.NewClient(keyID, keySecret)}
}

// CreateOrder creates an auto-captured order. The SDK has no context
// support, so ctx is only checked before the call.
func (g *razorpayGateway) CreateOrder(ctx context.Context, amount int64, currency string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	resp, err := g.client.Order.Create(map[string]interface{}{
		"amount":          amount,
		"currency":        currency,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return Order{}, fmt.Errorf("create order: %w", err)
	}
	return parseOrder(resp, currency)
}

func (g *razorpayGateway) PaymentStatuses(ctx context.Context, orderID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := g.client.Order.Payments(orderID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list payments for %s: %w", orderID, err)
	}
	return parseStatuses(resp)
}

func parseOrder(resp map[string]interface{}, currency string) (Order, error) {
	id, _ := resp["id"].(string)
	if id == "" {
		return Order{}, fmt.Errorf("%w: order without id", ErrMalformedResponse)
	}
	order := Order{ID: id, Currency: currency}
	switch amt := resp["amount"].(type) {
	case float64:
		order.Amount = int64(amt)
	case int:
		order.Amount = int64(amt)
	case int64:
		order.Amount = amt
	}
	if c, ok := resp["currency"].(string); ok && c != "" {
		order.Currency = c
	}
	return order, nil
}

func parseStatuses(resp map[string]interface{}) ([]string, error) {
	raw, ok := resp["items"]
	if !ok || raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: items is %T", ErrMalformedResponse, raw)
	}
	statuses := make([]string, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]interface{})
		if !ok {
			continue
		}
		if s, ok := m["status"].(string); ok {
			statuses = append(statuses, s)
		}
	}
	return statuses, nil
}
