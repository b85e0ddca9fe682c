package shopify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kippu-app/kippu-backend/internal/orders"
)

// OrderPayload is the subset of the Shopify order webhook body the pipeline
// consumes. Monetary fields arrive as strings and line items are retained
// raw for the fan-out stage.
type OrderPayload struct {
	ID                int64           `json:"id"`
	OrderNumber       int             `json:"order_number"`
	CheckoutToken     string          `json:"checkout_token"`
	FinancialStatus   string          `json:"financial_status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	Currency          string          `json:"currency"`
	SubtotalPrice     string          `json:"subtotal_price"`
	TotalPrice        string          `json:"total_price"`
	TotalTax          string          `json:"total_tax"`
	TotalDiscounts    string          `json:"total_discounts"`
	LineItems         json.RawMessage `json:"line_items"`
	ProcessedAt       *time.Time      `json:"processed_at"`
	CancelledAt       *time.Time      `json:"cancelled_at"`
	Customer          *struct {
		ID int64 `json:"id"`
	} `json:"customer"`
}

// CustomerPayload is the subset of the Shopify customer webhook body used
// for profile sync.
type CustomerPayload struct {
	ID        int64   `json:"id"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
}

// DecodeOrderPayload parses and minimally validates an order webhook body.
func DecodeOrderPayload(raw json.RawMessage) (*OrderPayload, error) {
	var payload OrderPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode order payload: %w", err)
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("order payload missing id")
	}
	return &payload, nil
}

// DecodeCustomerPayload parses and minimally validates a customer webhook body.
func DecodeCustomerPayload(raw json.RawMessage) (*CustomerPayload, error) {
	var payload CustomerPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode customer payload: %w", err)
	}
	if payload.ID == 0 {
		return nil, fmt.Errorf("customer payload missing id")
	}
	return &payload, nil
}

// ToOrderInput maps the webhook shape onto the reconciliation engine's input.
func (p *OrderPayload) ToOrderInput() (orders.OrderInput, error) {
	input := orders.OrderInput{
		ShopifyOrderID:    p.ID,
		OrderNumber:       p.OrderNumber,
		CheckoutID:        p.CheckoutToken,
		FinancialStatus:   p.FinancialStatus,
		FulfillmentStatus: p.FulfillmentStatus,
		Currency:          p.Currency,
		LineItemsRaw:      p.LineItems,
		ProcessedAt:       p.ProcessedAt,
		CancelledAt:       p.CancelledAt,
	}
	if p.Customer != nil && p.Customer.ID != 0 {
		input.ShopifyCustomerID = strconv.FormatInt(p.Customer.ID, 10)
	}

	var err error
	if input.SubtotalPrice, err = parseMoney(p.SubtotalPrice); err != nil {
		return input, fmt.Errorf("subtotal_price: %w", err)
	}
	if input.TotalPrice, err = parseMoney(p.TotalPrice); err != nil {
		return input, fmt.Errorf("total_price: %w", err)
	}
	if input.TotalTax, err = parseMoney(p.TotalTax); err != nil {
		return input, fmt.Errorf("total_tax: %w", err)
	}
	if input.TotalDiscounts, err = parseMoney(p.TotalDiscounts); err != nil {
		return input, fmt.Errorf("total_discounts: %w", err)
	}
	return input, nil
}

func parseMoney(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}
