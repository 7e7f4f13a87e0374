package yiiep

import (
	"context"

	"github.com/shopspring/decimal"
)

// PresetBill registers a bill on the platform. The returned Bill carries the
// platform-issued hash used by every other bill operation.
func (c *Client) PresetBill(ctx context.Context, billID string, amount decimal.Decimal, currency string) (*Bill, error) {
	out := &Bill{}
	err := c.call(ctx, OpPreset, func() (map[string]any, error) {
		id, err := checkID("bill id", billID)
		if err != nil {
			return nil, err
		}
		value, err := checkAmount(amount)
		if err != nil {
			return nil, err
		}
		crcy, err := NormalizeCurrency(currency)
		if err != nil {
			return nil, err
		}
		return map[string]any{"bill": id, "value": value, "crcy": crcy}, nil
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UnsetBill cancels a preset bill.
func (c *Client) UnsetBill(ctx context.Context, billHash string) (*Bill, error) {
	return c.billByHash(ctx, OpUnset, billHash)
}

// PayBill marks a bill paid with a payment confirmation code. The payload depends on
// the client's protocol: v1 sends hash and code, v2 also sends the payer account.
func (c *Client) PayBill(ctx context.Context, req PayRequest) (*Bill, error) {
	out := &Bill{}
	err := c.call(ctx, OpPay, func() (map[string]any, error) {
		return c.protocol.PayPayload(req)
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CheckBill reads the bill state.
func (c *Client) CheckBill(ctx context.Context, billHash string) (*Bill, error) {
	return c.billByHash(ctx, OpBState, billHash)
}

// RefundBill refunds a paid bill.
func (c *Client) RefundBill(ctx context.Context, billHash string) (*Bill, error) {
	return c.billByHash(ctx, OpRefund, billHash)
}

func (c *Client) billByHash(ctx context.Context, op Operation, billHash string) (*Bill, error) {
	out := &Bill{}
	err := c.call(ctx, op, func() (map[string]any, error) {
		hash, err := checkID("bill hash", billHash)
		if err != nil {
			return nil, err
		}
		return map[string]any{"hash": hash}, nil
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}
