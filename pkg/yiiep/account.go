package yiiep

import (
	"context"

	"github.com/shopspring/decimal"
)

// AccountState returns the merchant account state.
func (c *Client) AccountState(ctx context.Context) (*AccountState, error) {
	out := &AccountState{}
	err := c.call(ctx, OpAState, func() (map[string]any, error) {
		return map[string]any{}, nil
	}, out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Transfer moves amount to another platform account.
func (c *Client) Transfer(ctx context.Context, amount decimal.Decimal, currency, receiver string) (*TransferRecord, error) {
	out := &TransferRecord{}
	if err := c.call(ctx, OpTransfer, transferPayload(amount, currency, receiver), out); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate computes what Transfer would cost without moving funds.
func (c *Client) Evaluate(ctx context.Context, amount decimal.Decimal, currency, receiver string) (*Evaluation, error) {
	out := &Evaluation{}
	if err := c.call(ctx, OpEvaluate, transferPayload(amount, currency, receiver), out); err != nil {
		return nil, err
	}
	return out, nil
}

func transferPayload(amount decimal.Decimal, currency, receiver string) func() (map[string]any, error) {
	return func() (map[string]any, error) {
		value, err := checkAmount(amount)
		if err != nil {
			return nil, err
		}
		crcy, err := NormalizeCurrency(currency)
		if err != nil {
			return nil, err
		}
		to, err := checkID("receiver", receiver)
		if err != nil {
			return nil, err
		}
		return map[string]any{"value": value, "crcy": crcy, "to": to}, nil
	}
}
