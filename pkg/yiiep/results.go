package yiiep

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// FlexString decodes a JSON string, number or null. The platform is not consistent
// about quoting references and dates.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// Bill is what the bill operations return. State is forwarded as the platform
// reports it (pending, paid, cancelled, ...).
type Bill struct {
	BillID   FlexString      `json:"bill,omitempty"`
	BillHash FlexString      `json:"billhash,omitempty"`
	State    FlexString      `json:"state,omitempty"`
	Value    decimal.Decimal `json:"value"`
	Currency FlexString      `json:"crcy,omitempty"`

	// Raw is the unmodified data field of the reply.
	Raw json.RawMessage `json:"-"`
}

func (b *Bill) setRaw(r json.RawMessage) { b.Raw = r }

type AccountState struct {
	Balance  decimal.Decimal `json:"balance"`
	Currency FlexString      `json:"currency,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (a *AccountState) setRaw(r json.RawMessage) { a.Raw = r }

// Evaluation is the cost of a transfer that has not been made. XOF fields are the
// amounts in the platform's settlement currency.
type Evaluation struct {
	XOFAmount  decimal.Decimal `json:"xofamount"`
	XOFFees    decimal.Decimal `json:"xoffees"`
	XOFBalance decimal.Decimal `json:"xofbalance"`
	Currency   FlexString      `json:"currency,omitempty"`
	Rate       decimal.Decimal `json:"rate"`
	Amount     decimal.Decimal `json:"amount"`
	Fees       decimal.Decimal `json:"fees"`
	Balance    decimal.Decimal `json:"balance"`
	Date       FlexString      `json:"date,omitempty"`

	Raw json.RawMessage `json:"-"`
}

func (e *Evaluation) setRaw(r json.RawMessage) { e.Raw = r }

// TransferRecord is the ledger entry of an executed transfer.
type TransferRecord struct {
	URef FlexString `json:"uref,omitempty"`
	TIF  FlexString `json:"tif,omitempty"`
	FTID FlexString `json:"ftid,omitempty"`
	Evaluation
}

func (t *TransferRecord) setRaw(r json.RawMessage) { t.Raw = r }
