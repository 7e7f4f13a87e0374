package payment

import (
	"context"
	"fmt"
	"html/template"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"yiiep-sdk/internal/domain/ports/adapter"
	"yiiep-sdk/pkg/yiiep"
)

var _ adapter.BillGateway = (*NoopGateway)(nil)

const (
	noopSettlement = "XOF"
	noopFeeRate    = "0.01"
)

var noopOpeningBalance = decimal.NewFromInt(1_000_000)

// noopRates converts into the settlement currency.
var noopRates = map[string]decimal.Decimal{
	"XOF": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("655.957"),
	"USD": decimal.RequireFromString("600"),
}

type noopBill struct {
	id       string
	hash     string
	state    string
	value    decimal.Decimal
	currency string
}

// NoopGateway is an in-memory BillGateway for dev mode and tests. Bills move
// pending -> paid -> refunded or pending -> cancelled; the account is kept in XOF.
type NoopGateway struct {
	links *yiiep.Client

	mu      sync.Mutex
	seq     int64
	bills   map[string]*noopBill // hash -> bill
	byID    map[string]string    // bill id -> hash
	balance decimal.Decimal
}

func NewNoopGateway(openingBalance decimal.Decimal) (*NoopGateway, error) {
	links, err := yiiep.New("noop", "noop", yiiep.WithLocal())
	if err != nil {
		return nil, err
	}
	return &NoopGateway{
		links:   links,
		bills:   make(map[string]*noopBill),
		byID:    make(map[string]string),
		balance: openingBalance,
	}, nil
}

func (g *NoopGateway) next() string {
	g.seq++
	return fmt.Sprintf("noop-%d", g.seq)
}

func (g *NoopGateway) PresetBill(ctx context.Context, billID string, amount decimal.Decimal, currency string) (*yiiep.Bill, error) {
	billID = strings.TrimSpace(billID)
	if billID == "" {
		return nil, &yiiep.InputError{Field: "bill id", Reason: "empty"}
	}
	if !amount.IsPositive() {
		return nil, &yiiep.InputError{Field: "amount", Reason: "must be greater than zero"}
	}
	crcy, err := yiiep.NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	if _, ok := noopRates[crcy]; !ok {
		return nil, businessErr(yiiep.OpPreset, "unsupported currency "+crcy)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if _, dup := g.byID[billID]; dup {
		return nil, businessErr(yiiep.OpPreset, "bill already exists")
	}
	b := &noopBill{id: billID, hash: g.next(), state: "pending", value: amount, currency: crcy}
	g.bills[b.hash] = b
	g.byID[billID] = b.hash
	return b.view(), nil
}

func (g *NoopGateway) UnsetBill(ctx context.Context, billHash string) (*yiiep.Bill, error) {
	return g.transition(yiiep.OpUnset, billHash, "pending", "cancelled", nil)
}

func (g *NoopGateway) PayBill(ctx context.Context, req yiiep.PayRequest) (*yiiep.Bill, error) {
	if strings.TrimSpace(req.PayCode) == "" {
		return nil, &yiiep.InputError{Field: "pay code", Reason: "empty"}
	}
	return g.transition(yiiep.OpPay, req.BillHash, "pending", "paid", func(b *noopBill) error {
		g.balance = g.balance.Add(b.value.Mul(noopRates[b.currency]))
		return nil
	})
}

func (g *NoopGateway) CheckBill(ctx context.Context, billHash string) (*yiiep.Bill, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, err := g.lookup(yiiep.OpBState, billHash)
	if err != nil {
		return nil, err
	}
	return b.view(), nil
}

func (g *NoopGateway) RefundBill(ctx context.Context, billHash string) (*yiiep.Bill, error) {
	return g.transition(yiiep.OpRefund, billHash, "paid", "refunded", func(b *noopBill) error {
		amt := b.value.Mul(noopRates[b.currency])
		if g.balance.LessThan(amt) {
			return businessErr(yiiep.OpRefund, "insufficient funds")
		}
		g.balance = g.balance.Sub(amt)
		return nil
	})
}

func (g *NoopGateway) AccountState(ctx context.Context) (*yiiep.AccountState, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return &yiiep.AccountState{Balance: g.balance, Currency: noopSettlement}, nil
}

func (g *NoopGateway) Transfer(ctx context.Context, amount decimal.Decimal, currency, receiver string) (*yiiep.TransferRecord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ev, err := g.evaluate(yiiep.OpTransfer, amount, currency, receiver)
	if err != nil {
		return nil, err
	}
	if g.balance.LessThan(ev.XOFAmount.Add(ev.XOFFees)) {
		return nil, businessErr(yiiep.OpTransfer, "insufficient funds")
	}
	g.balance = ev.XOFBalance
	ref := g.next()
	return &yiiep.TransferRecord{URef: yiiep.FlexString(ref), TIF: "noop", FTID: yiiep.FlexString(ref), Evaluation: *ev}, nil
}

func (g *NoopGateway) Evaluate(ctx context.Context, amount decimal.Decimal, currency, receiver string) (*yiiep.Evaluation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.evaluate(yiiep.OpEvaluate, amount, currency, receiver)
}

// evaluate must be called with g.mu held.
func (g *NoopGateway) evaluate(op yiiep.Operation, amount decimal.Decimal, currency, receiver string) (*yiiep.Evaluation, error) {
	if !amount.IsPositive() {
		return nil, &yiiep.InputError{Field: "amount", Reason: "must be greater than zero"}
	}
	if strings.TrimSpace(receiver) == "" {
		return nil, &yiiep.InputError{Field: "receiver", Reason: "empty"}
	}
	crcy, err := yiiep.NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	rate, ok := noopRates[crcy]
	if !ok {
		return nil, businessErr(op, "unsupported currency "+crcy)
	}
	feeRate := decimal.RequireFromString(noopFeeRate)
	xofAmount := amount.Mul(rate)
	xofFees := xofAmount.Mul(feeRate).Round(0)
	xofBalance := g.balance.Sub(xofAmount).Sub(xofFees)
	return &yiiep.Evaluation{
		XOFAmount:  xofAmount,
		XOFFees:    xofFees,
		XOFBalance: xofBalance,
		Currency:   yiiep.FlexString(crcy),
		Rate:       rate,
		Amount:     amount,
		Fees:       xofFees.DivRound(rate, 2),
		Balance:    xofBalance.DivRound(rate, 2),
		Date:       yiiep.FlexString(time.Now().UTC().Format("2006-01-02 15:04:05")),
	}, nil
}

func (g *NoopGateway) transition(op yiiep.Operation, billHash, from, to string, effect func(*noopBill) error) (*yiiep.Bill, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	b, err := g.lookup(op, billHash)
	if err != nil {
		return nil, err
	}
	if b.state != from {
		return nil, businessErr(op, fmt.Sprintf("bill is %s", b.state))
	}
	if effect != nil {
		if err := effect(b); err != nil {
			return nil, err
		}
	}
	b.state = to
	return b.view(), nil
}

// lookup must be called with g.mu held.
func (g *NoopGateway) lookup(op yiiep.Operation, billHash string) (*noopBill, error) {
	billHash = strings.TrimSpace(billHash)
	if billHash == "" {
		return nil, &yiiep.InputError{Field: "bill hash", Reason: "empty"}
	}
	b, ok := g.bills[billHash]
	if !ok {
		return nil, businessErr(op, "unknown bill")
	}
	return b, nil
}

func (b *noopBill) view() *yiiep.Bill {
	return &yiiep.Bill{
		BillID:   yiiep.FlexString(b.id),
		BillHash: yiiep.FlexString(b.hash),
		State:    yiiep.FlexString(b.state),
		Value:    b.value,
		Currency: yiiep.FlexString(b.currency),
	}
}

func businessErr(op yiiep.Operation, msg string) error {
	return &yiiep.BusinessError{Op: op, Message: msg}
}

func (g *NoopGateway) PayURI(billHash string) string     { return g.links.PayURI(billHash) }
func (g *NoopGateway) QRSource(billHash string) string   { return g.links.QRSource(billHash) }
func (g *NoopGateway) AppLinkURI(billHash string) string { return g.links.AppLinkURI(billHash) }

func (g *NoopGateway) PayLink(billHash, classes string) template.HTML {
	return g.links.PayLink(billHash, classes)
}

func (g *NoopGateway) PayQR(billHash, classes string) template.HTML {
	return g.links.PayQR(billHash, classes)
}
