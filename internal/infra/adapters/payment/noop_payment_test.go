//go:build !integration

package payment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"yiiep-sdk/internal/config"
	"yiiep-sdk/internal/infra/adapters/payment"
	"yiiep-sdk/pkg/yiiep"
)

func newNoop(t *testing.T, balance int64) *payment.NoopGateway {
	t.Helper()
	g, err := payment.NewNoopGateway(decimal.NewFromInt(balance))
	if err != nil {
		t.Fatalf("NewNoopGateway: %v", err)
	}
	return g
}

func TestNoopGateway_BillLifecycle(t *testing.T) {
	ctx := context.Background()
	g := newNoop(t, 0)

	bill, err := g.PresetBill(ctx, "INV-1", decimal.NewFromInt(2500), "xof")
	if err != nil {
		t.Fatalf("preset: %v", err)
	}
	if bill.State != "pending" || bill.BillHash == "" || bill.Currency != "XOF" {
		t.Fatalf("preset bill: %+v", bill)
	}
	hash := string(bill.BillHash)

	if _, err := g.PresetBill(ctx, "INV-1", decimal.NewFromInt(1), "XOF"); !errors.Is(err, yiiep.ErrBusiness) {
		t.Fatalf("duplicate bill id: want business failure, got %v", err)
	}
	if _, err := g.RefundBill(ctx, hash); !errors.Is(err, yiiep.ErrBusiness) {
		t.Fatalf("refund of pending bill: want business failure, got %v", err)
	}

	paid, err := g.PayBill(ctx, yiiep.PayRequest{BillHash: hash, PayCode: "MM-1"})
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if paid.State != "paid" {
		t.Fatalf("state after pay: %s", paid.State)
	}
	st, _ := g.AccountState(ctx)
	if !st.Balance.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("balance after pay: %s", st.Balance)
	}

	if _, err := g.UnsetBill(ctx, hash); !errors.Is(err, yiiep.ErrBusiness) {
		t.Fatalf("unset of paid bill: want business failure, got %v", err)
	}

	refunded, err := g.RefundBill(ctx, hash)
	if err != nil {
		t.Fatalf("refund: %v", err)
	}
	if refunded.State != "refunded" {
		t.Fatalf("state after refund: %s", refunded.State)
	}
	checked, err := g.CheckBill(ctx, hash)
	if err != nil || checked.State != "refunded" {
		t.Fatalf("check: %+v %v", checked, err)
	}

	if _, err := g.CheckBill(ctx, "nope"); !errors.Is(err, yiiep.ErrBusiness) {
		t.Fatalf("unknown bill: %v", err)
	}
	if _, err := g.CheckBill(ctx, ""); !errors.Is(err, yiiep.ErrInput) {
		t.Fatalf("empty hash: %v", err)
	}
}

func TestNoopGateway_Cancel(t *testing.T) {
	ctx := context.Background()
	g := newNoop(t, 0)
	bill, _ := g.PresetBill(ctx, "INV-2", decimal.NewFromInt(10), "EUR")
	got, err := g.UnsetBill(ctx, string(bill.BillHash))
	if err != nil || got.State != "cancelled" {
		t.Fatalf("unset: %+v %v", got, err)
	}
	if _, err := g.PayBill(ctx, yiiep.PayRequest{BillHash: string(bill.BillHash), PayCode: "x"}); !errors.Is(err, yiiep.ErrBusiness) {
		t.Fatalf("pay of cancelled bill: %v", err)
	}
}

func TestNoopGateway_Transfers(t *testing.T) {
	ctx := context.Background()
	g := newNoop(t, 10_000)

	ev, err := g.Evaluate(ctx, decimal.NewFromInt(5000), "XOF", "225")
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !ev.XOFFees.Equal(decimal.NewFromInt(50)) || !ev.XOFBalance.Equal(decimal.NewFromInt(4950)) {
		t.Fatalf("evaluation: %+v", ev)
	}
	if st, _ := g.AccountState(ctx); !st.Balance.Equal(decimal.NewFromInt(10_000)) {
		t.Fatalf("evaluate must not move funds, balance %s", st.Balance)
	}

	rec, err := g.Transfer(ctx, decimal.NewFromInt(5000), "XOF", "225")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if rec.URef == "" || !rec.XOFBalance.Equal(decimal.NewFromInt(4950)) {
		t.Fatalf("record: %+v", rec)
	}

	_, err = g.Transfer(ctx, decimal.NewFromInt(5000), "XOF", "225")
	if !errors.Is(err, yiiep.ErrBusiness) || err.Error() != "insufficient funds" {
		t.Fatalf("want insufficient funds, got %v", err)
	}

	if _, err := g.Transfer(ctx, decimal.NewFromInt(1), "GBP", "225"); !errors.Is(err, yiiep.ErrBusiness) {
		t.Fatalf("unsupported currency: %v", err)
	}
	if _, err := g.Transfer(ctx, decimal.NewFromInt(1), "XOF", " "); !errors.Is(err, yiiep.ErrInput) {
		t.Fatalf("empty receiver: %v", err)
	}
}

func TestNewGateway(t *testing.T) {
	t.Run("dev without credentials uses the in-memory gateway", func(t *testing.T) {
		cfg := &config.Config{Runtime: config.RuntimeConfig{Dev: true}}
		gw, err := payment.NewGateway(cfg, nil)
		if err != nil {
			t.Fatalf("NewGateway: %v", err)
		}
		if _, ok := gw.(*payment.NoopGateway); !ok {
			t.Fatalf("want *NoopGateway, got %T", gw)
		}
	})

	t.Run("credentials build the real client for the configured mode", func(t *testing.T) {
		cfg := &config.Config{Yiiep: config.YiiepConfig{MerchantID: "ws-1", Secret: "k", Mode: "real", Protocol: "v2"}}
		gw, err := payment.NewGateway(cfg, nil)
		if err != nil {
			t.Fatalf("NewGateway: %v", err)
		}
		c, ok := gw.(*yiiep.Client)
		if !ok {
			t.Fatalf("want *yiiep.Client, got %T", gw)
		}
		if c.BaseURL() != yiiep.ProductionBaseURL || c.Protocol().Version() != "v2" || c.MerchantID() != "ws-1" {
			t.Fatalf("client: base=%s protocol=%s", c.BaseURL(), c.Protocol().Version())
		}
	})

	t.Run("base url override wins", func(t *testing.T) {
		c, err := payment.NewYiiepGateway(config.YiiepConfig{MerchantID: "m", Secret: "k", BaseURL: "http://127.0.0.1:8000/webapi/v2/"}, nil)
		if err != nil {
			t.Fatalf("NewYiiepGateway: %v", err)
		}
		if c.BaseURL() != "http://127.0.0.1:8000/webapi/v2/" {
			t.Fatalf("base: %s", c.BaseURL())
		}
	})

	t.Run("unknown protocol is an error", func(t *testing.T) {
		if _, err := payment.NewYiiepGateway(config.YiiepConfig{Protocol: "v5"}, nil); err == nil {
			t.Fatal("expected error")
		}
	})
}
