package adapter

import (
	"context"
	"html/template"

	"github.com/shopspring/decimal"

	"yiiep-sdk/pkg/yiiep"
)

// BillGateway is the hex port for the Yiiep web-seller API. *yiiep.Client is the
// production implementation.
type BillGateway interface {
	PresetBill(ctx context.Context, billID string, amount decimal.Decimal, currency string) (*yiiep.Bill, error)
	UnsetBill(ctx context.Context, billHash string) (*yiiep.Bill, error)
	PayBill(ctx context.Context, req yiiep.PayRequest) (*yiiep.Bill, error)
	CheckBill(ctx context.Context, billHash string) (*yiiep.Bill, error)
	RefundBill(ctx context.Context, billHash string) (*yiiep.Bill, error)

	AccountState(ctx context.Context) (*yiiep.AccountState, error)
	Transfer(ctx context.Context, amount decimal.Decimal, currency, receiver string) (*yiiep.TransferRecord, error)
	Evaluate(ctx context.Context, amount decimal.Decimal, currency, receiver string) (*yiiep.Evaluation, error)

	// Link builders never touch the network.
	PayURI(billHash string) string
	QRSource(billHash string) string
	AppLinkURI(billHash string) string
	PayLink(billHash, classes string) template.HTML
	PayQR(billHash, classes string) template.HTML
}
