package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"yiiep-sdk/internal/domain/ports/adapter"
	"yiiep-sdk/pkg/yiiep"
)

// ErrUsage is returned for an unknown command or wrong arguments.
var ErrUsage = errors.New("usage")

type commandHandler func(ctx context.Context, args []string) (any, error)

type command struct {
	usage string
	nargs []int // accepted argument counts
	run   commandHandler
}

// Runner dispatches yiiepctl commands to a BillGateway and prints results as JSON.
type Runner struct {
	gw  adapter.BillGateway
	out io.Writer
}

func NewRunner(gw adapter.BillGateway, out io.Writer) *Runner {
	return &Runner{gw: gw, out: out}
}

// commandRoutes defines all available commands and their handlers.
func (r *Runner) commandRoutes() map[string]command {
	return map[string]command{
		"preset":   {"preset <bill-id> <amount> <currency>", []int{3}, r.handlePreset},
		"unset":    {"unset <bill-hash>", []int{1}, r.byHash(r.gw.UnsetBill)},
		"pay":      {"pay <bill-hash> <pay-code> [account]", []int{2, 3}, r.handlePay},
		"check":    {"check <bill-hash>", []int{1}, r.byHash(r.gw.CheckBill)},
		"refund":   {"refund <bill-hash>", []int{1}, r.byHash(r.gw.RefundBill)},
		"account":  {"account", []int{0}, r.handleAccount},
		"transfer": {"transfer <amount> <currency> <receiver>", []int{3}, r.handleTransfer},
		"evaluate": {"evaluate <amount> <currency> <receiver>", []int{3}, r.handleEvaluate},
		"links":    {"links <bill-hash> [css-classes]", []int{1, 2}, r.handleLinks},
	}
}

// Run executes args[0] with the remaining arguments.
func (r *Runner) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command\n%s", ErrUsage, r.Usage())
	}
	cmd, ok := r.commandRoutes()[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q\n%s", ErrUsage, args[0], r.Usage())
	}
	rest := args[1:]
	if !accepts(cmd.nargs, len(rest)) {
		return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
	}
	res, err := cmd.run(ctx, rest)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

// Usage lists every command, sorted.
func (r *Runner) Usage() string {
	routes := r.commandRoutes()
	lines := make([]string, 0, len(routes))
	for _, c := range routes {
		lines = append(lines, "  "+c.usage)
	}
	sort.Strings(lines)
	return "commands:\n" + strings.Join(lines, "\n")
}

func accepts(nargs []int, n int) bool {
	for _, a := range nargs {
		if a == n {
			return true
		}
	}
	return false
}

func (r *Runner) byHash(op func(context.Context, string) (*yiiep.Bill, error)) commandHandler {
	return func(ctx context.Context, args []string) (any, error) {
		return op(ctx, args[0])
	}
}

func (r *Runner) handlePreset(ctx context.Context, args []string) (any, error) {
	amount, err := yiiep.AmountFrom(args[1])
	if err != nil {
		return nil, err
	}
	return r.gw.PresetBill(ctx, args[0], amount, args[2])
}

func (r *Runner) handlePay(ctx context.Context, args []string) (any, error) {
	req := yiiep.PayRequest{BillHash: args[0], PayCode: args[1]}
	if len(args) == 3 {
		req.Account = args[2]
	}
	return r.gw.PayBill(ctx, req)
}

func (r *Runner) handleAccount(ctx context.Context, _ []string) (any, error) {
	return r.gw.AccountState(ctx)
}

func (r *Runner) handleTransfer(ctx context.Context, args []string) (any, error) {
	amount, err := yiiep.AmountFrom(args[0])
	if err != nil {
		return nil, err
	}
	return r.gw.Transfer(ctx, amount, args[1], args[2])
}

func (r *Runner) handleEvaluate(ctx context.Context, args []string) (any, error) {
	amount, err := yiiep.AmountFrom(args[0])
	if err != nil {
		return nil, err
	}
	return r.gw.Evaluate(ctx, amount, args[1], args[2])
}

func (r *Runner) handleLinks(_ context.Context, args []string) (any, error) {
	hash, classes := args[0], ""
	if len(args) == 2 {
		classes = args[1]
	}
	return map[string]string{
		"pay_uri":      r.gw.PayURI(hash),
		"qr_source":    r.gw.QRSource(hash),
		"app_link_uri": r.gw.AppLinkURI(hash),
		"pay_link":     string(r.gw.PayLink(hash, classes)),
		"pay_qr":       string(r.gw.PayQR(hash, classes)),
	}, nil
}
