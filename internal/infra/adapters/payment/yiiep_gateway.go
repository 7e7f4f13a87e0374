// File: internal/infra/adapters/payment/yiiep_gateway.go
package payment

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"yiiep-sdk/internal/config"
	"yiiep-sdk/internal/domain/ports/adapter"
	"yiiep-sdk/internal/infra/metrics"
	"yiiep-sdk/pkg/yiiep"
)

var _ adapter.BillGateway = (*yiiep.Client)(nil)

// NewYiiepGateway builds the SDK client from configuration, with call metrics and
// the given logger wired in.
func NewYiiepGateway(cfg config.YiiepConfig, logger *zerolog.Logger) (*yiiep.Client, error) {
	mode, err := yiiep.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	proto, err := yiiep.ProtocolByVersion(cfg.Protocol)
	if err != nil {
		return nil, err
	}
	opts := []yiiep.Option{
		yiiep.WithMode(mode),
		yiiep.WithProtocol(proto),
		yiiep.WithObserver(metrics.GatewayObserver{}),
		yiiep.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if logger != nil {
		l := logger.With().Str("component", "yiiep").Logger()
		opts = append(opts, yiiep.WithLogger(&l))
	}
	if cfg.Local {
		opts = append(opts, yiiep.WithLocal())
	}
	if cfg.BaseURL != "" {
		opts = append(opts, yiiep.WithBaseURL(cfg.BaseURL))
	}
	c, err := yiiep.New(cfg.MerchantID, cfg.Secret, opts...)
	if err != nil {
		return nil, fmt.Errorf("yiiep client: %w", err)
	}
	return c, nil
}

// NewGateway returns the real client when credentials are configured. In dev mode
// without credentials it falls back to the in-memory gateway.
func NewGateway(cfg *config.Config, logger *zerolog.Logger) (adapter.BillGateway, error) {
	if !cfg.HasCredentials() && cfg.Runtime.Dev {
		if logger != nil {
			logger.Warn().Msg("no yiiep credentials in dev mode: using in-memory gateway")
		}
		return NewNoopGateway(noopOpeningBalance)
	}
	return NewYiiepGateway(cfg.Yiiep, logger)
}
