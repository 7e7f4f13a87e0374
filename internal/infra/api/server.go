package api

import (
	"net/http"
	"time"

	"yiiep-sdk/internal/domain/ports/adapter"
	"yiiep-sdk/internal/infra/metrics"
	"yiiep-sdk/internal/infra/worker"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// Options configures the bridge.
type Options struct {
	APIKey         string
	MerchantID     string // logged with each request; pass it redacted outside dev
	CORSOrigins    []string
	RequestTimeout time.Duration
	Workers        int
	Dev            bool
}

// Server exposes every BillGateway operation as JSON over HTTP for merchant-side
// services that should not hold the Yiiep secret themselves.
type Server struct {
	gw   adapter.BillGateway
	opts Options
	pool *worker.Pool
	log  *zerolog.Logger
}

// NewServer starts the batch worker pool; call Close when done.
func NewServer(gw adapter.BillGateway, opts Options, logger *zerolog.Logger) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	pool := worker.NewPool(opts.Workers, logger)
	pool.Start()
	return &Server{gw: gw, opts: opts, pool: pool, log: logger}
}

// Close stops the worker pool after in-flight batch checks finish.
func (s *Server) Close() {
	s.pool.Stop()
}

// Routes builds the bridge handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(Recover(s.log), TraceID(), Merchant(s.opts.MerchantID), RequestLog(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKey(s.opts.APIKey, s.opts.Dev, s.log), Timeout(s.opts.RequestTimeout))

		r.Post("/bills", s.presetBill)
		r.Post("/bills/status", s.billStatuses)
		r.Route("/bills/{hash}", func(r chi.Router) {
			r.Get("/", s.checkBill)
			r.Delete("/", s.unsetBill)
			r.Post("/pay", s.payBill)
			r.Post("/refund", s.refundBill)
			r.Get("/links", s.billLinks)
		})
		r.Get("/account", s.accountState)
		r.Post("/transfers", s.transfer)
		r.Post("/transfers/evaluate", s.evaluate)
	})

	if len(s.opts.CORSOrigins) == 0 {
		return r
	}
	return cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(r)
}
