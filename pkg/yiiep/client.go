// Package yiiep is a client for the Yiiep web-seller API.
//
// Every operation is a single signed POST to <baseURL><operation>: the payload is
// enriched with the merchant identity, the operating mode and a nonce, signed as a
// JWT with the merchant secret, and the (optionally signed) JSON reply is unwrapped
// into either the platform's data or a typed error.
package yiiep

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Mode selects the backend the client talks to.
type Mode string

const (
	ModeTest Mode = "test"
	ModeReal Mode = "real"
)

// ParseMode maps a configuration value to a Mode. The empty string means test.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeTest:
		return ModeTest, nil
	case ModeReal:
		return ModeReal, nil
	}
	return "", fmt.Errorf("unknown mode %q (want test|real)", s)
}

const (
	ProductionBaseURL = "https://yiiep.com/webapi/v2/"
	SandboxBaseURL    = "https://sandbox.yiiep.com/webapi/v2/"
	LocalBaseURL      = "http://localhost:8000/webapi/v2/"
)

var errEmptyBaseURL = errors.New("base url empty")

// Client holds merchant credentials and the derived base URL. It is immutable after
// New and safe for concurrent use.
type Client struct {
	merchantID string
	secret     []byte
	mode       Mode
	baseURL    string
	protocol   Protocol

	httpClient *http.Client
	log        *zerolog.Logger
	observer   Observer
	now        func() time.Time
	nonce      func() (string, error)
}

type settings struct {
	mode       Mode
	protocol   Protocol
	local      bool
	baseURL    string
	httpClient *http.Client
	log        *zerolog.Logger
	observer   Observer
	now        func() time.Time
}

// Option customises a Client at construction.
type Option func(*settings)

// WithMode selects test or real. Without it the client runs in test mode.
func WithMode(m Mode) Option { return func(s *settings) { s.mode = m } }

// WithProtocol selects the envelope revision. Defaults to ProtocolV1.
func WithProtocol(p Protocol) Option { return func(s *settings) { s.protocol = p } }

// WithLocal routes calls to the local development host.
func WithLocal() Option { return func(s *settings) { s.local = true } }

// WithBaseURL overrides the host derived from the mode.
func WithBaseURL(u string) Option { return func(s *settings) { s.baseURL = u } }

// WithHTTPClient replaces the transport. The default http.Client has no timeout;
// callers bound calls with their context or a client of their own.
func WithHTTPClient(c *http.Client) Option { return func(s *settings) { s.httpClient = c } }

func WithLogger(l *zerolog.Logger) Option { return func(s *settings) { s.log = l } }

func WithObserver(o Observer) Option { return func(s *settings) { s.observer = o } }

// WithClock sets the time source used for token claims.
func WithClock(now func() time.Time) Option { return func(s *settings) { s.now = now } }

// New builds a client. The merchant id and secret are not checked here; the platform
// rejects bad credentials on the first call.
func New(merchantID, secret string, opts ...Option) (*Client, error) {
	st := settings{mode: ModeTest, protocol: ProtocolV1}
	for _, o := range opts {
		o(&st)
	}
	mode, err := ParseMode(string(st.mode))
	if err != nil {
		return nil, err
	}
	if st.protocol == nil {
		return nil, errors.New("protocol is nil")
	}

	base := st.baseURL
	switch {
	case base != "":
	case st.local:
		base = LocalBaseURL
	case mode == ModeReal:
		base = ProductionBaseURL
	default:
		base = SandboxBaseURL
	}
	base = strings.TrimSpace(base)
	if base == "" {
		return nil, errEmptyBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	c := &Client{
		merchantID: merchantID,
		secret:     []byte(secret),
		mode:       mode,
		baseURL:    base,
		protocol:   st.protocol,
		httpClient: st.httpClient,
		log:        st.log,
		observer:   st.observer,
		now:        st.now,
		nonce:      newNonce,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.log == nil {
		nop := zerolog.Nop()
		c.log = &nop
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c, nil
}

func (c *Client) MerchantID() string { return c.merchantID }
func (c *Client) Mode() Mode         { return c.mode }
func (c *Client) BaseURL() string    { return c.baseURL }
func (c *Client) Protocol() Protocol { return c.protocol }

func (c *Client) endpoint(op Operation) string { return c.baseURL + string(op) }
