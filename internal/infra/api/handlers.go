package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"sync"

	"yiiep-sdk/internal/infra/logging"
	"yiiep-sdk/internal/infra/worker"
	"yiiep-sdk/pkg/yiiep"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	maxBodyBytes = 64 << 10
	maxBatch     = 50
)

type presetRequest struct {
	BillID   string `json:"bill_id"`
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
}

type payRequest struct {
	Account string `json:"account"`
	PayCode string `json:"pay_code"`
}

type transferRequest struct {
	Amount   any    `json:"amount"`
	Currency string `json:"currency"`
	To       string `json:"to"`
}

type statusRequest struct {
	Hashes []string `json:"hashes"`
}

type statusItem struct {
	Hash   string    `json:"hash"`
	Status int       `json:"status"`
	Bill   *billView `json:"bill,omitempty"`
	Error  string    `json:"error,omitempty"`
}

func (it *statusItem) set(bill *yiiep.Bill, err error) {
	if err != nil {
		it.Status = statusFor(err)
		it.Error = err.Error()
		return
	}
	v := toBillView(bill)
	it.Bill, it.Status = &v, http.StatusOK
}

type billView struct {
	BillID   string          `json:"bill_id,omitempty"`
	BillHash string          `json:"bill_hash,omitempty"`
	State    string          `json:"state,omitempty"`
	Value    decimal.Decimal `json:"value"`
	Currency string          `json:"currency,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

type linksView struct {
	PayURI     string        `json:"pay_uri"`
	QRSource   string        `json:"qr_source"`
	AppLinkURI string        `json:"app_link_uri"`
	PayLink    template.HTML `json:"pay_link"`
	PayQR      template.HTML `json:"pay_qr"`
}

func toBillView(b *yiiep.Bill) billView {
	return billView{
		BillID:   string(b.BillID),
		BillHash: string(b.BillHash),
		State:    string(b.State),
		Value:    b.Value,
		Currency: string(b.Currency),
		Data:     b.Raw,
	}
}

func (s *Server) presetBill(w http.ResponseWriter, r *http.Request) {
	defer logging.TraceDuration(logging.With(r.Context(), s.log), "bridge.PresetBill")()
	var req presetRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := yiiep.AmountFrom(req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	bill, err := s.gw.PresetBill(r.Context(), req.BillID, amount, req.Currency)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBillView(bill))
}

func (s *Server) unsetBill(w http.ResponseWriter, r *http.Request) {
	s.billOp(w, r, s.gw.UnsetBill)
}

func (s *Server) checkBill(w http.ResponseWriter, r *http.Request) {
	s.billOp(w, r, s.gw.CheckBill)
}

func (s *Server) refundBill(w http.ResponseWriter, r *http.Request) {
	s.billOp(w, r, s.gw.RefundBill)
}

func (s *Server) billOp(w http.ResponseWriter, r *http.Request, op func(context.Context, string) (*yiiep.Bill, error)) {
	bill, err := op(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillView(bill))
}

// billStatuses checks every hash on the worker pool. A failing hash is reported
// in its own item; the batch itself only fails on malformed input.
func (s *Server) billStatuses(w http.ResponseWriter, r *http.Request) {
	defer logging.TraceDuration(logging.With(r.Context(), s.log), "bridge.CheckBills")()
	var req statusRequest
	if !s.decode(w, r, &req) {
		return
	}
	if n := len(req.Hashes); n == 0 || n > maxBatch {
		s.fail(w, r, &yiiep.InputError{Field: "hashes", Reason: fmt.Sprintf("want 1 to %d entries, got %d", maxBatch, n)})
		return
	}

	items := make([]statusItem, len(req.Hashes))
	var wg sync.WaitGroup
	for i, hash := range req.Hashes {
		i, hash := i, hash
		items[i].Hash = hash
		wg.Add(1)
		err := s.pool.Submit(r.Context(), func(ctx context.Context) error {
			defer wg.Done()
			var bill *yiiep.Bill
			err := worker.Recover(func() (err error) {
				bill, err = s.gw.CheckBill(ctx, hash)
				return err
			})
			items[i].set(bill, err)
			return err
		})
		if err != nil {
			wg.Done()
			items[i].set(nil, err)
		}
	}
	wg.Wait()
	writeJSON(w, http.StatusOK, map[string]any{"bills": items})
}

func (s *Server) payBill(w http.ResponseWriter, r *http.Request) {
	defer logging.TraceDuration(logging.With(r.Context(), s.log), "bridge.PayBill")()
	var req payRequest
	if !s.decode(w, r, &req) {
		return
	}
	bill, err := s.gw.PayBill(r.Context(), yiiep.PayRequest{
		BillHash: chi.URLParam(r, "hash"),
		Account:  req.Account,
		PayCode:  req.PayCode,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillView(bill))
}

func (s *Server) billLinks(w http.ResponseWriter, r *http.Request) {
	defer logging.TraceDuration(logging.With(r.Context(), s.log), "bridge.Links")()
	hash := chi.URLParam(r, "hash")
	classes := r.URL.Query().Get("classes")
	writeJSON(w, http.StatusOK, linksView{
		PayURI:     s.gw.PayURI(hash),
		QRSource:   s.gw.QRSource(hash),
		AppLinkURI: s.gw.AppLinkURI(hash),
		PayLink:    s.gw.PayLink(hash, classes),
		PayQR:      s.gw.PayQR(hash, classes),
	})
}

func (s *Server) accountState(w http.ResponseWriter, r *http.Request) {
	defer logging.TraceDuration(logging.With(r.Context(), s.log), "bridge.AccountState")()
	st, err := s.gw.AccountState(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance":  st.Balance,
		"currency": string(st.Currency),
		"data":     st.Raw,
	})
}

func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	defer logging.TraceDuration(logging.With(r.Context(), s.log), "bridge.Transfer")()
	var req transferRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := yiiep.AmountFrom(req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	rec, err := s.gw.Transfer(r.Context(), amount, req.Currency, req.To)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	defer logging.TraceDuration(logging.With(r.Context(), s.log), "bridge.Evaluate")()
	var req transferRequest
	if !s.decode(w, r, &req) {
		return
	}
	amount, err := yiiep.AmountFrom(req.Amount)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ev, err := s.gw.Evaluate(r.Context(), amount, req.Currency, req.To)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// decode reads a JSON body with numbers kept as json.Number so amounts are not
// rounded through float64 before validation.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "bad json: "+err.Error())
		return false
	}
	return true
}

// statusFor maps SDK error kinds onto bridge status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, yiiep.ErrInput):
		return http.StatusBadRequest
	case errors.Is(err, yiiep.ErrBusiness):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, worker.ErrPanic):
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code < http.StatusInternalServerError {
		writeJSONError(w, code, err.Error())
		return
	}
	l := logging.With(r.Context(), s.log)
	l.Error().Err(err).Str("path", r.URL.Path).Msg("yiiep call failed")
	// the trace id matches the error log line above
	writeJSON(w, code, map[string]string{"error": err.Error(), "trace_id": logging.TraceID(r.Context())})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
