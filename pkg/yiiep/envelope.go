package yiiep

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxReplyBytes caps how much of a reply body is read.
const maxReplyBytes = 1 << 20

// requestBody is the only shape ever POSTed: the plaintext merchant identity and the
// signed payload.
type requestBody struct {
	Identity string `json:"identity"`
	Data     string `json:"data"`
}

// reply is either the plain envelope or, when SData is set, a wrapper around a token
// whose claims hold the plain envelope.
type reply struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	SData   json.RawMessage `json:"sdata"`
}

func (r reply) signed() bool {
	return len(r.SData) > 0 && !bytes.Equal(r.SData, []byte("null"))
}

// resultTarget is implemented by the result types so call can keep the raw data.
type resultTarget interface {
	setRaw(json.RawMessage)
}

// call validates and builds the payload, runs send, decodes the data into dst and
// reports the outcome once.
func (c *Client) call(ctx context.Context, op Operation, build func() (map[string]any, error), dst resultTarget) (err error) {
	start := time.Now()
	defer func() { c.finish(op, start, err) }()

	payload, err := build()
	if err != nil {
		return err
	}
	data, err := c.send(ctx, op, payload)
	if err != nil {
		return err
	}
	return decodeData(op, data, dst)
}

// send enriches payload, signs it, POSTs it to <baseURL><op> and unwraps the reply.
// payload is modified in place.
func (c *Client) send(ctx context.Context, op Operation, payload map[string]any) (json.RawMessage, error) {
	nonce, err := c.nonce()
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("nonce: %w", err)}
	}
	payload[fieldIdentity] = c.merchantID
	payload[fieldMode] = string(c.mode)
	payload[fieldNonce] = nonce

	token, err := c.protocol.Sign(op, c.merchantID, payload, c.secret, c.now())
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("sign: %w", err)}
	}
	body, err := json.Marshal(requestBody{Identity: c.merchantID, Data: token})
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op), bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read reply: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("http %d", resp.StatusCode)}
	}

	var rep reply
	if err := json.Unmarshal(raw, &rep); err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("decode reply: %w", err)}
	}
	if rep.signed() {
		if rep, err = c.unwrap(op, rep.SData); err != nil {
			return nil, &VerificationError{Op: op, Err: err}
		}
	}

	if !rep.Success {
		msg := rep.Message
		if msg == "" {
			msg = fmt.Sprintf("%s rejected by platform", op)
		}
		return nil, &BusinessError{Op: op, Message: msg}
	}
	return rep.Data, nil
}

func (c *Client) unwrap(op Operation, sdata json.RawMessage) (reply, error) {
	var token string
	if err := json.Unmarshal(sdata, &token); err != nil {
		return reply{}, errors.New("sdata is not a string")
	}
	claims, err := c.protocol.Verify(op, token, c.secret, c.now())
	if err != nil {
		return reply{}, err
	}
	b, err := json.Marshal(claims)
	if err != nil {
		return reply{}, err
	}
	var rep reply
	if err := json.Unmarshal(b, &rep); err != nil {
		return reply{}, err
	}
	rep.SData = nil
	return rep, nil
}

// decodeData fills dst from an object payload; any other JSON value is kept raw only.
func decodeData(op Operation, data json.RawMessage, dst resultTarget) error {
	if dst == nil {
		return nil
	}
	dst.setRaw(data)
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	if err := json.Unmarshal(trimmed, dst); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func (c *Client) finish(op Operation, start time.Time, err error) {
	d := time.Since(start)
	outcome := OutcomeOf(err)
	c.observer.ObserveCall(op, outcome, d)

	ev := c.log.Debug()
	if outcome == OutcomeTransportFailure || outcome == OutcomeVerificationFailure {
		ev = c.log.Warn()
	}
	ev.Str("op", string(op)).
		Str("mode", string(c.mode)).
		Str("protocol", c.protocol.Version()).
		Str("outcome", string(outcome)).
		Dur("duration", d).
		Err(err).
		Msg("yiiep call")
}
