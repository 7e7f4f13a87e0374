package yiiep

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ProtocolVersion1 = "v1"
	ProtocolVersion2 = "v2"
)

// tokenTTL is the lifetime of v1 request tokens.
const tokenTTL = 5 * time.Minute

// clockSkew is tolerated on exp/iat when verifying platform replies.
const clockSkew = 30 * time.Second

// PayRequest is the input of PayBill. Which fields are sent depends on the protocol.
type PayRequest struct {
	BillHash string
	Account  string
	PayCode  string
}

// Protocol is one revision of the envelope: how request tokens are claimed and
// signed, how reply tokens are verified, and how the pay payload is shaped.
// Every revision binds the token to the operation it was issued for.
type Protocol interface {
	Version() string
	Sign(op Operation, issuer string, payload map[string]any, key []byte, now time.Time) (string, error)
	// Verify checks token with key and returns the payload without the revision's
	// registered claims. A token bound to another operation is rejected.
	Verify(op Operation, token string, key []byte, now time.Time) (map[string]any, error)
	PayPayload(req PayRequest) (map[string]any, error)
}

var (
	// ProtocolV1 signs with iat/exp (five minutes) and an "op" claim, and pays with
	// {hash, paycode}.
	ProtocolV1 Protocol = expiringProtocol{}
	// ProtocolV2 signs with sub=operation and iss=merchant, and pays with
	// {hash, account, paycode}.
	ProtocolV2 Protocol = subjectProtocol{}
)

// ProtocolByVersion resolves a configured version. The empty string is v1.
func ProtocolByVersion(v string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", ProtocolVersion1:
		return ProtocolV1, nil
	case ProtocolVersion2:
		return ProtocolV2, nil
	}
	return nil, fmt.Errorf("unknown protocol %q (want v1|v2)", v)
}

var errWrongOperation = errors.New("token bound to another operation")

type expiringProtocol struct{}

func (expiringProtocol) Version() string { return ProtocolVersion1 }

func (expiringProtocol) Sign(op Operation, _ string, payload map[string]any, key []byte, now time.Time) (string, error) {
	claims := copyClaims(payload)
	claims["op"] = string(op)
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(tokenTTL).Unix()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func (expiringProtocol) Verify(op Operation, token string, key []byte, now time.Time) (map[string]any, error) {
	claims, err := parseHS256(token, key, now)
	if err != nil {
		return nil, err
	}
	if err := checkBinding(claims, "op", op); err != nil {
		return nil, err
	}
	return stripClaims(claims, "op", "iat", "exp"), nil
}

func (expiringProtocol) PayPayload(req PayRequest) (map[string]any, error) {
	hash, err := checkID("bill hash", req.BillHash)
	if err != nil {
		return nil, err
	}
	code, err := checkID("pay code", req.PayCode)
	if err != nil {
		return nil, err
	}
	return map[string]any{"hash": hash, "paycode": code}, nil
}

type subjectProtocol struct{}

func (subjectProtocol) Version() string { return ProtocolVersion2 }

func (subjectProtocol) Sign(op Operation, issuer string, payload map[string]any, key []byte, now time.Time) (string, error) {
	claims := copyClaims(payload)
	claims["sub"] = string(op)
	claims["iss"] = issuer
	claims["iat"] = now.Unix()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}

func (subjectProtocol) Verify(op Operation, token string, key []byte, now time.Time) (map[string]any, error) {
	claims, err := parseHS256(token, key, now)
	if err != nil {
		return nil, err
	}
	if err := checkBinding(claims, "sub", op); err != nil {
		return nil, err
	}
	return stripClaims(claims, "sub", "iss", "iat"), nil
}

func (subjectProtocol) PayPayload(req PayRequest) (map[string]any, error) {
	hash, err := checkID("bill hash", req.BillHash)
	if err != nil {
		return nil, err
	}
	account, err := checkID("account", req.Account)
	if err != nil {
		return nil, err
	}
	code, err := checkID("pay code", req.PayCode)
	if err != nil {
		return nil, err
	}
	return map[string]any{"hash": hash, "account": account, "paycode": code}, nil
}

// parseHS256 keeps numbers as json.Number so ids and amounts survive unwrapping.
func parseHS256(token string, key []byte, now time.Time) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithJSONNumber(),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithLeeway(clockSkew),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// checkBinding accepts a token without the claim; replies are not always bound.
func checkBinding(claims jwt.MapClaims, name string, op Operation) error {
	v, ok := claims[name]
	if !ok {
		return nil
	}
	if s, _ := v.(string); s != string(op) {
		return fmt.Errorf("%w: %v != %s", errWrongOperation, v, op)
	}
	return nil
}

func copyClaims(payload map[string]any) jwt.MapClaims {
	claims := make(jwt.MapClaims, len(payload)+3)
	for k, v := range payload {
		claims[k] = v
	}
	return claims
}

func stripClaims(claims jwt.MapClaims, names ...string) map[string]any {
	out := make(map[string]any, len(claims))
	for k, v := range claims {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}
