//go:build !integration

package yiiep_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"yiiep-sdk/pkg/yiiep"
)

func TestProtocol_RoundTrip(t *testing.T) {
	now := time.Now()
	key := []byte("k-merchant-secret")
	payload := map[string]any{
		"bill":     "INV-42",
		"value":    12.5,
		"big":      json.Number("9007199254740993"),
		"precise":  json.Number("123456789012345678.25"),
		"crcy":     "XOF",
		"identity": "m-1",
		"mode":     "test",
		"rseed":    "0123456789abcdef",
	}

	for _, p := range []yiiep.Protocol{yiiep.ProtocolV1, yiiep.ProtocolV2} {
		p := p
		t.Run(p.Version(), func(t *testing.T) {
			tok, err := p.Sign(yiiep.OpPreset, "m-1", payload, key, now)
			if err != nil {
				t.Fatalf("sign: %v", err)
			}

			got, err := p.Verify(yiiep.OpPreset, tok, key, now)
			if err != nil {
				t.Fatalf("verify with same key: %v", err)
			}
			if len(got) != len(payload) {
				t.Fatalf("want %d fields, got %d: %v", len(payload), len(got), got)
			}
			for k, v := range payload {
				if !sameField(got[k], v) {
					t.Errorf("field %s: want %v, got %#v", k, v, got[k])
				}
			}

			if _, err := p.Verify(yiiep.OpPreset, tok, []byte("another-secret"), now); err == nil {
				t.Fatal("verify with a different key should fail")
			}

			if _, err := p.Verify(yiiep.OpRefund, tok, key, now); err == nil {
				t.Fatal("a preset token must not verify as refund")
			}
		})
	}

	t.Run("sign does not touch the payload", func(t *testing.T) {
		in := map[string]any{"hash": "h"}
		if _, err := yiiep.ProtocolV2.Sign(yiiep.OpUnset, "m-1", in, key, now); err != nil {
			t.Fatalf("sign: %v", err)
		}
		if len(in) != 1 {
			t.Fatalf("payload mutated: %v", in)
		}
	})
}

// sameField compares numbers by decimal value; verified claims carry json.Number.
func sameField(got, want any) bool {
	n, ok := got.(json.Number)
	if !ok {
		return got == want
	}
	g, err := decimal.NewFromString(n.String())
	if err != nil {
		return false
	}
	var w decimal.Decimal
	switch x := want.(type) {
	case json.Number:
		w, err = decimal.NewFromString(x.String())
	case float64:
		w = decimal.NewFromFloat(x)
	default:
		return false
	}
	return err == nil && g.Equal(w)
}

func TestProtocolV1_Expiry(t *testing.T) {
	key := []byte("k")
	issued := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := yiiep.ProtocolV1.Sign(yiiep.OpAState, "m-1", map[string]any{}, key, issued)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := yiiep.ProtocolV1.Verify(yiiep.OpAState, tok, key, issued.Add(4*time.Minute)); err != nil {
		t.Fatalf("token should still be valid after 4 minutes: %v", err)
	}
	_, err = yiiep.ProtocolV1.Verify(yiiep.OpAState, tok, key, issued.Add(10*time.Minute))
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("want expired token error, got %v", err)
	}
}

func TestProtocol_RejectsOtherAlgorithms(t *testing.T) {
	key := []byte("k")
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{"success": true}).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := yiiep.ProtocolV1.Verify(yiiep.OpPreset, tok, key, time.Now()); err == nil {
		t.Fatal("HS512 token should be rejected")
	}
}

func TestProtocol_PayPayload(t *testing.T) {
	req := yiiep.PayRequest{BillHash: "h-1", Account: "22501020304", PayCode: "MM-778"}

	v1, err := yiiep.ProtocolV1.PayPayload(req)
	if err != nil {
		t.Fatalf("v1: %v", err)
	}
	if _, ok := v1["account"]; ok || v1["hash"] != "h-1" || v1["paycode"] != "MM-778" {
		t.Fatalf("v1 payload: %v", v1)
	}

	v2, err := yiiep.ProtocolV2.PayPayload(req)
	if err != nil {
		t.Fatalf("v2: %v", err)
	}
	if v2["account"] != "22501020304" || v2["hash"] != "h-1" || v2["paycode"] != "MM-778" {
		t.Fatalf("v2 payload: %v", v2)
	}

	if _, err := yiiep.ProtocolV2.PayPayload(yiiep.PayRequest{BillHash: "h-1", PayCode: "c"}); !errors.Is(err, yiiep.ErrInput) {
		t.Fatalf("v2 without account: want ErrInput, got %v", err)
	}
	if _, err := yiiep.ProtocolV1.PayPayload(yiiep.PayRequest{BillHash: "h-1"}); !errors.Is(err, yiiep.ErrInput) {
		t.Fatalf("v1 without pay code: want ErrInput, got %v", err)
	}
}

func TestProtocolByVersion(t *testing.T) {
	if p, err := yiiep.ProtocolByVersion(""); err != nil || p.Version() != yiiep.ProtocolVersion1 {
		t.Fatalf("default: %v %v", p, err)
	}
	if p, err := yiiep.ProtocolByVersion("V2"); err != nil || p.Version() != yiiep.ProtocolVersion2 {
		t.Fatalf("v2: %v %v", p, err)
	}
	if _, err := yiiep.ProtocolByVersion("v9"); err == nil {
		t.Fatal("unknown version should fail")
	}
}
