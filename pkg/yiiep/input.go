package yiiep

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountFrom converts v into a decimal amount. Go numeric types, decimal.Decimal,
// json.Number and numeric strings are accepted; anything else is an *InputError.
func AmountFrom(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case decimal.Decimal:
		return x, nil
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero, inputErr("amount", "nil")
		}
		return *x, nil
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int8:
		return decimal.NewFromInt(int64(x)), nil
	case int16:
		return decimal.NewFromInt(int64(x)), nil
	case int32:
		return decimal.NewFromInt32(x), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case uint:
		return fromUint(uint64(x)), nil
	case uint8:
		return fromUint(uint64(x)), nil
	case uint16:
		return fromUint(uint64(x)), nil
	case uint32:
		return fromUint(uint64(x)), nil
	case uint64:
		return fromUint(x), nil
	case float32:
		return decimal.NewFromFloat32(x), nil
	case float64:
		return decimal.NewFromFloat(x), nil
	case json.Number:
		return parseAmount(string(x))
	case string:
		return parseAmount(x)
	}
	return decimal.Zero, inputErr("amount", "unsupported type %T", v)
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, inputErr("amount", "empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, inputErr("amount", "%q is not a number", s)
	}
	return d, nil
}

func checkAmount(d decimal.Decimal) (float64, error) {
	if !d.IsPositive() {
		return 0, inputErr("amount", "must be greater than zero, got %s", d.String())
	}
	return d.InexactFloat64(), nil
}

// NormalizeCurrency accepts a three-letter ISO 4217 code and returns it upper-cased.
func NormalizeCurrency(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return "", inputErr("currency", "want a 3-letter ISO code, got %q", s)
	}
	for i := 0; i < len(s); i++ {
		ch := s[i] | 0x20
		if ch < 'a' || ch > 'z' {
			return "", inputErr("currency", "want a 3-letter ISO code, got %q", s)
		}
	}
	return strings.ToUpper(s), nil
}

func checkID(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", inputErr(field, "empty")
	}
	return s, nil
}
