//go:build !integration

package yiiep_test

import (
	"strings"
	"testing"

	"yiiep-sdk/pkg/yiiep"
)

func TestNew_BaseURLPerMode(t *testing.T) {
	t.Run("unset mode is test and uses the sandbox host", func(t *testing.T) {
		c, err := yiiep.New("m-1", "secret")
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if c.Mode() != yiiep.ModeTest {
			t.Fatalf("want test mode, got %s", c.Mode())
		}
		if c.BaseURL() != yiiep.SandboxBaseURL {
			t.Fatalf("want %s, got %s", yiiep.SandboxBaseURL, c.BaseURL())
		}
	})

	t.Run("real and test route to different hosts", func(t *testing.T) {
		prod, err := yiiep.New("m-1", "secret", yiiep.WithMode(yiiep.ModeReal))
		if err != nil {
			t.Fatalf("New real: %v", err)
		}
		sandbox, err := yiiep.New("m-1", "secret", yiiep.WithMode(yiiep.ModeTest))
		if err != nil {
			t.Fatalf("New test: %v", err)
		}
		if prod.BaseURL() == sandbox.BaseURL() {
			t.Fatalf("real and test share base url %s", prod.BaseURL())
		}
		if prod.BaseURL() != yiiep.ProductionBaseURL {
			t.Fatalf("want production host, got %s", prod.BaseURL())
		}
	})

	t.Run("unknown mode is rejected instead of falling back to production", func(t *testing.T) {
		if _, err := yiiep.New("m-1", "secret", yiiep.WithMode("prod")); err == nil {
			t.Fatal("expected error for unknown mode")
		}
	})

	t.Run("local host over http", func(t *testing.T) {
		c, err := yiiep.New("m-1", "secret", yiiep.WithLocal(), yiiep.WithMode(yiiep.ModeReal))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if !strings.HasPrefix(c.BaseURL(), "http://localhost") {
			t.Fatalf("want local host, got %s", c.BaseURL())
		}
	})

	t.Run("explicit base url gets a trailing slash", func(t *testing.T) {
		c, err := yiiep.New("m-1", "secret", yiiep.WithBaseURL("http://127.0.0.1:9/webapi/v2"))
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if c.BaseURL() != "http://127.0.0.1:9/webapi/v2/" {
			t.Fatalf("got %s", c.BaseURL())
		}
	})

	t.Run("nil protocol is rejected", func(t *testing.T) {
		if _, err := yiiep.New("m-1", "secret", yiiep.WithProtocol(nil)); err == nil {
			t.Fatal("expected error for nil protocol")
		}
	})
}

func TestParseMode(t *testing.T) {
	cases := []struct {
		in      string
		want    yiiep.Mode
		wantErr bool
	}{
		{"", yiiep.ModeTest, false},
		{"test", yiiep.ModeTest, false},
		{" REAL ", yiiep.ModeReal, false},
		{"live", "", true},
	}
	for _, tc := range cases {
		got, err := yiiep.ParseMode(tc.in)
		if (err != nil) != tc.wantErr {
			t.Fatalf("ParseMode(%q) err=%v wantErr=%v", tc.in, err, tc.wantErr)
		}
		if got != tc.want {
			t.Fatalf("ParseMode(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}
