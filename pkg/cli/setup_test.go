package cli

import (
	"testing"
	"time"

	"github.com/calderalabs/starkgate/pkg/felt"
)

func TestParseGlobalFlags(t *testing.T) {
	opts := &Options{}
	rest := opts.ParseGlobalFlags([]string{
		"block", "5519",
		"--base-url", "http://localhost:5050",
		"--timeout=10s",
		"--retry-interval", "250ms",
		"--json",
	})

	if opts.BaseURL != "http://localhost:5050" {
		t.Errorf("BaseURL = %q", opts.BaseURL)
	}
	if opts.Timeout != 10*time.Second {
		t.Errorf("Timeout = %s", opts.Timeout)
	}
	if opts.RetryInterval != 250*time.Millisecond {
		t.Errorf("RetryInterval = %s", opts.RetryInterval)
	}
	if !opts.JSON {
		t.Error("JSON flag not set")
	}
	if len(rest) != 2 || rest[0] != "block" || rest[1] != "5519" {
		t.Errorf("rest = %v", rest)
	}
}

func TestParseBlockFlag(t *testing.T) {
	block, rest := parseBlockFlag([]string{"0x1a", "--block", "42", "0x2b"})
	if block == nil || *block != 42 {
		t.Errorf("block = %v", block)
	}
	if len(rest) != 2 {
		t.Errorf("rest = %v", rest)
	}

	block, rest = parseBlockFlag([]string{"0x1a"})
	if block != nil {
		t.Errorf("block = %v, want nil", block)
	}
	if len(rest) != 1 {
		t.Errorf("rest = %v", rest)
	}
}

func TestParseWaitFlag(t *testing.T) {
	wait, rest := parseWaitFlag([]string{"0x1", "--wait", "0x2"})
	if !wait {
		t.Error("wait flag not detected")
	}
	if len(rest) != 2 {
		t.Errorf("rest = %v", rest)
	}
}

func TestParseSelectorArg(t *testing.T) {
	byName := parseSelectorArg("transfer")
	want := felt.SelectorFromName("transfer")
	if !byName.Equal(want) {
		t.Errorf("selector by name = %s, want %s", byName, want)
	}

	byValue := parseSelectorArg("0x1a2b")
	if byValue.Hex() != "0x1a2b" {
		t.Errorf("selector by value = %s", byValue)
	}
}

func TestNewProviderRequiresEndpoint(t *testing.T) {
	opts := &Options{}
	if _, err := opts.NewProvider(); err == nil {
		t.Error("expected error when no endpoint is configured")
	}
}
