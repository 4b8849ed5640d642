package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/calderalabs/starkgate/pkg/config"
	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/provider"
)

// Options carries the global flags shared by every command.
type Options struct {
	BaseURL       string
	ConfigPath    string
	Timeout       time.Duration
	RetryInterval time.Duration
	JSON          bool
}

// DefaultOptions returns the flag defaults. The base URL falls back to
// the STARKGATE_URL environment variable.
func DefaultOptions() *Options {
	return &Options{
		BaseURL: os.Getenv("STARKGATE_URL"),
		Timeout: 30 * time.Second,
	}
}

// ParseGlobalFlags strips the global flags out of args and returns the
// remaining positional arguments.
func (o *Options) ParseGlobalFlags(args []string) []string {
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		value := func() string {
			if eq := strings.IndexByte(arg, '='); eq >= 0 {
				return arg[eq+1:]
			}
			i++
			if i < len(args) {
				return args[i]
			}
			return ""
		}

		switch {
		case arg == "--json":
			o.JSON = true
		case arg == "--base-url" || strings.HasPrefix(arg, "--base-url="):
			o.BaseURL = value()
		case arg == "--config" || strings.HasPrefix(arg, "--config="):
			o.ConfigPath = value()
		case arg == "--timeout" || strings.HasPrefix(arg, "--timeout="):
			if d, err := time.ParseDuration(value()); err == nil {
				o.Timeout = d
			}
		case arg == "--retry-interval" || strings.HasPrefix(arg, "--retry-interval="):
			if d, err := time.ParseDuration(value()); err == nil {
				o.RetryInterval = d
			}
		default:
			rest = append(rest, arg)
		}
	}
	return rest
}

// NewProvider builds the provider the commands run against.
func (o *Options) NewProvider() (*provider.SequencerProvider, error) {
	var cfg *config.Config
	var err error

	switch {
	case o.ConfigPath != "":
		cfg, err = config.LoadFromFile(o.ConfigPath)
		if err != nil {
			return nil, err
		}
	case o.BaseURL != "":
		cfg, err = config.ForBaseURL(o.BaseURL)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("no endpoint configured: pass --base-url, --config or set STARKGATE_URL")
	}

	if o.Timeout > 0 {
		cfg.Timeout = o.Timeout
	}
	if o.RetryInterval > 0 {
		cfg.RetryInterval = o.RetryInterval
	}

	return provider.New(cfg)
}

// parseFeltArg parses a positional field element, exiting with a usage
// message on failure.
func parseFeltArg(name, raw string) felt.Felt {
	f, err := felt.FromString(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s %q: %v\n", name, raw, err)
		os.Exit(1)
	}
	return f
}

// parseSelectorArg accepts either a felt or a function name.
func parseSelectorArg(raw string) felt.Felt {
	if f, err := felt.FromString(raw); err == nil {
		return f
	}
	return felt.SelectorFromName(raw)
}

// parseCalldata parses trailing felt arguments.
func parseCalldata(args []string) []felt.Felt {
	calldata := make([]felt.Felt, 0, len(args))
	for _, raw := range args {
		calldata = append(calldata, parseFeltArg("calldata element", raw))
	}
	return calldata
}

// parseBlockFlag extracts an optional --block flag from args.
func parseBlockFlag(args []string) (*uint64, []string) {
	rest := make([]string, 0, len(args))
	var block *uint64
	for i := 0; i < len(args); i++ {
		arg := args[i]
		raw := ""
		switch {
		case strings.HasPrefix(arg, "--block="):
			raw = strings.TrimPrefix(arg, "--block=")
		case arg == "--block" && i+1 < len(args):
			i++
			raw = args[i]
		default:
			rest = append(rest, arg)
			continue
		}
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			block = &n
		} else {
			fmt.Fprintf(os.Stderr, "Invalid block number %q\n", raw)
			os.Exit(1)
		}
	}
	return block, rest
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "❌ %v\n", err)
	os.Exit(1)
}
