package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/calderalabs/starkgate/pkg/felt"
	"github.com/calderalabs/starkgate/pkg/types"
)

// parseWaitFlag extracts an optional --wait flag from args.
func parseWaitFlag(args []string) (bool, []string) {
	rest := make([]string, 0, len(args))
	wait := false
	for _, arg := range args {
		if arg == "--wait" {
			wait = true
			continue
		}
		rest = append(rest, arg)
	}
	return wait, rest
}

// HandleInvokeCommand submits an invoke transaction. With --wait it
// blocks until the transaction reaches a terminal status.
func HandleInvokeCommand(opts *Options, args []string) {
	wait, args := parseWaitFlag(args)
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: starkgate invoke <contract-address> <entrypoint> [calldata...] [--wait]")
		os.Exit(1)
	}
	address := parseFeltArg("contract address", args[0])
	selector := parseSelectorArg(args[1])
	calldata := parseCalldata(args[2:])

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	resp, err := p.Invoke(ctx, address, selector, calldata, nil)
	if err != nil {
		fatal(err)
	}

	if opts.JSON && !wait {
		printJSON(resp)
		return
	}
	fmt.Printf("✅ Transaction submitted: %s\n", resp.TransactionHash)

	if wait {
		waitAndReport(ctx, opts, p, resp.TransactionHash)
	}
}

// HandleDeployCommand submits a deploy transaction from a compiled
// contract file. With --wait it blocks until the contract settles.
func HandleDeployCommand(opts *Options, args []string) {
	wait, args := parseWaitFlag(args)

	var saltArg string
	rest := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case strings.HasPrefix(arg, "--salt="):
			saltArg = strings.TrimPrefix(arg, "--salt=")
		case arg == "--salt" && i+1 < len(args):
			i++
			saltArg = args[i]
		default:
			rest = append(rest, arg)
		}
	}
	if len(rest) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: starkgate deploy <contract.json> [calldata...] [--salt S] [--wait]")
		os.Exit(1)
	}

	data, err := os.ReadFile(rest[0])
	if err != nil {
		fatal(err)
	}
	contract, err := types.ParseCompiledContract(data)
	if err != nil {
		fatal(err)
	}
	calldata := parseCalldata(rest[1:])

	var salt *felt.Felt
	if saltArg != "" {
		s := parseFeltArg("salt", saltArg)
		salt = &s
	}

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	ctx := context.Background()
	resp, err := p.Deploy(ctx, contract, salt, calldata)
	if err != nil {
		fatal(err)
	}

	if opts.JSON && !wait {
		printJSON(resp)
		return
	}
	fmt.Printf("✅ Deploy submitted: %s\n", resp.TransactionHash)
	if resp.Address != nil {
		fmt.Printf("   Contract address: %s\n", resp.Address)
	}

	if wait {
		waitAndReport(ctx, opts, p, resp.TransactionHash)
	}
}

// HandleWaitCommand blocks until an already-submitted transaction
// reaches a terminal status.
func HandleWaitCommand(opts *Options, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: starkgate wait <transaction-hash>")
		os.Exit(1)
	}
	txHash := parseFeltArg("transaction hash", args[0])

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}
	waitAndReport(context.Background(), opts, p, txHash)
}

// waiter matches the provider's confirmation surface.
type waiter interface {
	WaitForTransaction(ctx context.Context, txHash felt.Felt) (*types.TransactionStatusResponse, error)
}

func waitAndReport(ctx context.Context, opts *Options, p waiter, txHash felt.Felt) {
	fmt.Printf("⏳ Waiting for %s...\n", txHash)

	status, err := p.WaitForTransaction(ctx, txHash)
	if err != nil {
		fatal(err)
	}

	if opts.JSON {
		printJSON(status)
		return
	}
	fmt.Printf("✅ %s", status.TxStatus)
	if status.BlockHash != nil {
		fmt.Printf(" in block %s", status.BlockHash)
	}
	fmt.Println()
}
