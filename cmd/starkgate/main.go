package main

import (
	"fmt"
	"os"

	"github.com/calderalabs/starkgate/pkg/cli"
)

// version metadata populated via -ldflags at build time
var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	if len(os.Args) < 2 {
		showHelp()
		return
	}

	command := os.Args[1]
	opts := cli.DefaultOptions()
	args := opts.ParseGlobalFlags(os.Args[2:])

	switch command {
	case "version":
		fmt.Printf("starkgate %s", version)
		if commit != "" {
			fmt.Printf(" (commit %s)", commit)
		}
		if date != "" {
			fmt.Printf(" built %s", date)
		}
		fmt.Println()

	// Read commands
	case "addresses":
		cli.HandleAddressesCommand(opts, args)
	case "block":
		cli.HandleBlockCommand(opts, args)
	case "code":
		cli.HandleCodeCommand(opts, args)
	case "storage":
		cli.HandleStorageCommand(opts, args)
	case "status":
		cli.HandleStatusCommand(opts, args)
	case "tx":
		cli.HandleTxCommand(opts, args)
	case "call":
		cli.HandleCallCommand(opts, args)

	// Write commands
	case "invoke":
		cli.HandleInvokeCommand(opts, args)
	case "deploy":
		cli.HandleDeployCommand(opts, args)
	case "wait":
		cli.HandleWaitCommand(opts, args)

	case "help", "--help", "-h":
		showHelp()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		showHelp()
		os.Exit(1)
	}
}

func showHelp() {
	fmt.Printf("starkgate - sequencer gateway client\n\n")
	fmt.Printf("Usage: starkgate <command> [args] [flags]\n\n")
	fmt.Printf("Read commands:\n")
	fmt.Printf("  addresses                       - Well-known ledger contract addresses\n")
	fmt.Printf("  block [number]                  - Show a block (latest by default)\n")
	fmt.Printf("  code <address>                  - Show contract bytecode and ABI\n")
	fmt.Printf("  storage <address> <key>         - Read a raw storage slot\n")
	fmt.Printf("  status <tx-hash>                - Current transaction status\n")
	fmt.Printf("  tx <tx-hash>                    - Full transaction record\n")
	fmt.Printf("  call <address> <entrypoint> [calldata...] - Read-only contract call\n\n")
	fmt.Printf("Write commands:\n")
	fmt.Printf("  invoke <address> <entrypoint> [calldata...] - Submit an invoke transaction\n")
	fmt.Printf("  deploy <contract.json> [calldata...]        - Deploy a compiled contract\n")
	fmt.Printf("  wait <tx-hash>                              - Wait for confirmation\n\n")
	fmt.Printf("Flags:\n")
	fmt.Printf("  --base-url <url>       - Sequencer root URL (or STARKGATE_URL)\n")
	fmt.Printf("  --config <path>        - YAML config file\n")
	fmt.Printf("  --timeout <dur>        - Per-request timeout (default 30s)\n")
	fmt.Printf("  --retry-interval <dur> - Delay between status polls (default 5s)\n")
	fmt.Printf("  --block <n>            - Query at a specific block (read commands)\n")
	fmt.Printf("  --wait                 - Block until confirmation (write commands)\n")
	fmt.Printf("  --json                 - Raw JSON output\n\n")
	fmt.Printf("Examples:\n")
	fmt.Printf("  starkgate block 5519 --base-url http://localhost:5050\n")
	fmt.Printf("  starkgate call 0x2fd2... balance_of 0x1a\n")
	fmt.Printf("  starkgate deploy counter.json --salt 0x7 --wait\n")
}
