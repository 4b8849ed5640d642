package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/calderalabs/starkgate/pkg/types"
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fatal(err)
	}
}

// HandleAddressesCommand prints the ledger-wide well-known contract addresses.
func HandleAddressesCommand(opts *Options, args []string) {
	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	addrs, err := p.GetContractAddresses(context.Background())
	if err != nil {
		fatal(err)
	}

	if opts.JSON {
		printJSON(addrs)
		return
	}
	fmt.Printf("Starknet:             %s\n", addrs.Starknet)
	fmt.Printf("GpsStatementVerifier: %s\n", addrs.GpsStatementVerifier)
}

// HandleBlockCommand prints a block, the latest when no number is given.
func HandleBlockCommand(opts *Options, args []string) {
	block, args := parseBlockFlag(args)
	if block == nil && len(args) > 0 {
		n, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid block number %q\n", args[0])
			os.Exit(1)
		}
		block = &n
	}

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	b, err := p.GetBlock(context.Background(), block)
	if err != nil {
		fatal(err)
	}

	if opts.JSON {
		printJSON(b)
		return
	}
	fmt.Printf("Block #%d (%s)\n", b.BlockNumber, b.Status)
	fmt.Printf("  Hash:       %s\n", b.BlockHash)
	fmt.Printf("  Parent:     %s\n", b.ParentBlockHash)
	fmt.Printf("  State root: %s\n", b.StateRoot)
	fmt.Printf("  Timestamp:  %d\n", b.Timestamp)
	fmt.Printf("  Transactions: %d\n", len(b.Transactions))
	for _, tx := range b.Transactions {
		fmt.Printf("    %-16s %s\n", tx.Type, tx.TransactionHash)
	}
}

// HandleCodeCommand prints the bytecode and ABI of a deployed contract.
func HandleCodeCommand(opts *Options, args []string) {
	block, args := parseBlockFlag(args)
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: starkgate code <contract-address> [--block N]")
		os.Exit(1)
	}
	address := parseFeltArg("contract address", args[0])

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	code, err := p.GetCode(context.Background(), address, block)
	if err != nil {
		fatal(err)
	}

	if opts.JSON {
		printJSON(code)
		return
	}
	fmt.Printf("Bytecode (%d words):\n", len(code.Bytecode))
	for _, word := range code.Bytecode {
		fmt.Printf("  %s\n", word)
	}
	if len(code.ABI) > 0 {
		fmt.Printf("ABI: %s\n", string(code.ABI))
	}
}

// HandleStorageCommand prints a raw storage slot of a contract.
func HandleStorageCommand(opts *Options, args []string) {
	block, args := parseBlockFlag(args)
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: starkgate storage <contract-address> <key> [--block N]")
		os.Exit(1)
	}
	address := parseFeltArg("contract address", args[0])
	key := parseFeltArg("storage key", args[1])

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	value, err := p.GetStorageAt(context.Background(), address, key, block)
	if err != nil {
		fatal(err)
	}

	if opts.JSON {
		printJSON(value)
		return
	}
	fmt.Println(value)
}

// HandleStatusCommand prints the current lifecycle status of a transaction.
func HandleStatusCommand(opts *Options, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: starkgate status <transaction-hash>")
		os.Exit(1)
	}
	txHash := parseFeltArg("transaction hash", args[0])

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	status, err := p.GetTransactionStatus(context.Background(), txHash)
	if err != nil {
		fatal(err)
	}

	if opts.JSON {
		printJSON(status)
		return
	}
	fmt.Printf("Status: %s\n", status.TxStatus)
	if status.BlockHash != nil {
		fmt.Printf("Block:  %s\n", status.BlockHash)
	}
	if status.TxFailureReason != nil {
		fmt.Printf("Failure: %s (%s)\n", status.TxFailureReason.ErrorMessage, status.TxFailureReason.Code)
	}
}

// HandleTxCommand prints the full transaction record.
func HandleTxCommand(opts *Options, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: starkgate tx <transaction-hash>")
		os.Exit(1)
	}
	txHash := parseFeltArg("transaction hash", args[0])

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	info, err := p.GetTransaction(context.Background(), txHash)
	if err != nil {
		fatal(err)
	}

	if opts.JSON {
		printJSON(info)
		return
	}
	fmt.Printf("Status: %s\n", info.Status)
	if info.BlockNumber != nil {
		fmt.Printf("Block:  #%d", *info.BlockNumber)
		if info.BlockHash != nil {
			fmt.Printf(" (%s)", info.BlockHash)
		}
		fmt.Println()
	}
	if info.Transaction != nil {
		fmt.Printf("Type:   %s\n", info.Transaction.Type)
		fmt.Printf("Contract: %s\n", info.Transaction.ContractAddress)
	}
	if info.TransactionFailureReason != nil {
		fmt.Printf("Failure: %s (%s)\n",
			info.TransactionFailureReason.ErrorMessage, info.TransactionFailureReason.Code)
	}
}

// HandleCallCommand executes a read-only contract call.
func HandleCallCommand(opts *Options, args []string) {
	block, args := parseBlockFlag(args)
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: starkgate call <contract-address> <entrypoint> [calldata...] [--block N]")
		os.Exit(1)
	}
	address := parseFeltArg("contract address", args[0])
	selector := parseSelectorArg(args[1])
	calldata := parseCalldata(args[2:])

	p, err := opts.NewProvider()
	if err != nil {
		fatal(err)
	}

	result, err := p.CallContract(context.Background(), types.FunctionCall{
		ContractAddress:    address,
		EntryPointSelector: selector,
		Calldata:           calldata,
	}, block)
	if err != nil {
		fatal(err)
	}

	if opts.JSON {
		printJSON(result)
		return
	}
	for _, word := range result {
		fmt.Println(word)
	}
}
