package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Products(ctx context.Context) error
	Branches(ctx context.Context) error
	Simulate(ctx context.Context) error
	Lines(ctx context.Context) error
	Apply(ctx context.Context) error
	Loans(ctx context.Context) error
	Submit(ctx context.Context) error
	Show(ctx context.Context) error
	Disburse(ctx context.Context) error
	Pending(ctx context.Context) error
	Ack(ctx context.Context) error
	Sync(ctx context.Context) error
}

// runREPL starts a simple read-eval-print loop for the credline CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// The prompt shows the current connectivity status (from statusFn) and
// accepts:
//
//	help             — show available commands
//	products         — list loan products
//	branches         — list branch offices
//	simulate         — preview a repayment schedule
//	lines            — list credit lines with available balance
//	apply            — apply for a credit line
//	loans  | l       — list loan applications
//	submit           — submit a loan application
//	show             — show a single loan (interactive ID prompt)
//	disburse         — draw down from a credit line
//	pending          — list queued and failed writes
//	ack              — discard an acknowledged failed write
//	sync             — wake the sync worker
//	exit | quit      — leave the program
//
// Any errors returned by command handlers are ignored here; handlers print
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("credline (%s) > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			printlnFn("Available commands: products, branches, simulate, lines, apply, (l)oans, submit, show, disburse, pending, ack, sync, exit")

		case "products":
			_ = a.Products(ctx)

		case "branches":
			_ = a.Branches(ctx)

		case "simulate":
			_ = a.Simulate(ctx)

		case "lines":
			_ = a.Lines(ctx)

		case "apply":
			_ = a.Apply(ctx)

		case "l", "loans":
			_ = a.Loans(ctx)

		case "submit":
			_ = a.Submit(ctx)

		case "show":
			_ = a.Show(ctx)

		case "disburse":
			_ = a.Disburse(ctx)

		case "pending":
			_ = a.Pending(ctx)

		case "ack":
			_ = a.Ack(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
