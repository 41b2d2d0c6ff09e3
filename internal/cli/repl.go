package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the minimal command surface the REPL needs. The real App
// satisfies it; tests provide a stub.
type execIface interface {
	Backup(ctx context.Context) error
	Restore(ctx context.Context, name string) error
	Confirm(ctx context.Context) error
	Cancel() error
	CloudBackup(ctx context.Context) error
	CloudRestore(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Configure(ctx context.Context) error
	Test(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command and
// dispatches to a. Handlers report their own outcomes; errors are ignored
// here to keep the loop resilient. Exits on EOF, "exit" or "quit".
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner) {
	for {
		printlnFn("jobvault> ")
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "help":
			printlnFn("Available commands: backup, restore [file], confirm, cancel,")
			printlnFn("  cloudbackup, cloudrestore, login, logout, configure, test, exit")

		case "backup":
			_ = a.Backup(ctx)

		case "restore":
			name := ""
			if len(parts) > 1 {
				name = parts[1]
			}
			_ = a.Restore(ctx, name)

		case "confirm":
			_ = a.Confirm(ctx)

		case "cancel":
			_ = a.Cancel()

		case "cloudbackup":
			_ = a.CloudBackup(ctx)

		case "cloudrestore":
			_ = a.CloudRestore(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "configure":
			_ = a.Configure(ctx)

		case "test":
			_ = a.Test(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", parts[0])
		}
	}
}
