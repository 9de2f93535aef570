package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/keyfold/internal/auth"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	state() auth.State
	Signup(ctx context.Context) error
	Unlock(ctx context.Context) error
	EnrollTOTP(ctx context.Context) error
	EmailCode(ctx context.Context) error
	Code(ctx context.Context, args []string) error
	Profile(ctx context.Context) error
	Rename(ctx context.Context) error
	Export(ctx context.Context) error
	Import(ctx context.Context) error
	Stats(ctx context.Context) error
	Lock(ctx context.Context) error
	Reset(ctx context.Context) error
}

// helpFor lists the commands that make sense in the given ceremony state.
// Everything else answers with an invalid-state error anyway, so the help
// doubles as a map of the state machine.
func helpFor(s auth.State) string {
	switch s {
	case auth.StateSignup:
		return "Available commands: signup, import, exit"
	case auth.StateUnlock:
		return "Available commands: unlock, reset, exit"
	case auth.StateMFASetup:
		return "Available commands: totp, email, lock, exit"
	case auth.StateMFAVerify:
		return "Available commands: code <digits>, email, totp, lock, exit"
	case auth.StateSessionGranted:
		return "Available commands: profile, rename, export, stats, lock, reset, exit"
	default:
		return "Available commands: help, exit"
	}
}

// runREPL starts a simple read–eval–print loop for the Keyfold CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn). Which commands are
// available depends on the ceremony state:
//
//	Fresh device:
//	  - help           — show available commands
//	  - signup         — create a vault
//	  - import         — install an exported vault
//	  - exit | quit    — leave the program
//
//	Vault present:
//	  - unlock         — open the vault with the master password
//	  - totp | email   — set up or switch the second factor
//	  - code <digits>  — submit a verification code
//	  - profile        — show the decrypted profile
//	  - rename         — change the owner name
//	  - export         — write the encrypted vault to a file
//	  - stats          — show ceremony counters
//	  - lock           — wipe keys and return to the password prompt
//	  - reset          — wipe the device completely
//	  - exit | quit    — leave the program
//
// Any errors returned by command handlers are ignored here; handlers report
// their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("keyfold %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			printlnFn(helpFor(a.state()))

		case "signup":
			_ = a.Signup(ctx)

		case "unlock":
			_ = a.Unlock(ctx)

		case "totp":
			_ = a.EnrollTOTP(ctx)

		case "email":
			_ = a.EmailCode(ctx)

		case "code":
			_ = a.Code(ctx, args)

		case "profile":
			_ = a.Profile(ctx)

		case "rename":
			_ = a.Rename(ctx)

		case "export":
			_ = a.Export(ctx)

		case "import":
			_ = a.Import(ctx)

		case "stats":
			_ = a.Stats(ctx)

		case "lock":
			_ = a.Lock(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
