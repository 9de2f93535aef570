package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"github.com/dmitrijs2005/keyfold/internal/auth"
)

type fakeExec struct {
	st auth.State

	calls []string
	args  []string
}

func (f *fakeExec) state() auth.State { return f.st }
func (f *fakeExec) Signup(ctx context.Context) error {
	f.calls = append(f.calls, "signup")
	f.st = auth.StateMFASetup
	return nil
}
func (f *fakeExec) Unlock(ctx context.Context) error {
	f.calls = append(f.calls, "unlock")
	f.st = auth.StateMFAVerify
	return nil
}
func (f *fakeExec) EnrollTOTP(ctx context.Context) error {
	f.calls = append(f.calls, "totp")
	return nil
}
func (f *fakeExec) EmailCode(ctx context.Context) error {
	f.calls = append(f.calls, "email")
	return nil
}
func (f *fakeExec) Code(ctx context.Context, args []string) error {
	f.calls = append(f.calls, "code")
	f.args = args
	f.st = auth.StateSessionGranted
	return nil
}
func (f *fakeExec) Profile(ctx context.Context) error {
	f.calls = append(f.calls, "profile")
	return nil
}
func (f *fakeExec) Rename(ctx context.Context) error {
	f.calls = append(f.calls, "rename")
	return nil
}
func (f *fakeExec) Export(ctx context.Context) error {
	f.calls = append(f.calls, "export")
	return nil
}
func (f *fakeExec) Import(ctx context.Context) error {
	f.calls = append(f.calls, "import")
	return nil
}
func (f *fakeExec) Stats(ctx context.Context) error {
	f.calls = append(f.calls, "stats")
	return nil
}
func (f *fakeExec) Lock(ctx context.Context) error {
	f.calls = append(f.calls, "lock")
	f.st = auth.StateUnlock
	return nil
}
func (f *fakeExec) Reset(ctx context.Context) error {
	f.calls = append(f.calls, "reset")
	f.st = auth.StateSignup
	return nil
}

func TestRunREPL_UnlockFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"unlock",
		"code 123456",
		"help",
		"profile",
		"stats",
		"foobar",
		"lock",
		"exit",
	}, "\n"))

	exec := &fakeExec{st: auth.StateUnlock}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"unlock", "code", "profile", "stats", "lock"}
	if len(exec.calls) < len(wantOrder) {
		t.Fatalf("few calls: %+v", exec.calls)
	}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}

	if len(exec.args) != 1 || exec.args[0] != "123456" {
		t.Fatalf("code args mismatch: %v", exec.args)
	}
}

func TestRunREPL_EmptyLinesAndQuit(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("\n   \nquit\n")
	exec := &fakeExec{st: auth.StateSignup}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestHelpFor_MatchesState(t *testing.T) {
	tests := []struct {
		state auth.State
		want  string
	}{
		{auth.StateSignup, "signup"},
		{auth.StateUnlock, "unlock"},
		{auth.StateMFASetup, "totp"},
		{auth.StateMFAVerify, "code <digits>"},
		{auth.StateSessionGranted, "export"},
	}

	for _, tt := range tests {
		if got := helpFor(tt.state); !strings.Contains(got, tt.want) {
			t.Fatalf("helpFor(%s) = %q, want mention of %q", tt.state, got, tt.want)
		}
	}
}
