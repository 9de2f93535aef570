package cli

import (
	"bytes"
	"context"

	"github.com/dmitrijs2005/keyfold/internal/auth"
	"github.com/dmitrijs2005/keyfold/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Signup prompts for the owner's name, email and master password (entered
// twice) and creates the vault.
//
// On success it prints a hint about second-factor setup and returns nil. The
// password byte slices are securely wiped before returning. Any I/O or
// ceremony error is returned unchanged.
func (a *App) Signup(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your name", a.out)
	if err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		printlnFn("Passwords do not match")
		return nil
	}

	if err := a.flow.SubmitSignup(ctx, name, email, password); err != nil {
		printlnFn("Signup failed:", err.Error())
		return err
	}

	printlnFn("Vault created. Set up a second factor: totp or email")
	return nil
}

// Unlock prompts for the master password and opens the vault. Depending on
// whether a second factor is enrolled, the next step is either a code prompt
// or factor setup.
func (a *App) Unlock(ctx context.Context) error {
	password, err := getPassword("Enter master password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.flow.SubmitUnlock(ctx, password); err != nil {
		printlnFn("Unlock failed:", err.Error())
		return err
	}

	switch a.flow.State() {
	case auth.StateMFAVerify:
		printlnFn("Password accepted. Enter the code from your authenticator: code <digits>")
	case auth.StateMFASetup:
		printlnFn("Password accepted. Set up a second factor: totp or email")
	}
	return nil
}

// Lock wipes the in-memory keys and returns to the password prompt. The
// encrypted vault stays on disk.
func (a *App) Lock(ctx context.Context) error {
	if err := a.flow.Lock(ctx); err != nil {
		printlnFn("Lock failed:", err.Error())
		return err
	}
	printlnFn("Vault locked")
	return nil
}

// Reset asks for confirmation and then removes the vault from this device.
func (a *App) Reset(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "This deletes the vault from this device. Type 'yes' to continue", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		printlnFn("Cancelled")
		return nil
	}

	if err := a.flow.ResetDevice(ctx); err != nil {
		printlnFn("Reset failed:", err.Error())
		return err
	}

	printlnFn("Device wiped")
	return nil
}
