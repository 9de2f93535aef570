package cli

import (
	"context"
	"time"
)

// Profile prints the decrypted owner profile.
func (a *App) Profile(ctx context.Context) error {
	p, err := a.flow.Profile(ctx)
	if err != nil {
		printlnFn("Profile unavailable:", err.Error())
		return err
	}

	printlnFn("Name: ", p.Name)
	printlnFn("Email:", p.Email)
	printlnFn("Vault created:", p.CreatedAt.Format(time.RFC822))
	return nil
}

// Rename prompts for a new owner name and re-seals the vault with it.
func (a *App) Rename(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter new name", a.out)
	if err != nil {
		return err
	}

	if err := a.flow.UpdateProfile(ctx, name); err != nil {
		printlnFn("Rename failed:", err.Error())
		return err
	}

	printlnFn("Profile updated")
	return nil
}

// Stats prints the ceremony counters collected since startup.
func (a *App) Stats(ctx context.Context) error {
	m := a.flow.Metrics()

	printlnFn("Signups:        ", m.Signups)
	printlnFn("Unlocks:        ", m.Unlocks)
	printlnFn("Sessions issued:", m.SessionsIssued)
	printlnFn("Auth failures:  ", m.AuthFailures)
	printlnFn("Code failures:  ", m.CodeFailures)
	printlnFn("Device resets:  ", m.Resets)
	return nil
}
