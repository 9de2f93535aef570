// Package cli provides the interactive Keyfold command-line client.
//
// It wires configuration, local storage and the unlock ceremony into an
// interactive REPL. Typical flow: create or unlock the vault with the master
// password, pass the second-factor check, then work with the profile until
// lock or exit.
//
// Key features:
//   - Signup / Unlock with a master password (never stored anywhere)
//   - Second factor: authenticator app (QR enrollment) or emailed codes
//   - Profile view and rename
//   - Export / Import of the encrypted vault
//   - Lock and full device reset
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
