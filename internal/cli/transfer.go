package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/keyfold/internal/filex"
	"github.com/dmitrijs2005/keyfold/internal/models"
)

// Export writes the encrypted vault to a timestamped file under ./exports.
// The file contains only ciphertext and public metadata, so it can be moved
// to another machine over any channel.
func (a *App) Export(ctx context.Context) error {
	b, err := a.flow.Export(ctx)
	if err != nil {
		printlnFn("Export failed:", err.Error())
		return err
	}

	dir, err := filex.EnsureSubdDir("exports")
	if err != nil {
		printlnFn("Export failed:", err.Error())
		return err
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(dir, fmt.Sprintf("keyfold-%s.json", time.Now().Format("20060102-150405")))
	if err := filex.WriteRestricted(path, data); err != nil {
		printlnFn("Export failed:", err.Error())
		return err
	}

	printlnFn("Vault exported to", path)
	return nil
}

// Import reads an exported file and installs the vault on this device. Only
// works on a fresh device; the master password is still required to unlock.
func (a *App) Import(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Enter path to the exported file", a.out)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		printlnFn("Import failed:", err.Error())
		return err
	}

	var b models.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		printlnFn("Import failed:", err.Error())
		return err
	}

	if err := a.flow.Import(ctx, &b); err != nil {
		printlnFn("Import failed:", err.Error())
		return err
	}

	printlnFn("Vault imported. Unlock it with your master password.")
	return nil
}
