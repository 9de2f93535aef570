package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/keyfold/internal/common"
	"github.com/dmitrijs2005/keyfold/internal/mailer"
	"github.com/dmitrijs2005/keyfold/internal/models"
	"github.com/dmitrijs2005/keyfold/internal/repositories/metadata"
)

// Export collects the vault's storage records into a portable bundle.
// Everything secret inside is already encrypted under the owner's password,
// so the bundle is safe to write to disk or move between machines.
func (f *Flow) Export(ctx context.Context) (*models.Bundle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	metaRaw, err := f.repo.Get(ctx, metaKey)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrSaltMissing
	}
	if err != nil {
		return nil, storageErr(err)
	}

	var meta models.VaultMeta
	if err := json.Unmarshal([]byte(metaRaw), &meta); err != nil {
		return nil, ErrSaltMissing
	}

	blob, err := f.repo.Get(ctx, blobKey)
	if err != nil {
		return nil, storageErr(err)
	}

	b := &models.Bundle{
		Meta:       metaRaw,
		Blob:       blob,
		ExportedAt: time.Now().UTC(),
	}

	sealed, err := f.repo.Get(ctx, mfaKey(meta.Email))
	if err == nil {
		b.MFA = sealed
	} else if !errors.Is(err, common.ErrorNotFound) {
		return nil, storageErr(err)
	}

	return b, nil
}

// Import installs a previously exported bundle on a fresh device in a single
// transaction and moves the ceremony to StateUnlock. The owner still has to
// unlock with the password the bundle was sealed under.
func (f *Flow) Import(ctx context.Context, b *models.Bundle) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSignup {
		return ErrVaultExists
	}

	if err := b.Validate(); err != nil {
		return err
	}

	var meta models.VaultMeta
	if err := json.Unmarshal([]byte(b.Meta), &meta); err != nil {
		return fmt.Errorf("invalid bundle metadata: %w", err)
	}
	if err := meta.Validate(); err != nil {
		return err
	}

	err := f.repo.WithinTx(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Set(ctx, metaKey, b.Meta); err != nil {
			return err
		}
		if err := r.Set(ctx, blobKey, b.Blob); err != nil {
			return err
		}
		if b.MFA != "" {
			return r.Set(ctx, mfaKey(meta.Email), b.MFA)
		}
		return nil
	})
	if err != nil {
		return storageErr(err)
	}

	f.state = StateUnlock
	f.log.Info(ctx, "vault imported", "email", mailer.MaskAddress(meta.Email))
	return nil
}
