package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/dmitrijs2005/keyfold/internal/common"
	"github.com/dmitrijs2005/keyfold/internal/cryptox"
	"github.com/dmitrijs2005/keyfold/internal/models"
	"github.com/dmitrijs2005/keyfold/internal/repositories/metadata"
)

// Profile returns the decrypted profile of an unlocked vault.
func (f *Flow) Profile(ctx context.Context) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSessionGranted {
		return nil, ErrInvalidState
	}
	return f.readProfileLocked(ctx)
}

// UpdateProfile changes the display name, re-seals the vault blob with a
// fresh nonce and updates metadata and blob in one transaction.
func (f *Flow) UpdateProfile(ctx context.Context, name string) error {
	if err := f.begin(); err != nil {
		return err
	}
	defer f.end()

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateSessionGranted {
		return ErrInvalidState
	}

	if err := validation.Validate(name, validation.Required, validation.Length(1, 200)); err != nil {
		return fmt.Errorf("invalid name: %w", err)
	}

	profile, err := f.readProfileLocked(ctx)
	if err != nil {
		return err
	}
	profile.Name = name

	blob, err := cryptox.SealJSON(f.key, profile)
	if err != nil {
		return fmt.Errorf("failed to seal profile: %w", err)
	}

	meta := *f.meta
	meta.Name = name
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	err = f.repo.WithinTx(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Set(ctx, metaKey, string(metaJSON)); err != nil {
			return err
		}
		return r.Set(ctx, blobKey, blob)
	})
	if err != nil {
		return storageErr(err)
	}

	f.meta = &meta
	if f.session != nil {
		f.session.Name = name
	}
	return nil
}

// readProfileLocked loads and opens the vault blob. Callers hold f.mu and
// have verified the vault is unlocked.
func (f *Flow) readProfileLocked(ctx context.Context) (*models.Profile, error) {
	blob, err := f.repo.Get(ctx, blobKey)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, ErrAuthenticationFailed
	}
	if err != nil {
		return nil, storageErr(err)
	}

	profile := &models.Profile{}
	if err := cryptox.OpenJSON(f.key, blob, profile); err != nil {
		return nil, ErrAuthenticationFailed
	}
	return profile, nil
}
