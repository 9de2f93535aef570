package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validMeta() VaultMeta {
	return VaultMeta{
		Email: "user@example.com",
		Name:  "User",
		Salt:  strings.Repeat("ab", 16),
	}
}

func TestVaultMeta_Validate_OK(t *testing.T) {
	require.NoError(t, validMeta().Validate())
}

func TestVaultMeta_Validate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*VaultMeta)
	}{
		{"empty email", func(m *VaultMeta) { m.Email = "" }},
		{"malformed email", func(m *VaultMeta) { m.Email = "not-an-email" }},
		{"empty name", func(m *VaultMeta) { m.Name = "" }},
		{"empty salt", func(m *VaultMeta) { m.Salt = "" }},
		{"short salt", func(m *VaultMeta) { m.Salt = "abcd" }},
		{"non-hex salt", func(m *VaultMeta) { m.Salt = strings.Repeat("zz", 16) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMeta()
			tt.mutate(&m)
			require.Error(t, m.Validate())
		})
	}
}

func TestBundle_Validate(t *testing.T) {
	b := Bundle{
		Meta:       `{"email":"user@example.com"}`,
		Blob:       "deadbeef",
		ExportedAt: time.Now().UTC(),
	}
	require.NoError(t, b.Validate())

	// MFA не обязателен, но если есть, то только hex
	b.MFA = "cafe01"
	require.NoError(t, b.Validate())
	b.MFA = "not-hex!"
	require.Error(t, b.Validate())

	b = Bundle{Blob: "deadbeef"}
	require.Error(t, b.Validate(), "meta is required")

	b = Bundle{Meta: "{}", Blob: "xx-not-hex"}
	require.Error(t, b.Validate())
}
