package credentials

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_SaveLoadClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.yaml")
	store := NewFileStore(path)

	creds, err := store.Load()
	require.NoError(t, err)
	assert.True(t, creds.Empty())

	want := Credentials{Token: "tok", Username: "asha", Role: types.RoleCustomer}
	require.NoError(t, store.Save(want))

	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, store.Clear())
	got, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, Credentials{}, got)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestFileStore_UsesStorageKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, NewFileStore(path).Save(Credentials{Token: "t", Username: "u", Role: types.RoleSeller}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "token: t")
	assert.Contains(t, string(data), "username: u")
	assert.Contains(t, string(data), "userRole: seller")
}

func TestFileStore_UnknownRoleFallsBackToCustomer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: t\nusername: u\nuserRole: wizard\n"), 0o600))

	got, err := NewFileStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, types.RoleCustomer, got.Role)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(path, []byte("token: [unterminated"), 0o600))

	_, err := NewFileStore(path).Load()
	assert.Error(t, err)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Save(Credentials{Token: "x", Username: "y", Role: types.RoleAdmin}))
	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "x", got.Token)
	require.NoError(t, store.Clear())
	got, _ = store.Load()
	assert.True(t, got.Empty())
}
