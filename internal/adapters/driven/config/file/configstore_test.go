package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestDefaultDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".policyshield"), dir)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "ollama"))
	require.NoError(t, store.Set("server.port", int64(8600)))
	require.NoError(t, store.Set("ratelimit.requests_per_second", 2.5))
	require.NoError(t, store.Set("shield.prompt_deny_list", []string{"exploit", "wipe"}))

	assert.Equal(t, "ollama", store.GetString("llm.provider"))
	assert.Equal(t, 8600, store.GetInt("server.port"))
	assert.InDelta(t, 2.5, store.GetFloat("ratelimit.requests_per_second"), 0.0001)
	assert.InDelta(t, 8600.0, store.GetFloat("server.port"), 0.0001)
	assert.Equal(t, []string{"exploit", "wipe"}, store.GetStringSlice("shield.prompt_deny_list"))

	// Wrong types read as zero values
	assert.Empty(t, store.GetString("server.port"))
	assert.Zero(t, store.GetInt("llm.provider"))
	assert.Zero(t, store.GetFloat("llm.provider"))
	assert.Nil(t, store.GetStringSlice("llm.provider"))
}

func TestConfigStore_Get_NotFound(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	val, ok := store.Get("nonexistent")

	assert.False(t, ok)
	assert.Nil(t, val)
}

func TestConfigStore_Persistence_NestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.provider", "gemini"))
	require.NoError(t, store.Set("llm.model", "gemini-2.0-flash-lite"))
	require.NoError(t, store.Set("server.port", int64(9000)))
	require.NoError(t, store.Set("shield.output_deny_list", []string{"reboot"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "[server]")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "gemini", reloaded.GetString("llm.provider"))
	assert.Equal(t, "gemini-2.0-flash-lite", reloaded.GetString("llm.model"))
	assert.Equal(t, 9000, reloaded.GetInt("server.port"))
	assert.Equal(t, []string{"reboot"}, reloaded.GetStringSlice("shield.output_deny_list"))
	assert.Equal(t, []string{
		"llm.model", "llm.provider", "server.port", "shield.output_deny_list",
	}, reloaded.Keys())
}

func TestConfigStore_LoadsHandWrittenFile(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[shield]
auth_phrase = "let me in"

[llm]
provider = "mock"
mock_latency = "10ms"
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "let me in", store.GetString("shield.auth_phrase"))
	assert.Equal(t, "10ms", store.GetString("llm.mock_latency"))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("llm.api_key", "secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "worker.key" + string(rune('0'+id))
			_ = store.Set(key, int64(id))
			_ = store.GetInt(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()

	assert.Len(t, store.Keys(), 10)
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestConfigStore_Set_WriteFileError(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	// Replace the file with a directory to cause write error
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("another", "value"))
}

func TestUnflattenMap(t *testing.T) {
	got := unflattenMap(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"top":   true,
		"a.b.e": "shadowed by leaf a.b",
	})

	assert.Equal(t, map[string]any{
		"a": map[string]any{
			"b": 1,
			"c": map[string]any{"d": "x"},
		},
		"top": true,
	}, got)
}

func TestFlattenMap_RoundTrip(t *testing.T) {
	flat := map[string]any{"llm.provider": "mock", "server.port": int64(1), "x": "y"}

	assert.Equal(t, flat, flattenMap(unflattenMap(flat), ""))
}
