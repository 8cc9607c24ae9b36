package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvService_Typed(t *testing.T) {
	e := &EnvService{}

	t.Setenv("AA_BOOL", "true")
	t.Setenv("AA_BAD_BOOL", "maybe")
	t.Setenv("AA_INT", "4")
	t.Setenv("AA_DUR", "1500ms")
	t.Setenv("AA_BAD_DUR", "soon")

	assert.True(t, e.GetBool("AA_BOOL", false))
	assert.True(t, e.GetBool("AA_BAD_BOOL", true))
	assert.False(t, e.GetBool("AA_UNSET_BOOL", false))
	assert.Equal(t, 4, e.GetInt("AA_INT", 1))
	assert.Equal(t, 7, e.GetInt("AA_UNSET_INT", 7))
	assert.Equal(t, 1500*time.Millisecond, e.GetDuration("AA_DUR", time.Second))
	assert.Equal(t, time.Second, e.GetDuration("AA_BAD_DUR", time.Second))
	assert.Equal(t, "fallback", e.GetWithDefault("AA_UNSET_STR", "fallback"))
}

func TestEnvService_MustGet(t *testing.T) {
	e := &EnvService{}
	t.Setenv("AA_KEY", "secret")

	val, err := e.MustGet("AA_KEY")
	require.NoError(t, err)
	assert.Equal(t, "secret", val)

	_, err = e.MustGet("AA_MISSING_KEY")
	assert.Error(t, err)
}

func TestNewEnvService_LoadsAppEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("AA_FROM_FILE=loaded\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	t.Setenv("APP_ENV", "test")
	t.Setenv("AA_FROM_FILE", "")

	e := NewEnvService()
	assert.Equal(t, "loaded", e.Get("AA_FROM_FILE"))
}
