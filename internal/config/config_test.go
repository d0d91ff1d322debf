package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/app-bundler/internal/domain/app"
)

// TestValidate checks required fields, defaults and format validations for the manifest.
func TestValidate(t *testing.T) {
	t.Parallel()

	// No apps.
	cfg := new(Config)

	err := Validate(cfg)
	require.Error(t, err)

	// Bad support URL.
	cfg = &Config{
		SupportBaseURL: "not a url",
		Apps:           []*app.App{{Name: "my-app", RuntimeTag: "3.X"}},
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Duplicate app names.
	cfg = &Config{
		Apps: []*app.App{
			{Name: "my-app", RuntimeTag: "3.X"},
			{Name: "my-app", RuntimeTag: "3.X"},
		},
	}

	err = Validate(cfg)
	require.Error(t, err)

	// Okay; directory defaults are filled.
	cfg = &Config{
		SupportBaseURL: "https://mirror.local/runtime",
		Apps:           []*app.App{{Name: "my-app", RuntimeTag: "3.X"}},
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultDataDirname, cfg.DataDir)
	require.Equal(t, DefaultBuildDirname, cfg.BuildDir)
}

// TestSaveLoadRoundtrip ensures the manifest is persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "app-bundler.yaml")

	cfg := &Config{
		SupportBaseURL: "https://mirror.local/runtime",
		Apps: []*app.App{{
			Name:       "my-app",
			FormalName: "Tester",
			RuntimeTag: "3.X",
			ConsoleApp: true,
		}},
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.SupportBaseURL, loaded.SupportBaseURL)
	require.Len(t, loaded.Apps, 1)
	require.Equal(t, "Tester", loaded.Apps[0].FormalName)
	require.True(t, loaded.Apps[0].ConsoleApp)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)
}

// TestLoadParsesRevisionScalars accepts both integer and string revision pins.
func TestLoadParsesRevisionScalars(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "app-bundler.yaml")
	manifest := `
apps:
  - name: pinned-int
    runtime: "3.X"
    stub_binary_revision: 42
  - name: pinned-str
    runtime: "3.X"
    stub_binary_revision: "37"
`
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, app.Revision("42"), cfg.Apps[0].StubBinaryRevision)
	require.Equal(t, app.Revision("37"), cfg.Apps[1].StubBinaryRevision)
}

// TestApp looks up declared apps by name.
func TestApp(t *testing.T) {
	t.Parallel()

	cfg := &Config{Apps: []*app.App{{Name: "my-app", RuntimeTag: "3.X"}}}

	found, err := cfg.App("my-app")
	require.NoError(t, err)
	require.Equal(t, "my-app", found.Name)

	_, err = cfg.App("missing")
	require.ErrorIs(t, err, errUnknownApp)
}
