package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleYAML = `
http:
  listen_addr: ":8080"
  force_https: false
site:
  title: "Aikotoba"
database:
  dsn: "gallery:%s@tcp(127.0.0.1:3306)/aikotoba?parseTime=true"
  password: "dev-password"
storage:
  path: "/tmp/aikotoba-test-uploads"
session:
  secret: "dev-secret"
  ttl_hours: 336
`

func writeSample(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "conf", "global.yaml"), []byte(sampleYAML), 0o644))
	return root
}

func TestLoad(t *testing.T) {
	root := writeSample(t)
	t.Setenv("AIKOTOBA_ROOT", root)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.ListenAddr)
	require.Equal(t, "Aikotoba", cfg.Site.Title)
	require.Equal(t, root, cfg.Paths.Root)
	require.Same(t, cfg, Get())
}

func TestEnvOverlayWins(t *testing.T) {
	root := writeSample(t)
	t.Setenv("AIKOTOBA_ROOT", root)
	t.Setenv("AIKOTOBA_SITE__TITLE", "Overridden")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "Overridden", cfg.Site.Title)
}

func TestLoadFailsOnMissingRequired(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "conf"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "conf", "global.yaml"),
		[]byte("http:\n  listen_addr: \":8080\"\n"), 0o644))
	t.Setenv("AIKOTOBA_ROOT", root)

	_, err := Load()
	require.Error(t, err)
}

func TestDSNInterpolation(t *testing.T) {
	t.Parallel()

	c := &Config{Database: Database{
		DSN:      "gallery:%s@tcp(db:3306)/aikotoba",
		Password: "hunter2",
	}}
	require.Equal(t, "gallery:hunter2@tcp(db:3306)/aikotoba", c.DSN())

	plain := &Config{Database: Database{DSN: "gallery:inline@tcp(db:3306)/aikotoba"}}
	require.Equal(t, "gallery:inline@tcp(db:3306)/aikotoba", plain.DSN())
}

type fakeResolver map[string]string

func (f fakeResolver) Resolve(_ context.Context, ref string) (string, error) {
	if v, ok := f[ref]; ok {
		return v, nil
	}
	return "", errors.New("unknown reference")
}

func TestResolveSecrets(t *testing.T) {
	t.Parallel()

	c := &Config{
		Database: Database{Password: "vault:secret/db#password"},
		Session:  Session{Secret: "plain-secret"},
	}
	require.True(t, c.NeedsVault())

	err := c.ResolveSecrets(context.Background(), fakeResolver{
		"secret/db#password": "from-vault",
	})
	require.NoError(t, err)
	require.Equal(t, "from-vault", c.Database.Password)
	require.Equal(t, "plain-secret", c.Session.Secret)
	require.False(t, c.NeedsVault())
}
