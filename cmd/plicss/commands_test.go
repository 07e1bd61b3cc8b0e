package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pli-cadastros/plicss"
)

// runCLI executes the root command against a project rooted at root.
func runCLI(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	resetKoanf()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	t.Cleanup(func() { rootCmd.SetOut(nil) })

	full := append([]string{"--root", root, "--config", filepath.Join(root, ".plicss.yaml")}, args...)
	rootCmd.SetArgs(full)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func TestAuditCommandExitsWithViolations(t *testing.T) {
	root := writeProject(t, map[string]string{
		"static/css/core.css": ":root {\n  --pli-rogue: 1px;\n}\n",
	})

	out, err := runCLI(t, root, "audit")
	assert.Equal(t, plicss.ExitViolations, plicss.ExitCode(err))
	assert.Contains(t, out, "static/css/core.css:2:3")
	assert.Contains(t, out, "--pli-rogue")
	assert.FileExists(t, filepath.Join(root, "docs", plicss.AuditReportFile))
}

func TestUnusedCommandIsAdvisory(t *testing.T) {
	root := writeProject(t, map[string]string{
		"static/css/00-configuracoes/tokens.css": ":root { --pli-nunca: 1px; }\n",
	})

	_, err := runCLI(t, root, "unused")
	assert.Equal(t, plicss.ExitAdvisory, plicss.ExitCode(err))
}

func TestWhitelistThenAuditIsClean(t *testing.T) {
	root := writeProject(t, map[string]string{
		"static/css/00-configuracoes/tokens.css": ":root {\n  --pli-azul: #00f;\n  --pli-azul-medio: #123456; /* @deprecated */\n}\n",
		"static/css/core.css":                    ".a { color: var(--pli-azul); }\n",
	})

	_, err := runCLI(t, root, "whitelist")
	require.NoError(t, err)

	_, err = runCLI(t, root, "audit")
	assert.NoError(t, err)
}

func TestBuildCommand(t *testing.T) {
	root := writeProject(t, map[string]string{
		"static/css/core.css": ".core { color: red; }\n",
	})

	_, err := runCLI(t, root, "build", "--engine", "cssmin")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "static", "css", "core.min.css"))
	assert.FileExists(t, filepath.Join(root, "static", "css", plicss.ManifestName))
}

func TestMissingInputIsFatal(t *testing.T) {
	root := writeProject(t, map[string]string{})

	_, err := runCLI(t, root, "merge", "apply")
	assert.ErrorIs(t, err, plicss.ErrMissingInput)
	assert.Equal(t, plicss.ExitFatal, plicss.ExitCode(err))
}

func TestExitWith(t *testing.T) {
	assert.NoError(t, exitWith(plicss.ExitOK))
	assert.Equal(t, plicss.ExitViolations, plicss.ExitCode(exitWith(plicss.ExitViolations)))
}
