// Package plicss maintains the PLI Cadastros stylesheet tree.
//
// Each tool is a stateless function over the filesystem. It reads the CSS
// tree and the JSON documents other tools left under the docs directory,
// writes its own report and returns a result whose ExitCode tells the CLI
// how the run went.
//
// # Pipeline
//
//	plicss build               inline @imports, minify, hash, write css-manifest.json
//	plicss hashes              point HTML at the hashed bundles
//	plicss prune               delete bundles no HTML references
//
// # Token governance
//
//	plicss whitelist           docs/variables-whitelist.json from the token files
//	plicss audit               flag --pli-* declarations outside the whitelist
//	plicss unused              list tokens nothing reads
//	plicss inventory           group tokens by value, propose merges
//	plicss merge plan|apply    fold duplicate tokens into one canonical name
//	plicss cleanup             rewrite deprecated names left in built bundles
//
// Library use:
//
//	cfg := plicss.DefaultConfig()
//	cfg.Root = "/srv/pli"
//	res, err := plicss.Audit(cfg)
//	if err != nil {
//		return err
//	}
//	os.Exit(res.ExitCode())
package plicss

import (
	"path/filepath"
	"strings"

	"github.com/pli-cadastros/plicss/internal/cssfile"
)

// Config locates the asset tree and tunes every tool.
// Relative paths resolve against Root; TokenFiles resolve against CSSDir.
type Config struct {
	Root      string
	CSSDir    string
	DocsDir   string
	BackupDir string
	HTMLDirs  []string

	TokenFiles        []string
	ThemeDirs         []string
	TokenPrefix       string
	DeprecationMarker string

	// Exclude holds doublestar patterns, relative to the walked directory,
	// that every file walk skips.
	Exclude []string

	Build   BuildConfig
	Merge   MergeConfig
	Cleanup CleanupConfig
}

// BuildConfig tunes the bundler.
type BuildConfig struct {
	// Entries are CSS files relative to CSSDir. Empty means core.css plus
	// every pages/*.css.
	Entries     []string
	Engine      string
	HashLength  int
	Concurrency int
}

// MergeConfig tunes the merge planner.
type MergeConfig struct {
	// Preference lists names that win canonical selection, in order.
	Preference []string
}

// CleanupConfig tunes the deprecated alias cleanup.
type CleanupConfig struct {
	// Aliases maps deprecated names to their canonical replacement.
	Aliases map[string]string
	// Targets are doublestar patterns, relative to CSSDir, of bundles to rewrite.
	Targets []string
}

// DefaultConfig mirrors the layout of the PLI Cadastros repository.
func DefaultConfig() Config {
	return Config{
		Root:      ".",
		CSSDir:    "static/css",
		DocsDir:   "docs",
		BackupDir: "backups",
		HTMLDirs:  []string{"views", "."},
		TokenFiles: []string{
			"00-configuracoes/tokens.css",
			"00-settings/_root.css",
		},
		ThemeDirs:         []string{"08-themes"},
		TokenPrefix:       "--pli-",
		DeprecationMarker: "@deprecated",
		Build: BuildConfig{
			Engine:     "textual",
			HashLength: 10,
		},
		Merge: MergeConfig{
			Preference: []string{"--pli-success", "--pli-warning", "--pli-error", "--pli-info"},
		},
		Cleanup: CleanupConfig{
			Aliases: DefaultCleanupAliases(),
			Targets: []string{"core.min.*.css", "pages/login.min.*.css"},
		},
	}
}

// DefaultCleanupAliases are the deprecated names retired by the token merge.
func DefaultCleanupAliases() map[string]string {
	return map[string]string{
		"--pli-azul-medio":         "--pli-info",
		"--pli-verde-principal":    "--pli-success",
		"--pli-amarelo":            "--pli-warning",
		"--pli-font-size-xl":       "--pli-spacing-lg",
		"--pli-font-size-2xl":      "--pli-spacing-xl",
		"--pli-glass-bg-color":     "--pli-branco",
		"--pli-glass-border-color": "--pli-branco",
	}
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	root := c.Root
	if root == "" {
		root = "."
	}
	return filepath.Join(root, filepath.FromSlash(p))
}

// CSSPath is the absolute-or-root-relative stylesheet directory.
func (c Config) CSSPath() string { return c.resolve(c.CSSDir) }

// DocsPath is the report directory.
func (c Config) DocsPath() string { return c.resolve(c.DocsDir) }

// BackupPath is the backup directory.
func (c Config) BackupPath() string { return c.resolve(c.BackupDir) }

// DocPath returns the path of a report inside the docs directory.
func (c Config) DocPath(name string) string { return filepath.Join(c.DocsPath(), name) }

func (c Config) htmlPaths() []string {
	dirs := make([]string, 0, len(c.HTMLDirs))
	for _, d := range c.HTMLDirs {
		dirs = append(dirs, c.resolve(d))
	}
	return dirs
}

func (c Config) tokenPaths() []string {
	paths := make([]string, 0, len(c.TokenFiles))
	for _, f := range c.TokenFiles {
		if filepath.IsAbs(f) {
			paths = append(paths, f)
			continue
		}
		paths = append(paths, filepath.Join(c.CSSPath(), filepath.FromSlash(f)))
	}
	return paths
}

func (c Config) walker() *cssfile.Walker {
	root := c.Root
	if root == "" {
		root = "."
	}
	return &cssfile.Walker{ProjectRoot: root, Exclude: c.Exclude}
}

// cssFiles lists every stylesheet under CSSDir.
func (c Config) cssFiles() ([]cssfile.File, error) {
	return c.walker().Find(c.CSSPath(), "**/*.css")
}

// sourceCSSFiles lists stylesheets that are not hashed bundles.
func (c Config) sourceCSSFiles() ([]cssfile.File, error) {
	files, err := c.cssFiles()
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		if !cssfile.IsHashedBundle(f.Rel) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (c Config) htmlFiles() ([]cssfile.File, error) {
	return c.walker().FindAll(c.htmlPaths(), "**/*.html")
}

// rel renders path relative to Root with forward slashes, as reports show it.
func (c Config) rel(path string) string {
	root := c.Root
	if root == "" {
		root = "."
	}
	r, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(r, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(r)
}

// isThemeOverride reports whether a file under CSSDir lies in a theme directory.
func (c Config) isThemeOverride(relToCSS string) bool {
	for _, theme := range c.ThemeDirs {
		theme = strings.Trim(filepath.ToSlash(theme), "/")
		if theme == "" {
			continue
		}
		if strings.HasPrefix(relToCSS, theme+"/") || strings.Contains("/"+relToCSS, "/"+theme+"/") {
			return true
		}
	}
	return false
}
