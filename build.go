package plicss

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pli-cadastros/plicss/internal/importer"
	"github.com/pli-cadastros/plicss/internal/logger"
	"github.com/pli-cadastros/plicss/internal/minify"
)

// ManifestName is the build manifest written into CSSDir.
const ManifestName = "css-manifest.json"

// ManifestEntry describes one built bundle.
type ManifestEntry struct {
	Hashed      string `json:"hashed"`
	Hash        string `json:"hash"`
	Bytes       int    `json:"bytes"`
	SourceBytes int    `json:"sourceBytes"`
}

// Manifest maps logical bundle names (core.min.css) to their hashed copies.
type Manifest map[string]ManifestEntry

// EntryResult is the outcome of building one entry.
type EntryResult struct {
	Entry       string   `json:"entry"`
	Output      string   `json:"output"`
	Hashed      string   `json:"hashed,omitempty"`
	Hash        string   `json:"hash,omitempty"`
	Bytes       int      `json:"bytes"`
	SourceBytes int      `json:"sourceBytes"`
	Inlined     []string `json:"inlined,omitempty"`
	Missing     []string `json:"missing,omitempty"`
	Err         error    `json:"-"`
}

// BuildResult summarises a build run.
type BuildResult struct {
	RunID    string
	Entries  []EntryResult
	Manifest Manifest
	Failed   int
}

// ExitCode is fatal only when no entry could be built.
func (r *BuildResult) ExitCode() int {
	if len(r.Entries) == 0 || r.Failed == len(r.Entries) {
		return ExitFatal
	}
	return ExitOK
}

// BuildEntries returns the configured entries, or core.css plus every
// non-minified pages/*.css when none are configured.
func BuildEntries(cfg Config) ([]string, error) {
	if len(cfg.Build.Entries) > 0 {
		return cfg.Build.Entries, nil
	}
	entries := []string{"core.css"}
	pages, err := filepath.Glob(filepath.Join(cfg.CSSPath(), "pages", "*.css"))
	if err != nil {
		return nil, err
	}
	sort.Strings(pages)
	for _, p := range pages {
		name := filepath.Base(p)
		if strings.HasSuffix(name, ".min.css") || strings.Contains(name, ".min.") {
			continue
		}
		entries = append(entries, "pages/"+name)
	}
	return entries, nil
}

// MinifiedName maps an entry to its logical output: pages/login.css -> pages/login.min.css.
func MinifiedName(entry string) string {
	return strings.TrimSuffix(entry, ".css") + ".min.css"
}

// HashedName inserts hash before the extension: core.min.css -> core.min.<hash>.css.
func HashedName(logical, hash string) string {
	return strings.TrimSuffix(logical, ".css") + "." + hash + ".css"
}

// ContentHash is the hex sha256 prefix used in hashed file names.
func ContentHash(data []byte, length int) string {
	sum := sha256.Sum256(data)
	h := hex.EncodeToString(sum[:])
	if length <= 0 || length > len(h) {
		return h
	}
	return h[:length]
}

// Build inlines, minifies and hashes every entry, then updates the manifest.
// Entries are independent; one failing entry does not stop the others.
func Build(ctx context.Context, cfg Config) (*BuildResult, error) {
	log := logger.For("build")

	minifyFn, err := minify.Lookup(cfg.Build.Engine)
	if err != nil {
		return nil, Fatal(err)
	}
	entries, err := BuildEntries(cfg)
	if err != nil {
		return nil, Fatal(fmt.Errorf("list entries: %w", err))
	}

	res := &BuildResult{RunID: newRunID(), Entries: make([]EntryResult, len(entries))}
	resolver := &importer.Resolver{BaseDir: cfg.CSSPath(), Log: log}

	limit := cfg.Build.Concurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res.Entries[i] = buildEntry(cfg, resolver, minifyFn, entry)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	manifest := Manifest{}
	manifestPath := filepath.Join(cfg.CSSPath(), ManifestName)
	if exists(manifestPath) {
		if err := readJSONC(manifestPath, &manifest); err != nil {
			log.Warnf("ignoring unreadable manifest: %v", err)
			manifest = Manifest{}
		}
	}

	for _, e := range res.Entries {
		if e.Err != nil {
			res.Failed++
			log.Errorf("%s: %v", e.Entry, e.Err)
			continue
		}
		manifest[e.Output] = ManifestEntry{Hashed: e.Hashed, Hash: e.Hash, Bytes: e.Bytes, SourceBytes: e.SourceBytes}
		log.Infof("wrote %s (%.2fKB) -> %s", e.Output, float64(e.Bytes)/1024, e.Hashed)
	}
	res.Manifest = manifest

	if res.Failed < len(res.Entries) {
		if err := writeJSON(manifestPath, manifest); err != nil {
			return res, Fatal(err)
		}
	}
	return res, nil
}

func buildEntry(cfg Config, resolver *importer.Resolver, minifyFn minify.Func, entry string) EntryResult {
	out := EntryResult{Entry: entry, Output: MinifiedName(entry)}
	src := filepath.Join(cfg.CSSPath(), filepath.FromSlash(entry))

	resolved, err := resolver.ResolveFile(src)
	if err != nil {
		out.Err = err
		return out
	}
	out.Inlined = resolved.Inlined
	out.Missing = resolved.Missing
	out.SourceBytes = len(resolved.CSS)

	minified, err := minifyFn(resolved.CSS)
	if err != nil {
		out.Err = err
		return out
	}
	out.Bytes = len(minified)
	out.Hash = ContentHash(minified, cfg.Build.HashLength)
	out.Hashed = HashedName(out.Output, out.Hash)

	for _, name := range []string{out.Output, out.Hashed} {
		if err := os.WriteFile(filepath.Join(cfg.CSSPath(), filepath.FromSlash(name)), minified, 0o644); err != nil {
			out.Err = fmt.Errorf("write %s: %w", path.Base(name), err)
			return out
		}
	}
	return out
}
