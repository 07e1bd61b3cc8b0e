package plicss

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/pli-cadastros/plicss/internal/logger"
)

// tokenDocs are copied along with the CSS tree.
var tokenDocs = []string{
	"tokens-inventory.json",
	"tokens-duplicatas.json",
	"tokens-metricas.json",
	"tokens-merge-candidatos.json",
	"Fase2-Tokens-TABELA.md",
	"variables-whitelist.json",
}

// BackupResult describes one backup.
type BackupResult struct {
	Dir   string
	Files int
}

// Backup copies the CSS tree and the token documents into
// <backup-dir>/css-backup-<YYYYMMDDhhmmss>/, preserving paths relative to Root.
func Backup(cfg Config) (*BackupResult, error) {
	log := logger.For("backup")
	dest := filepath.Join(cfg.BackupPath(), "css-backup-"+stamp())
	res := &BackupResult{Dir: dest}

	src := cfg.CSSPath()
	if !exists(src) {
		return nil, missingInput(src)
	}
	skip, _ := filepath.Abs(cfg.BackupPath())

	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if abs, _ := filepath.Abs(path); abs == skip {
				return filepath.SkipDir
			}
			return nil
		}
		if err := copyFile(path, filepath.Join(dest, filepath.FromSlash(cfg.rel(path)))); err != nil {
			return err
		}
		res.Files++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("backup %s: %w", src, err)
	}

	for _, name := range tokenDocs {
		doc := cfg.DocPath(name)
		if !exists(doc) {
			continue
		}
		if err := copyFile(doc, filepath.Join(dest, filepath.FromSlash(cfg.rel(doc)))); err != nil {
			return nil, fmt.Errorf("backup %s: %w", name, err)
		}
		res.Files++
	}

	log.Infof("backup created in %s (%d files)", cfg.rel(dest), res.Files)
	return res, nil
}

// backupFiles copies the given files into <backup-dir>/<label>-<stamp>/
// before a destructive tool touches them. An empty list creates nothing.
func backupFiles(cfg Config, label string, paths []string) (string, error) {
	if len(paths) == 0 {
		return "", nil
	}
	dest := filepath.Join(cfg.BackupPath(), label+"-"+stamp())

	var errs error
	for _, p := range paths {
		rel := cfg.rel(p)
		if filepath.IsAbs(filepath.FromSlash(rel)) || strings.HasPrefix(rel, "..") {
			rel = filepath.Base(p)
		}
		errs = multierr.Append(errs, copyFile(p, filepath.Join(dest, filepath.FromSlash(rel))))
	}
	if errs != nil {
		return dest, fmt.Errorf("backup before %s: %w", label, errs)
	}
	logger.For(label).Debugf("backed up %d files to %s", len(paths), cfg.rel(dest))
	return dest, nil
}

func copyFile(src, dst string) error {
	// #nosec G304 - src is inside the configured tree
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
