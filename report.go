package plicss

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"
)

// nowFunc is replaced in tests.
var nowFunc = time.Now

// timestamp formats now like JavaScript's toISOString, which every
// existing report in docs/ uses.
func timestamp() string {
	return nowFunc().UTC().Format("2006-01-02T15:04:05.000Z")
}

// stamp is the compact form used in backup directory names.
func stamp() string {
	return nowFunc().Format("20060102150405")
}

func newRunID() string {
	return uuid.NewString()
}

// writeJSON writes v as indented JSON, creating parent directories.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return writeFile(path, data)
}

// readJSONC decodes a JSON document that may carry comments or trailing
// commas, since whitelists and merge plans are edited by hand.
func readJSONC(path string, v any) error {
	// #nosec G304 - path comes from configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// nonNil keeps empty lists as [] in JSON output.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
