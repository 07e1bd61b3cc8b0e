package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pli-cadastros/plicss"
)

const (
	defaultConfigFile = ".plicss.yaml"
	envPrefix         = "PLICSS_"
)

var k = koanf.New(".")

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"html-dirs":        true,
	"token-files":      true,
	"theme-dirs":       true,
	"exclude":          true,
	"build.entries":    true,
	"merge.preference": true,
	"cleanup.targets":  true,
}

// loadConfig loads configuration with precedence: flags > env > file > defaults.
// It must be called after cobra parses flags (in PreRunE or RunE).
func loadConfig(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = defaultConfigFile
	}

	if err := loadConfigFromPath(configPath); err != nil {
		return err
	}

	// Only flags the user actually set, so a flag default never hides a
	// value from the file or the environment.
	flags := cmd.Flags()
	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		if !f.Changed {
			return "", nil
		}
		return f.Name, posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("loading command flags: %w", err)
	}
	return nil
}

// loadConfigFromPath loads configuration from a file and environment variables.
// This is separated from loadConfig to allow testing without a cobra command.
func loadConfigFromPath(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return fmt.Errorf("loading config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", func(key, value string) (string, interface{}) {
		name := envKey(key)
		if listKeys[name] {
			return name, splitList(value)
		}
		return name, value
	}), nil); err != nil {
		return fmt.Errorf("loading environment variables: %w", err)
	}
	return nil
}

// envKey maps an environment variable to a config key:
//
//	PLICSS_CSS_DIR        -> css-dir
//	PLICSS_BUILD__ENGINE  -> build.engine
func envKey(name string) string {
	parts := strings.Split(strings.ToLower(strings.TrimPrefix(name, envPrefix)), "__")
	for i, p := range parts {
		parts[i] = strings.ReplaceAll(p, "_", "-")
	}
	return strings.Join(parts, ".")
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// buildConfig constructs the library's Config from koanf state.
func buildConfig() plicss.Config {
	cfg := plicss.DefaultConfig()

	cfg.Root = getStringWithFallback("root", "root", cfg.Root)
	cfg.CSSDir = getStringWithFallback("css-dir", "css-dir", cfg.CSSDir)
	cfg.DocsDir = getStringWithFallback("docs-dir", "docs-dir", cfg.DocsDir)
	cfg.BackupDir = getStringWithFallback("backup-dir", "backup-dir", cfg.BackupDir)
	cfg.HTMLDirs = getStringsWithFallback("html-dirs", "html-dirs", cfg.HTMLDirs)
	cfg.TokenFiles = getStringsWithFallback("token-files", "token-files", cfg.TokenFiles)
	cfg.ThemeDirs = getStringsWithFallback("theme-dirs", "theme-dirs", cfg.ThemeDirs)
	cfg.TokenPrefix = getStringWithFallback("token-prefix", "token-prefix", cfg.TokenPrefix)
	cfg.DeprecationMarker = getStringWithFallback("deprecation-marker", "deprecation-marker", cfg.DeprecationMarker)
	cfg.Exclude = getStringsWithFallback("exclude", "exclude", nil)

	cfg.Build.Entries = getStringsWithFallback("entries", "build.entries", nil)
	cfg.Build.Engine = getStringWithFallback("engine", "build.engine", cfg.Build.Engine)
	cfg.Build.HashLength = getIntWithFallback("hash-length", "build.hash-length", cfg.Build.HashLength)
	cfg.Build.Concurrency = getIntWithFallback("concurrency", "build.concurrency", 0)

	cfg.Merge.Preference = getStringsWithFallback("preference", "merge.preference", cfg.Merge.Preference)

	if aliases := k.StringMap("cleanup.aliases"); len(aliases) > 0 {
		cfg.Cleanup.Aliases = aliases
	}
	cfg.Cleanup.Targets = getStringsWithFallback("targets", "cleanup.targets", cfg.Cleanup.Targets)

	return cfg
}

// getStringWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringWithFallback(flagKey, configKey, defaultVal string) string {
	if v := k.String(flagKey); v != "" {
		return v
	}
	if v := k.String(configKey); v != "" {
		return v
	}
	return defaultVal
}

// getStringsWithFallback checks the flag key first, then the config file key, then returns the default.
func getStringsWithFallback(flagKey, configKey string, defaultVal []string) []string {
	if v := k.Strings(flagKey); len(v) > 0 {
		return v
	}
	if v := k.Strings(configKey); len(v) > 0 {
		return v
	}
	return defaultVal
}

// getBoolWithFallback checks the flag key first, then the config file key, then returns the default.
func getBoolWithFallback(flagKey, configKey string, defaultVal bool) bool {
	if k.Exists(flagKey) {
		return k.Bool(flagKey)
	}
	if k.Exists(configKey) {
		return k.Bool(configKey)
	}
	return defaultVal
}

// getIntWithFallback checks the flag key first, then the config file key, then returns the default.
func getIntWithFallback(flagKey, configKey string, defaultVal int) int {
	if k.Exists(flagKey) {
		return k.Int(flagKey)
	}
	if k.Exists(configKey) {
		return k.Int(configKey)
	}
	return defaultVal
}
