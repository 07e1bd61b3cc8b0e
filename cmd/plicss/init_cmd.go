package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default .plicss.yaml config file",
	Long:  `Create a .plicss.yaml configuration file in the current directory with the PLI Cadastros layout.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(defaultConfigFile); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", defaultConfigFile)
		}

		if err := os.WriteFile(defaultConfigFile, []byte(defaultConfig), 0o644); err != nil {
			return fmt.Errorf("writing config file: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", defaultConfigFile)
		return nil
	},
}

const defaultConfig = `# plicss configuration
# Every key can be overridden with PLICSS_* environment variables,
# e.g. PLICSS_CSS_DIR or PLICSS_BUILD__ENGINE.

root: .
css-dir: static/css
docs-dir: docs
backup-dir: backups
html-dirs:
  - views
  - .

# Token governance
token-prefix: --pli-
deprecation-marker: "@deprecated"
token-files:             # relative to css-dir
  - 00-configuracoes/tokens.css
  - 00-settings/_root.css
theme-dirs:              # declarations here never count as violations
  - 08-themes
exclude: []              # doublestar patterns skipped by every walk

build:
  engine: textual        # textual | tdewolff | cssmin
  hash-length: 10
  concurrency: 0         # 0 = number of CPUs
  entries: []            # empty = core.css + pages/*.css

merge:
  preference:
    - --pli-success
    - --pli-warning
    - --pli-error
    - --pli-info

cleanup:
  targets:
    - core.min.*.css
    - pages/login.min.*.css
  aliases:
    --pli-azul-medio: --pli-info
    --pli-verde-principal: --pli-success
    --pli-amarelo: --pli-warning
    --pli-font-size-xl: --pli-spacing-lg
    --pli-font-size-2xl: --pli-spacing-xl
    --pli-glass-bg-color: --pli-branco
    --pli-glass-border-color: --pli-branco
`

func init() {
	initCmd.Flags().Bool("force", false, "Overwrite existing config file")
}
