package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pli-cadastros/plicss"
	"github.com/pli-cadastros/plicss/internal/logger"
	"github.com/pli-cadastros/plicss/internal/minify"
	"github.com/pli-cadastros/plicss/internal/watch"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Inline @imports, minify and fingerprint the CSS bundles",
	Long: `Build core.css and every pages/*.css into <name>.min.css plus a
content-hashed copy, and record both in css-manifest.json.

With --watch the build reruns whenever a source stylesheet changes.`,
	RunE: runBuild,
}

func init() {
	f := buildCmd.Flags()
	f.String("engine", "", fmt.Sprintf("Minifier engine: %s (default %q)", strings.Join(minify.Engines(), "|"), minify.EngineTextual))
	f.StringSlice("entries", nil, "Entries relative to the CSS dir (default core.css and pages/*.css)")
	f.Int("hash-length", 0, "Hex characters in the content hash (default 10)")
	f.Int("concurrency", 0, "Entries built in parallel (default number of CPUs)")
	f.BoolP("watch", "w", false, "Rebuild when sources change")
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg := buildConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	res, err := plicss.Build(ctx, cfg)
	if err != nil {
		return err
	}
	printBuild(cmd, res)

	if !getBoolWithFallback("watch", "build.watch", false) {
		return exitWith(res.ExitCode())
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.For("watch")
	w := &watch.Watcher{Root: cfg.CSSPath(), Log: log}
	log.Infof("watching %s, press Ctrl+C to stop", cfg.CSSDir)
	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		log.Infof("%d file(s) changed, rebuilding", len(changed))
		res, err := plicss.Build(ctx, cfg)
		if err != nil {
			return err
		}
		printBuild(cmd, res)
		return nil
	})
}

func printBuild(cmd *cobra.Command, res *plicss.BuildResult) {
	if quiet() {
		return
	}
	r := newReporter(cmd)
	for _, e := range res.Entries {
		if e.Err != nil {
			continue
		}
		r.Success("✓ %s -> %s (%d -> %d bytes)", e.Entry, e.Hashed, e.SourceBytes, e.Bytes)
		for _, m := range e.Missing {
			r.Hint("  missing import: %s", m)
		}
	}
	if res.Failed > 0 {
		r.Hint("%d of %d entries failed, see the log above", res.Failed, len(res.Entries))
	}
}
