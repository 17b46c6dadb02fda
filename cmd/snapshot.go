// File: cmd/snapshot.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/internal/aria"
	"github.com/kalyptra/ariadne/internal/axtree"
	"github.com/kalyptra/ariadne/internal/browser"
	"github.com/kalyptra/ariadne/internal/config"
	"github.com/kalyptra/ariadne/internal/domdoc"
	"github.com/kalyptra/ariadne/internal/observability"
)

func newSnapshotCommand(cfgFn func() *config.Config) *cobra.Command {
	var (
		url     string
		file    string
		format  string
		pattern bool
		refs    bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture and render the accessible tree of a page or HTML file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (url == "") == (file == "") {
				return fmt.Errorf("exactly one of --url or --file is required")
			}
			if format != "text" && format != "graph" {
				return fmt.Errorf("--format must be 'text' or 'graph', got %q", format)
			}

			var (
				snap *axtree.Snapshot
				err  error
			)
			if file != "" {
				snap, err = snapshotFile(file, cfgFn().Resolver().RefPrefix, refs)
			} else {
				snap, err = snapshotLive(cmd, cfgFn(), url)
			}
			if err != nil {
				return err
			}

			opts := axtree.RenderOptions{Refs: refs, Pattern: pattern}
			if format == "graph" {
				out, err := axtree.MarshalGraph(snap, opts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), axtree.RenderText(snap, opts))
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "page to capture")
	cmd.Flags().StringVar(&file, "file", "", "local HTML file to capture instead of a live page")
	cmd.Flags().StringVar(&format, "format", "text", "output form: text or graph")
	cmd.Flags().BoolVar(&pattern, "pattern", false, "replace volatile numerics with wildcard patterns")
	cmd.Flags().BoolVar(&refs, "refs", true, "mint element references")
	return cmd
}

func snapshotFile(path, refPrefix string, refs bool) (*axtree.Snapshot, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := domdoc.Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	logger := observability.GetLogger()
	builder := axtree.NewBuilder(aria.New(doc), axtree.NewRefAssigner(refPrefix), logger)
	return builder.Build(doc, doc.Root, axtree.Options{ForAI: refs})
}

func snapshotLive(cmd *cobra.Command, cfg *config.Config, url string) (*axtree.Snapshot, error) {
	logger := observability.GetLogger()
	session, err := browser.NewSession(cmd.Context(), cfg.Browser(), logger)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if err := session.Navigate(cmd.Context(), url); err != nil {
		return nil, err
	}
	logger.Debug("Capturing snapshot.", zap.String("url", url))
	return browser.NewSnapshotter(session, cfg.Resolver().RefPrefix, logger).Snapshot(cmd.Context())
}
