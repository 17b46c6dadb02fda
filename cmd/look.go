// File: cmd/look.go
package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kalyptra/ariadne/internal/config"
	"github.com/kalyptra/ariadne/internal/resolve"
)

func newLookCommand(cfgFn func() *config.Config) *cobra.Command {
	var (
		url       string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "look <description>",
		Short: "Resolve a natural-language description to an element reference.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if url == "" {
				return fmt.Errorf("--url is required")
			}
			if threshold <= 0 {
				threshold = cfg.Resolver().LookThreshold
			}

			st, err := buildStack(cmd.Context(), cfg, url)
			if err != nil {
				return err
			}
			defer st.cleanup()

			res, err := st.engine.Look(cmd.Context(), args[0], threshold)
			if err != nil {
				return describeFailure(cmd, err)
			}
			printResolution(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "page to resolve against")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum similarity score (default from config)")
	return cmd
}

func newWaitCommand(cfgFn func() *config.Config) *cobra.Command {
	var (
		url       string
		threshold float64
		timeout   time.Duration
		poll      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "wait <description>",
		Short: "Poll until a description resolves or the timeout elapses.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if url == "" {
				return fmt.Errorf("--url is required")
			}
			if threshold <= 0 {
				threshold = cfg.Resolver().LookThreshold
			}
			if timeout <= 0 {
				timeout = cfg.Resolver().WaitTimeout
			}
			if poll <= 0 {
				poll = cfg.Resolver().PollInterval
			}

			st, err := buildStack(cmd.Context(), cfg, url)
			if err != nil {
				return err
			}
			defer st.cleanup()

			res, err := st.engine.Wait(cmd.Context(), args[0], resolve.WaitOptions{
				Timeout:      timeout,
				PollInterval: poll,
				Threshold:    threshold,
			})
			if err != nil {
				return describeFailure(cmd, err)
			}
			printResolution(cmd, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "page to resolve against")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum similarity score (default from config)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "total wait budget (default from config)")
	cmd.Flags().DurationVar(&poll, "poll", 0, "poll interval (default from config)")
	return cmd
}

func printResolution(cmd *cobra.Command, res *resolve.Resolution) {
	fmt.Fprintf(cmd.OutOrStdout(), "ref=%s score=%.3f\n", res.Ref, res.Score)
	fmt.Fprintln(cmd.OutOrStdout(), res.Content)
}

// describeFailure keeps resolution diagnostics on stdout where callers can
// read them, while still failing the command.
func describeFailure(cmd *cobra.Command, err error) error {
	var rf *resolve.ResolutionFailure
	if errors.As(err, &rf) {
		fmt.Fprintln(cmd.OutOrStdout(), rf.Error())
	}
	var te *resolve.TimeoutError
	if errors.As(err, &te) {
		fmt.Fprintln(cmd.OutOrStdout(), te.Error())
	}
	return err
}
