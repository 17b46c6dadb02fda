// File: cmd/act.go
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalyptra/ariadne/api/schemas"
	"github.com/kalyptra/ariadne/internal/config"
)

func newActCommand(cfgFn func() *config.Config) *cobra.Command {
	var (
		url        string
		threshold  float64
		actionType string
		text       string
		key        string
		values     []string
		files      []string
		target     string
	)

	cmd := &cobra.Command{
		Use:   "act <description>",
		Short: "Resolve a description and execute an action on the element.",
		Long: `Resolve a description and execute an action on the element.

The action type and its parameters are best given explicitly (--type,
--text, --key, --values, --files, --target). When omitted they are
inferred from the description, which is a best-effort fallback.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cfgFn()
			if url == "" {
				return fmt.Errorf("--url is required")
			}
			if threshold <= 0 {
				threshold = cfg.Resolver().ActThreshold
			}
			req := schemas.ActionRequest{
				Description:       args[0],
				Type:              schemas.ActionType(actionType),
				Text:              text,
				Key:               key,
				Values:            values,
				Files:             files,
				TargetDescription: target,
			}
			if req.Type != "" && !req.Type.Valid() {
				return fmt.Errorf("unknown action type %q", actionType)
			}

			st, err := buildStack(cmd.Context(), cfg, url)
			if err != nil {
				return err
			}
			defer st.cleanup()

			if err := st.engine.Act(cmd.Context(), req, threshold); err != nil {
				return describeFailure(cmd, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "page to act on")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "minimum similarity score (default from config)")
	cmd.Flags().StringVar(&actionType, "type", "", "action type (click, type, press_key, hover, select_option, drag, file_upload)")
	cmd.Flags().StringVar(&text, "text", "", "text to type")
	cmd.Flags().StringVar(&key, "key", "", "key to press")
	cmd.Flags().StringSliceVar(&values, "values", nil, "option values to select")
	cmd.Flags().StringSliceVar(&files, "files", nil, "file paths to upload")
	cmd.Flags().StringVar(&target, "target", "", "drop-target description for drag")
	return cmd
}
