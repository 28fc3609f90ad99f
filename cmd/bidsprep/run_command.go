package main

import (
	"github.com/spf13/cobra"

	"bidsprep/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var traceFlag bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the two-pass prepare/convert state machine",
		Long: `Run executes whichever pass the input state calls for.

With no usable protocol translator (or no output root), the inventory pass
scans the DICOM tree and writes a translator template with every series set
to "EXCLUDE", then stops so the template can be edited. With an edited
translator and an existing output root, the translation pass converts each
session and appends participants manifest rows.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			opts := []workflow.Option{}
			if traceFlag {
				opts = append(opts, workflow.WithTrace(cmd.OutOrStdout()))
			}
			orchestrator, err := workflow.New(cfg, logger, opts...)
			if err != nil {
				return err
			}
			return orchestrator.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&traceFlag, "trace", false, "Print the nested directory trace during the inventory pass")
	return cmd
}
