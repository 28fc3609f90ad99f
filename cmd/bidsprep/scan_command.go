package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"bidsprep/internal/dicomhdr"
	"bidsprep/internal/scanner"
	"bidsprep/internal/series"
	"bidsprep/internal/translator"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var traceFlag bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Inventory the DICOM tree without touching the translator",
		Long: `Scan walks the input tree, deduplicates series, and reports each
distinct series key alongside its current translator label. It never writes
the translator or the output root, so it is safe to run at any time.`,
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

			opts := []scanner.Option{
				scanner.WithIgnoredFiles(cfg.Translator.Filename),
			}
			if traceFlag {
				opts = append(opts, scanner.WithTrace(cmd.OutOrStdout()))
			}
			sc := scanner.New(cfg.Paths.DICOMDir, dicomhdr.NewFileReader(), logger, opts...)
			inv, err := sc.Scan(cmd.Context())
			if err != nil {
				return err
			}

			dict, err := translator.Load(cfg.TranslatorPath())
			if err != nil {
				return fmt.Errorf("load protocol translator: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderSeriesTable(inv.Keys.Keys(), dict))
			fmt.Fprintln(out, renderScanStats(inv.Stats))
			return nil
		},
	}

	cmd.Flags().BoolVar(&traceFlag, "trace", false, "Print the nested directory trace while scanning")
	return cmd
}

func renderSeriesTable(keys []series.Key, dict *translator.Dictionary) string {
	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		label, err := dict.Lookup(key)
		status := "labeled"
		switch {
		case err != nil:
			label = ""
			status = "unlabeled"
		case translator.Excluded(label):
			status = "excluded"
		}
		rows = append(rows, []string{key.String(), label, status})
	}
	return renderTable([]string{"Series Key", "Label", "Status"}, rows)
}

func renderScanStats(stats scanner.Stats) string {
	rows := [][]string{
		{"Files seen", strconv.Itoa(stats.FilesSeen)},
		{"Parsed", strconv.Itoa(stats.Parsed)},
		{"Not DICOM", strconv.Itoa(stats.NotDICOM)},
		{"Corrupt", strconv.Itoa(stats.Corrupt)},
		{"I/O failures", strconv.Itoa(stats.IOFailures)},
	}
	return renderTable([]string{"Metric", "Count"}, rows, 1)
}
