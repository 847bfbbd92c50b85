// Package main provides the CLI entry point for exmapper-go.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ukaji3/exmapper-go/pkg/exmapper"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/output"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/schema"
	"github.com/ukaji3/exmapper-go/pkg/exmapper/sheets"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	outputPath string
	verbose    bool
}

// options holds the flags of one subcommand. Each subcommand gets its
// own copy since flag definitions write their defaults.
type options struct {
	*globals
	schemaPath string
	dataPath   string
	sheet      string
	maxRows    int
	total      int
	pretty     bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:   "exmapper",
		Short: "Map records to and from Excel sheets",
		Long: `exmapper-go exports JSON records to xlsx files and imports them back,
driven by a YAML column table.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&g.outputPath, "output", "o", "", "Output file path (default: stdout)")

	rootCmd.AddCommand(
		newExportCmd(&options{globals: g}),
		newImportCmd(&options{globals: g}),
		newTemplateCmd(&options{globals: g}),
		newPlanCmd(&options{globals: g}),
	)
	return rootCmd
}

func newExportCmd(opts *options) *cobra.Command {
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export JSON records to an xlsx file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts)
		},
	}
	exportCmd.Flags().StringVar(&opts.schemaPath, "schema", "", "YAML column table")
	exportCmd.Flags().StringVar(&opts.dataPath, "data", "", "JSON array of records (default: stdin)")
	exportCmd.Flags().StringVar(&opts.sheet, "sheet", "Sheet1", "Base sheet name")
	exportCmd.Flags().IntVar(&opts.maxRows, "max-rows", exmapper.DefaultMaxRowsPerSheet, "Records per sheet")
	_ = exportCmd.MarkFlagRequired("schema")
	return exportCmd
}

func newImportCmd(opts *options) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import [input.xlsx]",
		Short: "Import records from an xlsx file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, opts, args[0])
		},
	}
	importCmd.Flags().StringVar(&opts.schemaPath, "schema", "", "YAML column table")
	importCmd.Flags().StringVar(&opts.sheet, "sheet", "", "Sheet to read (default: first sheet)")
	importCmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")
	_ = importCmd.MarkFlagRequired("schema")
	return importCmd
}

func newTemplateCmd(opts *options) *cobra.Command {
	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Write an empty import template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(cmd, opts)
		},
	}
	templateCmd.Flags().StringVar(&opts.schemaPath, "schema", "", "YAML column table")
	templateCmd.Flags().StringVar(&opts.sheet, "sheet", "Sheet1", "Sheet name")
	_ = templateCmd.MarkFlagRequired("schema")
	return templateCmd
}

func newPlanCmd(opts *options) *cobra.Command {
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Show how records would be split into sheets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, opts)
		},
	}
	planCmd.Flags().IntVar(&opts.total, "total", 0, "Number of records")
	planCmd.Flags().IntVar(&opts.maxRows, "max-rows", exmapper.DefaultMaxRowsPerSheet, "Records per sheet")
	planCmd.Flags().StringVar(&opts.sheet, "sheet", "Sheet1", "Base sheet name")
	planCmd.Flags().BoolVar(&opts.pretty, "pretty", false, "Pretty-print JSON output")
	return planCmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// newProcessor loads the column table and merges its config section with
// the flags set on cmd.
func newProcessor(cmd *cobra.Command, opts *options) (*exmapper.Processor[schema.Record], *zap.Logger, error) {
	s, fileCfg, err := schema.LoadFile(opts.schemaPath)
	if err != nil {
		return nil, nil, err
	}

	cfg := exmapper.DefaultConfig().WithFile(fileCfg)
	if f := cmd.Flags().Lookup("max-rows"); f != nil && f.Changed {
		cfg.MaxRowsPerSheet = opts.maxRows
	}

	logger, err := newLogger(opts.verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	p, err := exmapper.New(s, cfg, exmapper.WithLogger(logger))
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}
	return p, logger, nil
}

func runExport(cmd *cobra.Command, opts *options) error {
	p, logger, err := newProcessor(cmd, opts)
	if err != nil {
		return err
	}
	defer logger.Sync()

	in := cmd.InOrStdin()
	if opts.dataPath != "" {
		f, err := os.Open(opts.dataPath)
		if err != nil {
			return fmt.Errorf("failed to open data: %w", err)
		}
		defer f.Close()
		in = f
	}
	records, err := output.ReadRecords(in)
	if err != nil {
		return err
	}

	var result *exmapper.ExportResult
	err = writeOutput(cmd, opts.outputPath, func(w io.Writer) error {
		var err error
		result, err = p.Export(w, opts.sheet, records)
		return err
	})
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	for _, f := range result.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", f)
	}
	return nil
}

func runImport(cmd *cobra.Command, opts *options, inputPath string) error {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	p, logger, err := newProcessor(cmd, opts)
	if err != nil {
		return err
	}
	defer logger.Sync()

	records, err := p.ImportFile(inputPath, opts.sheet)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if records == nil {
		records = []schema.Record{}
	}

	jsonData, err := output.ToJSON(records, opts.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeJSON(cmd, opts.outputPath, jsonData)
}

func runTemplate(cmd *cobra.Command, opts *options) error {
	p, logger, err := newProcessor(cmd, opts)
	if err != nil {
		return err
	}
	defer logger.Sync()

	err = writeOutput(cmd, opts.outputPath, func(w io.Writer) error {
		return p.ExportTemplate(w, opts.sheet)
	})
	if err != nil {
		return fmt.Errorf("template failed: %w", err)
	}
	return nil
}

func runPlan(cmd *cobra.Command, opts *options) error {
	plans, err := sheets.Plan(opts.total, opts.maxRows, opts.sheet)
	if err != nil {
		return err
	}

	jsonData, err := output.ToJSON(plans, opts.pretty)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}
	return writeJSON(cmd, opts.outputPath, jsonData)
}

// writeOutput runs write against the output file, or stdout when no path
// is set.
func writeOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer f.Close()

	if err := write(f); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(cmd *cobra.Command, path string, jsonData []byte) error {
	if path != "" {
		if err := os.WriteFile(path, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
	return nil
}
