package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/codequality-tools/cppcheck-codequality/internal/config"
	"github.com/codequality-tools/cppcheck-codequality/internal/convert"
	"github.com/codequality-tools/cppcheck-codequality/internal/logging"
)

const toolVersion = "1.0.0"

var (
	flagConfig   string
	flagInput    string
	flagOutput   string
	flagBaseDirs []string
	flagLogLevel string
	flagLogFile  string
)

var rootCmd = &cobra.Command{
	Use:     "cppcheck-codequality",
	Short:   "Convert cppcheck XML reports to Code Quality JSON",
	Version: toolVersion,
	Long: `cppcheck-codequality converts the XML defect report produced by cppcheck
into the Code Climate "Code Quality" JSON format understood by developer
dashboards such as GitLab merge request widgets.

Example:
  cppcheck --xml --enable=warning,style,performance ./src 2> cppcheck.xml
  cppcheck-codequality convert -i cppcheck.xml -o cppcheck.json`,
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert one cppcheck XML report file",
	Long: `Convert a cppcheck XML report into a Code Quality JSON report.

Relative source paths in the report are resolved against the current
directory; pass --base-dir (repeatable) when the sources live elsewhere, so
that fingerprints can include the offending source line.

Examples:
  cppcheck-codequality convert -i cppcheck.xml -o cppcheck.json
  cppcheck-codequality convert -i cppcheck.xml -o - -b ./src -b ./include`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVar(&flagConfig, "config", "",
		"Path to a YAML config file (default: ./"+config.DefaultFileName+" if present)")
	convertCmd.Flags().StringVarP(&flagInput, "input-file", "i", "cppcheck.xml",
		"The cppcheck XML report file to read defects from")
	convertCmd.Flags().StringVarP(&flagOutput, "output-file", "o", "cppcheck.json",
		"Output file path for the JSON report (use '-' for stdout)")
	convertCmd.Flags().StringArrayVarP(&flagBaseDirs, "base-dir", "b", nil,
		"Base directory where source files can be found (repeatable)")
	convertCmd.Flags().StringVarP(&flagLogLevel, "loglevel", "l", "info",
		"Log message severity level: debug, info, warn, error")
	convertCmd.Flags().StringVarP(&flagLogFile, "logfile", "L", "",
		"Log messages to a file, in addition to the console")

	rootCmd.AddCommand(convertCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	// Flags the user set explicitly win over config file values.
	if cmd.Flags().Changed("input-file") {
		cfg.InputFile = flagInput
	}
	if cmd.Flags().Changed("output-file") {
		cfg.OutputFile = flagOutput
	}
	if cmd.Flags().Changed("base-dir") {
		cfg.BaseDirs = flagBaseDirs
	}
	if cmd.Flags().Changed("loglevel") {
		cfg.LogLevel = flagLogLevel
	}
	if cmd.Flags().Changed("logfile") {
		cfg.LogFile = flagLogFile
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	converter := convert.New(cfg.BaseDirs, log)
	count, err := converter.ConvertFile(cfg.InputFile, cfg.OutputFile)
	if err != nil {
		return fmt.Errorf("conversion failed: %w", err)
	}

	log.Infof("Converted %d cppcheck issues", count)
	return nil
}
