package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blockquest/blockgen/internal/harness"
	"github.com/blockquest/blockgen/internal/server"
	"github.com/blockquest/blockgen/pkgs/engine"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "blockgen",
		Short: "Translate visual block programs into readable code",
		Long: `blockgen converts block programs built in the drag-and-drop editor into
readable target code, gated by the learner's level. Commands above the
current level are silently dropped from the output.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newReplCmd())
	return rootCmd
}

func newGenerateCmd() *cobra.Command {
	var (
		file  string
		lvl   int
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a blocks JSON file to code",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader, closeFunc, err := getInputReader(file)
			if err != nil {
				return err
			}
			defer func() { _ = closeFunc() }()

			data, err := io.ReadAll(reader)
			if err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			result, err := engine.GenerateJSON(data, lvl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Text())
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s level=%d lines=%d\n",
					result.Fingerprint, lvl, len(result.Lines))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "blocks.json", "Path to blocks JSON file ('-' for stdin)")
	cmd.Flags().IntVarP(&lvl, "level", "l", 1, "Learner level for command gating")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the fingerprint summary")
	return cmd
}

func newCommandsCmd() *cobra.Command {
	var (
		lvl      int
		asJSON   bool
		category string
	)

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List the commands available at a level",
		RunE: func(cmd *cobra.Command, args []string) error {
			descriptors := engine.ListCommands(lvl)
			if category != "" {
				filtered := descriptors[:0]
				for _, d := range descriptors {
					if d.Category == category {
						filtered = append(filtered, d)
					}
				}
				descriptors = filtered
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(descriptors)
			}

			for _, d := range descriptors {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-10s %s\n", d.Type, d.Category, d.Description)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lvl, "level", "l", 1, "Learner level")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON descriptors")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category (movement, action, control, utility)")
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		addr      string
		logLevel  string
		logFormat string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the transpiler over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := server.NewLogger(logLevel, logFormat, cmd.ErrOrStderr())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(logger).Run(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":5000", "Listen address")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	return cmd
}

func newReplCmd() *cobra.Command {
	var (
		lvl     int
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Build a block program interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			h := harness.New(lvl, cmd.InOrStdin(), cmd.OutOrStdout(), harness.ShouldUseColor(noColor))
			return h.Run()
		},
	}

	cmd.Flags().IntVarP(&lvl, "level", "l", 1, "Starting learner level")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	return cmd
}

// getInputReader handles the 3 modes of input:
// 1. Explicit stdin with -f -
// 2. Piped input (auto-detected when using the default file)
// 3. File input (specific file or default blocks.json)
func getInputReader(file string) (io.Reader, func() error, error) {
	if file == "-" {
		return os.Stdin, func() error { return nil }, nil
	}

	if file == "blocks.json" && hasPipedInput() {
		return os.Stdin, func() error { return nil }, nil
	}

	f, err := os.Open(file)
	if err != nil {
		return nil, nil, fmt.Errorf("error opening file %s: %w", file, err)
	}

	return f, f.Close, nil
}

// hasPipedInput detects if there's data piped to stdin
func hasPipedInput() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
