package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/blockquest/blockgen/pkgs/engine"
)

// debounceWindow coalesces the bursts of write events editors emit for a
// single save.
const debounceWindow = 100 * time.Millisecond

func newWatchCmd() *cobra.Command {
	var lvl int

	cmd := &cobra.Command{
		Use:   "watch <blocks-file>",
		Short: "Re-render a blocks file on every change",
		Long: `watch keeps a blocks JSON file rendered: every time the file is saved,
the generated code is printed again. This is the terminal version of the
editor's live code panel.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := args[0]

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("error creating watcher: %w", err)
			}
			defer func() { _ = watcher.Close() }()

			// Watch the directory, not the file: editors that save via
			// rename would otherwise drop the watch after the first write.
			dir := filepath.Dir(file)
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("error watching %s: %w", dir, err)
			}

			renderOnce(cmd, file, lvl)

			var timer *time.Timer
			pending := make(chan struct{}, 1)
			for {
				select {
				case event, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Clean(event.Name) != filepath.Clean(file) {
						continue
					}
					if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
						continue
					}
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(debounceWindow, func() {
						select {
						case pending <- struct{}{}:
						default:
						}
					})
				case <-pending:
					renderOnce(cmd, file, lvl)
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "watch error: %v\n", err)
				}
			}
		},
	}

	cmd.Flags().IntVarP(&lvl, "level", "l", 1, "Learner level for command gating")
	return cmd
}

// renderOnce renders the file and prints the result; render errors are
// reported and watching continues, since the next save may fix them.
func renderOnce(cmd *cobra.Command, file string, lvl int) {
	data, err := os.ReadFile(file)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "error reading %s: %v\n", file, err)
		return
	}

	result, err := engine.GenerateJSON(data, lvl)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "render failed: %v\n", err)
		return
	}

	fmt.Fprintf(cmd.OutOrStdout(), "--- %s (%s, level %d) ---\n", file, result.Fingerprint, lvl)
	fmt.Fprintln(cmd.OutOrStdout(), result.Text())
}
