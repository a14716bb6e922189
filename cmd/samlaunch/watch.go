package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// newWatchCmd creates the "watch" subcommand for re-validating templates on
// file changes.
func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-validate templates on file changes",
		Long: `Watch monitors a directory for template changes and re-runs validation.

The watch command:
- Monitors the directory for .yaml/.yml/.json changes
- Re-validates changed templates
- Debounces rapid changes

Examples:
    samlaunch watch .
    samlaunch watch ./project --debounce 1s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runWatch(dir, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond, "Debounce duration for rapid changes")

	return cmd
}

// runWatch monitors template files and re-validates on changes.
func runWatch(dir string, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	abs, err := filepath.Abs(dir)
	if err != nil {
		return err
	}
	if err := addDirRecursive(watcher, abs); err != nil {
		return fmt.Errorf("failed to watch %s: %w", abs, err)
	}
	fmt.Printf("Watching: %s\n", abs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Debounce timer
	var debounceTimer *time.Timer
	revalidate := make(chan string, 1)

	fmt.Println("Watching for template changes... (Ctrl+C to stop)")

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !isTemplatePath(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			// Debounce: reset timer on each change
			changed := event.Name
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounce, func() {
				select {
				case revalidate <- changed:
				default:
				}
			})

		case path := <-revalidate:
			fmt.Printf("\n[%s] %s changed, validating...\n", time.Now().Format("15:04:05"), path)
			result, err := validateTemplate(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Validation error: %v\n", err)
				continue
			}
			if result.Success {
				fmt.Printf("Validation passed: %d resources OK\n", result.Resources)
			} else {
				for _, msg := range result.Errors {
					fmt.Printf("  ERROR: %s\n", msg)
				}
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)

		case <-sigChan:
			fmt.Println("\nStopping watch...")
			return nil
		}
	}
}

func isTemplatePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// addDirRecursive adds a directory and all subdirectories to the watcher.
func addDirRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			// Skip hidden directories
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			if filepath.Base(path) == "node_modules" || filepath.Base(path) == "vendor" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
