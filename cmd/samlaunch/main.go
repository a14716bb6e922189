// Command samlaunch resolves AWS SAM debug configurations into launch
// descriptors for an external debug-adapter launcher.
//
// Usage:
//
//	samlaunch resolve -c launch.json      Resolve a launch configuration
//	samlaunch validate template.yaml      Pre-flight lint a template
//	samlaunch runtimes                    List supported runtimes
//	samlaunch version                     Show version
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// A .env next to the invocation can carry AWS_PROFILE/AWS_REGION.
	_ = godotenv.Load()

	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "samlaunch",
		Short: "Resolve SAM debug configurations into launch descriptors",
		Long: `samlaunch resolves partially-specified AWS SAM debug configurations into
fully-populated, runtime-specific launch descriptors.

Given a launch configuration:

    {
        "type": "aws-sam",
        "request": "direct-invoke",
        "invokeTarget": {
            "target": "template",
            "templatePath": "./template.yaml",
            "logicalId": "HelloWorldFunction"
        }
    }

samlaunch infers the code root, handler, debug ports, and debugger wiring,
and writes the intermediate files the SAM CLI build/run step consumes:

    samlaunch resolve -c launch.json`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, or error")

	rootCmd.AddCommand(
		newResolveCmd(),
		newValidateCmd(),
		newRuntimesCmd(),
		newGraphCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("samlaunch %s\n", getVersion())
		},
	}
}

// setupLogger installs the default slog handler at the requested level.
func setupLogger(level string) error {
	lvl, err := parseLevel(level)
	if err != nil {
		return err
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

func parseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}
