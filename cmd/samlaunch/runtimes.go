package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lex00/samlaunch-go/internal/runtimes"
)

// runtimeInfo is the JSON output row from `samlaunch runtimes`.
type runtimeInfo struct {
	Family         string   `json:"family"`
	DefaultRuntime string   `json:"defaultRuntime"`
	DebugType      string   `json:"debugType"`
	Architectures  []string `json:"architectures"`
	ContainerDebug bool     `json:"containerDebug"`
}

// newRuntimesCmd creates the "runtimes" subcommand listing the registry.
func newRuntimesCmd() *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "runtimes",
		Short: "List supported runtime families",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuntimes(outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "Output format: text or json")

	return cmd
}

func runRuntimes(format string) error {
	var rows []runtimeInfo
	for _, spec := range runtimes.All() {
		rows = append(rows, runtimeInfo{
			Family:         string(spec.Family),
			DefaultRuntime: spec.DefaultRuntime,
			DebugType:      spec.DebugType,
			Architectures:  spec.Architectures,
			ContainerDebug: spec.RequiresContainerDebug("x86_64"),
		})
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
	case "text":
		for _, r := range rows {
			fmt.Printf("%-8s default=%-12s debugger=%-8s arch=%s\n",
				r.Family, r.DefaultRuntime, r.DebugType, strings.Join(r.Architectures, ","))
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	return nil
}
