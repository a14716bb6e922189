package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/credentials"
	"github.com/lex00/samlaunch-go/internal/launch"
	"github.com/lex00/samlaunch-go/internal/registry"
)

// newResolveCmd creates the "resolve" subcommand: the CLI form of the
// library's external caller.
func newResolveCmd() *cobra.Command {
	var (
		configFile string
		configName string
		workspace  string
		buildDir   string
		noCreds    bool
		verify     bool
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a launch configuration into a launch descriptor",
		Long: `Resolve reads a launch configuration file, resolves the selected
configuration against the workspace's templates, writes the invocation
artifacts (env-vars.json, event.json, input template), and prints the
resulting launch descriptor as JSON.

Examples:
    samlaunch resolve -c launch.json
    samlaunch resolve -c launch.json -n "Debug HelloWorld" -w ./project
    samlaunch resolve -c launch.json --no-creds`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logLevel, _ = cmd.Flags().GetString("log-level")
			return runResolve(resolveOptions{
				configFile: configFile,
				configName: configName,
				workspace:  workspace,
				buildDir:   buildDir,
				noCreds:    noCreds,
				verify:     verify,
				logLevel:   logLevel,
			})
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "launch.json", "Launch configuration file")
	cmd.Flags().StringVarP(&configName, "name", "n", "", "Configuration name to resolve (default: first)")
	cmd.Flags().StringVarP(&workspace, "workspace", "w", ".", "Workspace folder")
	cmd.Flags().StringVar(&buildDir, "build-dir", "", "Override the base build directory")
	cmd.Flags().BoolVar(&noCreds, "no-creds", false, "Skip AWS credential resolution")
	cmd.Flags().BoolVar(&verify, "verify-identity", false, "Verify credentials with sts:GetCallerIdentity")

	return cmd
}

type resolveOptions struct {
	configFile string
	configName string
	workspace  string
	buildDir   string
	noCreds    bool
	verify     bool
	logLevel   string
}

func runResolve(opts resolveOptions) error {
	req, err := loadLaunchRequest(opts.configFile, opts.configName)
	if err != nil {
		return err
	}
	if opts.buildDir != "" {
		req.Sam.BuildDir = opts.buildDir
	}

	templates, err := registry.New(opts.workspace)
	if err != nil {
		return err
	}
	defer func() {
		_ = templates.Close()
	}()

	var provider samlaunch.CredentialsProvider
	if opts.noCreds {
		provider = credentials.Static{}
	} else {
		provider = &credentials.Provider{VerifyIdentity: opts.verify}
	}

	level, err := parseLevel(opts.logLevel)
	if err != nil {
		return err
	}

	session := launch.NewSession(launch.SessionOptions{
		Workspace: &samlaunch.WorkspaceFolder{
			Name: opts.workspace,
			Path: templates.Workspace(),
		},
		Templates:   templates,
		Credentials: provider,
		LogLevel:    level,
	})

	desc, err := session.Resolve(context.Background(), *req)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", req.Name, err)
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// loadLaunchRequest reads a launch configuration file. Both the editor's
// {"configurations": [...]} container and a bare single configuration are
// accepted.
func loadLaunchRequest(path, name string) (*samlaunch.LaunchRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading launch config: %w", err)
	}

	var file samlaunch.LaunchConfigFile
	if err := json.Unmarshal(data, &file); err == nil && len(file.Configurations) > 0 {
		if name == "" {
			return &file.Configurations[0], nil
		}
		for i := range file.Configurations {
			if file.Configurations[i].Name == name {
				return &file.Configurations[i], nil
			}
		}
		return nil, fmt.Errorf("no configuration named %q in %s", name, path)
	}

	var req samlaunch.LaunchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parsing launch config %s: %w", path, err)
	}
	return &req, nil
}
