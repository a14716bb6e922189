package launch

import (
	"context"
	"log/slog"

	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/artifacts"
	"github.com/lex00/samlaunch-go/internal/registry"
	"github.com/lex00/samlaunch-go/internal/resolve"
)

// Session is the full resolution pipeline for one workspace: config
// resolution, port allocation, descriptor building, artifact writing.
// Each Resolve call is independent; no state is shared across requests.
type Session struct {
	Resolver *resolve.Resolver
	Writer   *artifacts.Writer
	// LogLevel is the active log level, threaded into descriptor building.
	LogLevel slog.Level
}

// SessionOptions configure NewSession.
type SessionOptions struct {
	Workspace   *samlaunch.WorkspaceFolder
	Templates   *registry.Registry
	Credentials samlaunch.CredentialsProvider
	FS          samlaunch.FS
	BuildRoot   string
	LogLevel    slog.Level
}

// NewSession wires a session from its collaborators.
func NewSession(opts SessionOptions) *Session {
	return &Session{
		Resolver: &resolve.Resolver{
			Workspace:   opts.Workspace,
			Templates:   opts.Templates,
			Credentials: opts.Credentials,
			FS:          opts.FS,
		},
		Writer: &artifacts.Writer{
			FS:   opts.FS,
			Root: opts.BuildRoot,
		},
		LogLevel: opts.LogLevel,
	}
}

// Resolve runs one launch request through the pipeline and returns the
// descriptor, with artifact paths filled in. Failures surface immediately;
// nothing is retried and no partial descriptor is returned.
func (s *Session) Resolve(ctx context.Context, req samlaunch.LaunchRequest) (*samlaunch.LaunchDescriptor, error) {
	cfg, err := s.Resolver.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	ports, err := AllocatePorts(!cfg.NoDebug, cfg.Kind == samlaunch.TargetAPI)
	if err != nil {
		return nil, err
	}

	desc, err := Build(cfg, ports, s.LogLevel)
	if err != nil {
		return nil, err
	}

	written, err := s.Writer.Write(cfg, desc.ContainerEnvVars)
	if err != nil {
		return nil, err
	}
	desc.BaseBuildDir = written.BaseBuildDir
	desc.EnvFile = written.EnvFile
	desc.EventPayloadFile = written.EventPayloadFile
	desc.ContainerEnvFile = written.ContainerEnvFile
	desc.TemplatePath = written.TemplatePath

	slog.Debug("launch descriptor ready",
		"type", desc.Type,
		"request", desc.Request,
		"debugPort", desc.DebugPort,
		"buildDir", desc.BaseBuildDir)

	return desc, nil
}
