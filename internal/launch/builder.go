// Package launch builds the runtime-specific launch descriptor from a
// normalized config: ports, paths, and per-family debugger wiring, plus the
// noDebug transform.
package launch

import (
	"log/slog"
	"runtime"

	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/resolve"
	"github.com/lex00/samlaunch-go/internal/runtimes"
)

// Input is everything a family builder needs. Builders are pure: same input,
// same fragment.
type Input struct {
	Config *resolve.NormalizedConfig
	Ports  Ports
	// LogLevel is the active log level; the Python wrapper grammar depends
	// on it.
	LogLevel slog.Level
	// Windows switches on the platform-specific wire-format rules (drive
	// letter casing). Defaults to the host platform in Build.
	Windows bool
}

func (in Input) verbose() bool {
	return in.LogLevel <= slog.LevelDebug
}

// Build produces the launch descriptor for a normalized config.
func Build(cfg *resolve.NormalizedConfig, ports Ports, logLevel slog.Level) (*samlaunch.LaunchDescriptor, error) {
	return build(Input{
		Config:   cfg,
		Ports:    ports,
		LogLevel: logLevel,
		Windows:  runtime.GOOS == "windows",
	})
}

func build(in Input) (*samlaunch.LaunchDescriptor, error) {
	cfg := in.Config
	desc := &samlaunch.LaunchDescriptor{
		Type:          cfg.Family.DebugType,
		Request:       "attach",
		Name:          cfg.Name,
		Runtime:       cfg.Runtime,
		RuntimeFamily: string(cfg.Family.Family),
		HandlerName:   cfg.HandlerName,
		CodeRoot:      cfg.CodeRoot,
		Architecture:  cfg.Architecture,
		Region:        cfg.Region,
		NoDebug:       cfg.NoDebug,
		TemplatePath:  cfg.TemplatePath,
		DebugPort:     in.Ports.Debug,
		Port:          in.Ports.Debug,
		APIPort:       in.Ports.API,
		API:           cfg.API,
		Credentials:   cfg.Credentials,
	}

	switch cfg.Family.Family {
	case runtimes.FamilyNode:
		buildNode(in, desc)
	case runtimes.FamilyPython:
		buildPython(in, desc)
	case runtimes.FamilyJava:
		buildJava(in, desc)
	case runtimes.FamilyDotnet:
		buildDotnet(in, desc)
	case runtimes.FamilyGo:
		buildGo(in, desc)
	default:
		return nil, &runtimes.UnknownRuntimeError{Runtime: cfg.Runtime}
	}

	if cfg.NoDebug {
		applyNoDebug(cfg.Family.Family, desc)
	}
	return desc, nil
}

// applyNoDebug strips the debugger wiring. The request becomes "launch" for
// every family except Go, which stays "attach" with mode cleared, an
// intentional asymmetry of the Go adapter.
func applyNoDebug(family runtimes.Family, desc *samlaunch.LaunchDescriptor) {
	desc.DebugPort = 0
	desc.Port = -1
	desc.DebugArgs = nil
	desc.ContainerEnvVars = nil
	desc.ContainerEnvFile = ""
	desc.PipeTransport = nil
	desc.Windows = nil

	if family == runtimes.FamilyGo {
		desc.Request = "attach"
		desc.Mode = ""
		return
	}
	desc.Request = "launch"
}

// upperDriveLetter upper-cases the drive letter of a Windows path; the .NET
// sourceFileMap wire format requires it.
func upperDriveLetter(path string) string {
	if hasDriveLetter(path) && path[0] >= 'a' && path[0] <= 'z' {
		return string(path[0]-'a'+'A') + path[1:]
	}
	return path
}

// lowerDriveLetter lower-cases the drive letter; Python path mappings carry
// a lower-cased variant first so either casing matches in the container.
func lowerDriveLetter(path string) string {
	if hasDriveLetter(path) && path[0] >= 'A' && path[0] <= 'Z' {
		return string(path[0]-'A'+'a') + path[1:]
	}
	return path
}

func hasDriveLetter(path string) bool {
	return len(path) >= 2 && path[1] == ':'
}
