package launch

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/resolve"
	"github.com/lex00/samlaunch-go/internal/runtimes"
)

func familyConfig(t *testing.T, family runtimes.Family) *resolve.NormalizedConfig {
	t.Helper()
	spec, ok := runtimes.Get(family)
	require.True(t, ok)
	return &resolve.NormalizedConfig{
		Name:         "test",
		Kind:         samlaunch.TargetCode,
		CodeRoot:     "/work/app",
		HandlerName:  "app.handler",
		Runtime:      spec.DefaultRuntime,
		Family:       spec,
		Architecture: "x86_64",
	}
}

func buildFor(t *testing.T, in Input) *samlaunch.LaunchDescriptor {
	t.Helper()
	desc, err := build(in)
	require.NoError(t, err)
	return desc
}

func TestBuild_Node(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyNode)
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 5858}})

	assert.Equal(t, "node", desc.Type)
	assert.Equal(t, "attach", desc.Request)
	assert.Equal(t, 5858, desc.DebugPort)
	assert.Equal(t, 5858, desc.Port)
	assert.Equal(t, "localhost", desc.Address)
	assert.Equal(t, "inspector", desc.Protocol)
	assert.True(t, desc.ContinueOnAttach)
	assert.NotEmpty(t, desc.SkipFiles)
	assert.Equal(t, "/work/app", desc.LocalRoot)
	assert.Equal(t, "/var/task", desc.RemoteRoot)
}

func TestBuild_Node_ExplicitPathMappings(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyNode)
	cfg.PathMappings = []samlaunch.PathMapping{
		{LocalRoot: "/work/app/src", RemoteRoot: "/var/task/src"},
	}
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 5858}})

	assert.Equal(t, cfg.PathMappings, desc.PathMappings)
	assert.Empty(t, desc.LocalRoot)
	assert.Empty(t, desc.RemoteRoot)
}

func TestBuild_Python(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyPython)
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 5890}, LogLevel: slog.LevelInfo})

	assert.Equal(t, "python", desc.Type)
	assert.Equal(t, "attach", desc.Request)
	assert.Equal(t, "localhost", desc.Host)
	require.Len(t, desc.DebugArgs, 1)
	assert.Equal(t,
		"/tmp/lambci_debug_files/py_debug_wrapper.py --listen 0.0.0.0:5890 --wait-for-client --log-to-stderr",
		desc.DebugArgs[0])
	assert.Equal(t, []samlaunch.PathMapping{
		{LocalRoot: "/work/app", RemoteRoot: "/var/task"},
	}, desc.PathMappings)
}

func TestBuild_Python_VerboseAddsDebugFlag(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyPython)
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 5890}, LogLevel: slog.LevelDebug})

	require.Len(t, desc.DebugArgs, 1)
	assert.Contains(t, desc.DebugArgs[0], " --debug")
}

func TestBuild_Python_Ikpdb(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyPython)
	cfg.PythonDebugger = "ikpdb"
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 5890}})

	require.Len(t, desc.DebugArgs, 1)
	assert.Contains(t, desc.DebugArgs[0], "-m ikp3db")
	assert.Contains(t, desc.DebugArgs[0], "--ikpdb-port=5890")
	assert.Contains(t, desc.DebugArgs[0], "--ikpdb-client-working-directory=/work/app")
}

func TestBuild_Python_WindowsLowercasesDriveFirst(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyPython)
	cfg.CodeRoot = `C:\work\app`
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 5890}, Windows: true})

	require.Len(t, desc.PathMappings, 2)
	// The lower-cased variant comes first so it wins the first-match rule.
	assert.Equal(t, `c:\work\app`, desc.PathMappings[0].LocalRoot)
	assert.Equal(t, `C:\work\app`, desc.PathMappings[1].LocalRoot)
	assert.Equal(t, "/var/task", desc.PathMappings[0].RemoteRoot)
}

func TestBuild_Java_Zip(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyJava)
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 5005}})

	assert.Equal(t, "java", desc.Type)
	assert.Equal(t, "127.0.0.1", desc.HostName)
	require.Len(t, desc.DebugArgs, 1)
	assert.Equal(t,
		"-agentlib:jdwp=transport=dt_socket,server=y,suspend=y,quiet=y,address=*:5005",
		desc.DebugArgs[0])
	assert.Nil(t, desc.ContainerEnvVars)
}

func TestBuild_Java_Image(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyJava)
	cfg.IsImage = true
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 5005}})

	assert.Nil(t, desc.DebugArgs)
	require.Contains(t, desc.ContainerEnvVars, "_JAVA_OPTIONS")
	assert.Contains(t, desc.ContainerEnvVars["_JAVA_OPTIONS"], "address=*:5005")
}

func TestBuild_Dotnet(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyDotnet)
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 4711}})

	assert.Equal(t, "coreclr", desc.Type)
	require.NotNil(t, desc.PipeTransport)
	assert.Equal(t, "sh", desc.PipeTransport.PipeProgram)
	assert.Equal(t, "/tmp/lambci_debug_files/vsdbg", desc.PipeTransport.DebuggerPath)
	assert.Equal(t, "/work/app", desc.PipeTransport.PipeCwd)
	require.Len(t, desc.PipeTransport.PipeArgs, 2)
	assert.Equal(t,
		fmt.Sprintf("docker exec -i $(docker ps -q -f publish=%d) ${debuggerCommand}", 4711),
		desc.PipeTransport.PipeArgs[1])

	require.NotNil(t, desc.Windows)
	assert.Equal(t, "powershell", desc.Windows.PipeTransport.PipeProgram)

	assert.Equal(t, map[string]string{"/var/task": "/work/app"}, desc.SourceFileMap)
}

func TestBuild_Dotnet_WindowsUppercasesDrive(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyDotnet)
	cfg.CodeRoot = `c:\work\app`
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 4711}, Windows: true})

	assert.Equal(t, map[string]string{"/var/task": `C:\work\app`}, desc.SourceFileMap)
}

func TestBuild_Dotnet_ExplicitMappings(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyDotnet)
	cfg.PathMappings = []samlaunch.PathMapping{
		{LocalRoot: "/work/app/src", RemoteRoot: "/var/task/src"},
	}
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 4711}})

	assert.Equal(t, map[string]string{"/var/task/src": "/work/app/src"}, desc.SourceFileMap)
}

func TestBuild_Go(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyGo)
	desc := buildFor(t, Input{Config: cfg, Ports: Ports{Debug: 2345}})

	assert.Equal(t, "go", desc.Type)
	assert.Equal(t, "attach", desc.Request)
	assert.Equal(t, "remote", desc.Mode)
	assert.Equal(t, "127.0.0.1", desc.Host)
	require.NotNil(t, desc.SkipFiles)
	assert.Empty(t, desc.SkipFiles)
}

func TestBuild_NoDebug(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyPython)
	cfg.NoDebug = true
	desc := buildFor(t, Input{Config: cfg})

	assert.Equal(t, "launch", desc.Request)
	assert.Equal(t, 0, desc.DebugPort)
	assert.Equal(t, -1, desc.Port)
	assert.Nil(t, desc.DebugArgs)
	assert.True(t, desc.NoDebug)
}

func TestBuild_NoDebug_GoKeepsAttach(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyGo)
	cfg.NoDebug = true
	desc := buildFor(t, Input{Config: cfg})

	// The Go adapter keeps request "attach" with the mode cleared instead of
	// switching to "launch".
	assert.Equal(t, "attach", desc.Request)
	assert.Empty(t, desc.Mode)
	assert.Equal(t, -1, desc.Port)
}

func TestBuild_NoDebug_DropsContainerEnv(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyJava)
	cfg.IsImage = true
	cfg.NoDebug = true
	desc := buildFor(t, Input{Config: cfg})

	assert.Nil(t, desc.ContainerEnvVars)
	assert.Equal(t, "launch", desc.Request)
}

func TestBuild_NoDebug_DropsPipeTransport(t *testing.T) {
	cfg := familyConfig(t, runtimes.FamilyDotnet)
	cfg.NoDebug = true
	desc := buildFor(t, Input{Config: cfg})

	assert.Nil(t, desc.PipeTransport)
	assert.Nil(t, desc.Windows)
}

func TestAllocatePorts(t *testing.T) {
	ports, err := AllocatePorts(true, true)
	require.NoError(t, err)
	assert.NotZero(t, ports.Debug)
	assert.NotZero(t, ports.API)
}

func TestAllocatePorts_NoDebug(t *testing.T) {
	ports, err := AllocatePorts(false, false)
	require.NoError(t, err)
	assert.Zero(t, ports.Debug)
	assert.Zero(t, ports.API)
}
