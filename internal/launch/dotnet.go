package launch

import (
	"fmt"

	samlaunch "github.com/lex00/samlaunch-go"
)

// vsdbgPath is where the build step stages the in-container .NET debugger.
const vsdbgPath = "/tmp/lambci_debug_files/vsdbg"

// buildDotnet wires the vsdbg attach: the client shells into the invoke
// container through docker exec, found by the published debug port. The
// windows variant swaps the pipe program for powershell, and sourceFileMap
// local roots get their drive letter upper-cased on Windows.
func buildDotnet(in Input, desc *samlaunch.LaunchDescriptor) {
	cfg := in.Config
	port := in.Ports.Debug

	desc.Request = "attach"
	desc.PipeTransport = &samlaunch.PipeTransport{
		PipeProgram:  "sh",
		PipeArgs:     dotnetPipeArgs(port),
		DebuggerPath: vsdbgPath,
		PipeCwd:      cfg.CodeRoot,
	}
	desc.Windows = &samlaunch.WindowsOverrides{
		PipeTransport: &samlaunch.PipeTransport{
			PipeProgram:  "powershell",
			PipeArgs:     dotnetPipeArgs(port),
			DebuggerPath: vsdbgPath,
			PipeCwd:      cfg.CodeRoot,
		},
	}
	desc.SourceFileMap = dotnetSourceFileMap(cfg.CodeRoot, cfg.PathMappings, in.Windows)
}

func dotnetPipeArgs(port int) []string {
	return []string{
		"-c",
		fmt.Sprintf("docker exec -i $(docker ps -q -f publish=%d) ${debuggerCommand}", port),
	}
}

// dotnetSourceFileMap maps remote roots to local roots. Without explicit
// path mappings the whole task root maps to the code root.
func dotnetSourceFileMap(codeRoot string, mappings []samlaunch.PathMapping, windows bool) map[string]string {
	local := func(p string) string {
		if windows {
			return upperDriveLetter(p)
		}
		return p
	}

	if len(mappings) == 0 {
		return map[string]string{"/var/task": local(codeRoot)}
	}
	out := make(map[string]string, len(mappings))
	for _, m := range mappings {
		out[m.RemoteRoot] = local(m.LocalRoot)
	}
	return out
}
