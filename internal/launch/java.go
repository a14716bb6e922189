package launch

import (
	samlaunch "github.com/lex00/samlaunch-go"
	"github.com/lex00/samlaunch-go/internal/runtimes"
)

// buildJava wires the JDWP attach. Zip-based functions pass the agent string
// as debugArgs; image-based functions instead receive a _JAVA_OPTIONS
// container env var, materialized into container-env-vars.json by the
// artifact writer.
func buildJava(in Input, desc *samlaunch.LaunchDescriptor) {
	cfg := in.Config

	desc.Request = "attach"
	desc.HostName = "127.0.0.1"

	if cfg.IsImage {
		desc.ContainerEnvVars = map[string]string{
			"_JAVA_OPTIONS": runtimes.JdwpAgent(in.Ports.Debug),
		}
		return
	}
	desc.DebugArgs = cfg.Family.DebugArgs(in.Ports.Debug, runtimes.DebugArgsOptions{})
}
