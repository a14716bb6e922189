package main

import "runtime/debug"

// version is stamped by release builds: -ldflags "-X main.version=v1.2.3".
var version = ""

// getVersion reports the build's version: the ldflags stamp when present,
// the module version from build info for go-installed binaries, and "dev"
// for source builds.
func getVersion() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		if info.Main.Version != "" && info.Main.Version != "(devel)" {
			return info.Main.Version
		}
	}

	return "dev"
}
