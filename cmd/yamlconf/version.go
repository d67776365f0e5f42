package main

import "runtime/debug"

// Version is the version of the yamlconf CLI tool, set at build time via ldflags.
// If not set, it attempts to read the version from Go module info (for go install).
var Version = getVersion()

func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// version is set via ldflags: -X main.version=x.y.z
var version string
