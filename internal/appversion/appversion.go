// Package appversion reports the srcrr version.
package appversion

import "runtime/debug"

// version is set at build time via -ldflags "-X sorcerer/internal/appversion.version=...".
var version = "" //nolint:gochecknoglobals // ldflags requires package-level var

// String returns the ldflags version, else the module version recorded by
// go install, else "dev".
func String() string {
	if version != "" {
		return version
	}
	return fromBuildInfo(debug.ReadBuildInfo)
}

func fromBuildInfo(read func() (*debug.BuildInfo, bool)) string {
	info, ok := read()
	if !ok || info.Main.Version == "" || info.Main.Version == "(devel)" {
		return "dev"
	}
	return info.Main.Version
}
