// Package version holds the build version, overridden at link time with
// -ldflags "-X simlink/pkg/version.Version=...".
package version

import (
	"fmt"
	"runtime"
)

// Version is the release version.
var Version = "v0.1.0"

// String describes the build for startup logs and -version output.
func String(binary string) string {
	return fmt.Sprintf("%s %s (%s, %s/%s)", binary, Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
