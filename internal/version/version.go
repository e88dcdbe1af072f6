// Package version provides client version information.
package version

import (
	"fmt"
	"runtime"
)

const (
	// Version is the current client version.
	Version = "0.3.0"

	// SDKName identifies this client in the User-Agent header.
	SDKName = "qstash-go"
)

// UserAgent returns the User-Agent sent with every request, including the
// Go runtime version and platform.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s/%s)", SDKName, Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// ShortUserAgent returns name/version only.
func ShortUserAgent() string {
	return SDKName + "/" + Version
}
