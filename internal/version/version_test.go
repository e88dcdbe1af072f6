package version

import (
	"runtime"
	"strings"
	"testing"
)

func TestVersionIsSemver(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Errorf("Version %q should be major.minor.patch", Version)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	for _, want := range []string{SDKName, Version, runtime.Version(), runtime.GOOS, runtime.GOARCH} {
		if !strings.Contains(ua, want) {
			t.Errorf("UserAgent() = %q, missing %q", ua, want)
		}
	}
}

func TestShortUserAgent(t *testing.T) {
	if got, want := ShortUserAgent(), "qstash-go/"+Version; got != want {
		t.Errorf("ShortUserAgent() = %q, want %q", got, want)
	}
}
