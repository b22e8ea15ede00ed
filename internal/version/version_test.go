package version

import (
	"strings"
	"testing"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit and BuildDate are optional
	_ = GitCommit
	_ = BuildDate
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origGitCommit, origBuildDate
	}()

	// simulating build-time ldflags
	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", Version, "1.2.3")
	}
	if GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123def456")
	}
	if BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q, want %q", BuildDate, "2024-01-15T10:30:00Z")
	}
}

func TestBannerPlain(t *testing.T) {
	for _, v := range []string{"0.1.0", "0.1.0-dev", "1.2.3-rc.1+build.123", "dev", "1.2"} {
		if got := Banner(v, false); got != v {
			t.Errorf("Banner(%q, false) = %q", v, got)
		}
	}
}

func TestBannerColored(t *testing.T) {
	got := Banner("1.2.3-dev", true)
	for _, want := range []string{"\x1b[33;1m1\x1b[0m", "\x1b[32;1m2\x1b[0m", "\x1b[34;1m3\x1b[0m"} {
		if !strings.Contains(got, want) {
			t.Errorf("Banner = %q, missing %q", got, want)
		}
	}
	if !strings.HasSuffix(got, "-dev") {
		t.Errorf("Banner = %q, lost suffix", got)
	}
	if got := Banner("dev", true); got != "dev" {
		t.Errorf("non-semver input was altered: %q", got)
	}
}

func BenchmarkBanner(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Banner(Version, true)
	}
}
