package version

import (
	"runtime/debug"
	"testing"
)

func setBuild(t *testing.T, version, commit, date string, info *debug.BuildInfo) {
	t.Helper()
	orig := [3]string{Version, CommitHash, BuildDate}
	origRead := readBuildInfo
	t.Cleanup(func() {
		Version, CommitHash, BuildDate = orig[0], orig[1], orig[2]
		readBuildInfo = origRead
	})
	Version, CommitHash, BuildDate = version, commit, date
	readBuildInfo = func() (*debug.BuildInfo, bool) { return info, info != nil }
}

func TestString(t *testing.T) {
	tests := []struct {
		name          string
		version       string
		commit, date  string
		info          *debug.BuildInfo
		want, wantUA  string
	}{
		{
			name:    "ldflags",
			version: "v1.2.3", commit: "abc1234", date: "2026-01-02",
			want: "v1.2.3 (abc1234) built 2026-01-02", wantUA: "usagescan/v1.2.3",
		},
		{
			name:    "nothing known",
			version: "dev", commit: unset, date: unset,
			want: "dev", wantUA: "usagescan/dev",
		},
		{
			name:    "go install stamps",
			version: "dev", commit: unset, date: unset,
			info: &debug.BuildInfo{
				Main: debug.Module{Version: "v0.4.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
					{Key: "vcs.time", Value: "2026-03-04T05:06:07Z"},
				},
			},
			want: "v0.4.0 (0123456) built 2026-03-04T05:06:07Z", wantUA: "usagescan/v0.4.0",
		},
		{
			name:    "ldflags win over stamps",
			version: "v1.0.0", commit: "feedbee", date: unset,
			info: &debug.BuildInfo{
				Main:     debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789abcdef"}},
			},
			want: "v1.0.0 (feedbee)", wantUA: "usagescan/v1.0.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBuild(t, tt.version, tt.commit, tt.date, tt.info)
			if got := String(); got != tt.want {
				t.Fatalf("String() = %q, want %q", got, tt.want)
			}
			if got := UserAgent(); got != tt.wantUA {
				t.Fatalf("UserAgent() = %q, want %q", got, tt.wantUA)
			}
		})
	}
}
