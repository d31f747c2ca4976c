// Package version reports which usagescan build is running.
package version

import (
	"runtime/debug"
	"strings"
)

const unset = "unknown"

// Release builds set these with
//
//	-ldflags "-X github.com/janekbaraniewski/usagescan/internal/version.Version=v1.2.3 ..."
//
// Builds made with `go install` leave them alone and fall back to the module
// version and VCS stamps recorded in the binary.
var (
	Version    = "dev"
	CommitHash = unset
	BuildDate  = unset
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

type buildMeta struct {
	version, commit, date string
}

func current() buildMeta {
	m := buildMeta{version: Version, commit: CommitHash, date: BuildDate}
	info, ok := readBuildInfo()
	if !ok {
		return m
	}
	if m.version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		m.version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && m.commit == unset && s.Value != "":
			m.commit = s.Value[:min(len(s.Value), 7)]
		case s.Key == "vcs.time" && m.date == unset && s.Value != "":
			m.date = s.Value
		}
	}
	return m
}

// String is the human-readable version, e.g. "v1.2.3 (abc1234) built 2026-01-02".
// Parts that are not known are left out.
func String() string {
	m := current()
	var b strings.Builder
	b.WriteString(m.version)
	if m.commit != unset {
		b.WriteString(" (" + m.commit + ")")
	}
	if m.date != unset {
		b.WriteString(" built " + m.date)
	}
	return b.String()
}

// UserAgent identifies usagescan in outbound HTTP requests.
func UserAgent() string {
	return "usagescan/" + current().version
}
