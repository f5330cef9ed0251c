package version

import (
	"runtime/debug"
	"testing"
)

func TestBuildVersion_WithReleaseTag(t *testing.T) {
	original := readBuildInfo
	defer func() { readBuildInfo = original }()

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{
				Version: "v0.1.0",
			},
		}, true
	}

	got := BuildVersion()
	want := "v0.1.0"
	if got != want {
		t.Errorf("BuildVersion() = %q, want %q", got, want)
	}
}

func TestBuildVersion_Unavailable(t *testing.T) {
	original := readBuildInfo
	defer func() { readBuildInfo = original }()

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return nil, false
	}

	got := BuildVersion()
	want := "dev"
	if got != want {
		t.Errorf("BuildVersion() = %q, want %q", got, want)
	}
}

func TestBuildVersion_DevelVersion(t *testing.T) {
	original := readBuildInfo
	defer func() { readBuildInfo = original }()

	// (devel) is what go build/run returns
	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{
				Version: "(devel)",
			},
		}, true
	}

	got := BuildVersion()
	want := "dev"
	if got != want {
		t.Errorf("BuildVersion() = %q, want %q", got, want)
	}
}

func TestBuildVersion_EmptyVersion(t *testing.T) {
	original := readBuildInfo
	defer func() { readBuildInfo = original }()

	readBuildInfo = func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{
				Version: "",
			},
		}, true
	}

	got := BuildVersion()
	want := "dev"
	if got != want {
		t.Errorf("BuildVersion() = %q, want %q", got, want)
	}
}

func TestRevision(t *testing.T) {
	original := readBuildInfo
	defer func() { readBuildInfo = original }()

	tests := []struct {
		name     string
		settings []debug.BuildSetting
		want     string
		wantStr  string
	}{
		{
			name:    "no vcs info",
			want:    "",
			wantStr: "v1.2.3",
		},
		{
			name: "clean tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef0123"},
				{Key: "vcs.modified", Value: "false"},
			},
			want:    "0123456789ab",
			wantStr: "v1.2.3 (0123456789ab)",
		},
		{
			name: "dirty tree",
			settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc"},
				{Key: "vcs.modified", Value: "true"},
			},
			want:    "abc-dirty",
			wantStr: "v1.2.3 (abc-dirty)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readBuildInfo = func() (*debug.BuildInfo, bool) {
				return &debug.BuildInfo{
					Main:     debug.Module{Version: "v1.2.3"},
					Settings: tt.settings,
				}, true
			}
			if got := Revision(); got != tt.want {
				t.Errorf("Revision() = %q, want %q", got, tt.want)
			}
			if got := String(); got != tt.wantStr {
				t.Errorf("String() = %q, want %q", got, tt.wantStr)
			}
		})
	}
}
