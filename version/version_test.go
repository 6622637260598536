package version

import "testing"

func TestGet(t *testing.T) {
	orig := GitRelease
	t.Cleanup(func() { GitRelease = orig })

	tests := []struct {
		release    string
		wantErr    bool
		prerelease bool
	}{
		{"v1.2.3", false, false},
		{"1.2.3", false, false},
		{"v0.1.0-dev", false, true},
		{"not-a-version", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.release, func(t *testing.T) {
			GitRelease = tt.release
			info, err := Get()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Get() error = %v, wantErr %v", err, tt.wantErr)
			}
			if info.Release != tt.release {
				t.Errorf("Release = %q, want %q", info.Release, tt.release)
			}
			if info.Prerelease != tt.prerelease {
				t.Errorf("Prerelease = %v, want %v", info.Prerelease, tt.prerelease)
			}
		})
	}
}
