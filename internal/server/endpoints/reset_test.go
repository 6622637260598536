package endpoints

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.SetIn(strings.NewReader(tt.input))
			var stderr strings.Builder
			cmd.SetErr(&stderr)

			got, err := promptConfirmer(cmd).Confirm(t.Context(), "Reset?")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(stderr.String(), "Reset? [y/N]") {
				t.Errorf("question not printed, stderr = %q", stderr.String())
			}
		})
	}
}
