package policy

import "testing"

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		parseError bool
	}{
		{"plain", "npm run dev", "npm run dev", false},
		{"extra whitespace", "  npm   run    dev  ", "npm run dev", false},
		{"tabs", "npm\trun\tdev", "npm run dev", false},
		{"quotes stripped", `bash -c "npm run dev"`, "bash -c npm run dev", false},
		{"single quotes", `echo 'hello world'`, "echo hello world", false},
		{"empty", "", "", false},
		{"spaces only", "    ", "", false},
		{"dangling quote falls back", `npm run dev "oops`, `npm run dev "oops`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCommand(tt.input)
			if got.Text != tt.want {
				t.Fatalf("Text=%q want %q", got.Text, tt.want)
			}
			if got.ParseError != tt.parseError {
				t.Fatalf("ParseError=%v want %v", got.ParseError, tt.parseError)
			}
		})
	}
}
