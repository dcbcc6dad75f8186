package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hmesfin/agentgate/internal/testutil"
)

func TestIsGateHookCommand(t *testing.T) {
	tests := []struct {
		cmd  string
		want bool
	}{
		{cmd: "/usr/local/bin/agentgate gate", want: true},
		{cmd: "/home/dev/go/bin/agentgate gate", want: true},
		{cmd: "agentgate gate", want: true},
		{cmd: "/usr/local/bin/agentgate check", want: false},
		{cmd: "/usr/local/bin/othertool gate", want: false},
		{cmd: "agentgate", want: false},
		{cmd: "gate", want: false},
		{cmd: "", want: false},
		{cmd: "python3 /opt/hooks/docker-command-guard.py", want: false},
	}
	for _, tt := range tests {
		testutil.RequireEqual(t, tt.want, isGateHookCommand(tt.cmd), tt.cmd)
	}
}

func TestHookListHasGate(t *testing.T) {
	gateEntry := map[string]any{
		"matcher": "Bash",
		"hooks": []any{
			map[string]any{"type": "command", "command": "/usr/local/bin/agentgate gate"},
		},
	}
	testutil.RequireTrue(t, hookListHasGate(gateEntry), "gate entry should be recognized")

	foreignEntry := map[string]any{
		"matcher": "Bash",
		"hooks": []any{
			map[string]any{"type": "command", "command": "python3 guard.py"},
		},
	}
	testutil.RequireTrue(t, !hookListHasGate(foreignEntry), "foreign entry should not match")

	malformed := map[string]any{"matcher": "Bash", "hooks": "not-a-list"}
	testutil.RequireTrue(t, !hookListHasGate(malformed), "malformed entry should not match")
}

func TestReadSettingsMissingFile(t *testing.T) {
	settings, err := readSettings(filepath.Join(t.TempDir(), "settings.json"))
	testutil.RequireNoError(t, err, "missing file is an empty settings map")
	testutil.RequireEqual(t, 0, len(settings), "empty map")
}

func TestReadSettingsInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	testutil.RequireNoError(t, os.WriteFile(path, []byte("{nope"), 0644), "seeding file")

	if _, err := readSettings(path); err == nil {
		t.Fatal("invalid JSON must be rejected")
	}
}

func TestWriteSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".claude", "settings.json")

	settings := map[string]any{
		"hooks": map[string]any{
			"PreToolUse": []any{
				map[string]any{
					"matcher": "Bash",
					"hooks": []any{
						map[string]any{"type": "command", "command": "agentgate gate"},
					},
				},
			},
		},
		"theme": "dark",
	}
	testutil.RequireNoError(t, writeSettings(path, settings), "writing settings")

	got, err := readSettings(path)
	testutil.RequireNoError(t, err, "reading back")
	testutil.RequireEqual(t, "dark", got["theme"].(string), "unrelated keys preserved")

	hooks := got["hooks"].(map[string]any)
	preToolUse := hooks["PreToolUse"].([]any)
	testutil.RequireLen(t, preToolUse, 1, "hook entries")
	testutil.RequireTrue(t, hookListHasGate(preToolUse[0].(map[string]any)), "gate hook survives round trip")
}

func TestExitCode(t *testing.T) {
	code, ok := ExitCode(&exitCodeError{code: 2})
	testutil.RequireTrue(t, ok, "exitCodeError carries a code")
	testutil.RequireEqual(t, 2, code, "code value")

	_, ok = ExitCode(os.ErrNotExist)
	testutil.RequireTrue(t, !ok, "other errors carry no code")

	_, ok = ExitCode(nil)
	testutil.RequireTrue(t, !ok, "nil carries no code")
}
