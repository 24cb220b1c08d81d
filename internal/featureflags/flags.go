package featureflags

import (
	"os"
	"sort"
	"strings"
)

// StrictStageTransitions rejects deal moves into stage ids that do not exist
const StrictStageTransitions = "strict_stage_transitions"

// Known lists the flags the server reads, reported at startup
var Known = []string{StrictStageTransitions}

// EnvName is the variable a flag is read from: FLAG_<NAME>
func EnvName(name string) string {
	return "FLAG_" + strings.ToUpper(name)
}

// Enabled returns true if a flag is enabled via environment variable.
// Values true/1/yes/on are accepted (case-insensitive)
func Enabled(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvName(name)))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Snapshot returns the current value of every known flag, sorted by name
func Snapshot() []State {
	names := append([]string(nil), Known...)
	sort.Strings(names)
	out := make([]State, 0, len(names))
	for _, n := range names {
		out = append(out, State{Name: n, Enabled: Enabled(n)})
	}
	return out
}

// State is a flag and its value
type State struct {
	Name    string
	Enabled bool
}
