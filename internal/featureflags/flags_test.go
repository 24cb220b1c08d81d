package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"false": false,
		"0":     false,
		"true":  true,
		"TRUE":  true,
		"1":     true,
		"yes":   true,
		" on ":  true,
	}
	for value, want := range cases {
		t.Setenv("FLAG_STRICT_STAGE_TRANSITIONS", value)
		assert.Equal(t, want, Enabled(StrictStageTransitions), "value %q", value)
	}
}

func TestEnvName(t *testing.T) {
	assert.Equal(t, "FLAG_STRICT_STAGE_TRANSITIONS", EnvName(StrictStageTransitions))
}

func TestSnapshot(t *testing.T) {
	t.Setenv(EnvName(StrictStageTransitions), "true")
	assert.Equal(t, []State{{Name: StrictStageTransitions, Enabled: true}}, Snapshot())
}
