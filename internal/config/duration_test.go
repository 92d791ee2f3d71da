package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{"seconds", "10s", 10 * time.Second},
		{"milliseconds", "500ms", 500 * time.Millisecond},
		{"compound", "1m30s", 90 * time.Second},
		{"integer nanoseconds", "1000000000", time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			require.NoError(t, yaml.Unmarshal([]byte(tt.input), &d))
			assert.Equal(t, tt.want, d.Std())
		})
	}
}

func TestDurationUnmarshalInvalid(t *testing.T) {
	var d Duration
	assert.Error(t, yaml.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, yaml.Unmarshal([]byte("[1, 2]"), &d))
}

func TestDurationMarshalRoundTrip(t *testing.T) {
	out, err := yaml.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, "2s\n", string(out))
}
