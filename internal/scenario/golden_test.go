package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The golden files under testdata/golden pin the full delivery traces of
// these scenarios: order, seq stamps, payload mutations, stop markers.
// Regenerate with: go test ./internal/scenario -update
func TestScenarios_GoldenTraces(t *testing.T) {
	for _, file := range []string{
		"testdata/bubble-stop.yaml",
		"testdata/tag-and-count.yaml",
	} {
		s, err := LoadYAML(file)
		require.NoError(t, err)

		t.Run(s.Name, func(t *testing.T) {
			RunWithGolden(t, s)
		})
	}
}
