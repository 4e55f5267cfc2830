package scenario

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// LoadCUE reads and validates a scenario written in CUE.
//
// The file must evaluate to a single concrete scenario struct using the
// same field names as the YAML format. CUE buys scenario authors
// constraints and composition the YAML loader can't offer; both formats
// decode into the same Scenario.
func LoadCUE(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("compile scenario %s: %w", path, err)
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("scenario %s is not concrete: %w", path, err)
	}

	var s Scenario
	if err := value.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	return &s, nil
}
