package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one declarative bubbling run.
type Scenario struct {
	// Name uniquely identifies this scenario. Also names its golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Entities declares the hierarchy, parents before children.
	Entities []EntityDef `yaml:"entities" json:"entities"`

	// Listeners attaches built-in callbacks to (event, entity) sites.
	Listeners []ListenerDef `yaml:"listeners" json:"listeners"`

	// Events lists the passes to dispatch, in order.
	Events []EventDef `yaml:"events" json:"events"`

	// Assertions validate the journal and final world state.
	// Supported types: delivered_count, state, stopped_at.
	Assertions []Assertion `yaml:"assertions,omitempty" json:"assertions,omitempty"`
}

// EntityDef declares one entity. Parent is empty for roots and must name
// an entity declared earlier in the list.
type EntityDef struct {
	Name   string `yaml:"name" json:"name"`
	Parent string `yaml:"parent,omitempty" json:"parent,omitempty"`
}

// ListenerDef attaches one built-in callback kind to a site.
type ListenerDef struct {
	// Event is the event name the listener reacts to.
	Event string `yaml:"event" json:"event"`

	// Entity names the listening entity.
	Entity string `yaml:"entity" json:"entity"`

	// Kind selects the built-in callback: counter, stopper, or tagger.
	Kind string `yaml:"kind" json:"kind"`

	// Key is the state key the callback writes (counter, stopper, tagger).
	Key string `yaml:"key,omitempty" json:"key,omitempty"`

	// Field and Value configure the tagger's payload mutation.
	Field string `yaml:"field,omitempty" json:"field,omitempty"`
	Value string `yaml:"value,omitempty" json:"value,omitempty"`

	// Cell is an optional label: listeners with the same label share one
	// callback cell, so initialization happens once across all of them.
	Cell string `yaml:"cell,omitempty" json:"cell,omitempty"`
}

// EventDef declares one dispatch.
type EventDef struct {
	// Name is the event name to bubble.
	Name string `yaml:"name" json:"name"`

	// Target names the entity the event is aimed at.
	Target string `yaml:"target" json:"target"`

	// Token fixes the dispatch token. Defaults to "pass-N" by position,
	// which keeps golden journals deterministic.
	Token string `yaml:"token,omitempty" json:"token,omitempty"`

	// Fields is the initial payload.
	Fields map[string]any `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// Assertion validates the journal or final state after all passes ran.
type Assertion struct {
	// Type is one of:
	// - "delivered_count": Event was delivered exactly Count times overall
	// - "state": Entity's state Key equals Value
	// - "stopped_at": the pass for Event stopped at Entity
	Type string `yaml:"type" json:"type"`

	Event  string `yaml:"event,omitempty" json:"event,omitempty"`
	Count  int    `yaml:"count,omitempty" json:"count,omitempty"`
	Entity string `yaml:"entity,omitempty" json:"entity,omitempty"`
	Key    string `yaml:"key,omitempty" json:"key,omitempty"`
	Value  string `yaml:"value,omitempty" json:"value,omitempty"`
}

// ValidKinds are the built-in callback kinds a listener may reference.
var ValidKinds = []string{"counter", "stopper", "tagger"}

// Load reads a scenario from path, picking the format by extension:
// .cue loads through the CUE evaluator, everything else parses as YAML.
func Load(path string) (*Scenario, error) {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return LoadCUE(path)
	}
	return LoadYAML(path)
}

// LoadYAML reads and validates a YAML scenario file.
func LoadYAML(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	return &s, nil
}

// Validate checks internal consistency: unique entity names, parents
// declared before children, known listener kinds, resolvable references,
// and consistent shared-cell labels.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if len(s.Entities) == 0 {
		return fmt.Errorf("at least one entity is required")
	}

	declared := make(map[string]bool, len(s.Entities))
	for _, e := range s.Entities {
		if e.Name == "" {
			return fmt.Errorf("entity name is required")
		}
		if declared[e.Name] {
			return fmt.Errorf("duplicate entity name: %s", e.Name)
		}
		if e.Parent != "" && !declared[e.Parent] {
			return fmt.Errorf("entity %s: parent %q not declared before it", e.Name, e.Parent)
		}
		declared[e.Name] = true
	}

	cellKinds := make(map[string]string)
	for i, l := range s.Listeners {
		if l.Event == "" {
			return fmt.Errorf("listener %d: event is required", i)
		}
		if !declared[l.Entity] {
			return fmt.Errorf("listener %d: unknown entity %q", i, l.Entity)
		}
		if !isValidKind(l.Kind) {
			return fmt.Errorf("listener %d: unknown kind %q (must be one of %v)", i, l.Kind, ValidKinds)
		}
		if l.Cell != "" {
			if prev, ok := cellKinds[l.Cell]; ok && prev != l.Kind {
				return fmt.Errorf("listener %d: cell %q already declared with kind %q", i, l.Cell, prev)
			}
			cellKinds[l.Cell] = l.Kind
		}
	}

	if len(s.Events) == 0 {
		return fmt.Errorf("at least one event is required")
	}
	for i, ev := range s.Events {
		if ev.Name == "" {
			return fmt.Errorf("event %d: name is required", i)
		}
		if !declared[ev.Target] {
			return fmt.Errorf("event %d: unknown target %q", i, ev.Target)
		}
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case "delivered_count":
			if a.Event == "" {
				return fmt.Errorf("assertion %d: delivered_count needs an event", i)
			}
		case "state":
			if !declared[a.Entity] {
				return fmt.Errorf("assertion %d: unknown entity %q", i, a.Entity)
			}
			if a.Key == "" {
				return fmt.Errorf("assertion %d: state needs a key", i)
			}
		case "stopped_at":
			if a.Event == "" || !declared[a.Entity] {
				return fmt.Errorf("assertion %d: stopped_at needs an event and a declared entity", i)
			}
		default:
			return fmt.Errorf("assertion %d: unknown type %q", i, a.Type)
		}
	}

	return nil
}

func isValidKind(kind string) bool {
	for _, k := range ValidKinds {
		if k == kind {
			return true
		}
	}
	return false
}
