// Package simulate replays navigation scenarios against a simulated browser.
package simulate

import (
	"errors"
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// ErrInvalidScenario is returned for scenarios that cannot be run.
var ErrInvalidScenario = errors.New("simulate: invalid scenario")

// Step operations.
const (
	OpPush     = "push"
	OpBack     = "back"
	OpForward  = "forward"
	OpGo       = "go"
	OpReload   = "reload"
	OpSnapshot = "snapshot"
	OpMatch    = "match"
)

// Scenario is a list of navigation steps over a set of routes.
type Scenario struct {
	// Start is the path of the first entry. Default: the first route's path.
	Start string `toml:"start"`

	// Reloadable overrides the configured mode when set.
	Reloadable *bool `toml:"reloadable"`

	Routes []RouteSpec `toml:"routes"`
	Steps  []Step      `toml:"steps"`
}

// RouteSpec declares one route.
type RouteSpec struct {
	Name string         `toml:"name"`
	Path string         `toml:"path"`
	Meta map[string]any `toml:"meta"`
}

// Step is one scenario operation. Fields apply depending on Op.
type Step struct {
	Op string `toml:"op"`

	// push
	Name   string            `toml:"name"`
	Path   string            `toml:"path"`
	Params map[string]string `toml:"params"`
	Query  map[string]string `toml:"query"`
	Hash   string            `toml:"hash"`

	// go
	Delta int `toml:"delta"`

	// snapshot: data returned by the mounted view when its page is left.
	Data map[string]any `toml:"data"`

	// match
	Partial map[string]any `toml:"partial"`
}

// LoadScenario reads a TOML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(b)
}

// ParseScenario parses and validates a TOML scenario.
func ParseScenario(b []byte) (*Scenario, error) {
	var sc Scenario
	if err := toml.Unmarshal(b, &sc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks that every step can be run.
func (sc *Scenario) Validate() error {
	if len(sc.Routes) == 0 {
		return fmt.Errorf("%w: no routes", ErrInvalidScenario)
	}
	for i, r := range sc.Routes {
		if r.Path == "" {
			return fmt.Errorf("%w: route %d has no path", ErrInvalidScenario, i)
		}
	}
	for i, s := range sc.Steps {
		switch s.Op {
		case OpPush:
			if s.Name == "" && s.Path == "" {
				return fmt.Errorf("%w: step %d: push needs a name or a path", ErrInvalidScenario, i)
			}
		case OpGo:
			if s.Delta == 0 {
				return fmt.Errorf("%w: step %d: go needs a non-zero delta", ErrInvalidScenario, i)
			}
		case OpMatch:
			if len(s.Partial) == 0 {
				return fmt.Errorf("%w: step %d: match needs a partial route", ErrInvalidScenario, i)
			}
		case OpBack, OpForward, OpReload, OpSnapshot:
		default:
			return fmt.Errorf("%w: step %d: unknown op %q", ErrInvalidScenario, i, s.Op)
		}
	}
	return nil
}

func (sc *Scenario) startPath() string {
	if sc.Start != "" {
		return sc.Start
	}
	return sc.Routes[0].Path
}
