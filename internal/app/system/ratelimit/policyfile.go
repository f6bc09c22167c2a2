// internal/app/system/ratelimit/policyfile.go
package ratelimit

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk shape of a rate-limit policy override file:
//
//	actions:
//	  create_invite:
//	    limit: 10
//	    window: 1h
//	  join_group:
//	    limit: 20
//	    window: 1h
type policyFile struct {
	Actions map[string]policySpec `yaml:"actions"`
}

type policySpec struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"`
}

// LoadPolicies reads a YAML policy file and merges it over the defaults.
// Actions absent from the file keep their default budget; unknown action
// names are rejected so typos do not silently disable a limit.
func LoadPolicies(path string) (map[Action]Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return parsePolicies(data)
}

func parsePolicies(data []byte) (map[Action]Policy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse policy file: %w", err)
	}

	policies := DefaultPolicies()
	for name, spec := range pf.Actions {
		action := Action(name)
		if _, known := policies[action]; !known {
			return nil, fmt.Errorf("unknown rate-limit action %q", name)
		}
		if spec.Limit <= 0 {
			return nil, fmt.Errorf("action %q: limit must be positive, got %d", name, spec.Limit)
		}
		window, err := time.ParseDuration(spec.Window)
		if err != nil {
			return nil, fmt.Errorf("action %q: invalid window %q: %w", name, spec.Window, err)
		}
		if window <= 0 {
			return nil, fmt.Errorf("action %q: window must be positive", name)
		}
		policies[action] = Policy{Limit: spec.Limit, Window: window}
	}
	return policies, nil
}
