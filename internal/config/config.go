// Package config loads YAML run specifications: a problem name, engine
// tunables, and an optional explicit domain. The CLI overlays flags on top
// of a loaded spec.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/harmonysearch/internal/opt"
	"github.com/cwbudde/harmonysearch/internal/problem"
)

// RunSpec describes one optimization run.
type RunSpec struct {
	Problem          string      `yaml:"problem"`
	Optimizer        string      `yaml:"optimizer"`
	Restarts         int         `yaml:"restarts"`
	Vars             int         `yaml:"vars"`
	Domain           []DomainVar `yaml:"domain"`
	opt.EngineConfig `yaml:",inline"`
}

// DomainVar declares the admissible values of one variable, either as an
// explicit list or as an evenly spaced range.
type DomainVar struct {
	Values []float64 `yaml:"values,omitempty"`
	Range  *Range    `yaml:"range,omitempty"`
}

// Range expands to Steps evenly spaced values from Min to Max inclusive.
type Range struct {
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
	Steps int     `yaml:"steps"`
}

// Load reads and validates a run spec from a YAML file.
func Load(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run spec: %w", err)
	}
	var spec RunSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse run spec %s: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("run spec %s: %w", path, err)
	}
	return &spec, nil
}

// Validate checks the spec for structural problems. Engine values are
// validated later by the engine itself.
func (s *RunSpec) Validate() error {
	if s.Problem == "" {
		return fmt.Errorf("missing problem name")
	}
	if s.Restarts < 0 {
		return fmt.Errorf("restarts must not be negative")
	}
	if s.Vars < 0 {
		return fmt.Errorf("vars must not be negative")
	}
	for i, dv := range s.Domain {
		if len(dv.Values) == 0 && dv.Range == nil {
			return fmt.Errorf("domain variable %d: needs values or a range", i)
		}
		if len(dv.Values) > 0 && dv.Range != nil {
			return fmt.Errorf("domain variable %d: values and range are mutually exclusive", i)
		}
		if dv.Range != nil {
			if dv.Range.Steps < 1 {
				return fmt.Errorf("domain variable %d: range needs at least 1 step", i)
			}
			if dv.Range.Min > dv.Range.Max {
				return fmt.Errorf("domain variable %d: range min exceeds max", i)
			}
		}
	}
	return nil
}

// BuildDomain resolves the domain section to per-variable value lists. With
// no domain section it falls back to the problem's default, widened to Vars
// variables when set.
func (s *RunSpec) BuildDomain(p *problem.Problem) [][]float64 {
	if len(s.Domain) == 0 {
		return p.DomainFor(s.Vars)
	}
	out := make([][]float64, len(s.Domain))
	for i, dv := range s.Domain {
		if len(dv.Values) > 0 {
			out[i] = append([]float64(nil), dv.Values...)
			continue
		}
		out[i] = problem.Grid(dv.Range.Min, dv.Range.Max, dv.Range.Steps)
	}
	return out
}
