// Package policy manages the YAML-based mode policy table. Each
// operating mode maps a relevance score to an extension reaction; the
// backend serves the table so the extension and server agree on the
// mode set.
package policy

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ModePolicy describes how one operating mode reacts to relevance scores.
type ModePolicy struct {
	Name string `yaml:"name" json:"name"`
	// Description is shown in the extension's mode picker.
	Description string `yaml:"description" json:"description"`
	// BlockThreshold: scores strictly below it are treated as
	// distractions by this mode.
	BlockThreshold float64 `yaml:"block_threshold" json:"block_threshold"`
	// Nudge modes overlay a reminder instead of blocking outright.
	Nudge bool `yaml:"nudge" json:"nudge"`
}

// File is the top-level YAML structure.
type File struct {
	Modes []ModePolicy `yaml:"modes"`
}

// Registry holds loaded mode policies, keyed by name.
type Registry struct {
	byName map[string]*ModePolicy
	order  []string // preserves definition order
}

// Defaults returns the built-in mode policy table.
func Defaults() *Registry {
	return fromModes([]ModePolicy{
		{
			Name:           "nudge",
			Description:    "Gentle reminders; distracting pages get an overlay, nothing is blocked.",
			BlockThreshold: 0.3,
			Nudge:          true,
		},
		{
			Name:           "guardrail",
			Description:    "Distracting pages are blocked; borderline pages are allowed.",
			BlockThreshold: 0.4,
		},
		{
			Name:           "monk",
			Description:    "Strict focus; anything not clearly relevant is blocked.",
			BlockThreshold: 0.6,
		},
	})
}

// Load reads the YAML file at path. If the file does not exist, Load
// returns the built-in defaults (not an error).
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Modes) == 0 {
		return Defaults(), nil
	}
	return fromModes(f.Modes), nil
}

func fromModes(modes []ModePolicy) *Registry {
	r := &Registry{
		byName: make(map[string]*ModePolicy, len(modes)),
	}
	for i := range modes {
		m := &modes[i]
		if _, exists := r.byName[m.Name]; exists {
			continue // first definition wins
		}
		r.byName[m.Name] = m
		r.order = append(r.order, m.Name)
	}
	return r
}

// Get returns a mode policy by name. Returns (nil, false) if not found.
func (r *Registry) Get(name string) (*ModePolicy, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// All returns all mode policies in definition order.
func (r *Registry) All() []*ModePolicy {
	result := make([]*ModePolicy, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.byName[name])
	}
	return result
}
