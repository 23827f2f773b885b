package seeder

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Profile describes a seeding run: how many events of which types, and how
// far back in time to spread them.
type Profile struct {
	Spread time.Duration  `yaml:"spread"`
	Events []ProfileEntry `yaml:"events"`
}

// ProfileEntry is one event type quota within a profile.
type ProfileEntry struct {
	Type  string `yaml:"type"`
	Count int    `yaml:"count"`
}

// LoadProfile reads a seeding profile from a YAML file and validates that
// every named event type has a generator.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seeder: read profile: %w", err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("seeder: parse profile: %w", err)
	}

	if len(p.Events) == 0 {
		return nil, fmt.Errorf("seeder: profile %s declares no events", path)
	}
	for _, entry := range p.Events {
		if _, ok := generators[entry.Type]; !ok {
			return nil, fmt.Errorf("seeder: no generator for event type %q", entry.Type)
		}
		if entry.Count < 1 {
			return nil, fmt.Errorf("seeder: event type %q has non-positive count %d", entry.Type, entry.Count)
		}
	}
	return &p, nil
}

// Envelopes fabricates the full batch the profile describes.
func (p *Profile) Envelopes() ([]Envelope, error) {
	var out []Envelope
	for _, entry := range p.Events {
		for i := 0; i < entry.Count; i++ {
			env, err := Generate(entry.Type, p.Spread)
			if err != nil {
				return nil, err
			}
			out = append(out, env)
		}
	}
	return out, nil
}
