package config

import (
	"errors"
	"sort"

	"github.com/san-kum/springsim/internal/dynamo"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

var Presets = map[string]dynamo.Params{
	"default":    {Mass: 1.0, Stiffness: 0.1, Damping: 0.1, Dt: 0.1, Duration: 50},
	"fine":       {Mass: 1.0, Stiffness: 0.1, Damping: 0.1, Dt: 0.01, Duration: 50},
	"stiff":      {Mass: 1.0, Stiffness: 2.0, Damping: 0.1, Dt: 0.01, Duration: 30},
	"heavy":      {Mass: 8.0, Stiffness: 0.5, Damping: 0.1, Dt: 0.05, Duration: 100},
	"overdamped": {Mass: 1.0, Stiffness: 0.1, Damping: 1.0, Dt: 0.05, Duration: 60},
	"free":       {Mass: 1.0, Stiffness: 0, Damping: 0, Dt: 0.1, Duration: 50},
}

// GetPreset returns DefaultConfig with the named preset's parameters, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Params = p
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
