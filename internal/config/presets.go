package config

import "sort"

type Preset struct {
	Description string
	build       func() *Config
}

var Presets = map[string]Preset{
	"drape": {
		Description: "16x16 sheet hanging from its top corners",
		build:       DefaultConfig,
	},
	"curtain": {
		Description: "top row pinned, released in three stages at 1s, 2s and 3s",
		build:       curtain,
	},
	"flag": {
		Description: "left edge pinned in a sweeping wind",
		build:       flag,
	},
	"hammock": {
		Description: "all four corners pinned",
		build:       hammock,
	},
}

func curtain() *Config {
	cfg := DefaultConfig()
	cfg.Duration = 5
	cfg.Pins = PinConfig{TopRow: true}

	// top row indices, split into a middle and two outer stages
	w, h := cfg.Grid.Width, cfg.Grid.Height
	row := (h - 1) * w
	var middle, left, right []int
	for j := 0; j < w; j++ {
		switch {
		case j >= w/4 && j < w-w/4:
			middle = append(middle, row+j)
		case j < w/4:
			left = append(left, row+j)
		default:
			right = append(right, row+j)
		}
	}
	// the outermost corners stay pinned
	left = left[1:]
	right = right[:len(right)-1]
	cfg.Releases = []ReleaseConfig{
		{At: 1, Points: middle},
		{At: 2, Points: left},
		{At: 3, Points: right},
	}
	return cfg
}

func flag() *Config {
	cfg := DefaultConfig()
	cfg.Grid.Aspect = 0.6
	cfg.Pins = PinConfig{LeftColumn: true}
	cfg.Wind.Mode = "dynamic"
	return cfg
}

func hammock() *Config {
	cfg := DefaultConfig()
	cfg.Grid.Tension = 1.05
	cfg.Pins = PinConfig{BottomLeft: true, BottomRight: true, TopLeft: true, TopRight: true}
	return cfg
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return p.build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
