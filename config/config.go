// Package config holds the tuning knobs of the controller: cache lifetimes,
// CPU bucket gates, throttles and thresholds. Defaults match the values the
// bot has always shipped with; a YAML file may override any subset.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	Cache      Cache      `yaml:"cache"`
	Buckets    Buckets    `yaml:"buckets"`
	Intervals  Intervals  `yaml:"intervals"`
	Thresholds Thresholds `yaml:"thresholds"`
	Options    Options    `yaml:"options"`
}

// Cache TTLs are in ticks. A negative TTL means "compute once, never expire".
type Cache struct {
	Queries     map[string]int `yaml:"queries"`
	Jobs        map[string]int `yaml:"jobs"`
	MovementTTL int            `yaml:"movement_ttl"`
}

// Buckets are the minimum CPU bucket each orchestrator component needs to run.
type Buckets struct {
	Memory  int `yaml:"memory"`
	Rooms   int `yaml:"rooms"`
	Spawn   int `yaml:"spawn"`
	Creeps  int `yaml:"creeps"`
	Visuals int `yaml:"visuals"`
	Empire  int `yaml:"empire"`
}

type Intervals struct {
	Spawn    int `yaml:"spawn"`
	Towers   int `yaml:"towers"`
	Defcon   int `yaml:"defcon"`
	Snapshot int `yaml:"snapshot"`
	Rules    int `yaml:"rules"` // spawn rule file re-read
}

type Thresholds struct {
	ContainerMinimumEnergy int     `yaml:"container_minimum_energy"`
	LinkMinimumEnergy      int     `yaml:"link_minimum_energy"`
	LootMinimumEnergy      int     `yaml:"loot_minimum_energy"`
	Repair                 float64 `yaml:"repair"`
	PriorityRepair         float64 `yaml:"priority_repair"`
	RampartHits            int     `yaml:"rampart_hits"`
	Tower                  float64 `yaml:"tower"`
	StuckCount             int     `yaml:"stuck_count"`
	ReserverMinTTL         int     `yaml:"reserver_min_ttl"`
}

type Options struct {
	MinersGetClosestSource bool   `yaml:"miners_get_closest_source"`
	VisualsOn              bool   `yaml:"visuals_on"`
	NoCachingMemory        bool   `yaml:"no_caching_memory"`
	SignText               string `yaml:"sign_text"`
}

func Default() Tuning {
	return Tuning{
		Cache: Cache{
			Queries: map[string]int{
				"structures":        50,
				"sources":           -1,
				"minerals":          -1,
				"constructionSites": 50,
				"tombstones":        50,
				"ruins":             50,
				"dropped":           50,
				"myCreeps":          3,
				"hostiles":          1,
			},
			Jobs: map[string]int{
				"source":    50,
				"mineral":   50,
				"container": 5,
				"link":      50,
				"backup":    5,
				"pickup":    50,
				"loot":      50,
				"claim":     1,
				"reserve":   1,
				"sign":      50,
				"attack":    1,
				"repair":    10,
				"build":     10,
				"upgrade":   -1,
				"fill":      10,
				"store":     50,
			},
			MovementTTL: 2500,
		},
		Buckets: Buckets{
			Memory:  1,
			Rooms:   500,
			Spawn:   50,
			Creeps:  1000,
			Visuals: 7000,
			Empire:  5000,
		},
		Intervals: Intervals{
			Spawn:    3,
			Towers:   1,
			Defcon:   2,
			Snapshot: 100,
			Rules:    50,
		},
		Thresholds: Thresholds{
			ContainerMinimumEnergy: 100,
			LinkMinimumEnergy:      1,
			LootMinimumEnergy:      25,
			Repair:                 0.9,
			PriorityRepair:         0.3,
			RampartHits:            10000,
			Tower:                  0.85,
			StuckCount:             3,
			ReserverMinTTL:         500,
		},
		Options: Options{
			MinersGetClosestSource: true,
			VisualsOn:              true,
			SignText:               "down to die for my rooms",
		},
	}
}

// Load reads a YAML file on top of Default(). Keys absent from the file keep
// their default values.
func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Intervals.Spawn <= 0 {
		return fmt.Errorf("intervals.spawn must be positive, got %d", t.Intervals.Spawn)
	}
	if t.Thresholds.PriorityRepair > t.Thresholds.Repair {
		return fmt.Errorf("thresholds.priority_repair (%.2f) above thresholds.repair (%.2f)",
			t.Thresholds.PriorityRepair, t.Thresholds.Repair)
	}
	return nil
}

// QueryTTL returns the lifetime of a room query kind. Unknown kinds are never
// cached past the current tick.
func (t Tuning) QueryTTL(kind string) int {
	if ttl, ok := t.Cache.Queries[kind]; ok {
		return ttl
	}
	return 0
}

func (t Tuning) JobTTL(kind string) int {
	if ttl, ok := t.Cache.Jobs[kind]; ok {
		return ttl
	}
	return 0
}
