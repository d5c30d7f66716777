// Package level decides which block commands a learner may use at a given
// game level. Levels are cumulative capability tiers: every level includes
// all commands of every lower level, so the table records only the minimum
// tier at which each command unlocks.
package level

import (
	"github.com/blockquest/blockgen/pkgs/block"
)

// Tier boundaries. Levels between tiers inherit the nearest lower tier;
// unrecognized levels (zero, negative) degrade to the lowest tier so the
// palette stays usable instead of failing.
const (
	MinTier = 1
	MaxTier = 4
)

// Descriptor describes one palette command: its wire type, the parameter
// names its template substitutes, and the display metadata the palette UI
// shows for it.
type Descriptor struct {
	Type        string                 `json:"type"`
	Label       string                 `json:"label"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Params      []string               `json:"params"`
	Defaults    map[string]interface{} `json:"default_params"`
	MinLevel    int                    `json:"min_level"`
}

// palette is the static command table in display order. MinLevel encodes
// the cumulative tier partition: tier 1 is basic movement plus print, tier
// 2 adds wait, tier 3 adds the conditional, tier 4 adds the loop.
var palette = []Descriptor{
	{
		Type:        block.TypeMoveForward,
		Label:       "Move Forward",
		Category:    "movement",
		Description: "Move the character forward by specified distance",
		Params:      []string{"distance"},
		Defaults:    map[string]interface{}{"distance": 1},
		MinLevel:    1,
	},
	{
		Type:        block.TypeMoveBackward,
		Label:       "Move Backward",
		Category:    "movement",
		Description: "Move the character backward by specified distance",
		Params:      []string{"distance"},
		Defaults:    map[string]interface{}{"distance": 1},
		MinLevel:    1,
	},
	{
		Type:        block.TypeTurnLeft,
		Label:       "Turn Left",
		Category:    "movement",
		Description: "Turn the character left by specified degrees",
		Params:      []string{"degrees"},
		Defaults:    map[string]interface{}{"degrees": 90},
		MinLevel:    1,
	},
	{
		Type:        block.TypeTurnRight,
		Label:       "Turn Right",
		Category:    "movement",
		Description: "Turn the character right by specified degrees",
		Params:      []string{"degrees"},
		Defaults:    map[string]interface{}{"degrees": 90},
		MinLevel:    1,
	},
	{
		Type:        block.TypeJump,
		Label:       "Jump",
		Category:    "movement",
		Description: "Make the character jump to specified height",
		Params:      []string{"height"},
		Defaults:    map[string]interface{}{"height": 1},
		MinLevel:    1,
	},
	{
		Type:        block.TypePickObject,
		Label:       "Pick Object",
		Category:    "action",
		Description: "Pick up an object in the environment",
		Params:      []string{"object_name"},
		Defaults:    map[string]interface{}{"object_name": "item"},
		MinLevel:    1,
	},
	{
		Type:        block.TypePrint,
		Label:       "Print",
		Category:    "utility",
		Description: "Print a message to the console",
		Params:      []string{"message"},
		Defaults:    map[string]interface{}{"message": "Hello"},
		MinLevel:    1,
	},
	{
		Type:        block.TypeWait,
		Label:       "Wait",
		Category:    "utility",
		Description: "Pause execution for specified seconds",
		Params:      []string{"seconds"},
		Defaults:    map[string]interface{}{"seconds": 1},
		MinLevel:    2,
	},
	{
		Type:        block.TypeConditional,
		Label:       "If/Else",
		Category:    "control",
		Description: "Execute commands based on a condition",
		Params:      []string{"condition", "if_body", "else_body"},
		Defaults:    map[string]interface{}{"condition": "True", "if_body": []interface{}{}, "else_body": []interface{}{}},
		MinLevel:    3,
	},
	{
		Type:        block.TypeLoop,
		Label:       "Loop",
		Category:    "control",
		Description: "Repeat a sequence of commands multiple times",
		Params:      []string{"iterations", "body"},
		Defaults:    map[string]interface{}{"iterations": 3, "body": []interface{}{}},
		MinLevel:    4,
	},
}

// minTiers indexes the palette by command type for the allowance check.
var minTiers = func() map[string]int {
	m := make(map[string]int, len(palette))
	for _, d := range palette {
		m[d.Type] = d.MinLevel
	}
	return m
}()

// Normalize clamps an arbitrary level integer to its capability tier.
func Normalize(level int) int {
	if level < MinTier {
		return MinTier
	}
	if level > MaxTier {
		return MaxTier
	}
	return level
}

// Allowed reports whether a command type belongs to the cumulative command
// set for the given level. Unknown command types are never allowed.
func Allowed(blockType string, level int) bool {
	minTier, ok := minTiers[blockType]
	if !ok {
		return false
	}
	return minTier <= Normalize(level)
}

// CommandsFor returns the palette commands visible at the given level, in
// stable palette order. The result is a fresh slice; callers may not mutate
// the shared descriptors' maps.
func CommandsFor(level int) []Descriptor {
	tier := Normalize(level)
	out := make([]Descriptor, 0, len(palette))
	for _, d := range palette {
		if d.MinLevel <= tier {
			out = append(out, d)
		}
	}
	return out
}

// Describe returns the palette descriptor for a command type.
func Describe(blockType string) (Descriptor, bool) {
	for _, d := range palette {
		if d.Type == blockType {
			return d, true
		}
	}
	return Descriptor{}, false
}
