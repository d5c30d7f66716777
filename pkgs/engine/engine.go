// Package engine is the facade the shells talk to. It exposes the core
// operations (generate text from blocks, list commands for a level) plus
// the mutable workflow session the interactive harness builds programs in.
package engine

import (
	"github.com/blockquest/blockgen/pkgs/block"
	"github.com/blockquest/blockgen/pkgs/generator"
	"github.com/blockquest/blockgen/pkgs/level"
)

// Generate renders an already-decoded block program at the given level.
// It either succeeds with the full render result or fails on the first
// unresolvable node; level-based skipping is not a failure.
func Generate(program block.Program, lvl int) (*generator.Result, error) {
	return generator.New(lvl).RenderProgram(program)
}

// GenerateJSON validates, decodes and renders a JSON array of block-shaped
// records. This is the entry point for the transport shells, which hand in
// raw payloads.
func GenerateJSON(data []byte, lvl int) (*generator.Result, error) {
	program, err := block.DecodeProgram(data)
	if err != nil {
		return nil, err
	}
	return Generate(program, lvl)
}

// ListCommands returns the command descriptors visible at the given level,
// in palette order. Unrecognized levels degrade to the lowest tier.
func ListCommands(lvl int) []level.Descriptor {
	return level.CommandsFor(lvl)
}
