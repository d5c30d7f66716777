package engine

import (
	"encoding/json"
	"fmt"

	"github.com/blockquest/blockgen/pkgs/block"
	"github.com/blockquest/blockgen/pkgs/errors"
	"github.com/blockquest/blockgen/pkgs/generator"
	"github.com/blockquest/blockgen/pkgs/level"
)

// Session is the mutable workflow a learner assembles interactively: an
// ordered sequence of top-level blocks plus the current level. The session
// itself is a shell concern; rendering always goes through the pure core.
// A Session is not safe for concurrent use.
type Session struct {
	level    int
	sequence block.Program
}

// NewSession creates an empty workflow at the given level.
func NewSession(lvl int) *Session {
	return &Session{level: level.Normalize(lvl)}
}

// Level returns the session's current level.
func (s *Session) Level() int {
	return s.level
}

// SetLevel changes the session's level. Blocks already in the sequence are
// kept; ones above the new level simply stop rendering.
func (s *Session) SetLevel(lvl int) {
	s.level = level.Normalize(lvl)
}

// Len returns the number of top-level blocks in the workflow.
func (s *Session) Len() int {
	return len(s.sequence)
}

// Sequence returns a copy of the workflow's top-level blocks.
func (s *Session) Sequence() block.Program {
	out := make(block.Program, len(s.sequence))
	copy(out, s.sequence)
	return out
}

// AddFromPalette appends a command built from its palette defaults, with
// custom values overriding them. Commands not available at the session's
// level are refused, mirroring a palette that hides locked commands.
func (s *Session) AddFromPalette(blockType string, custom map[string]interface{}) (int, error) {
	desc, ok := level.Describe(blockType)
	if !ok {
		return 0, errors.NewUnknownCommandError(blockType, fmt.Sprintf("blocks[%d]", len(s.sequence)), "")
	}
	if !level.Allowed(blockType, s.level) {
		return 0, errors.New(errors.ErrCommandNotAvailable,
			fmt.Sprintf("command '%s' is not available at level %d", blockType, s.level)).
			WithContext("block_type", blockType).
			WithContext("level", s.level)
	}

	params := make(map[string]interface{}, len(desc.Defaults))
	for k, v := range desc.Defaults {
		params[k] = v
	}
	for k, v := range custom {
		params[k] = v
	}

	s.sequence = append(s.sequence, block.Block{Type: blockType, Params: params})
	return len(s.sequence) - 1, nil
}

// Add appends an already-built block without palette gating. Used by
// Import and by callers constructing container bodies directly.
func (s *Session) Add(b block.Block) int {
	s.sequence = append(s.sequence, b)
	return len(s.sequence) - 1
}

// Insert places a block at a specific position.
func (s *Session) Insert(index int, b block.Block) error {
	if index < 0 || index > len(s.sequence) {
		return indexError(index, len(s.sequence))
	}
	s.sequence = append(s.sequence[:index], append(block.Program{b}, s.sequence[index:]...)...)
	return nil
}

// Remove deletes the block at index.
func (s *Session) Remove(index int) error {
	if index < 0 || index >= len(s.sequence) {
		return indexError(index, len(s.sequence))
	}
	s.sequence = append(s.sequence[:index], s.sequence[index+1:]...)
	return nil
}

// RemoveLast deletes the most recently added block. Removing from an empty
// workflow is a no-op.
func (s *Session) RemoveLast() {
	if len(s.sequence) > 0 {
		s.sequence = s.sequence[:len(s.sequence)-1]
	}
}

// Move relocates the block at fromIndex to toIndex.
func (s *Session) Move(fromIndex, toIndex int) error {
	if fromIndex < 0 || fromIndex >= len(s.sequence) {
		return indexError(fromIndex, len(s.sequence))
	}
	if toIndex < 0 || toIndex >= len(s.sequence) {
		return indexError(toIndex, len(s.sequence))
	}
	b := s.sequence[fromIndex]
	s.sequence = append(s.sequence[:fromIndex], s.sequence[fromIndex+1:]...)
	s.sequence = append(s.sequence[:toIndex], append(block.Program{b}, s.sequence[toIndex:]...)...)
	return nil
}

// Update replaces the block at index.
func (s *Session) Update(index int, b block.Block) error {
	if index < 0 || index >= len(s.sequence) {
		return indexError(index, len(s.sequence))
	}
	s.sequence[index] = b
	return nil
}

// Clear empties the workflow.
func (s *Session) Clear() {
	s.sequence = nil
}

// Preview renders the current workflow at the session's level.
func (s *Session) Preview() (*generator.Result, error) {
	return Generate(s.sequence, s.level)
}

// sessionExport is the JSON shape of an exported workflow.
type sessionExport struct {
	Level  int           `json:"level"`
	Blocks block.Program `json:"blocks"`
}

// Export serializes the workflow and level for saving or sharing.
func (s *Session) Export() ([]byte, error) {
	data, err := json.MarshalIndent(sessionExport{Level: s.level, Blocks: s.sequence}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInputDecode, "failed to export workflow", err)
	}
	return data, nil
}

// Import replaces the workflow with a previously exported one. The block
// payload is structurally validated before anything is replaced, so a bad
// import leaves the session untouched.
func (s *Session) Import(data []byte) error {
	var exported sessionExport
	if err := json.Unmarshal(data, &exported); err != nil {
		return errors.NewDecodeError("workflow import is not valid JSON", err)
	}

	raw, err := json.Marshal(exported.Blocks)
	if err != nil {
		return errors.NewDecodeError("workflow import could not be re-encoded", err)
	}
	program, err := block.DecodeProgram(raw)
	if err != nil {
		return err
	}

	s.level = level.Normalize(exported.Level)
	s.sequence = program
	return nil
}

func indexError(index, length int) error {
	return errors.New(errors.ErrIndexOutOfRange,
		fmt.Sprintf("index %d out of range for workflow of %d blocks", index, length)).
		WithContext("index", index).
		WithContext("length", length)
}
