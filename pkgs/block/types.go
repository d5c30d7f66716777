package block

import (
	"fmt"

	"github.com/blockquest/blockgen/pkgs/errors"
)

// Command type identifiers form the closed set of block types the
// transpiler understands. Anything else is an UNKNOWN_COMMAND_TYPE.
const (
	TypeMoveForward  = "move_forward"
	TypeMoveBackward = "move_backward"
	TypeTurnLeft     = "turn_left"
	TypeTurnRight    = "turn_right"
	TypeJump         = "jump"
	TypePickObject   = "pick_object"
	TypePrint        = "print"
	TypeWait         = "wait"
	TypeConditional  = "conditional"
	TypeLoop         = "loop"
)

// Types lists every known command type in palette order.
var Types = []string{
	TypeMoveForward,
	TypeMoveBackward,
	TypeTurnLeft,
	TypeTurnRight,
	TypeJump,
	TypePickObject,
	TypeLoop,
	TypeConditional,
	TypePrint,
	TypeWait,
}

// Block is the unit of a visual program: a command type plus its parameter
// mapping. Loop and conditional blocks own nested block sequences inside
// Params ("body", "if_body"/"else_body"); every other type is a leaf.
// A Block has no identity beyond its position in the tree and is treated
// as immutable once decoded.
type Block struct {
	Type   string                 `json:"type"`
	Params map[string]interface{} `json:"params"`
}

// Program is an ordered sequence of top-level blocks. Order is emission
// order. An empty program is valid and renders to empty text.
type Program []Block

// IsContainer reports whether a command type owns nested block sequences.
func IsContainer(blockType string) bool {
	return blockType == TypeLoop || blockType == TypeConditional
}

// IsKnown reports whether a command type belongs to the closed set.
func IsKnown(blockType string) bool {
	for _, t := range Types {
		if t == blockType {
			return true
		}
	}
	return false
}

// FromValue coerces a decoded JSON value into a Block. The value must be a
// mapping with a "type" string and a "params" mapping.
func FromValue(v interface{}) (Block, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Block{}, fmt.Errorf("block must be an object, got %T", v)
	}

	rawType, ok := m["type"]
	if !ok {
		return Block{}, fmt.Errorf("block is missing 'type'")
	}
	blockType, ok := rawType.(string)
	if !ok {
		return Block{}, fmt.Errorf("block 'type' must be a string, got %T", rawType)
	}

	params := map[string]interface{}{}
	if rawParams, ok := m["params"]; ok && rawParams != nil {
		params, ok = rawParams.(map[string]interface{})
		if !ok {
			return Block{}, fmt.Errorf("block 'params' must be an object, got %T", rawParams)
		}
	}

	return Block{Type: blockType, Params: params}, nil
}

// Body coerces a decoded params value into a sequence of child blocks. It
// accepts an already-typed []Block (programs built in-process) or the
// []interface{} shape produced by JSON decoding. blockType, field and path
// identify the owning container for error reporting.
func Body(v interface{}, blockType, field, path string) ([]Block, error) {
	switch seq := v.(type) {
	case nil:
		return nil, nil
	case []Block:
		return seq, nil
	case Program:
		return seq, nil
	case []interface{}:
		children := make([]Block, 0, len(seq))
		for i, item := range seq {
			child, err := FromValue(item)
			if err != nil {
				return nil, errors.NewMalformedBodyError(blockType, field,
					fmt.Sprintf("%s.%s[%d]", path, field, i), err)
			}
			children = append(children, child)
		}
		return children, nil
	default:
		return nil, errors.NewMalformedBodyError(blockType, field, path,
			fmt.Errorf("'%s' must be a sequence of blocks, got %T", field, v))
	}
}
