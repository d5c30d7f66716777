package generator

import (
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"

	"github.com/blockquest/blockgen/pkgs/block"
)

// canonicalInput is the intermediate form for deterministic hashing. The
// level is part of the input because the same program renders differently
// at different levels; two renders are interchangeable only when both the
// program and the level match.
type canonicalInput struct {
	Version uint8         `cbor:"1,keyasint"`
	Level   int           `cbor:"2,keyasint"`
	Blocks  []interface{} `cbor:"3,keyasint"`
}

// canonicalVersion guards the canonical format for forward compatibility.
const canonicalVersion = 1

// encMode is the canonical CBOR encoder: deterministic map key ordering so
// identical inputs always serialize to identical bytes.
var encMode = func() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("generator: canonical CBOR mode: %v", err))
	}
	return em
}()

// Fingerprint computes a short deterministic identifier for a
// (program, level) pair: canonical CBOR encoding hashed with SHA3-256,
// truncated for display. Identical inputs always produce the same
// fingerprint, so it doubles as a cache key and a render provenance tag.
func Fingerprint(program block.Program, lvl int) (string, error) {
	input := canonicalInput{
		Version: canonicalVersion,
		Level:   lvl,
		Blocks:  canonicalBlocks(program),
	}

	data, err := encMode.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize program: %w", err)
	}

	sum := sha3.Sum256(data)
	return fmt.Sprintf("blk:%x", sum[:6]), nil
}

func canonicalBlocks(program block.Program) []interface{} {
	out := make([]interface{}, len(program))
	for i, b := range program {
		out[i] = map[string]interface{}{
			"type":   b.Type,
			"params": canonicalValue(b.Params),
		}
	}
	return out
}

// canonicalValue rewrites a parameter value into a canonical shape so that
// a program decoded from JSON and the same program built in process hash
// identically: integral floats become integers and nested structures are
// rewritten recursively.
func canonicalValue(v interface{}) interface{} {
	switch val := v.(type) {
	case float64:
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return int64(val)
		}
		return val
	case int:
		return int64(val)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[k] = canonicalValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = canonicalValue(item)
		}
		return out
	case block.Block:
		return map[string]interface{}{
			"type":   val.Type,
			"params": canonicalValue(val.Params),
		}
	case []block.Block:
		return canonicalBlocks(val)
	case block.Program:
		return canonicalBlocks(val)
	default:
		return v
	}
}
