package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockquest/blockgen/pkgs/block"
	"github.com/blockquest/blockgen/pkgs/errors"
)

func TestGenerate(t *testing.T) {
	program := block.Program{
		{Type: block.TypePrint, Params: map[string]interface{}{"message": "hi"}},
	}

	result, err := Generate(program, 1)
	require.NoError(t, err)
	assert.Equal(t, `print("hi")`, result.Text())
	assert.Equal(t, 1, result.Level)
	assert.NotEmpty(t, result.Fingerprint)
}

func TestGenerateJSON(t *testing.T) {
	payload := []byte(`[
		{"type": "loop", "params": {
			"iterations": 4,
			"body": [
				{"type": "move_forward", "params": {"distance": 1}},
				{"type": "turn_right", "params": {"degrees": 90}}
			]
		}}
	]`)

	result, err := GenerateJSON(payload, 4)
	require.NoError(t, err)
	assert.Equal(t, "for i in range(4):\n    move_forward(1)\n    turn_right(90)", result.Text())

	// same payload at level 1: the whole loop subtree vanishes
	result, err = GenerateJSON(payload, 1)
	require.NoError(t, err)
	assert.Equal(t, "", result.Text())
}

func TestGenerateJSONRejectsBadPayload(t *testing.T) {
	_, err := GenerateJSON([]byte(`[{"no_type": true}]`), 1)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrInputDecode))

	_, err = GenerateJSON([]byte(`[{"type": "move_forward", "params": {}}]`), 1)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrMissingParameter))
}

func TestListCommands(t *testing.T) {
	level1 := ListCommands(1)
	level4 := ListCommands(4)
	assert.Greater(t, len(level4), len(level1))

	types := make(map[string]bool)
	for _, d := range level4 {
		types[d.Type] = true
	}
	for _, d := range level1 {
		assert.True(t, types[d.Type], "level 1 command %s missing at level 4", d.Type)
	}

	// degrade, never fail
	assert.Equal(t, len(level1), len(ListCommands(-7)))
}
