package generator

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/blockquest/blockgen/pkgs/block"
	"github.com/blockquest/blockgen/pkgs/errors"
)

func leaf(blockType string, params map[string]interface{}) block.Block {
	return block.Block{Type: blockType, Params: params}
}

func TestRenderProgram(t *testing.T) {
	tests := []struct {
		name    string
		program block.Program
		level   int
		want    string
	}{
		{
			name:    "empty program renders empty text",
			program: block.Program{},
			level:   1,
			want:    "",
		},
		{
			name: "single print at level 1",
			program: block.Program{
				leaf(block.TypePrint, map[string]interface{}{"message": "hi"}),
			},
			level: 1,
			want:  `print("hi")`,
		},
		{
			name: "leaf sequence preserves input order",
			program: block.Program{
				leaf(block.TypeMoveForward, map[string]interface{}{"distance": 5}),
				leaf(block.TypeTurnRight, map[string]interface{}{"degrees": 90}),
				leaf(block.TypePickObject, map[string]interface{}{"object_name": "key"}),
			},
			level: 1,
			want: strings.Join([]string{
				"move_forward(5)",
				"turn_right(90)",
				`pick_object("key")`,
			}, "\n"),
		},
		{
			name: "loop with body at level 4",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 4,
					"body": []interface{}{
						map[string]interface{}{"type": "move_forward", "params": map[string]interface{}{"distance": 1}},
						map[string]interface{}{"type": "turn_right", "params": map[string]interface{}{"degrees": 90}},
					},
				}},
			},
			level: 4,
			want: strings.Join([]string{
				"for i in range(4):",
				"    move_forward(1)",
				"    turn_right(90)",
			}, "\n"),
		},
		{
			name: "loop at level 1 skips entire subtree",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 4,
					"body": []interface{}{
						map[string]interface{}{"type": "move_forward", "params": map[string]interface{}{"distance": 1}},
					},
				}},
			},
			level: 1,
			want:  "",
		},
		{
			name: "conditional without else at level 3",
			program: block.Program{
				{Type: block.TypeConditional, Params: map[string]interface{}{
					"condition": "x > 0",
					"if_body": []interface{}{
						map[string]interface{}{"type": "print", "params": map[string]interface{}{"message": "pos"}},
					},
				}},
			},
			level: 3,
			want: strings.Join([]string{
				"if x > 0:",
				`    print("pos")`,
			}, "\n"),
		},
		{
			name: "conditional with else branch",
			program: block.Program{
				{Type: block.TypeConditional, Params: map[string]interface{}{
					"condition": "coins >= 3",
					"if_body": []interface{}{
						map[string]interface{}{"type": "print", "params": map[string]interface{}{"message": "rich"}},
					},
					"else_body": []interface{}{
						map[string]interface{}{"type": "print", "params": map[string]interface{}{"message": "poor"}},
					},
				}},
			},
			level: 3,
			want: strings.Join([]string{
				"if coins >= 3:",
				`    print("rich")`,
				"else:",
				`    print("poor")`,
			}, "\n"),
		},
		{
			name: "empty else_body emits no else line",
			program: block.Program{
				{Type: block.TypeConditional, Params: map[string]interface{}{
					"condition": "x > 0",
					"if_body": []interface{}{
						map[string]interface{}{"type": "jump", "params": map[string]interface{}{"height": 2}},
					},
					"else_body": []interface{}{},
				}},
			},
			level: 4,
			want: strings.Join([]string{
				"if x > 0:",
				"    jump(2)",
			}, "\n"),
		},
		{
			name: "nested containers indent by structural depth",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 3,
					"body": []interface{}{
						map[string]interface{}{"type": "conditional", "params": map[string]interface{}{
							"condition": "x > 1",
							"if_body": []interface{}{
								map[string]interface{}{"type": "loop", "params": map[string]interface{}{
									"iterations": 2,
									"body": []interface{}{
										map[string]interface{}{"type": "wait", "params": map[string]interface{}{"seconds": 1}},
									},
								}},
							},
						}},
					},
				}},
			},
			level: 4,
			want: strings.Join([]string{
				"for i in range(3):",
				"    if x > 1:",
				"        for i in range(2):",
				"            wait(1)",
			}, "\n"),
		},
		{
			name: "empty loop body renders pass placeholder",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 3,
					"body":       []interface{}{},
				}},
			},
			level: 4,
			want: strings.Join([]string{
				"for i in range(3):",
				"    pass",
			}, "\n"),
		},
		{
			name: "body emptied by level filtering renders pass placeholder",
			program: block.Program{
				{Type: block.TypeConditional, Params: map[string]interface{}{
					"condition": "x > 0",
					"if_body": []interface{}{
						map[string]interface{}{"type": "loop", "params": map[string]interface{}{
							"iterations": 2,
							"body":       []interface{}{},
						}},
					},
				}},
			},
			level: 3,
			want: strings.Join([]string{
				"if x > 0:",
				"    pass",
			}, "\n"),
		},
		{
			name: "zero iterations still emits body once",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 0,
					"body": []interface{}{
						map[string]interface{}{"type": "print", "params": map[string]interface{}{"message": "never"}},
					},
				}},
			},
			level: 4,
			want: strings.Join([]string{
				"for i in range(0):",
				`    print("never")`,
			}, "\n"),
		},
		{
			name: "mixed-level program renders partially at low level",
			program: block.Program{
				leaf(block.TypePrint, map[string]interface{}{"message": "start"}),
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 2,
					"body": []interface{}{
						map[string]interface{}{"type": "jump", "params": map[string]interface{}{"height": 1}},
					},
				}},
				leaf(block.TypeMoveForward, map[string]interface{}{"distance": 2}),
			},
			level: 1,
			want: strings.Join([]string{
				`print("start")`,
				"move_forward(2)",
			}, "\n"),
		},
		{
			name: "json float params render as integers",
			program: block.Program{
				leaf(block.TypeMoveForward, map[string]interface{}{"distance": float64(3)}),
				leaf(block.TypeWait, map[string]interface{}{"seconds": 1.5}),
			},
			level: 2,
			want: strings.Join([]string{
				"move_forward(3)",
				"wait(1.5)",
			}, "\n"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(tt.level).RenderProgram(tt.program)
			if err != nil {
				t.Fatalf("RenderProgram error: %v", err)
			}
			if diff := cmp.Diff(tt.want, result.Text()); diff != "" {
				t.Errorf("rendered text mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderProgramErrors(t *testing.T) {
	tests := []struct {
		name     string
		program  block.Program
		level    int
		wantType string
		wantCtx  map[string]interface{}
	}{
		{
			name: "missing parameter identifies command and parameter",
			program: block.Program{
				leaf(block.TypeMoveForward, map[string]interface{}{}),
			},
			level:    1,
			wantType: errors.ErrMissingParameter,
			wantCtx: map[string]interface{}{
				"block_type": "move_forward",
				"parameter":  "distance",
				"path":       "blocks[0]",
			},
		},
		{
			name: "unknown command type",
			program: block.Program{
				leaf("teleport", map[string]interface{}{}),
			},
			level:    4,
			wantType: errors.ErrUnknownCommandType,
			wantCtx: map[string]interface{}{
				"block_type": "teleport",
				"path":       "blocks[0]",
			},
		},
		{
			name: "loop missing iterations",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{"body": []interface{}{}}},
			},
			level:    4,
			wantType: errors.ErrMissingParameter,
			wantCtx: map[string]interface{}{
				"parameter": "iterations",
			},
		},
		{
			name: "conditional missing condition",
			program: block.Program{
				{Type: block.TypeConditional, Params: map[string]interface{}{"if_body": []interface{}{}}},
			},
			level:    3,
			wantType: errors.ErrMissingParameter,
			wantCtx: map[string]interface{}{
				"parameter": "condition",
			},
		},
		{
			name: "loop body is not a sequence",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 2,
					"body":       "not a list",
				}},
			},
			level:    4,
			wantType: errors.ErrMalformedBody,
			wantCtx: map[string]interface{}{
				"field": "body",
			},
		},
		{
			name: "loop body contains a non-block record",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 2,
					"body":       []interface{}{"move_forward"},
				}},
			},
			level:    4,
			wantType: errors.ErrMalformedBody,
		},
		{
			name: "error inside nested body carries tree path",
			program: block.Program{
				{Type: block.TypeLoop, Params: map[string]interface{}{
					"iterations": 2,
					"body": []interface{}{
						map[string]interface{}{"type": "move_forward", "params": map[string]interface{}{}},
					},
				}},
			},
			level:    4,
			wantType: errors.ErrMissingParameter,
			wantCtx: map[string]interface{}{
				"path": "blocks[0].body[0]",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := New(tt.level).RenderProgram(tt.program)
			if err == nil {
				t.Fatalf("expected error, got result %q", result.Text())
			}
			if !errors.IsErrorType(err, tt.wantType) {
				t.Fatalf("error type = %v, want %s", err, tt.wantType)
			}
			blockErr := err.(*errors.BlockError)
			for key, want := range tt.wantCtx {
				got, ok := blockErr.GetContext(key)
				if !ok {
					t.Errorf("error context missing key %q", key)
					continue
				}
				if got != want {
					t.Errorf("error context[%q] = %v, want %v", key, got, want)
				}
			}
		})
	}
}

func TestUnknownCommandSuggestsClosestMatch(t *testing.T) {
	program := block.Program{leaf("move_forwad", map[string]interface{}{"distance": 1})}
	_, err := New(4).RenderProgram(program)
	if err == nil {
		t.Fatal("expected error for unknown command type")
	}
	blockErr := err.(*errors.BlockError)
	suggestion, ok := blockErr.GetContext("suggestion")
	if !ok {
		t.Fatal("expected a suggestion in error context")
	}
	if suggestion != "move_forward" {
		t.Errorf("suggestion = %v, want move_forward", suggestion)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	program := block.Program{
		{Type: block.TypeLoop, Params: map[string]interface{}{
			"iterations": 4,
			"body": []interface{}{
				map[string]interface{}{"type": "move_forward", "params": map[string]interface{}{"distance": 1}},
				map[string]interface{}{"type": "turn_right", "params": map[string]interface{}{"degrees": 90}},
			},
		}},
	}

	first, err := New(4).RenderProgram(program)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := New(4).RenderProgram(program)
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if again.Text() != first.Text() {
			t.Fatalf("render %d produced different text", i)
		}
		if again.Fingerprint != first.Fingerprint {
			t.Fatalf("render %d produced different fingerprint", i)
		}
	}
}

func TestIndentationMatchesStructuralDepth(t *testing.T) {
	program := block.Program{
		{Type: block.TypeLoop, Params: map[string]interface{}{
			"iterations": 2,
			"body": []interface{}{
				map[string]interface{}{"type": "loop", "params": map[string]interface{}{
					"iterations": 2,
					"body": []interface{}{
						map[string]interface{}{"type": "print", "params": map[string]interface{}{"message": "deep"}},
					},
				}},
			},
		}},
	}

	result, err := New(4).RenderProgram(program)
	if err != nil {
		t.Fatalf("RenderProgram error: %v", err)
	}

	for _, line := range result.Lines {
		wantPrefix := strings.Repeat(indentUnit, line.Depth)
		if !strings.HasPrefix(line.Text, wantPrefix) {
			t.Errorf("line %q: want %d indent units", line.Text, line.Depth)
		}
		trimmed := strings.TrimPrefix(line.Text, wantPrefix)
		if strings.HasPrefix(trimmed, " ") {
			t.Errorf("line %q indented deeper than its depth %d", line.Text, line.Depth)
		}
	}
}

func TestProvenanceTracksSourceBlocks(t *testing.T) {
	program := block.Program{
		leaf(block.TypePrint, map[string]interface{}{"message": "hi"}),
		{Type: block.TypeLoop, Params: map[string]interface{}{
			"iterations": 2,
			"body": []interface{}{
				map[string]interface{}{"type": "jump", "params": map[string]interface{}{"height": 1}},
			},
		}},
	}

	result, err := New(4).RenderProgram(program)
	if err != nil {
		t.Fatalf("RenderProgram error: %v", err)
	}

	wantPaths := []string{"blocks[0]", "blocks[1]", "blocks[1].body[0]"}
	if len(result.Lines) != len(wantPaths) {
		t.Fatalf("got %d lines, want %d", len(result.Lines), len(wantPaths))
	}
	for i, want := range wantPaths {
		if result.Lines[i].Path != want {
			t.Errorf("line %d path = %q, want %q", i, result.Lines[i].Path, want)
		}
	}
}

func TestFingerprint(t *testing.T) {
	program := block.Program{
		leaf(block.TypePrint, map[string]interface{}{"message": "hi"}),
	}

	fp1, err := Fingerprint(program, 1)
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	if !strings.HasPrefix(fp1, "blk:") {
		t.Errorf("fingerprint %q missing display prefix", fp1)
	}

	fp2, err := Fingerprint(program, 1)
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	if fp1 != fp2 {
		t.Errorf("identical input produced different fingerprints: %q vs %q", fp1, fp2)
	}

	fpOtherLevel, err := Fingerprint(program, 4)
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	if fpOtherLevel == fp1 {
		t.Error("different levels should produce different fingerprints")
	}

	otherProgram := block.Program{
		leaf(block.TypePrint, map[string]interface{}{"message": "bye"}),
	}
	fpOther, err := Fingerprint(otherProgram, 1)
	if err != nil {
		t.Fatalf("Fingerprint error: %v", err)
	}
	if fpOther == fp1 {
		t.Error("different programs should produce different fingerprints")
	}
}
