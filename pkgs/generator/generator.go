// Package generator converts block programs into target-language source
// text. Rendering is a pure recursive descent over the block tree: one
// line per leaf command, a header plus an indented body per container,
// with the level policy consulted at every node. No state survives a call,
// so concurrent renders need no coordination.
package generator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/blockquest/blockgen/pkgs/block"
	"github.com/blockquest/blockgen/pkgs/errors"
	"github.com/blockquest/blockgen/pkgs/level"
)

// indentUnit is the fixed-width indentation applied once per structural
// nesting depth.
const indentUnit = "    "

// loopVar is the implementation-fixed loop counter name. The body never
// references it; it exists to carry the iteration count.
const loopVar = "i"

// requiredParams lists the parameters each command must carry. Body fields
// are not listed: an absent body renders as an empty body, matching how the
// editor serializes freshly dropped container blocks.
var requiredParams = map[string][]string{
	block.TypeMoveForward:  {"distance"},
	block.TypeMoveBackward: {"distance"},
	block.TypeTurnLeft:     {"degrees"},
	block.TypeTurnRight:    {"degrees"},
	block.TypeJump:         {"height"},
	block.TypePickObject:   {"object_name"},
	block.TypePrint:        {"message"},
	block.TypeWait:         {"seconds"},
	block.TypeLoop:         {"iterations"},
	block.TypeConditional:  {"condition"},
}

// Line is one emitted line of target text plus its provenance back to the
// source block.
type Line struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Path   string `json:"path"`
	Depth  int    `json:"depth"`
}

// Result is the output of one render call: the emitted lines in order and
// a deterministic fingerprint of the (program, level) input. Constructed
// fresh per call, never persisted.
type Result struct {
	Lines       []Line `json:"lines"`
	Level       int    `json:"level"`
	Fingerprint string `json:"fingerprint"`
}

// Text returns the concatenated output text.
func (r *Result) Text() string {
	parts := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		parts[i] = l.Text
	}
	return strings.Join(parts, "\n")
}

// Renderer renders block programs at a fixed learner level.
type Renderer struct {
	level    int
	registry *TemplateRegistry
}

// New creates a renderer for the given level. Out-of-range levels degrade
// to the nearest tier via the level policy; they are never an error.
func New(lvl int) *Renderer {
	return &Renderer{
		level:    level.Normalize(lvl),
		registry: NewTemplateRegistry(),
	}
}

// RenderProgram renders each top-level block at depth 0 and returns the
// collected lines. The first malformed node aborts the whole call; no
// partial text is returned alongside an error. Blocks disallowed at the
// renderer's level are skipped silently, subtree included.
func (r *Renderer) RenderProgram(program block.Program) (*Result, error) {
	var lines []Line
	for i, b := range program {
		if err := r.renderBlock(b, 0, fmt.Sprintf("blocks[%d]", i), &lines); err != nil {
			return nil, err
		}
	}

	fingerprint, err := Fingerprint(program, r.level)
	if err != nil {
		return nil, err
	}

	return &Result{Lines: lines, Level: r.level, Fingerprint: fingerprint}, nil
}

// renderBlock renders a single block at the given depth, appending emitted
// lines to out.
func (r *Renderer) renderBlock(b block.Block, depth int, path string, out *[]Line) error {
	if !block.IsKnown(b.Type) {
		return errors.NewUnknownCommandError(b.Type, path, findClosestMatch(b.Type, block.Types))
	}

	// Level filtering: a disallowed node vanishes from the output, and a
	// disallowed container drops all of its descendants with it.
	if !level.Allowed(b.Type, r.level) {
		return nil
	}

	switch b.Type {
	case block.TypeLoop:
		return r.renderLoop(b, depth, path, out)
	case block.TypeConditional:
		return r.renderConditional(b, depth, path, out)
	default:
		return r.renderLeaf(b, depth, path, out)
	}
}

// renderLeaf emits exactly one line from the command's template.
func (r *Renderer) renderLeaf(b block.Block, depth int, path string, out *[]Line) error {
	args, err := r.formatParams(b, path)
	if err != nil {
		return err
	}

	text, err := r.registry.Execute(b.Type, args)
	if err != nil {
		return errors.Wrap(errors.ErrUnknownCommandType,
			fmt.Sprintf("no template for command '%s' at %s", b.Type, path), err)
	}

	r.emit(out, text, b.Type, path, depth)
	return nil
}

// renderLoop emits a counted-repetition header and the body at depth+1.
// The body text appears exactly once regardless of the iteration count:
// the renderer transpiles structure, it never executes the loop, so
// iterations <= 0 still emits the body once under its header.
func (r *Renderer) renderLoop(b block.Block, depth int, path string, out *[]Line) error {
	iterations, ok := b.Params["iterations"]
	if !ok {
		return errors.NewMissingParameterError(b.Type, "iterations", path)
	}

	body, err := block.Body(b.Params["body"], b.Type, "body", path)
	if err != nil {
		return err
	}

	header, err := r.registry.Execute("loop_header", map[string]string{
		"var":        loopVar,
		"iterations": formatBare(iterations),
	})
	if err != nil {
		return err
	}
	r.emit(out, header, b.Type, path, depth)

	return r.renderBody(body, b.Type, depth, path+".body", out)
}

// renderConditional emits an if header plus if_body, and an else header
// plus else_body only when else_body is present and non-empty.
func (r *Renderer) renderConditional(b block.Block, depth int, path string, out *[]Line) error {
	condition, ok := b.Params["condition"]
	if !ok {
		return errors.NewMissingParameterError(b.Type, "condition", path)
	}

	ifBody, err := block.Body(b.Params["if_body"], b.Type, "if_body", path)
	if err != nil {
		return err
	}
	elseBody, err := block.Body(b.Params["else_body"], b.Type, "else_body", path)
	if err != nil {
		return err
	}

	header, err := r.registry.Execute("conditional_header", map[string]string{
		"condition": formatBare(condition),
	})
	if err != nil {
		return err
	}
	r.emit(out, header, b.Type, path, depth)

	if err := r.renderBody(ifBody, b.Type, depth, path+".if_body", out); err != nil {
		return err
	}

	// An absent or empty else_body emits no else branch at all.
	if len(elseBody) == 0 {
		return nil
	}

	elseHeader, err := r.registry.Execute("else_header", nil)
	if err != nil {
		return err
	}
	r.emit(out, elseHeader, b.Type, path, depth)

	return r.renderBody(elseBody, b.Type, depth, path+".else_body", out)
}

// renderBody renders a container's children at depth+1, emitting a pass
// placeholder when the body is empty so the output stays syntactically
// valid. Children that are skipped by level filtering can also leave the
// body textually empty; the placeholder covers that case too.
func (r *Renderer) renderBody(body []block.Block, owner string, depth int, path string, out *[]Line) error {
	before := len(*out)
	for i, child := range body {
		if err := r.renderBlock(child, depth+1, fmt.Sprintf("%s[%d]", path, i), out); err != nil {
			return err
		}
	}
	if len(*out) == before {
		r.emit(out, "pass", owner, path, depth+1)
	}
	return nil
}

// emit appends one indented line with provenance.
func (r *Renderer) emit(out *[]Line, text, source, path string, depth int) {
	*out = append(*out, Line{
		Text:   strings.Repeat(indentUnit, depth) + text,
		Source: source,
		Path:   path,
		Depth:  depth,
	})
}

// formatParams checks required parameters and preformats every present
// parameter value for template substitution. Missing required parameters
// are an error, never silently defaulted.
func (r *Renderer) formatParams(b block.Block, path string) (map[string]string, error) {
	args := make(map[string]string, len(b.Params))
	for _, name := range requiredParams[b.Type] {
		v, ok := b.Params[name]
		if !ok {
			return nil, errors.NewMissingParameterError(b.Type, name, path)
		}
		args[name] = formatArg(v)
	}
	return args, nil
}

// formatArg renders a parameter value as a target-language literal:
// strings are quoted, numbers and booleans use the target syntax.
func formatArg(v interface{}) string {
	switch val := v.(type) {
	case string:
		return fmt.Sprintf("%q", val)
	default:
		return formatBare(v)
	}
}

// formatBare renders a value without quoting. Used for loop counts and
// conditions, which are emitted verbatim into the generated text.
func formatBare(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "None"
	case bool:
		if val {
			return "True"
		}
		return "False"
	case float64:
		// JSON numbers decode as float64; keep integral values integral.
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// findClosestMatch finds the closest string match using fuzzy matching
func findClosestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
