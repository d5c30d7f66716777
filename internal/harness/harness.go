// Package harness is the interactive terminal shell for building block
// programs by hand: a menu-driven loop over a workflow session, used for
// manual testing without the drag-and-drop editor.
package harness

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/blockquest/blockgen/pkgs/block"
	"github.com/blockquest/blockgen/pkgs/engine"
	"github.com/blockquest/blockgen/pkgs/level"
)

// Harness drives an interactive session over a reader/writer pair. Input
// and output are injected so tests can script a whole session.
type Harness struct {
	session  *engine.Session
	in       *bufio.Scanner
	out      io.Writer
	useColor bool
}

// New creates a harness starting at the given level.
func New(initialLevel int, in io.Reader, out io.Writer, useColor bool) *Harness {
	return &Harness{
		session:  engine.NewSession(initialLevel),
		in:       bufio.NewScanner(in),
		out:      out,
		useColor: useColor,
	}
}

// Run executes the menu loop until the user quits or input ends.
func (h *Harness) Run() error {
	h.printf("%s\n", Colorize("Block Code Builder", ColorCyan, h.useColor))
	for {
		h.printMenu()
		choice, ok := h.prompt("> ")
		if !ok {
			return nil
		}

		switch strings.ToLower(choice) {
		case "1", "commands":
			h.showCommands()
		case "2", "add":
			h.addCommand()
		case "3", "workflow":
			h.showWorkflow()
		case "4", "code":
			h.showCode()
		case "5", "level":
			h.changeLevel()
		case "6", "undo":
			h.session.RemoveLast()
			h.printf("Removed last command.\n")
		case "7", "clear":
			h.session.Clear()
			h.printf("Workflow cleared.\n")
		case "8", "export":
			h.exportWorkflow()
		case "q", "quit", "exit":
			return nil
		case "":
			// blank input, reprint menu
		default:
			h.printf("%s\n", Colorize(fmt.Sprintf("Unknown choice %q", choice), ColorRed, h.useColor))
		}
	}
}

func (h *Harness) printMenu() {
	h.printf("\n--- Level %d ---\n", h.session.Level())
	h.printf("  1. Show available commands\n")
	h.printf("  2. Add command\n")
	h.printf("  3. Show workflow\n")
	h.printf("  4. Show generated code\n")
	h.printf("  5. Change level\n")
	h.printf("  6. Remove last command\n")
	h.printf("  7. Clear workflow\n")
	h.printf("  8. Export workflow\n")
	h.printf("  q. Quit\n")
}

func (h *Harness) showCommands() {
	descriptors := engine.ListCommands(h.session.Level())
	h.printf("\nCommands available at level %d:\n", h.session.Level())
	for i, d := range descriptors {
		label := Colorize(d.Label, ColorGreen, h.useColor)
		h.printf("  %d. %s (%s) - %s\n", i+1, label, d.Type, d.Description)
	}
}

func (h *Harness) addCommand() {
	descriptors := engine.ListCommands(h.session.Level())
	h.showCommands()

	choice, ok := h.prompt("\nEnter command number (or command type): ")
	if !ok {
		return
	}

	desc, found := h.resolveCommand(descriptors, choice)
	if !found {
		h.printf("%s\n", Colorize(fmt.Sprintf("No command %q at this level", choice), ColorRed, h.useColor))
		return
	}

	b, ok := h.buildBlock(desc, "")
	if !ok {
		return
	}

	h.session.Add(b)
	h.printf("%s\n", Colorize(fmt.Sprintf("Added %s", desc.Label), ColorGreen, h.useColor))
	h.showCode()
}

// resolveCommand accepts either a 1-based palette index or a command type.
func (h *Harness) resolveCommand(descriptors []level.Descriptor, choice string) (level.Descriptor, bool) {
	if idx, err := strconv.Atoi(choice); err == nil {
		if idx < 1 || idx > len(descriptors) {
			return level.Descriptor{}, false
		}
		return descriptors[idx-1], true
	}
	for _, d := range descriptors {
		if d.Type == choice {
			return d, true
		}
	}
	return level.Descriptor{}, false
}

// buildBlock gathers parameters for one block, recursing into container
// bodies. indent prefixes prompts for nested builders.
func (h *Harness) buildBlock(desc level.Descriptor, indent string) (block.Block, bool) {
	switch desc.Type {
	case block.TypeLoop:
		return h.buildLoop(indent)
	case block.TypeConditional:
		return h.buildConditional(indent)
	default:
		params := make(map[string]interface{}, len(desc.Defaults))
		for _, name := range desc.Params {
			defaultValue := desc.Defaults[name]
			raw, ok := h.prompt(fmt.Sprintf("%s  %s (default: %v): ", indent, name, defaultValue))
			if !ok {
				return block.Block{}, false
			}
			if raw == "" {
				params[name] = defaultValue
			} else {
				params[name] = parseValue(raw)
			}
		}
		return block.Block{Type: desc.Type, Params: params}, true
	}
}

func (h *Harness) buildLoop(indent string) (block.Block, bool) {
	iterations := 3
	if raw, ok := h.prompt(indent + "How many times should the loop repeat? (default: 3): "); ok && raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			iterations = n
		}
	}

	h.printf("%sBuild the loop body:\n", indent)
	body, ok := h.buildBody(indent + "  ")
	if !ok {
		return block.Block{}, false
	}

	return block.Block{Type: block.TypeLoop, Params: map[string]interface{}{
		"iterations": iterations,
		"body":       body,
	}}, true
}

func (h *Harness) buildConditional(indent string) (block.Block, bool) {
	condition, ok := h.prompt(indent + "Enter condition (e.g. 'x > 5', 'coins >= 3'): ")
	if !ok {
		return block.Block{}, false
	}
	if condition == "" {
		condition = "True"
	}

	h.printf("%sBuild the IF body:\n", indent)
	ifBody, ok := h.buildBody(indent + "  ")
	if !ok {
		return block.Block{}, false
	}

	params := map[string]interface{}{
		"condition": condition,
		"if_body":   ifBody,
	}

	if answer, ok := h.prompt(indent + "Add ELSE body? (y/n): "); ok && strings.EqualFold(answer, "y") {
		h.printf("%sBuild the ELSE body:\n", indent)
		elseBody, ok := h.buildBody(indent + "  ")
		if !ok {
			return block.Block{}, false
		}
		params["else_body"] = elseBody
	}

	return block.Block{Type: block.TypeConditional, Params: params}, true
}

// buildBody collects child blocks until the user enters 'done'.
func (h *Harness) buildBody(indent string) ([]block.Block, bool) {
	descriptors := engine.ListCommands(h.session.Level())
	var body []block.Block
	for {
		choice, ok := h.prompt(indent + "Command number/type (or 'done' to finish): ")
		if !ok {
			return body, true
		}
		if choice == "done" || choice == "d" || choice == "" {
			return body, true
		}

		desc, found := h.resolveCommand(descriptors, choice)
		if !found {
			h.printf("%s%s\n", indent, Colorize(fmt.Sprintf("No command %q at this level", choice), ColorRed, h.useColor))
			continue
		}

		child, ok := h.buildBlock(desc, indent)
		if !ok {
			return body, true
		}
		body = append(body, child)
	}
}

func (h *Harness) showWorkflow() {
	sequence := h.session.Sequence()
	if len(sequence) == 0 {
		h.printf("\nEmpty workflow - add commands to get started!\n")
		return
	}
	h.printf("\nWorkflow:\n")
	for i, b := range sequence {
		h.printf("  %d. %s %v\n", i+1, b.Type, b.Params)
	}
}

func (h *Harness) showCode() {
	result, err := h.session.Preview()
	if err != nil {
		h.printf("%s\n", Colorize(fmt.Sprintf("Render failed: %v", err), ColorRed, h.useColor))
		return
	}
	if len(result.Lines) == 0 {
		h.printf("\n%s\n", Colorize("(no code at this level)", ColorGray, h.useColor))
		return
	}
	h.printf("\n%s\n", Colorize("Generated code:", ColorCyan, h.useColor))
	h.printf("%s\n", result.Text())
	h.printf("%s\n", Colorize(result.Fingerprint, ColorGray, h.useColor))
}

func (h *Harness) changeLevel() {
	raw, ok := h.prompt(fmt.Sprintf("Enter level (%d-%d): ", level.MinTier, level.MaxTier))
	if !ok {
		return
	}
	lvl, err := strconv.Atoi(raw)
	if err != nil {
		h.printf("%s\n", Colorize(fmt.Sprintf("Not a level: %q", raw), ColorRed, h.useColor))
		return
	}
	h.session.SetLevel(lvl)
	h.printf("Level set to %d.\n", h.session.Level())
}

func (h *Harness) exportWorkflow() {
	filename, ok := h.prompt("Enter filename (default: workflow.json): ")
	if !ok {
		return
	}
	if filename == "" {
		filename = "workflow.json"
	}

	data, err := h.session.Export()
	if err != nil {
		h.printf("%s\n", Colorize(fmt.Sprintf("Export failed: %v", err), ColorRed, h.useColor))
		return
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		h.printf("%s\n", Colorize(fmt.Sprintf("Write failed: %v", err), ColorRed, h.useColor))
		return
	}
	h.printf("Workflow saved to %s\n", filename)
}

// prompt prints a prompt and reads one trimmed line; ok is false when
// input is exhausted.
func (h *Harness) prompt(text string) (string, bool) {
	h.printf("%s", text)
	if !h.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(h.in.Text()), true
}

func (h *Harness) printf(format string, args ...interface{}) {
	fmt.Fprintf(h.out, format, args...)
}

// parseValue interprets user input as an int, then a float, then a string.
func parseValue(raw string) interface{} {
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}
