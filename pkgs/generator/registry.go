package generator

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/blockquest/blockgen/pkgs/block"
)

// TemplateRegistry holds the per-command line templates
type TemplateRegistry struct {
	templates map[string]string
	compiled  *template.Template
}

// NewTemplateRegistry creates a registry with all command templates compiled
func NewTemplateRegistry() *TemplateRegistry {
	registry := &TemplateRegistry{
		templates: make(map[string]string),
	}
	registry.registerComponents()
	registry.compile()
	return registry
}

// registerComponents registers all template components
func (tr *TemplateRegistry) registerComponents() {
	// Leaf command templates
	tr.templates[block.TypeMoveForward] = moveForwardTemplate
	tr.templates[block.TypeMoveBackward] = moveBackwardTemplate
	tr.templates[block.TypeTurnLeft] = turnLeftTemplate
	tr.templates[block.TypeTurnRight] = turnRightTemplate
	tr.templates[block.TypeJump] = jumpTemplate
	tr.templates[block.TypePickObject] = pickObjectTemplate
	tr.templates[block.TypePrint] = printTemplate
	tr.templates[block.TypeWait] = waitTemplate

	// Container header templates
	tr.templates["loop_header"] = loopHeaderTemplate
	tr.templates["conditional_header"] = conditionalHeaderTemplate
	tr.templates["else_header"] = elseHeaderTemplate
}

// compile parses all registered components into a single template set
func (tr *TemplateRegistry) compile() {
	var parts []string
	for _, tmpl := range tr.templates {
		parts = append(parts, tmpl)
	}
	tr.compiled = template.Must(template.New("commands").Parse(strings.Join(parts, "\n")))
}

// GetTemplate returns a specific template component source
func (tr *TemplateRegistry) GetTemplate(name string) (string, bool) {
	tmpl, exists := tr.templates[name]
	return tmpl, exists
}

// Execute renders the named template with preformatted argument values
func (tr *TemplateRegistry) Execute(name string, args map[string]string) (string, error) {
	var buf bytes.Buffer
	if err := tr.compiled.ExecuteTemplate(&buf, name, args); err != nil {
		return "", fmt.Errorf("failed to execute template '%s': %w", name, err)
	}
	return buf.String(), nil
}
