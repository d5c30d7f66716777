package generator

// Per-command line template definitions. Each leaf command emits exactly
// one line of target text; the renderer substitutes preformatted parameter
// values before execution, so the templates only describe line shape.

const moveForwardTemplate = `{{define "move_forward"}}move_forward({{.distance}}){{end}}`

const moveBackwardTemplate = `{{define "move_backward"}}move_backward({{.distance}}){{end}}`

const turnLeftTemplate = `{{define "turn_left"}}turn_left({{.degrees}}){{end}}`

const turnRightTemplate = `{{define "turn_right"}}turn_right({{.degrees}}){{end}}`

const jumpTemplate = `{{define "jump"}}jump({{.height}}){{end}}`

const pickObjectTemplate = `{{define "pick_object"}}pick_object({{.object_name}}){{end}}`

const printTemplate = `{{define "print"}}print({{.message}}){{end}}`

const waitTemplate = `{{define "wait"}}wait({{.seconds}}){{end}}`

// Container headers. Loop and conditional bodies are rendered recursively
// by the walker; these templates cover only the header lines.

const loopHeaderTemplate = `{{define "loop_header"}}for {{.var}} in range({{.iterations}}):{{end}}`

const conditionalHeaderTemplate = `{{define "conditional_header"}}if {{.condition}}:{{end}}`

const elseHeaderTemplate = `{{define "else_header"}}else:{{end}}`
