package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Invariant Violations (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryInvariant,
		Message:  "Node has no render-target handle",
		Detail:   "A node that should be attached to the render target was patched, moved or removed without a handle. The previous tree does not match what was rendered.",
	},
	"E002": {
		Category: CategoryInvariant,
		Message:  "Component instance missing",
		Detail:   "A mounted component was reconciled but its instance slot is gone. The component was destroyed earlier in the same tree.",
	},
	"E003": {
		Category: CategoryInvariant,
		Message:  "Component already initialized",
		Detail:   "A component node was asked to create its instance twice.",
	},
	"E004": {
		Category: CategoryInvariant,
		Message:  "Re-entrant render pass",
		Detail:   "A render pass was started while another pass on the same engine was still running. Render requests must go through the scheduler.",
	},

	// ============================================
	// Render Target Errors (E100-E199)
	// ============================================

	"E101": {
		Category: CategoryTarget,
		Message:  "Render target rejected a mutation",
		Detail:   "The render target is no longer consistent with the tracked handles. The pass was aborted.",
	},

	// ============================================
	// Configuration Errors (E200-E299)
	// ============================================

	"E200": {
		Category: CategoryConfig,
		Message:  "Invalid vdom.yaml",
		Detail:   "The configuration file is malformed.",
	},
	"E201": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A configuration value is out of range.",
	},
	"E202": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "The file passed with --config does not exist.",
	},

	// ============================================
	// Scenario Errors (E300-E399)
	// ============================================

	"E300": {
		Category: CategoryScenario,
		Message:  "Invalid scenario file",
		Detail:   "The scenario file could not be parsed.",
	},
	"E301": {
		Category: CategoryScenario,
		Message:  "Invalid scenario node",
		Detail:   "A node must set exactly one of text, tag or children.",
	},
	"E302": {
		Category: CategoryScenario,
		Message:  "Scenario has no passes",
		Detail:   "A scenario must describe at least one tree.",
	},

	// ============================================
	// CLI Errors (E400-E499)
	// ============================================

	"E400": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The mirror server stopped with an error.",
	},
	"E401": {
		Category: CategoryCLI,
		Message:  "Mutation log storage failed",
		Detail:   "The mutation log could not be written to or read from its location.",
	},
}
