package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Route Errors (A001-A009)
	// ============================================

	"A001": {
		Category:   CategoryRoute,
		Message:    "Route not found",
		Suggestion: "Register a route with a matching When key or set a default component for the area.",
	},
	"A002": {
		Category:   CategoryRoute,
		Message:    "Invalid route definition",
		Suggestion: "Every route needs a non-empty When key and a component.",
	},
	"A003": {
		Category: CategoryRoute,
		Message:  "Navigation superseded",
	},
	"A004": {
		Category:   CategoryRoute,
		Message:    "Missing area name",
		Suggestion: "Pass the name of the area to navigate, e.g. Request{Area: \"main\"}.",
	},
	"A005": {
		Category: CategoryRoute,
		Message:  "Router closed",
	},
	"A006": {
		Category:   CategoryRoute,
		Message:    "Navigation aborted",
		Suggestion: "Middleware must call next or return an error explaining why it stopped the navigation.",
	},

	// ============================================
	// Component Errors (A010-A019)
	// ============================================

	"A010": {
		Category:   CategoryComponent,
		Message:    "Unknown component tag",
		Suggestion: "Define the tag in the component registry before mounting it.",
	},
	"A011": {
		Category: CategoryComponent,
		Message:  "Invalid component descriptor",
	},
	"A012": {
		Category: CategoryComponent,
		Message:  "Component tag already defined",
	},

	// ============================================
	// Guard Errors (A020-A029)
	// ============================================

	"A020": {
		Category: CategoryGuard,
		Message:  "Navigation denied by guard",
	},
	"A021": {
		Category: CategoryGuard,
		Message:  "Guard evaluation failed",
	},
	"A022": {
		Category: CategoryGuard,
		Message:  "Guard completed without a value",
	},

	// ============================================
	// Lazy Loading Errors (A030-A039)
	// ============================================

	"A030": {
		Category:   CategoryLazy,
		Message:    "Lazy component failed to load",
		Suggestion: "The next navigation to this route retries the load.",
	},

	// ============================================
	// Dialog Errors (A040-A049)
	// ============================================

	"A040": {
		Category: CategoryDialog,
		Message:  "No dialog is open",
	},
	"A041": {
		Category: CategoryDialog,
		Message:  "Dialog is not the topmost dialog",
	},
	"A042": {
		Category: CategoryDialog,
		Message:  "Dialog already closed",
	},

	// ============================================
	// Config Errors (A060-A069)
	// ============================================

	"A060": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create area.yaml in the working directory or pass --config.",
	},
	"A061": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"A062": {
		Category: CategoryConfig,
		Message:  "Invalid route manifest",
	},
}

// Lookup returns the template for an error code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
