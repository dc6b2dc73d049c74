package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file could not be read or parsed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Configuration validation failed",
		Detail:   "One or more configuration values are missing or out of range.",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No themeassets.json or themeassets.yaml was found.",
	},

	// ============================================
	// Manifest Errors (E200-E209)
	// ============================================

	"E201": {
		Category: CategoryManifest,
		Message:  "Manifest unreadable",
		Detail:   "The manifest file exists but could not be read. Assets are served unversioned.",
	},
	"E202": {
		Category: CategoryManifest,
		Message:  "Manifest malformed",
		Detail:   "The manifest is not a flat JSON object of strings. Assets are served unversioned.",
	},

	// ============================================
	// Origin Errors (E210-E229)
	// ============================================

	"E210": {
		Category: CategoryOrigin,
		Message:  "Extension entry point not configured",
		Detail:   "An extension origin was asked for a path or URL before SetEntryPoint was called.",
	},
	"E220": {
		Category: CategoryOrigin,
		Message:  "Unknown origin",
		Detail:   "Valid origins are parent, child and extension.",
	},

	// ============================================
	// CLI Errors (E240-E249)
	// ============================================

	"E240": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
