// Package catalog holds the static lookup tables of the tenancy context:
// the feature modules an organization can enable and the pricing plans.
package catalog

import "strings"

// Module keys stored in organization_modules.
const (
	ModuleFundraising = "fundraising"
	ModuleGrants      = "grants"
	ModuleDocuments   = "documents"
	ModuleProcurement = "procurement"
	ModuleHR          = "hr"
	ModuleLearning    = "learning"
	ModuleUsers       = "users"
	ModuleBilling     = "billing"
	ModuleReports     = "reports"
)

// MandatoryModule is enabled for every organization regardless of selection.
const MandatoryModule = ModuleUsers

var moduleKeys = map[string]struct{}{
	ModuleFundraising: {},
	ModuleGrants:      {},
	ModuleDocuments:   {},
	ModuleProcurement: {},
	ModuleHR:          {},
	ModuleLearning:    {},
	ModuleUsers:       {},
	ModuleBilling:     {},
	ModuleReports:     {},
}

// displayNames maps lower-cased display names to module keys. Read-only.
var displayNames = map[string]string{
	"fundraising":         ModuleFundraising,
	"grants":              ModuleGrants,
	"grants management":   ModuleGrants,
	"grant management":    ModuleGrants,
	"document manager":    ModuleDocuments,
	"document management": ModuleDocuments,
	"documents":           ModuleDocuments,
	"procurement":         ModuleProcurement,
	"hr":                  ModuleHR,
	"hr management":       ModuleHR,
	"human resources":     ModuleHR,
	"learning":            ModuleLearning,
	"learning management": ModuleLearning,
	"lms":                 ModuleLearning,
	"user management":     ModuleUsers,
	"users":               ModuleUsers,
	"billing":             ModuleBilling,
	"reports":             ModuleReports,
	"reporting":           ModuleReports,
}

// ModuleKey resolves a display name or key to its module key.
// Matching ignores case and surrounding whitespace.
func ModuleKey(name string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if key, ok := displayNames[normalized]; ok {
		return key, true
	}
	if _, ok := moduleKeys[normalized]; ok {
		return normalized, true
	}
	return "", false
}

// IsModuleKey reports whether key is a known module key.
func IsModuleKey(key string) bool {
	_, ok := moduleKeys[key]
	return ok
}

// NormalizeModules maps the requested names to module keys, dropping names
// that are not recognized and duplicates, preserving first-seen order.
func NormalizeModules(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	keys := make([]string, 0, len(names))
	for _, name := range names {
		key, ok := ModuleKey(name)
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

// WithMandatory returns keys with MandatoryModule appended when missing.
func WithMandatory(keys []string) []string {
	for _, key := range keys {
		if key == MandatoryModule {
			return keys
		}
	}
	out := make([]string, 0, len(keys)+1)
	out = append(out, keys...)
	return append(out, MandatoryModule)
}
