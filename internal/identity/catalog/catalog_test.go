package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeModulesMapsDisplayNames(t *testing.T) {
	got := NormalizeModules([]string{"Fundraising", "Grants Management"})

	assert.Equal(t, []string{ModuleFundraising, ModuleGrants}, got)
}

func TestNormalizeModulesDeduplicatesMixedCase(t *testing.T) {
	got := NormalizeModules([]string{"Grants", "grants", "GRANTS MANAGEMENT", "  Grant Management "})

	assert.Equal(t, []string{ModuleGrants}, got)
}

func TestNormalizeModulesDropsUnknownNames(t *testing.T) {
	got := NormalizeModules([]string{"Teleportation", "LMS", ""})

	assert.Equal(t, []string{ModuleLearning}, got)
}

func TestNormalizeModulesAcceptsKeys(t *testing.T) {
	got := NormalizeModules([]string{"procurement", "billing", "reports"})

	assert.Equal(t, []string{ModuleProcurement, ModuleBilling, ModuleReports}, got)
}

func TestWithMandatory(t *testing.T) {
	assert.Equal(t, []string{MandatoryModule}, WithMandatory(nil))
	assert.Equal(t, []string{ModuleGrants, MandatoryModule}, WithMandatory([]string{ModuleGrants}))

	already := []string{MandatoryModule, ModuleHR}
	assert.Equal(t, already, WithMandatory(already))
}

func TestModuleKeyUnknown(t *testing.T) {
	_, ok := ModuleKey("Astrology")
	assert.False(t, ok)
	assert.True(t, IsModuleKey(ModuleDocuments))
	assert.False(t, IsModuleKey("Documents"))
}

func TestEmbeddedPlansResolve(t *testing.T) {
	plan, err := ResolvePlan(" Professional ")
	require.NoError(t, err)
	assert.Equal(t, "professional", plan.Key)
	assert.Equal(t, int64(102400)<<20, plan.StorageQuotaBytes())

	fallback, err := ResolvePlan("platinum")
	require.NoError(t, err)
	assert.Equal(t, "free", fallback.Key)

	enterprise, err := ResolvePlan("enterprise")
	require.NoError(t, err)
	assert.Zero(t, enterprise.StorageQuotaBytes())
}

func TestParsePlansRejectsMissingDefault(t *testing.T) {
	_, err := ParsePlans([]byte("default: gold\nplans:\n  - key: free\n    name: Free\n"))
	require.Error(t, err)
}
