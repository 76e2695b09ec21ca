package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yaml
var plansYAML []byte

// Plan is a pricing tier. A zero storage limit means unlimited.
type Plan struct {
	Key          string `yaml:"key"`
	Name         string `yaml:"name"`
	MaxStorageMB int64  `yaml:"maxStorageMB"`
}

// StorageQuotaBytes is the document storage allowance in bytes.
func (p Plan) StorageQuotaBytes() int64 {
	return p.MaxStorageMB << 20
}

// PlanCatalog is the set of plans plus the plan assigned when none matches.
type PlanCatalog struct {
	Default string `yaml:"default"`
	Plans   []Plan `yaml:"plans"`
}

var loadPlans = sync.OnceValues(func() (PlanCatalog, error) {
	return ParsePlans(plansYAML)
})

// ParsePlans decodes a plan catalog document.
func ParsePlans(data []byte) (PlanCatalog, error) {
	var pc PlanCatalog
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return PlanCatalog{}, fmt.Errorf("parse plan catalog: %w", err)
	}
	if len(pc.Plans) == 0 {
		return PlanCatalog{}, fmt.Errorf("parse plan catalog: no plans defined")
	}
	if _, ok := pc.lookup(pc.Default); !ok {
		return PlanCatalog{}, fmt.Errorf("parse plan catalog: default plan %q not defined", pc.Default)
	}
	return pc, nil
}

func (pc PlanCatalog) lookup(key string) (Plan, bool) {
	for _, p := range pc.Plans {
		if p.Key == key {
			return p, true
		}
	}
	return Plan{}, false
}

// Resolve returns the plan matching key case-insensitively, or the default plan.
func (pc PlanCatalog) Resolve(key string) Plan {
	if p, ok := pc.lookup(strings.ToLower(strings.TrimSpace(key))); ok {
		return p
	}
	p, _ := pc.lookup(pc.Default)
	return p
}

// ResolvePlan resolves key against the embedded catalog.
func ResolvePlan(key string) (Plan, error) {
	pc, err := loadPlans()
	if err != nil {
		return Plan{}, err
	}
	return pc.Resolve(key), nil
}
