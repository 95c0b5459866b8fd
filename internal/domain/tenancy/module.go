package tenancy

import (
	"strings"

	"github.com/fieldops/backend/internal/domain/shared"
)

// ModuleKey identifies an independently toggle-able feature area. Modules are
// gated per entity and compose with, but are independent of, role policy.
type ModuleKey string

const (
	ModuleClients    ModuleKey = "clients"
	ModuleJobs       ModuleKey = "jobs"
	ModuleInvoicing  ModuleKey = "invoicing"
	ModuleTimesheets ModuleKey = "timesheets"
	ModulePayroll    ModuleKey = "payroll"
	ModuleReports    ModuleKey = "reports"
)

var allModules = []ModuleKey{
	ModuleClients,
	ModuleJobs,
	ModuleInvoicing,
	ModuleTimesheets,
	ModulePayroll,
	ModuleReports,
}

// ParseModuleKey converts a string into a ModuleKey, rejecting unknown keys
func ParseModuleKey(s string) (ModuleKey, error) {
	k := ModuleKey(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", shared.NewDomainError("INVALID_MODULE", "Unknown module: "+s)
	}
	return k, nil
}

// IsValid reports whether the key names a known module
func (k ModuleKey) IsValid() bool {
	for _, m := range allModules {
		if m == k {
			return true
		}
	}
	return false
}

// String returns the wire representation of the module key
func (k ModuleKey) String() string {
	return string(k)
}

// Modules returns all known module keys
func Modules() []ModuleKey {
	out := make([]ModuleKey, len(allModules))
	copy(out, allModules)
	return out
}
