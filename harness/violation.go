package harness

import "fmt"

// ComplianceViolation describes a failed compatibility check, naming
// the contract clause the variant violated. Violations are collected
// into the report rather than propagated, so one failure never aborts
// the remaining battery.
type ComplianceViolation struct {
	Check  string
	Clause string
	Detail string
}

func (v *ComplianceViolation) Error() string {
	if v.Detail == "" {
		return fmt.Sprintf("fitkit: compliance violation in %s: %s", v.Check, v.Clause)
	}
	return fmt.Sprintf("fitkit: compliance violation in %s: %s: %s", v.Check, v.Clause, v.Detail)
}

func violation(check, clause, format string, args ...interface{}) *ComplianceViolation {
	return &ComplianceViolation{
		Check:  check,
		Clause: clause,
		Detail: fmt.Sprintf(format, args...),
	}
}
