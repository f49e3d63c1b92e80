package hcl_adapter

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// diagError reports a structural problem in the same shape as HCL's own
// diagnostics so every definition error reads alike.
func diagError(file, subject, format string, args ...any) error {
	diags := hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  "Invalid " + subject,
		Detail:   fmt.Sprintf(format, args...),
	}}
	return fmt.Errorf("failed to validate HCL file %s: %w", file, diags)
}
