// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/co2-budget/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateDetailLevel checks the requested level of detail.
func ValidateDetailLevel(detail string) error {
	if detail != constants.DetailBrief && detail != constants.DetailFull {
		return fmt.Errorf("expected level of detail %s or %s, got %q",
			constants.DetailBrief, constants.DetailFull, detail)
	}
	return nil
}

// ValidateModel checks the reduction path model name.
func ValidateModel(model string) error {
	if model != constants.ModelCubic && model != constants.ModelQuadratic {
		return fmt.Errorf("expected path model %s or %s, got %q",
			constants.ModelCubic, constants.ModelQuadratic, model)
	}
	return nil
}
