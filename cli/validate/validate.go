package validate

import (
	"errors"
	"fmt"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/document"
	"github.com/rit3sh-x/mongoschema/core/utils"
	"github.com/rit3sh-x/mongoschema/core/validation"
)

// ValidateSchemaFileWithDetails returns the validation errors of the schema
// file. The error is set only when the file cannot be read or parsed at all.
func ValidateSchemaFileWithDetails(filePath string) ([]validation.ValidationError, error) {
	data, err := utils.ReadSchemaFile(filePath)
	if err != nil {
		return nil, err
	}

	_, err = document.Parse(data)
	if err == nil {
		return []validation.ValidationError{}, nil
	}

	var formatErr *document.InvalidSchemaFormatError
	if errors.As(err, &formatErr) && len(formatErr.Errors) > 0 {
		return formatErr.Errors, nil
	}
	return nil, err
}

func ValidateSchemaFile(filePath string) error {
	validationErrors, err := ValidateSchemaFileWithDetails(filePath)
	if err != nil {
		return err
	}
	if len(validationErrors) > 0 {
		return fmt.Errorf("schema validation failed with %d error(s)", len(validationErrors))
	}
	return nil
}

// PrintColorfulValidationResults prints a report and reports whether the
// schema is valid.
func PrintColorfulValidationResults(filePath string) bool {
	fmt.Printf("%s🔍 Validating schema: %s%s%s\n", constants.BLUE, constants.CYAN, filePath, constants.RESET)

	validationErrors, err := ValidateSchemaFileWithDetails(filePath)
	if err != nil {
		fmt.Printf("\n%s💥 VALIDATION FAILED%s\n", constants.RED, constants.RESET)
		fmt.Printf("%sError: %s%s\n", constants.RED, err, constants.RESET)
		return false
	}

	if len(validationErrors) == 0 {
		fmt.Printf("\n%s✔ VALIDATION SUCCESS%s\n", constants.GREEN, constants.RESET)
		return true
	}

	fmt.Printf("\n%sVALIDATION ISSUES DETECTED%s\n", constants.YELLOW, constants.RESET)
	fmt.Printf("%sFound %d validation error(s):%s\n\n", constants.RED, len(validationErrors), constants.RESET)

	for i, valErr := range validationErrors {
		fmt.Printf("%s┌─ Error #%d%s\n", constants.CYAN, i+1, constants.RESET)
		fmt.Printf("%s│%s %sType:%s %s[%s]%s\n",
			constants.CYAN, constants.RESET,
			constants.YELLOW, constants.RESET,
			constants.RED, valErr.Type, constants.RESET)
		fmt.Printf("%s│%s %sMessage:%s %s\n",
			constants.CYAN, constants.RESET,
			constants.YELLOW, constants.RESET, valErr.Message)
		fmt.Printf("%s│%s %sLocation:%s %s\n",
			constants.CYAN, constants.RESET,
			constants.YELLOW, constants.RESET, valErr.Location)
		fmt.Printf("%s└─%s\n\n", constants.CYAN, constants.RESET)
	}
	return false
}
