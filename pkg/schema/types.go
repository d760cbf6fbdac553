package schema

import (
	"fmt"
	"regexp"
	"strings"
)

// Type defines the contract for field validation.
type Type interface {
	// Name returns the human-readable name of the type (e.g., "required", "enum_name").
	Name() string
	// Validate checks if a value conforms to this type.
	Validate(value any) error
}

var (
	enumNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// InvalidNameMessage is the user-facing rejection of a vocabulary entry.
const InvalidNameMessage = "Invalid name: must follow Java enum convention (start with letter, only letters/numbers/underscores, no spaces)"

// NameError reports a value that violates the enum naming convention.
type NameError struct {
	Value string
}

func (e *NameError) Error() string {
	return InvalidNameMessage
}

// ValidateEnumName checks that name starts with a letter and contains only
// letters, digits and underscores.
func ValidateEnumName(name string) error {
	if !enumNamePattern.MatchString(name) {
		return &NameError{Value: name}
	}
	return nil
}

// --- Built-in Type Implementations ---

// RequiredType accepts non-blank strings.
type RequiredType struct{}

func (t *RequiredType) Name() string { return "required" }

func (t *RequiredType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("must not be blank")
	}
	return nil
}

// EnumNameType accepts strings following the enum naming convention.
type EnumNameType struct{}

func (t *EnumNameType) Name() string { return "enum_name" }

func (t *EnumNameType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	return ValidateEnumName(s)
}

// HexColorType accepts #RRGGBB colours.
type HexColorType struct{}

func (t *HexColorType) Name() string { return "hex_color" }

func (t *HexColorType) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("expected string, got %T", value)
	}
	if !hexColorPattern.MatchString(s) {
		return fmt.Errorf("expected a #RRGGBB colour, got %q", s)
	}
	return nil
}

// Required returns the non-blank string type.
func Required() Type { return &RequiredType{} }

// EnumName returns the enum naming convention type.
func EnumName() Type { return &EnumNameType{} }

// HexColor returns the #RRGGBB colour type.
func HexColor() Type { return &HexColorType{} }
