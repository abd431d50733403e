package errors

import (
	"errors"
	"fmt"
	"maps"
)

// Code is the stable, machine-matchable identifier of a generation failure.
type Code string

// Schema codes
const (
	CodeInvalidConfigType   Code = "invalid_config_type"
	CodeMissingRequiredKeys Code = "missing_required_keys"
	CodeInvalidKeyType      Code = "invalid_key_type"
)

// Resource codes
const (
	CodeMissingResource             Code = "missing_resource"
	CodeInvalidResourceType         Code = "invalid_resource_type"
	CodeInvalidResource             Code = "invalid_resource"
	CodeWordlistsMissing            Code = "wordlists_missing"
	CodeWordlistsNoSelection        Code = "wordlists_no_selection"
	CodeSyllablePoolEmpty           Code = "syllable_pool_empty"
	CodeMissingRequiredMiddles      Code = "missing_required_middles"
	CodeMiddleSyllablesNotAvailable Code = "middle_syllables_not_available"
)

// Range and numeric codes
const (
	CodeInvalidMiddleRange           Code = "invalid_middle_range"
	CodeInvalidTransitionWeightValue Code = "invalid_transition_weight_value"
	CodeNonPositiveWeightSum         Code = "non_positive_weight_sum"
	CodeInvalidTemperature           Code = "invalid_temperature"
	CodeInvalidMaxDepth              Code = "invalid_max_depth"
	CodeUnableToSatisfyMinLength     Code = "unable_to_satisfy_min_length"
	CodeMaxLengthExceeded            Code = "max_length_exceeded"
	CodeUnreachableEndToken          Code = "unreachable_end_token"
	CodeUnknownTokenReference        Code = "unknown_token_reference"
	CodeMissingTransitionForToken    Code = "missing_transition_for_token"
	CodeEmptyTransitionBlock         Code = "empty_transition_block"
)

// Composition codes
const (
	CodeMissingTemplateToken           Code = "missing_template_token"
	CodeEmptyToken                     Code = "empty_token"
	CodeUnterminatedToken              Code = "unterminated_token"
	CodeTemplateRecursionDepthExceeded Code = "template_recursion_depth_exceeded"
	CodeRecursionDepthExceeded         Code = "recursion_depth_exceeded"
	CodeHybridStepError                Code = "hybrid_step_error"
	CodeMissingStepStrategy            Code = "missing_step_strategy"
	CodeInvalidStepConfig              Code = "invalid_step_config"
	CodeInvalidStepsType               Code = "invalid_steps_type"
	CodeEmptySteps                     Code = "empty_steps"
)

// Registry and middleware codes
const (
	CodeUnknownStrategy Code = "unknown_strategy"
	CodeMissingStrategy Code = "missing_strategy"
	CodeInvalidSeed     Code = "invalid_seed"
)

// codeClasses assigns every resource code its class; unlisted codes are invalid input.
var codeClasses = map[Code]ErrorClass{
	CodeMissingResource:             ErrorResource,
	CodeInvalidResourceType:         ErrorResource,
	CodeInvalidResource:             ErrorResource,
	CodeWordlistsMissing:            ErrorResource,
	CodeWordlistsNoSelection:        ErrorResource,
	CodeSyllablePoolEmpty:           ErrorResource,
	CodeMissingRequiredMiddles:      ErrorResource,
	CodeMiddleSyllablesNotAvailable: ErrorResource,
	CodeMissingTransitionForToken:   ErrorResource,
	CodeEmptyTransitionBlock:        ErrorResource,
}

// ClassOf returns the class a code belongs to.
func ClassOf(code Code) ErrorClass {
	if class, ok := codeClasses[code]; ok {
		return class
	}
	return ErrorInvalid
}

// GenerationError is the structured failure produced by strategies and the
// middleware. Details only ever hold plain values (strings, numbers, slices,
// maps), so the error can be serialized and carried across process boundaries.
type GenerationError struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Class   ErrorClass     `json:"-"`
}

// NewGenerationError creates a GenerationError classified by its code.
func NewGenerationError(code Code, message string, details map[string]any) *GenerationError {
	if details == nil {
		details = map[string]any{}
	}
	return &GenerationError{
		Code:    code,
		Message: message,
		Details: details,
		Class:   ClassOf(code),
	}
}

// Newf is NewGenerationError with a formatted message and no details.
func Newf(code Code, format string, args ...any) *GenerationError {
	return NewGenerationError(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (ge *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s", ge.Code, ge.Message)
}

// With returns a copy of the error with an extra detail set.
func (ge *GenerationError) With(key string, value any) *GenerationError {
	clone := *ge
	clone.Details = maps.Clone(ge.Details)
	if clone.Details == nil {
		clone.Details = map[string]any{}
	}
	clone.Details[key] = value
	return &clone
}

// ToMap returns the {code, message, details} wire form.
func (ge *GenerationError) ToMap() map[string]any {
	details := maps.Clone(ge.Details)
	if details == nil {
		details = map[string]any{}
	}
	return map[string]any{
		"code":    string(ge.Code),
		"message": ge.Message,
		"details": details,
	}
}

// Nest wraps a nested failure under a new code. The nested error is stored in
// its map form under details.nested.
func Nest(code Code, message string, nested *GenerationError, details map[string]any) *GenerationError {
	ge := NewGenerationError(code, message, details)
	if nested != nil {
		ge.Details["nested"] = nested.ToMap()
	}
	return ge
}

// Propagate keeps the nested code and class while prefixing the message with
// the location it passed through.
func Propagate(location string, nested *GenerationError, details map[string]any) *GenerationError {
	ge := NewGenerationError(nested.Code, fmt.Sprintf("%s: %s", location, nested.Message), details)
	ge.Class = nested.Class
	ge.Details["nested"] = nested.ToMap()
	return ge
}

// RootCode follows details.nested to the innermost failure and returns its code.
func RootCode(ge *GenerationError) Code {
	if ge == nil {
		return ""
	}
	code := ge.Code
	nested, ok := ge.Details["nested"].(map[string]any)
	for ok {
		if c, isStr := nested["code"].(string); isStr {
			code = Code(c)
		}
		details, isMap := nested["details"].(map[string]any)
		if !isMap {
			break
		}
		nested, ok = details["nested"].(map[string]any)
	}
	return code
}

// AsGenerationError extracts a GenerationError from an error chain.
func AsGenerationError(err error) (*GenerationError, bool) {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// IsCode reports whether err is a GenerationError carrying code.
func IsCode(err error, code Code) bool {
	ge, ok := AsGenerationError(err)
	return ok && ge.Code == code
}
