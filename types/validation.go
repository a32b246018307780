package types

// Severity levels for validation errors.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// ValidationError describes one failed validation rule for one field.
type ValidationError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// ValidationWarning describes a non-fatal data concern, optionally with a
// suggested fix.
type ValidationWarning struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// ValidationResult aggregates the outcome of validating one record.
// IsValid is true iff no critical errors were found. QualityScore starts at
// 1.0 and is reduced per error/warning, floored at 0.
type ValidationResult struct {
	IsValid      bool                `json:"is_valid"`
	Errors       []ValidationError   `json:"errors"`
	Warnings     []ValidationWarning `json:"warnings"`
	QualityScore float64             `json:"quality_score"`
}

// AddError appends an error and marks the result invalid when critical.
func (r *ValidationResult) AddError(field, message, severity string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message, Severity: severity})
	if severity == SeverityCritical {
		r.IsValid = false
	}
}

// AddWarning appends a warning without affecting validity.
func (r *ValidationResult) AddWarning(field, message, suggestion string) {
	r.Warnings = append(r.Warnings, ValidationWarning{Field: field, Message: message, Suggestion: suggestion})
}
