// Package api exposes the learning engine over HTTP JSON.
// This file implements request validation.
package api

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation limits.
const (
	MaxSubmissionIDLen = 128
	MaxRefLen          = 4096
	MaxReasonLen       = 512
	MaxRuleKeyLen      = 256

	MinLimit     = 1
	MaxLimit     = 500
	DefaultLimit = 50

	errRequiredNonEmpty = "is required and must be non-empty"
)

// submissionIDPattern matches alphanumeric characters, dashes and
// underscores.
var submissionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidationError represents a structured validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("E_INVALID_ARGUMENT: %s: %s", e.Field, e.Message)
}

// ValidateCompareRequest validates a compare request in place.
func ValidateCompareRequest(req *CompareRequest) *ValidationError {
	if req.SubmissionID == "" {
		return &ValidationError{Field: "submission_id", Message: errRequiredNonEmpty}
	}
	if len(req.SubmissionID) > MaxSubmissionIDLen {
		return &ValidationError{Field: "submission_id", Message: fmt.Sprintf("exceeds max length %d", MaxSubmissionIDLen)}
	}
	if !submissionIDPattern.MatchString(req.SubmissionID) {
		return &ValidationError{Field: "submission_id", Message: "must contain only alphanumerics, dashes and underscores"}
	}
	if req.DraftRef == "" {
		return &ValidationError{Field: "draft_ref", Message: errRequiredNonEmpty}
	}
	if len(req.DraftRef) > MaxRefLen {
		return &ValidationError{Field: "draft_ref", Message: fmt.Sprintf("exceeds max length %d", MaxRefLen)}
	}
	if req.FinalRef == "" {
		return &ValidationError{Field: "final_ref", Message: errRequiredNonEmpty}
	}
	if len(req.FinalRef) > MaxRefLen {
		return &ValidationError{Field: "final_ref", Message: fmt.Sprintf("exceeds max length %d", MaxRefLen)}
	}
	return nil
}

// ValidateOverrideRequest validates an override toggle request.
func ValidateOverrideRequest(req *OverrideRequest) *ValidationError {
	if req.RuleKey == "" {
		return &ValidationError{Field: "rule_key", Message: errRequiredNonEmpty}
	}
	if len(req.RuleKey) > MaxRuleKeyLen {
		return &ValidationError{Field: "rule_key", Message: fmt.Sprintf("exceeds max length %d", MaxRuleKeyLen)}
	}
	source, target, ok := strings.Cut(req.RuleKey, "=>")
	if !ok || source == "" || target == "" {
		return &ValidationError{Field: "rule_key", Message: "must be of the form source=>target"}
	}
	if len(req.Reason) > MaxReasonLen {
		return &ValidationError{Field: "reason", Message: fmt.Sprintf("exceeds max length %d", MaxReasonLen)}
	}
	return nil
}

// ClampLimit normalizes a requested limit into [MinLimit, MaxLimit], using
// DefaultLimit when unset.
func ClampLimit(limit int) int {
	if limit == 0 {
		return DefaultLimit
	}
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
