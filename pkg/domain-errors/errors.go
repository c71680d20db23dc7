// Package domainerrors provides coded errors for the audit engine. Services
// return these so transports can translate them into consistent responses
// without inspecting error strings.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of domain error.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeInternal   Code = "internal"
	CodeTimeout    Code = "timeout"

	// Template validation codes. These are detected before any store call so
	// a failed create/update never leaves a partial template behind.
	CodeTemplateNotFound         Code = "template_not_found"
	CodeInvalidTemplateName      Code = "invalid_template_name"
	CodeMissingControlObjectives Code = "missing_control_objectives"
	CodeMissingProcedures        Code = "missing_procedures"
	CodeInvalidProcedureMapping  Code = "invalid_procedure_mapping"

	// Execution and findings codes.
	CodeReportNotFound    Code = "audit_report_not_found"
	CodeProcedureNotFound Code = "procedure_not_found"
	CodeFindingNotFound   Code = "finding_not_found"
	CodeFrameworkNotFound Code = "framework_not_found"
	CodeScheduleNotFound  Code = "schedule_not_found"
	CodeInvalidTransition Code = "invalid_status_transition"
	CodeReportTerminal    Code = "audit_report_terminal"

	// Collaborator failure codes. Each wraps the underlying persistence or
	// notification error with the operation that could not finish.
	CodeTemplateCreationFailed Code = "template_creation_failed"
	CodeTemplateUpdateFailed   Code = "template_update_failed"
	CodeAuditExecutionFailed   Code = "audit_execution_failed"
	CodeStatusUpdateFailed     Code = "status_update_failed"
	CodeFindingCreationFailed  Code = "finding_creation_failed"
	CodeFindingUpdateFailed    Code = "finding_update_failed"
	CodeGapAnalysisFailed      Code = "gap_analysis_failed"
	CodeReportGenerationFailed Code = "report_generation_failed"
	CodeScheduleCreationFailed Code = "schedule_creation_failed"
)

// DomainError carries a code alongside the underlying cause.
type DomainError struct {
	Code    Code
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// New creates a coded domain error.
func New(code Code, message string) error {
	return &DomainError{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying collaborator error.
func Wrap(err error, code Code, message string) error {
	return &DomainError{Code: code, Message: message, Err: err}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is an alias of HasCode kept for call-site readability.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a domain error code to an HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeInvalidTemplateName, CodeMissingControlObjectives,
		CodeMissingProcedures, CodeInvalidProcedureMapping:
		return http.StatusBadRequest
	case CodeNotFound, CodeTemplateNotFound, CodeReportNotFound,
		CodeProcedureNotFound, CodeFindingNotFound, CodeFrameworkNotFound,
		CodeScheduleNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeInvalidTransition, CodeReportTerminal:
		return http.StatusConflict
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
