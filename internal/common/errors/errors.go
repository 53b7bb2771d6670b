// Package errors provides standardized error handling shared by the HTTP
// API and the BPMN pipeline workers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Questionnaire / scoring input
	ErrCodeInvalidQuestionnaireValue ErrorCode = "INVALID_QUESTIONNAIRE_VALUE"
	ErrCodeInvalidLeadPayload        ErrorCode = "INVALID_LEAD_PAYLOAD"

	// Lead persistence
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeLeadPersistFailed        ErrorCode = "LEAD_PERSIST_FAILED"
	ErrCodeDuplicateLead            ErrorCode = "DUPLICATE_LEAD"
	ErrCodeLeadNotFound             ErrorCode = "LEAD_NOT_FOUND"

	// Search
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchIndexFailed             ErrorCode = "SEARCH_INDEX_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"

	// Narrative AI
	ErrCodeNarrativeTimeout ErrorCode = "NARRATIVE_TIMEOUT"
	ErrCodeNarrativeFailed  ErrorCode = "NARRATIVE_FAILED"

	// Collaborators
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
	ErrCodeCRMSyncFailed          ErrorCode = "CRM_SYNC_FAILED"

	// Back office
	ErrCodeAuthentication ErrorCode = "AUTHENTICATION_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToVariables flattens the BPMN error into process variables.
func (e *BPMNError) ToVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewInvalidQuestionnaireValueError creates a non-retryable input error.
func NewInvalidQuestionnaireValueError(field, value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidQuestionnaireValue,
		Message:   "Questionnaire answer outside its declared enumeration",
		Details:   fmt.Sprintf("field: %s, value: %s", field, value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidLeadPayloadError creates a non-retryable payload validation error.
func NewInvalidLeadPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidLeadPayload,
		Message:   "Lead payload failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewLeadPersistFailedError creates a retryable lead insert error.
func NewLeadPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLeadPersistFailed,
		Message:   "Lead insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateLeadError creates a non-retryable duplicate lead error.
func NewDuplicateLeadError(email string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateLead,
		Message:   "Lead already captured for this contact within the dedup window",
		Details:   fmt.Sprintf("email: %s", email),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewLeadNotFoundError creates a non-retryable lookup error.
func NewLeadNotFoundError(leadID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeLeadNotFound,
		Message:   "Lead not found",
		Details:   fmt.Sprintf("leadId: %s", leadID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexFailedError creates a retryable index error.
func NewSearchIndexFailedError(leadID string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Lead indexing failed",
		Details:   fmt.Sprintf("leadId: %s, error: %s", leadID, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Lead search query error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNarrativeTimeoutError creates a retryable narrative generation timeout error.
func NewNarrativeTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeNarrativeTimeout,
		Message:   "Narrative AI service timeout",
		Details:   "generation call exceeded its deadline; deterministic narrative stands",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNarrativeFailedError creates a retryable narrative generation error.
func NewNarrativeFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNarrativeFailed,
		Message:   "Narrative AI service error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification send error.
func NewNotificationSendFailedError(notificationType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification delivery failed",
		Details:   fmt.Sprintf("type: %s, error: %s", notificationType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCRMSyncFailedError creates a retryable CRM sync error.
func NewCRMSyncFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCRMSyncFailed,
		Message:   "CRM synchronization failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuthenticationError creates a non-retryable authentication error.
func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuthentication,
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The two
// sets are kept identical so process diagrams read like the logs.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidQuestionnaireValue:     "INVALID_QUESTIONNAIRE_VALUE",
	ErrCodeInvalidLeadPayload:            "INVALID_LEAD_PAYLOAD",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeLeadPersistFailed:             "LEAD_PERSIST_FAILED",
	ErrCodeDuplicateLead:                 "DUPLICATE_LEAD",
	ErrCodeLeadNotFound:                  "LEAD_NOT_FOUND",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchIndexFailed:             "SEARCH_INDEX_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeNarrativeTimeout:              "NARRATIVE_TIMEOUT",
	ErrCodeNarrativeFailed:               "NARRATIVE_FAILED",
	ErrCodeNotificationSendFailed:        "NOTIFICATION_SEND_FAILED",
	ErrCodeCRMSyncFailed:                 "CRM_SYNC_FAILED",
	ErrCodeAuthentication:                "AUTHENTICATION_ERROR",
}

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeLeadPersistFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchIndexFailed,
		ErrCodeSearchQueryFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeCRMSyncFailed,
		ErrCodeNarrativeFailed:
		return 3 // Retryable technical errors

	case ErrCodeNarrativeTimeout:
		return 1 // One more attempt, then the deterministic narrative stands

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// AsStandardError extracts a *StandardError from an error chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// BPMNCodeOrDefault returns the BPMN error code for err, falling back to
// the given code when err carries no standard code. Workers use this to
// throw errors the process diagram can catch by name.
func BPMNCodeOrDefault(err error, fallback string) string {
	if stdErr, ok := AsStandardError(err); ok {
		return ConvertToBPMNError(stdErr).Code
	}
	return fallback
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "QUESTIONNAIRE") || strings.Contains(codeStr, "PAYLOAD"):
		return "INPUT"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "LEAD"):
		return "PERSISTENCE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NARRATIVE"):
		return "AI"
	case strings.Contains(codeStr, "NOTIFICATION") || strings.Contains(codeStr, "CRM"):
		return "OUTBOUND"
	case strings.Contains(codeStr, "AUTHENTICATION"):
		return "AUTH"
	default:
		return "OTHER"
	}
}
