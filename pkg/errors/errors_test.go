package errors

import (
	"errors"
	"strings"
	"testing"
)

// TestNewCLIError creates and validates a CLI error
func TestNewCLIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test error", cause)

	if err == nil {
		t.Fatal("NewCLIError returned nil")
	}

	if err.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, err.Type)
	}

	if err.Message != "Test error" {
		t.Errorf("Expected message 'Test error', got '%s'", err.Message)
	}

	if err.Cause != cause {
		t.Error("Cause not set correctly")
	}
}

// TestWithSuggestion adds suggestion to error
func TestWithSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil)
	suggestion := "Try something else"

	result := err.WithSuggestion(suggestion)

	if !result.HasSuggestion() {
		t.Error("HasSuggestion returned false")
	}

	if result.Suggestion != suggestion {
		t.Errorf("Expected suggestion '%s', got '%s'", suggestion, result.Suggestion)
	}
}

// TestNetworkError creates network error
func TestNetworkError(t *testing.T) {
	err := NetworkError("Connection failed")

	if err.Type != ErrorTypeNetwork {
		t.Errorf("Expected type %s, got %s", ErrorTypeNetwork, err.Type)
	}

	if !err.HasSuggestion() {
		t.Error("Expected suggestion for network error")
	}

	if !strings.Contains(err.Suggestion, "internet") {
		t.Error("Expected helpful suggestion about internet connection")
	}
}

// TestTimeoutError creates timeout error
func TestTimeoutError(t *testing.T) {
	err := TimeoutError()

	if err.Type != ErrorTypeTimeout {
		t.Errorf("Expected type %s, got %s", ErrorTypeTimeout, err.Type)
	}

	if !err.HasSuggestion() {
		t.Error("Expected suggestion for timeout error")
	}
}

// TestValidationError creates validation error
func TestValidationError(t *testing.T) {
	err := ValidationError("impressions[0].content_id", "invalid format")

	if err.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, err.Type)
	}

	if !strings.Contains(err.Message, "content_id") {
		t.Error("Expected field name in message")
	}

	if !strings.Contains(err.Message, "invalid format") {
		t.Error("Expected reason in message")
	}
}

// TestFileNotFoundError creates file not found error
func TestFileNotFoundError(t *testing.T) {
	path := "/path/to/session.json"
	err := FileNotFoundError(path)

	if err.Type != ErrorTypeFileNotFound {
		t.Errorf("Expected type %s, got %s", ErrorTypeFileNotFound, err.Type)
	}

	if !strings.Contains(err.Message, path) {
		t.Error("Expected path in message")
	}

	if !err.HasSuggestion() {
		t.Error("Expected suggestion for file not found")
	}
}

// TestRateLimitError creates rate limit error
func TestRateLimitError(t *testing.T) {
	retryAfter := 60
	err := RateLimitError(retryAfter)

	if err.Type != ErrorTypeRateLimit {
		t.Errorf("Expected type %s, got %s", ErrorTypeRateLimit, err.Type)
	}

	if err.RetryAfter != retryAfter {
		t.Errorf("Expected RetryAfter %d, got %d", retryAfter, err.RetryAfter)
	}

	if !strings.Contains(err.Suggestion, "60") {
		t.Error("Expected retry time in suggestion")
	}
}

// TestRejectedError creates an error for a refused signal
func TestRejectedError(t *testing.T) {
	err := RejectedError(400, "missing device_id")

	if err.Type != ErrorTypeRejected {
		t.Errorf("Expected type %s, got %s", ErrorTypeRejected, err.Type)
	}

	if err.StatusCode != 400 {
		t.Errorf("Expected status 400, got %d", err.StatusCode)
	}

	if !strings.Contains(err.Message, "missing device_id") {
		t.Error("Expected endpoint message in error")
	}
}

// TestConfigError names the offending key
func TestConfigError(t *testing.T) {
	err := ConfigError("signals.env", "unknown environment \"qa\"")

	if err.Type != ErrorTypeConfig {
		t.Errorf("Expected type %s, got %s", ErrorTypeConfig, err.Type)
	}

	if !strings.Contains(err.Suggestion, "signals config set signals.env") {
		t.Errorf("Expected config set suggestion, got %q", err.Suggestion)
	}
}

// TestInvalidFormatError keeps the parse error as cause
func TestInvalidFormatError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := InvalidFormatError("session.json", cause)

	if err.Type != ErrorTypeInvalidFormat {
		t.Errorf("Expected type %s, got %s", ErrorTypeInvalidFormat, err.Type)
	}

	if !errors.Is(err, cause) {
		t.Error("Expected cause to be reachable through errors.Is")
	}
}

// TestCategorizeError categorizes standard errors
func TestCategorizeError(t *testing.T) {
	testCases := []struct {
		input    error
		expected ErrorType
		name     string
	}{
		{errors.New("connection refused"), ErrorTypeNetwork, "connection refused"},
		{errors.New("timeout"), ErrorTypeTimeout, "timeout"},
		{errors.New("context deadline exceeded"), ErrorTypeTimeout, "context deadline"},
		{errors.New("weird failure"), ErrorTypeUnknown, "unknown"},
		{errors.New("429 rate limit"), ErrorTypeRateLimit, "429 error"},
		{errors.New("500 server error"), ErrorTypeServer, "500 error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CategorizeError(tc.input)

			if err.Type != tc.expected {
				t.Errorf("Expected type %s, got %s", tc.expected, err.Type)
			}
		})
	}
}

// TestFormatError formats error for display
func TestFormatError(t *testing.T) {
	err := NetworkError("Could not reach ingestion")
	formatted := FormatError(err)

	if !strings.Contains(formatted, "Error") {
		t.Error("Expected 'Error' in formatted message")
	}

	if !strings.Contains(formatted, "network") {
		t.Error("Expected error type in formatted message")
	}

	if !strings.Contains(formatted, "Suggestion") {
		t.Error("Expected suggestion in formatted message")
	}
}

// TestFormatError_WithoutSuggestion formats error without suggestion
func TestFormatError_NoSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeUnknown, "Some error", nil)
	formatted := FormatError(err)

	if !strings.Contains(formatted, "Error") {
		t.Error("Expected 'Error' in formatted message")
	}

	if !strings.Contains(formatted, "Some error") {
		t.Error("Expected error message in formatted output")
	}
}

// TestFormatError_Nil handles nil error
func TestFormatError_Nil(t *testing.T) {
	formatted := FormatError(nil)

	if formatted != "" {
		t.Errorf("Expected empty string for nil error, got '%s'", formatted)
	}
}

// TestUnwrap returns underlying error
func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test", cause)

	if err.Unwrap() != cause {
		t.Error("Unwrap did not return the correct underlying error")
	}
}

// TestErrorImplementsError verifies CLIError implements error interface
func TestErrorImplementsError(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil)

	// This will compile only if CLIError implements error
	var _ error = err

	if err.Error() != "Test" {
		t.Errorf("Error() returned '%s', expected 'Test'", err.Error())
	}
}
