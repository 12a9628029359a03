package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *AppError
		code      ErrorCode
		status    int
		retryable bool
	}{
		{"ServiceUnavailable", ServiceUnavailable("redis"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable, true},
		{"Timeout", Timeout("ping"), ErrCodeTimeout, http.StatusGatewayTimeout, true},
		{"StoreFailure", StoreFailure("set", nil), ErrCodeStore, http.StatusBadGateway, true},
		{"InvalidInput", InvalidInput("key", "empty"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"Validation", Validation("bad input"), ErrCodeInvalidInput, http.StatusBadRequest, false},
		{"MissingField", MissingField("key"), ErrCodeMissingField, http.StatusBadRequest, false},
		{"InvalidFormat", InvalidFormat("body", "JSON object"), ErrCodeInvalidFormat, http.StatusBadRequest, false},
		{"PayloadTooLarge", PayloadTooLarge(1024), ErrCodePayloadTooLarge, http.StatusRequestEntityTooLarge, false},
		{"Internal", Internal(nil), ErrCodeInternal, http.StatusInternalServerError, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
			if tc.err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, tc.err.Retryable)
			}
		})
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		err  *AppError
		want string
	}{
		{ServiceUnavailable("Redis"), "Redis client is not available."},
		{Timeout("Redis ping"), "Redis ping operation timed out."},
		{StoreFailure("rpush", nil), "Store rpush failed."},
		{InvalidInput("key", "Invalid key provided."), "Invalid key provided."},
	}
	for _, tc := range tests {
		if tc.err.Message != tc.want {
			t.Errorf("expected message %q, got %q", tc.want, tc.err.Message)
		}
	}
}

func TestStatusOfUnknownCode(t *testing.T) {
	if got := StatusOf("NOPE"); got != http.StatusInternalServerError {
		t.Errorf("expected 500 for an unknown code, got %d", got)
	}
	if IsRetryableCode("NOPE") {
		t.Error("unknown codes are not retryable")
	}
}

func TestStoreFailureKeepsCause(t *testing.T) {
	cause := fmt.Errorf("connection reset by peer")
	err := StoreFailure("get", cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if err.Details["operation"] != "get" {
		t.Errorf("expected operation=get, got %v", err.Details["operation"])
	}
	if !strings.Contains(err.Error(), "connection reset by peer") {
		t.Errorf("Error() should mention the cause, got %q", err.Error())
	}
}

func TestInvalidInputField(t *testing.T) {
	if got := InvalidInput("key", "empty").Details["field"]; got != "key" {
		t.Errorf("expected field=key, got %v", got)
	}
	if _, ok := InvalidInput("", "empty").Details["field"]; ok {
		t.Error("expected no field detail when field is empty")
	}
}

func TestWithDetailOnBareError(t *testing.T) {
	err := (&AppError{}).WithDetail("key", "value")
	if err.Details["key"] != "value" {
		t.Errorf("expected key=value, got %v", err.Details["key"])
	}
}

func TestToResponse(t *testing.T) {
	resp := PayloadTooLarge(512).ToResponse()
	if resp.Error.Code != ErrCodePayloadTooLarge {
		t.Errorf("expected PAYLOAD_TOO_LARGE, got %s", resp.Error.Code)
	}
	if resp.Error.Details["limit_bytes"] != int64(512) {
		t.Errorf("expected limit in details, got %v", resp.Error.Details)
	}
}

func TestAsAppErrorAndIsCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", Timeout("ping"))

	got, ok := AsAppError(wrapped)
	if !ok || got.Code != ErrCodeTimeout {
		t.Fatalf("expected wrapped TIMEOUT, got %v %v", got, ok)
	}
	if !IsAppError(wrapped) || IsAppError(fmt.Errorf("plain")) {
		t.Error("IsAppError should follow the chain and reject plain errors")
	}
	if !IsCode(wrapped, ErrCodeTimeout) || IsCode(wrapped, ErrCodeStore) {
		t.Error("IsCode should match only the wrapped code")
	}
	if IsCode(nil, ErrCodeTimeout) {
		t.Error("IsCode(nil) should be false")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}

	orig := InvalidInput("key", "empty")
	if Wrap(fmt.Errorf("outer: %w", orig)) != orig {
		t.Error("Wrap should return the AppError found in the chain")
	}

	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal || got.Cause != plain {
		t.Errorf("expected INTERNAL_ERROR wrapping plain, got %+v", got)
	}
}
