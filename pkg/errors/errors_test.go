package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

var errNotFound = errors.New("workflow not found")

func TestNewAndWrap(t *testing.T) {
	err := New(ErrCodeInvalidWorkflow, "node %s references unknown group %q", "n1", "g")
	if got, want := err.Error(), `INVALID_WORKFLOW: node n1 references unknown group "g"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := Wrap(ErrCodeWorkflowNotFound, errNotFound, "load %s", "wf-1")
	if got, want := wrapped.Error(), "WORKFLOW_NOT_FOUND: load wf-1: workflow not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(wrapped, errNotFound) {
		t.Error("wrapped error lost its sentinel cause")
	}
	if errors.Unwrap(wrapped) != errNotFound {
		t.Error("Unwrap() did not return the cause")
	}
}

func TestCodeThroughLayers(t *testing.T) {
	storage := Wrap(ErrCodeStorage, errors.New("disk full"), "save workflow")
	layered := fmt.Errorf("editor: %w", storage)
	outer := Wrap(ErrCodeInternal, New(ErrCodeInvalidID, "bad id"), "request")

	tests := []struct {
		name string
		err  error
		code Code
		msg  string
	}{
		{"coded", storage, ErrCodeStorage, "save workflow"},
		{"fmt wrapped", layered, ErrCodeStorage, "save workflow"},
		{"outermost code wins", outer, ErrCodeInternal, "request"},
		{"plain", errNotFound, "", "workflow not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeNetwork) {
				t.Error("Is(NETWORK_ERROR) = true for an unrelated error")
			}
			if got := UserMessage(tt.err); got != tt.msg {
				t.Errorf("UserMessage() = %q, want %q", got, tt.msg)
			}
		})
	}

	if Is(nil, ErrCodeStorage) || GetCode(nil) != "" {
		t.Error("nil error reported a code")
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidWorkflow, "bad"), http.StatusBadRequest},
		{New(ErrCodeInvalidID, "bad"), http.StatusBadRequest},
		{New(ErrCodeWorkflowNotFound, "gone"), http.StatusNotFound},
		{New(ErrCodeComponentNotFound, "gone"), http.StatusNotFound},
		{Wrap(ErrCodeCategoryNotFound, errors.New("x"), "gone"), http.StatusNotFound},
		{New(ErrCodeRateLimited, "slow down"), http.StatusTooManyRequests},
		{New(ErrCodeNetwork, "down"), http.StatusBadGateway},
		{New(ErrCodeTimeout, "slow"), http.StatusGatewayTimeout},
		{New(ErrCodeStorage, "disk"), http.StatusInternalServerError},
		{errNotFound, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(GetCode(tt.err)), func(t *testing.T) {
			if got := HTTPStatus(tt.err); got != tt.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
