package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Sentinel errors matched by *Error through errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("not logged in")
	ErrForbidden         = errors.New("not allowed")
	ErrMalformedResponse = errors.New("malformed response")
)

// Error is a non-2xx response from the API.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Is maps status codes onto the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		return e.Status == http.StatusForbidden
	}
	return false
}

// errorBody is the JSON error shape. The server uses "error" on most
// endpoints and "message" on a few.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// readError builds an *Error from a failed response.
func readError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &Error{Status: resp.StatusCode}

	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Error
		if apiErr.Message == "" {
			apiErr.Message = body.Message
		}
	} else if text := strings.TrimSpace(string(data)); text != "" && len(text) < 200 {
		apiErr.Message = text
	}
	return apiErr
}

// validator is implemented by every typed record in internal/model.
type validator interface {
	Validate() error
}

// decodeJSON decodes a response body into target and validates the result.
func decodeJSON(r io.Reader, target any) error {
	if err := json.NewDecoder(r).Decode(target); err != nil {
		if errors.Is(err, io.EOF) && emptyOK(target) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if err := validate(target); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

// acknowledgement marks response types whose body may be empty.
type acknowledgement interface {
	acknowledgement()
}

// emptyOK reports whether an empty body is acceptable for target. Records
// must have a body; acknowledgements and raw passthroughs need not.
func emptyOK(target any) bool {
	if _, ok := target.(acknowledgement); ok {
		return true
	}
	_, isRecord := target.(validator)
	return !isRecord
}

// validate runs Validate on target when it is a record.
func validate(target any) error {
	if v, ok := target.(validator); ok {
		return v.Validate()
	}
	return nil
}

// validateEach validates every element of a decoded list.
func validateEach[T any, PT interface {
	*T
	validator
}](items []T) error {
	for i := range items {
		if err := PT(&items[i]).Validate(); err != nil {
			return fmt.Errorf("%w: item %d: %v", ErrMalformedResponse, i, err)
		}
	}
	return nil
}
