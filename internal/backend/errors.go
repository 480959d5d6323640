package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/Brownie44l1/propvest/internal/models"
)

// APIError is a non-2xx response from the backend. It unwraps to the
// matching sentinel in models so callers can use errors.Is.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend error: status %d", e.Status)
	}
	return fmt.Sprintf("backend error: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	msg := strings.ToLower(e.Message)

	// message checks come first: the backend answers 404 for a missing
	// recipient as well as for a missing resource
	switch {
	case strings.Contains(msg, "user not found"):
		return models.ErrUserNotFound
	case strings.Contains(msg, "recipient not found"):
		return models.ErrRecipientNotFound
	case strings.Contains(msg, "insufficient"):
		return models.ErrInsufficientBalance
	}

	switch e.Status {
	case http.StatusNotFound:
		return models.ErrNotFound
	case http.StatusUnauthorized:
		return models.ErrUnauthorized
	case http.StatusForbidden:
		return models.ErrForbidden
	}
	return nil
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(status int, raw []byte) *APIError {
	e := &APIError{Status: status}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
		return e
	}

	e.Message = strings.TrimSpace(string(raw))
	if len(e.Message) > 200 {
		e.Message = e.Message[:200]
	}
	return e
}
