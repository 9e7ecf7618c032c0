package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// NoResponseMessage is shown when a request was sent but no response arrived.
const NoResponseMessage = "No response received from server. Please check your connection."

// HTTPError is returned when the server responded with a status outside the 2xx range.
type HTTPError struct {
	Status int
	Body   []byte
}

func (e *HTTPError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("server responded with status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("server responded with status %d (%s)", e.Status, http.StatusText(e.Status))
}

// Message returns the structured error text from a JSON body: "message" first, then "error".
// Empty when the body carries neither.
func (e *HTTPError) Message() string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}

// NotFound reports a 404 response.
func (e *HTTPError) NotFound() bool { return e.Status == http.StatusNotFound }

// NetworkError is returned when the request was sent but no usable response came back.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("request failed: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// RequestSetupError is returned when the request could not be built or sent at all.
type RequestSetupError struct {
	Message string
	Err     error
}

func (e *RequestSetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RequestSetupError) Unwrap() error { return e.Err }

// UserMessage turns a request error into the text shown to the user.
//
// Priority: the server's structured message, then [NoResponseMessage] when the request never got an answer,
// then the raw error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := httpErr.Message(); msg != "" {
			return msg
		}
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return NoResponseMessage
	}

	return err.Error()
}

// LoginMessage renders a failed login the way the login screen reports it.
func LoginMessage(err error) string {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		if msg := httpErr.Message(); msg != "" {
			return "Login failed: " + msg
		}
		return "Login failed: " + http.StatusText(httpErr.Status)
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "Login failed: No response from server. Please try again."
	}

	return "Login failed: " + err.Error()
}
