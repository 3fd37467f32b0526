package woocommerce

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// RemoteStoreError is returned for every failed call to the store: non-2xx
// responses carry the HTTP status and the store's error code and message,
// transport failures (including timeouts) have StatusCode 0 and wrap the cause.
type RemoteStoreError struct {
	Method     string
	Path       string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *RemoteStoreError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: request failed: %v", e.Method, e.Path, e.Err)
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		return fmt.Sprintf("%s %s: API request failed: %d %s - %s", e.Method, e.Path, e.StatusCode, e.Code, msg)
	}
	return fmt.Sprintf("%s %s: API request failed: %d - %s", e.Method, e.Path, e.StatusCode, msg)
}

func (e *RemoteStoreError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the store.
func IsNotFound(err error) bool {
	var rse *RemoteStoreError
	return errors.As(err, &rse) && rse.StatusCode == http.StatusNotFound
}

// apiError is the body WooCommerce sends with error responses.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
	} `json:"data"`
}

const maxErrorBody = 512

func newStatusError(method, path string, status int, body []byte) *RemoteStoreError {
	rse := &RemoteStoreError{Method: method, Path: path, StatusCode: status}

	var ae apiError
	if err := json.Unmarshal(body, &ae); err == nil && (ae.Code != "" || ae.Message != "") {
		rse.Code = ae.Code
		rse.Message = ae.Message
		return rse
	}

	msg := strings.TrimSpace(string(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody]
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	rse.Message = msg
	return rse
}
