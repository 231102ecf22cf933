package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// APIError 上游返回非 2xx，或连接失败（StatusCode 为 0）
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Hint       string
	Err        error
}

func (e *APIError) Error() string {
	if e.Hint != "" {
		return e.Hint
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s API request failed: %s", e.Provider, e.Message)
	}
	return fmt.Sprintf("%s API error %d: %s", e.Provider, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }

func (c *Client) mapHTTPError(status int, body []byte) *APIError {
	msg := readErrorMessage(body)
	apiErr := &APIError{Provider: c.cfg.Provider, StatusCode: status, Message: msg}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		apiErr.Hint = fmt.Sprintf("%s API authentication failed. Please check your %s.", c.cfg.Provider, c.cfg.APIKeyEnv)
	case http.StatusNotFound:
		apiErr.Hint = fmt.Sprintf("%s model not found. Please check your %s configuration.", c.cfg.Provider, c.cfg.ModelEnv)
	}
	return apiErr
}

func (c *Client) connectionError(err error) *APIError {
	return &APIError{
		Provider: c.cfg.Provider,
		Message:  err.Error(),
		Err:      err,
		Hint:     fmt.Sprintf("Failed to connect to %s API. Please check your network connection and API configuration.", c.cfg.Provider),
	}
}

func readErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil {
		if eb.Error != nil && eb.Error.Message != "" {
			return eb.Error.Message
		}
		if eb.Message != "" {
			return eb.Message
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}
