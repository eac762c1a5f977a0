package session

import (
	"bytes"
	"encoding/json"
	"strings"
)

// loginResponse covers every shape the backend has used for the login token:
//
//	{"token": {"access_token": "..."}}
//	{"access_token": "..."}
//	{"token": "..."}
type loginResponse struct {
	Token       json.RawMessage `json:"token,omitempty"`
	AccessToken string          `json:"access_token,omitempty"`
}

type nestedToken struct {
	AccessToken string `json:"access_token"`
}

// extractToken finds the bearer token in a login response body
func extractToken(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return "", ErrTokenMissing
	}
	var resp loginResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", ErrTokenMissing
	}

	if len(resp.Token) > 0 {
		var nested nestedToken
		if err := json.Unmarshal(resp.Token, &nested); err == nil && strings.TrimSpace(nested.AccessToken) != "" {
			return nested.AccessToken, nil
		}
	}
	if strings.TrimSpace(resp.AccessToken) != "" {
		return resp.AccessToken, nil
	}
	if len(resp.Token) > 0 {
		var flat string
		if err := json.Unmarshal(resp.Token, &flat); err == nil && strings.TrimSpace(flat) != "" {
			return flat, nil
		}
	}
	return "", ErrTokenMissing
}
