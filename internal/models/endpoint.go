package models

import "time"

// EndpointConfig describes one logical remote model
type EndpointConfig struct {
	Name    string        `json:"name"`
	Label   string        `json:"label"`
	BaseURL string        `json:"base_url"`
	APIKey  string        `json:"-"`
	Timeout time.Duration `json:"timeout"`
}

// Configured reports whether both halves of the URL/key pair are present
func (e EndpointConfig) Configured() bool {
	return e.BaseURL != "" && e.APIKey != ""
}
