package config

import (
	"time"
)

// BotServiceConfig represents connection configuration of the external bot HTTP service
type BotServiceConfig interface {
	// GetBotUpdateEndpoint returns the URL accepting fixture update posts
	GetBotUpdateEndpoint() string
	// GetBotConnectionTimeout returns the per call HTTP timeout
	GetBotConnectionTimeout() time.Duration
	// GetBotToken returns the shared secret sent with each call
	GetBotToken() string
}

// GetBotUpdateEndpoint returns the URL accepting fixture update posts
func (config *Config) GetBotUpdateEndpoint() string {
	return config.botUpdateEndpoint
}

// GetBotConnectionTimeout returns the per call HTTP timeout
func (config *Config) GetBotConnectionTimeout() time.Duration {
	if config.botConnectionTimeout == 0 {
		return 30 * time.Second
	}
	return config.botConnectionTimeout
}

// GetBotToken returns the shared secret sent with each call
func (config *Config) GetBotToken() string {
	return config.botToken
}
