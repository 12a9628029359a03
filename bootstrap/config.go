package bootstrap

import "github.com/kbukum/kvbridge/config"

// Config is what NewApp needs from a configuration type. Embedding
// config.ServiceConfig provides GetServiceConfig; the embedding struct adds
// ApplyDefaults and Validate covering its own sections.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
