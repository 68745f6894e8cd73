package bootstrap

import (
	"github.com/kbukum/diagramkit/config"
)

// Config is the constraint for application configuration types. Any struct
// embedding config.ServiceConfig satisfies it through promoted methods, as
// long as it does not shadow ApplyDefaults and Validate without calling the
// embedded versions.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
