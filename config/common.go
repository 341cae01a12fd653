package config

import (
	"github.com/google/wire"
)

var (
	// ConfigInjector sets up configuration related bindings
	ConfigInjector = wire.NewSet(GetConfigurationFromCLIConfig,
		wire.Bind(new(RedisConfig), new(*Config)),
		wire.Bind(new(HTTPConfig), new(*Config)),
		wire.Bind(new(LogConfig), new(*Config)),
		wire.Bind(new(JobQueueConfig), new(*Config)),
		wire.Bind(new(SchedulingConfig), new(*Config)),
		wire.Bind(new(BreakerConfig), new(*Config)),
		wire.Bind(new(BotServiceConfig), new(*Config)),
		wire.Bind(new(HealthCheckConfig), new(*Config)),
		wire.Bind(new(ArchiveConfig), new(*Config)))
)
