package config

import (
	"github.com/yndnr/playgate/internal/infra/confloader"
)

// Load builds a ServerConfig from defaults and the loader sources. The
// environment bindings are always applied; opts add a config file or a
// .env file.
func Load(opts ...confloader.Option) (*ServerConfig, error) {
	cfg := Default()

	all := append([]confloader.Option{confloader.WithEnvBindings(EnvBindings())}, opts...)
	loader := confloader.NewLoader(all...)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
