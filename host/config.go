package host

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joecorcoran/talks/domain/entities"
	liberrors "github.com/joecorcoran/talks/domain/errors"
)

// validate is a package-level singleton; creating a validator per call is
// expensive.
var validate = validator.New(validator.WithRequiredStructEnabled())

// LoadConfig resolves the HostConfig Open would use.
func LoadConfig(opts ...Option) (entities.HostConfig, error) {
	oc := defaultOpenConfig()
	for _, opt := range opts {
		opt(&oc)
	}
	return oc.resolve()
}

func (oc *openConfig) resolve() (entities.HostConfig, error) {
	cfg := entities.DefaultHostConfig()

	if oc.configFile != "" {
		data, err := os.ReadFile(oc.configFile) //nolint:gosec // G304: path is operator configuration
		if err != nil {
			return cfg, &liberrors.ConfigError{Err: fmt.Errorf("read %s: %w", oc.configFile, err)}
		}
		cfg, err = oc.parser.Parse(data, cfg)
		if err != nil {
			return cfg, &liberrors.ConfigError{Err: err}
		}
	}

	if !oc.skipEnv {
		envOpts := env.Options{Prefix: EnvPrefix}
		if oc.environ != nil {
			envOpts.Environment = oc.environ
		}
		if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
			return cfg, &liberrors.ConfigError{Err: fmt.Errorf("parse env: %w", err)}
		}
	}

	for _, fn := range oc.overrides {
		fn(&cfg)
	}

	if err := ValidateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ValidateConfig checks cfg against its validation tags. The first failing
// field is reported as a ConfigError.
func ValidateConfig(cfg entities.HostConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return toConfigError(err)
	}
	return nil
}

// ValidateDescriptor checks a descriptor reported by a library.
func ValidateDescriptor(d *entities.Descriptor) error {
	if d == nil {
		return &liberrors.ConfigError{Field: "Descriptor", Err: errors.New("library returned no descriptor")}
	}
	if err := validate.Struct(d); err != nil {
		return toConfigError(err)
	}
	return nil
}

func toConfigError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return &liberrors.ConfigError{
			Field: fe.Namespace(),
			Err:   fmt.Errorf("failed on '%s' (value %v)", fe.Tag(), fe.Value()),
		}
	}
	return &liberrors.ConfigError{Err: err}
}
