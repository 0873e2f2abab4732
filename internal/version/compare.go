package version

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// CheckConfigCompatibility reports whether a config written for configVersion
// can be run by an engine at engineVersion.
//
// Rules:
//   - "main" on either side skips the check
//   - an empty config version is accepted and treated as the engine version
//   - major versions must match
//   - the config may not require a newer minor version than the engine has
//
// Examples:
//   - Engine 1.2.0, Config 1.2.7 -> OK
//   - Engine 1.3.0, Config 1.2.0 -> OK
//   - Engine 1.2.0, Config 1.3.0 -> ERROR
//   - Engine 2.0.0, Config 1.2.0 -> ERROR
func CheckConfigCompatibility(engineVersion, configVersion string) error {
	engineVersion = strings.TrimPrefix(engineVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if configVersion == "" || engineVersion == "main" || configVersion == "main" {
		return nil
	}

	engineSemver, err := semver.NewVersion(engineVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid engine version '%s'", engineVersion)
	}

	configSemver, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	if engineSemver.Major() != configSemver.Major() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "major version mismatch: engine is %d.x.x but config requires %d.x.x",
			engineSemver.Major(), configSemver.Major())
	}

	if configSemver.Minor() > engineSemver.Minor() {
		return errors.Newf(errors.ErrCodeVersionMismatch, "config requires %d.%d.x but engine is only %d.%d.x",
			configSemver.Major(), configSemver.Minor(),
			engineSemver.Major(), engineSemver.Minor())
	}

	return nil
}
