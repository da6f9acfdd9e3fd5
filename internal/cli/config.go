package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config keys. Each may come from a flag of the same name, a QPLAN_<KEY>
// environment variable, or the config file, in that order of precedence.
const (
	keySchema = "schema"
	keyDB     = "db"
)

const envPrefix = "QPLAN"

// loadConfig initializes the settings store once.
func (o *RootOptions) loadConfig() error {
	if o.config != nil {
		return nil
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if o.ConfigFile != "" {
		v.SetConfigFile(o.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	o.config = v
	return nil
}

// setting resolves key for cmd, binding the command's flag of the same
// name so an explicit flag wins over environment and config file.
func (o *RootOptions) setting(cmd *cobra.Command, key string) (string, error) {
	if err := o.loadConfig(); err != nil {
		return "", err
	}
	if f := cmd.Flags().Lookup(key); f != nil {
		if err := o.config.BindPFlag(key, f); err != nil {
			return "", fmt.Errorf("bind flag %s: %w", key, err)
		}
	}
	return o.config.GetString(key), nil
}

// requireSetting is setting for values a command cannot run without.
func (o *RootOptions) requireSetting(cmd *cobra.Command, key string) (string, error) {
	val, err := o.setting(cmd, key)
	if err != nil {
		return "", NewExitError(ExitCommandError, err.Error())
	}
	if val == "" {
		return "", NewExitError(ExitCommandError,
			fmt.Sprintf("--%s is required (or set %s_%s)", key, envPrefix, strings.ToUpper(key)))
	}
	return val, nil
}
