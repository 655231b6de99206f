package cli

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the process-level environment settings.
const EnvPrefix = "HF"

// Settings are the process-level settings read from the environment.
type Settings struct {
	// ProjectHome overrides the working directory (HF_PROJECT_HOME).
	ProjectHome string
	// AppHome overrides the executable's directory (HF_APP_HOME).
	AppHome string
	// NoColor disables colors (HF_NO_COLOR or NO_COLOR).
	NoColor bool
	// Timeout overrides command.timeout in milliseconds (HF_TIMEOUT).
	// Negative means unset.
	Timeout int
}

// newEnv returns a viper instance bound to the HF_* variables.
func newEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("no_color", EnvPrefix+"_NO_COLOR", "NO_COLOR")
	v.SetDefault("timeout", -1)
	return v
}

// LoadSettings reads the process-level settings from v.
func LoadSettings(v *viper.Viper) Settings {
	return Settings{
		ProjectHome: v.GetString("project_home"),
		AppHome:     v.GetString("app_home"),
		NoColor:     v.GetString("no_color") != "",
		Timeout:     v.GetInt("timeout"),
	}
}
