package directive

import (
	"github.com/goliatone/go-directive/internal/lint"
	"github.com/goliatone/go-directive/internal/runtimeconfig"
)

var (
	ErrConfigInvalid               = runtimeconfig.ErrConfigInvalid
	ErrLoggingProviderUnknown      = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid         = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid        = runtimeconfig.ErrLoggingFormatInvalid
	ErrLegacyHostWithoutExtensions = runtimeconfig.ErrLegacyHostWithoutExtensions
	ErrInvalidRule                 = lint.ErrInvalidRule
)

type (
	Config        = runtimeconfig.Config
	GrammarConfig = runtimeconfig.GrammarConfig
	HostConfig    = runtimeconfig.HostConfig
	FilesConfig   = runtimeconfig.FilesConfig
	RenderConfig  = runtimeconfig.RenderConfig
	LoggingConfig = runtimeconfig.LoggingConfig
	LintConfig    = lint.Config
	LintRule      = lint.Rule
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML configuration file over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
