package commands

import (
	"strings"

	"github.com/goliatone/go-directive/internal/logging"
	"github.com/goliatone/go-directive/pkg/interfaces"
)

// CommandLogger returns the logger for one command family, tagged with the
// command component.
func CommandLogger(provider interfaces.LoggerProvider, family string) interfaces.Logger {
	name := strings.TrimSpace(family)
	if name == "" {
		return logging.CommandsLogger(provider)
	}
	logger := logging.ModuleLogger(provider, "directive.commands."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_family": name,
	})
}
