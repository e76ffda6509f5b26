package directivecmd

import (
	"path"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	formatMessageType  = "directive.format"
	renderMessageType  = "directive.render"
	inspectMessageType = "directive.inspect"
	checkMessageType   = "directive.check"
)

// FormatCommand rewrites Markdown files in canonical directive form.
type FormatCommand struct {
	// Root is the directory paths are resolved against.
	Root string `json:"root"`
	// Paths lists files relative to Root. Empty discovers files with the
	// configured include and exclude patterns.
	Paths []string `json:"paths,omitempty"`
	// Write replaces files whose formatted form differs.
	Write bool `json:"write,omitempty"`
	// Check lists files whose formatted form differs and fails if any do.
	Check bool `json:"check,omitempty"`
	// Diff prints a unified diff per changed file.
	Diff bool `json:"diff,omitempty"`
}

// Type implements command.Message.
func (FormatCommand) Type() string { return formatMessageType }

// Validate ensures the root is set and the output modes do not conflict.
func (cmd FormatCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Root, validation.Required),
		validation.Field(&cmd.Paths, validation.Each(validation.By(relativePath))),
		validation.Field(&cmd.Check, validation.When(cmd.Write,
			validation.Empty.Error("check cannot be combined with write"),
		)),
	)
}

// RenderCommand renders one file to HTML.
type RenderCommand struct {
	Root string `json:"root"`
	Path string `json:"path"`
	// Output is the destination file. Empty writes to the command output.
	Output string `json:"output,omitempty"`
}

// Type implements command.Message.
func (RenderCommand) Type() string { return renderMessageType }

// Validate ensures a single source file is selected.
func (cmd RenderCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Root, validation.Required),
		validation.Field(&cmd.Path, validation.Required, validation.By(relativePath)),
	)
}

// InspectCommand prints the parsed tree or token stream of one file as
// JSON.
type InspectCommand struct {
	Root string `json:"root"`
	Path string `json:"path"`
	// Tokens prints the directive token stream instead of the tree.
	Tokens bool `json:"tokens,omitempty"`
	// Positions includes directive spans in the tree.
	Positions bool `json:"positions,omitempty"`
}

// Type implements command.Message.
func (InspectCommand) Type() string { return inspectMessageType }

// Validate ensures a single source file is selected.
func (cmd InspectCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Root, validation.Required),
		validation.Field(&cmd.Path, validation.Required, validation.By(relativePath)),
	)
}

// CheckCommand lints directives against the configured rules.
type CheckCommand struct {
	Root  string   `json:"root"`
	Paths []string `json:"paths,omitempty"`
}

// Type implements command.Message.
func (CheckCommand) Type() string { return checkMessageType }

// Validate ensures the root is set.
func (cmd CheckCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Root, validation.Required),
		validation.Field(&cmd.Paths, validation.Each(validation.By(relativePath))),
	)
}

func relativePath(value any) error {
	p, _ := value.(string)
	if strings.TrimSpace(p) == "" {
		return validation.NewError("directive.path_required", "path is required")
	}
	if filepath.IsAbs(p) {
		return validation.NewError("directive.path_relative", "path must be relative to root")
	}
	if clean := cleanPath(p); clean == ".." || strings.HasPrefix(clean, "../") {
		return validation.NewError("directive.path_outside_root", "path must stay inside root")
	}
	return nil
}

func cleanPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
