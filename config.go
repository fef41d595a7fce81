package dooble

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the contents of an optional dooble.toml project file, loaded
// with the same toml.Unmarshal idiom the teacher repo uses for its own
// world and save file formats.
type Config struct {
	// Sources is the list of dooble source files to compile, in order.
	Sources []string `toml:"sources"`

	// Output is the path the rendered C source is written to. An empty
	// value means stdout.
	Output string `toml:"output"`

	// Backend names the target backend to use. "c" is the only one built
	// in (spec.md §6.3).
	Backend string `toml:"backend"`

	// WarningsAsErrors, if true, makes a Warning-severity diagnostic (e.g. a
	// local variable shadowing an outer declaration) fail the compile for
	// the purposes of the CLI's exit code, the same as an Error-severity
	// one already does. Overridable with -w/--warnings-as-errors.
	WarningsAsErrors bool `toml:"warnings_as_errors"`
}

// LoadConfig reads and parses a dooble.toml project file at path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Backend == "" {
		cfg.Backend = "c"
	}
	return &cfg, nil
}
