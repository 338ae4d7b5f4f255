package shortcut

import (
	"embed"
)

// Defaults contains the embedded default shortcut definitions. Users can
// override or extend these via ~/.config/sawsh/shortcuts.yaml.
//
//go:embed data/*.yaml
var Defaults embed.FS
