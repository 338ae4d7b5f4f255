package grammar

import (
	"embed"
)

// SpecData contains the embedded YAML grammar specification files. These
// are compiled in so the completer works without any external data files.
//
//go:embed data/*.yaml
var SpecData embed.FS
