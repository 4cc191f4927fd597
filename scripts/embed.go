// Package scripts embeds the bundled Risor strategy scripts. Each file is a
// leaf strategy: it reads input and yields its outputs as described in
// internal/runtime.
package scripts

import "embed"

//go:embed *.risor
var FS embed.FS
