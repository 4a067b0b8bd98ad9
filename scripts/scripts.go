// Package scripts embeds the built-in recursion-policy scripts.
package scripts

import "embed"

// FS holds every script under policy/.
//
//go:embed policy/*.risor
var FS embed.FS
