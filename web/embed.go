// Package web carries the static dashboard assets served by the serve
// command.
package web

import "embed"

//go:embed static
var Static embed.FS
