// Package version holds build metadata for the rill CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Banner renders v with its major, minor and patch numbers coloured when
// colored is set. Anything that is not a dotted triple is returned as is.
func Banner(v string, colored bool) string {
	core, suffix := v, ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		core, suffix = v[:i], v[i:]
	}
	parts := strings.Split(core, ".")
	if len(parts) != 3 {
		return v
	}
	paint := []*color.Color{majorColor, minorColor, patchColor}
	for i, part := range parts {
		c := *paint[i]
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(part)
	}
	return strings.Join(parts, ".") + suffix
}
