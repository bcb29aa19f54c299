// Package build records version information stamped at build time.
package build

// Version is overridden by the release pipeline via -ldflags.
var Version = "dev"
