package internal

// Build-time parameters set via -ldflags
var (
	Version = "unknown"
	Commit  = "unknown"
	Built   = "unknown"
)
