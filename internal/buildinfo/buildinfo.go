package buildinfo

const (
	ServiceName = "NeoChat Relay"
	Version     = "1.1.0"
)

// Set via -ldflags at build time
var (
	BuildTime  = "unknown" // when the binary was compiled
	CommitHash = "dev"     // short git commit hash
)

// Banner is the plain-text body served for unknown routes.
func Banner() string {
	return "NeoChat Relay v1.1"
}
