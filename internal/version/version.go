package version

// Version is the engine version config files are checked against.
// Set at build time with
// -ldflags "-X github.com/rxtech-lab/argo-backtest/internal/version.Version=1.2.3".
// "main" marks a development build.
var Version = "v1.0.0"

func GetVersion() string {
	return Version
}
