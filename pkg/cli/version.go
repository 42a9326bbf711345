package cli

// Version is the running build's semantic version, checked against
// GitHub releases by CheckForUpdates. Override at build time with
// -ldflags "-X github.com/orvendai/resynth/pkg/cli.Version=1.2.3".
var Version = "0.1.0"
