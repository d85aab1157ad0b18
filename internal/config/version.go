package config

// Version is the speedrun binary version.
// Set at build time via: -ldflags "-X github.com/persistorai/speedrun/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
