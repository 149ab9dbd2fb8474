// Package version holds build metadata, overridden at link time with
// -ldflags "-X github.com/ndewijer/Currency-Exchange-Backend/internal/version.Version=...".
package version

// Version is the application version.
var Version = "dev"
