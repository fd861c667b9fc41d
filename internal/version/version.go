// Package version holds the build version, overridable at link time.
package version

// Version is the application version reported by the system endpoint.
var Version = "1.2.0"
