// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Mission timeline view, event journal, Prometheus metrics, headless snapshots
// 0.2.0 - Free-look camera with drag momentum, mission files via viper
// 0.1.0 - Initial release: spline flight, autopilot camera, terminal renderer
