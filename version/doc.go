// Package version reports build information for diagramd.
//
// Values are injected at build time:
//
//	go build -ldflags "-X github.com/kbukum/diagramkit/version.Version=1.2.0" ./cmd/diagramd
//
// Missing values fall back to the module build info embedded by the Go
// toolchain.
package version
