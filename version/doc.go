// Package version reports build information for the flowview binary.
//
// Values are injected at link time:
//
//	go build -ldflags "-X github.com/kbukum/flowview/version.Version=1.2.0"
//
// When they are absent the VCS stamp recorded by the Go toolchain is used.
package version
