// Package buildinfo exposes the version, commit and build time of wssviz.
//
// Values are injected with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/wssviz/internal/infra/buildinfo.Version=v0.3.0 \
//	  -X github.com/yndnr/wssviz/internal/infra/buildinfo.Commit=abc123"
//
// When they are not injected, Get falls back to the module version and VCS
// settings recorded by the Go toolchain.
package buildinfo
