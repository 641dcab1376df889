// Package version carries the library version reported in the User-Agent
// header and by "ribbit version".
//
// Version, commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/ribbitkit/version.Version=1.6.0"
package version
