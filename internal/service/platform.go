package service

import (
	"fmt"
	"runtime"
)

// PlatformNotSupportedError reports that no tools service build exists for
// the host platform.
type PlatformNotSupportedError struct {
	OS   string
	Arch string
}

func (e *PlatformNotSupportedError) Error() string {
	return fmt.Sprintf("no tools service build for platform %s/%s", e.OS, e.Arch)
}

// ServiceBinaryName returns the tools service executable name for the
// current platform.
func ServiceBinaryName() (string, error) {
	return binaryNameFor(runtime.GOOS, runtime.GOARCH)
}

func binaryNameFor(goos, goarch string) (string, error) {
	switch goos {
	case "linux", "darwin", "windows":
	default:
		return "", &PlatformNotSupportedError{OS: goos, Arch: goarch}
	}

	switch goarch {
	case "amd64", "arm64":
	default:
		return "", &PlatformNotSupportedError{OS: goos, Arch: goarch}
	}

	if goos == "windows" {
		return "sqltoolsservice.exe", nil
	}
	return "sqltoolsservice", nil
}
