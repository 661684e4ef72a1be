package version

import "fmt"

const (
	majorVersion = "0"
	minorVersion = "1"
	patchVersion = "0"
)

// Version returns the runtime's dotted version string.
func Version() string {
	return fmt.Sprintf("%s.%s.%s", majorVersion, minorVersion, patchVersion)
}

// Details returns the individual (major, minor, patch) components.
func Details() (string, string, string) {
	return majorVersion, minorVersion, patchVersion
}
