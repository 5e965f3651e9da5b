package version

import "fmt"

// Populated at build time with -ldflags "-X ..."
var (
	Version = "unknown"
	Commit  = "unknown"
)

var FullVersion = fmt.Sprintf("%s-%s", Version, Commit)
