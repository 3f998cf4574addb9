package common

import (
	"github.com/ternarybob/banner"
)

// PrintBanner writes the startup banner to stdout.
func PrintBanner(version string) {
	banner.PrintSimple("Jobsieve", version)
}
