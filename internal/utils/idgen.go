package utils

import (
	"fmt"
	"time"
)

// Record ids are time-derived, matching the id scheme the rest of the
// business already uses: prefix_unixmillis.

// GenerateInstallID returns a new install id, e.g. install_1717171717171.
func GenerateInstallID() string {
	return fmt.Sprintf("install_%d", time.Now().UnixMilli())
}

// GenerateTechnicianID returns a new technician id, e.g. tech_1717171717171.
func GenerateTechnicianID() string {
	return fmt.Sprintf("tech_%d", time.Now().UnixMilli())
}
