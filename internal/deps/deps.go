// Package deps reports the availability of the external tools the
// translation pass shells out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"bidsprep/internal/config"
)

// Requirement defines an external binary the pipeline relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a single requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// For lists the requirements implied by the configuration. Only the
// converter binary is required; everything else bidsprep does is native.
func For(cfg *config.Config) []Requirement {
	return []Requirement{
		{
			Name:        "converter",
			Command:     cfg.Converter.Binary,
			Description: "DICOM to NIfTI converter invoked during the translation pass",
		},
	}
}

// CheckBinaries evaluates the provided requirements against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
		} else if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
		} else {
			status.Available = true
		}
		results = append(results, status)
	}
	return results
}

// FirstMissing returns the first required binary that is unavailable, or nil.
func FirstMissing(statuses []Status) *Status {
	for i := range statuses {
		if !statuses[i].Optional && !statuses[i].Available {
			return &statuses[i]
		}
	}
	return nil
}
