package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement defines an external program a pipeline stage relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	// Resolved is the absolute path exec.LookPath found.
	Resolved string
	Detail   string
}

// CheckBinaries evaluates the provided requirements and reports availability.
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
			results = append(results, status)
			continue
		}
		resolved, err := exec.LookPath(cmd)
		if err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Resolved = resolved
		results = append(results, status)
	}
	return results
}

// Binary is the program an invocation launches, named by the stages using it.
type Binary struct {
	Command string
	Stages  []string
}

// Requirements turns launched programs into requirements, merging stages that
// share a program so each is looked up once.
func Requirements(binaries []Binary) []Requirement {
	order := make([]string, 0, len(binaries))
	stages := make(map[string][]string, len(binaries))
	for _, b := range binaries {
		cmd := strings.TrimSpace(b.Command)
		if _, seen := stages[cmd]; !seen {
			order = append(order, cmd)
		}
		stages[cmd] = append(stages[cmd], b.Stages...)
	}
	reqs := make([]Requirement, 0, len(order))
	for _, cmd := range order {
		reqs = append(reqs, Requirement{
			Name:        cmd,
			Command:     cmd,
			Description: "used by " + strings.Join(stages[cmd], ", "),
		})
	}
	return reqs
}
