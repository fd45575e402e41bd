package logging

import "strings"

// FormatSubject builds the run/stage subject shown in console output. Run
// identifiers are shortened to their first eight characters.
func FormatSubject(runID, stage string) string {
	runID = strings.TrimSpace(runID)
	stage = strings.TrimSpace(stage)
	if len(runID) > 8 {
		runID = runID[:8]
	}
	parts := make([]string, 0, 2)
	if runID != "" {
		parts = append(parts, "run "+runID)
	}
	if stage != "" {
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
