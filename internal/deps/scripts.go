package deps

import (
	"fmt"
	"os"
	"strings"
)

// CheckScript reports whether an interpreter script argument exists. Programs
// like "python scripts/05_data_preprocessing.py" fail inside the interpreter
// when the script is missing, which surfaces as an opaque exit status 2;
// checking the file first gives a clearer message.
func CheckScript(stage, path string) Status {
	path = strings.TrimSpace(path)
	status := Status{
		Name:        stage + " script",
		Command:     path,
		Description: "script run by the " + stage + " stage",
	}
	info, err := os.Stat(path)
	switch {
	case err != nil:
		status.Detail = fmt.Sprintf("script %q not found", path)
	case info.IsDir():
		status.Detail = fmt.Sprintf("script %q is a directory", path)
	default:
		status.Available = true
		status.Resolved = path
	}
	return status
}

// IsScriptArgument reports whether an argument names an interpreter script.
func IsScriptArgument(arg string) bool {
	arg = strings.ToLower(strings.TrimSpace(arg))
	return strings.HasSuffix(arg, ".py") || strings.HasSuffix(arg, ".sh")
}
