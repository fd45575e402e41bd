package preflight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"pkaprep/internal/deps"
	"pkaprep/internal/pipeline"
)

// CheckDirectoryAccess verifies that the directory exists and can be listed,
// and when write is set that files can be created in it.
func CheckDirectoryAccess(name, path string, write bool) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	mode := uint32(unix.R_OK | unix.X_OK)
	label := "read ok"
	if write {
		mode |= unix.W_OK
		label = "read/write ok"
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, label)}
}

// CheckStateDirectory passes when the state directory is writable or can be
// created under a writable parent.
func CheckStateDirectory(path string) Result {
	const name = "State directory"
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path, true)
	} else if !errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	parent := filepath.Dir(path)
	for {
		if _, err := os.Stat(parent); err == nil {
			break
		}
		next := filepath.Dir(parent)
		if next == parent {
			break
		}
		parent = next
	}
	if err := unix.Access(parent, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, parent, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckFile verifies that a stage input exists and is readable.
func CheckFile(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d bytes)", path, info.Size())}
}

// CheckStageBinaries looks up every program the plan launches.
func CheckStageBinaries(plan pipeline.Plan) []Result {
	binaries := make([]deps.Binary, 0, len(plan.Invocations))
	for _, inv := range plan.Invocations {
		binaries = append(binaries, deps.Binary{Command: inv.Binary, Stages: []string{inv.Stage}})
	}
	statuses := deps.CheckBinaries(deps.Requirements(binaries))
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		results = append(results, fromStatus("Program "+status.Name, status))
	}
	return results
}

// CheckStageScripts verifies interpreter scripts named as the first program
// argument, such as scripts/05_data_preprocessing.py.
func CheckStageScripts(plan pipeline.Plan) []Result {
	var results []Result
	for _, inv := range plan.Invocations {
		if len(inv.Args) == 0 || !deps.IsScriptArgument(inv.Args[0]) {
			continue
		}
		status := deps.CheckScript(inv.Stage, inv.Args[0])
		results = append(results, fromStatus("Script for "+inv.Stage, status))
	}
	return results
}

func fromStatus(name string, status deps.Status) Result {
	result := Result{Name: name, Passed: status.Available, Optional: status.Optional}
	switch {
	case !status.Available:
		result.Detail = status.Detail
	case status.Description != "":
		result.Detail = fmt.Sprintf("%s (%s)", status.Resolved, status.Description)
	default:
		result.Detail = status.Resolved
	}
	return result
}
