package launcher_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"pkaprep/internal/history"
	"pkaprep/internal/launcher"
	"pkaprep/internal/pipeline"
	"pkaprep/internal/testsupport"
)

type stubExecutor struct {
	calls [][]string
	fail  map[string]error
}

func (s *stubExecutor) Run(_ context.Context, binary string, args []string, stdout, _ io.Writer) error {
	argv := append([]string{binary}, args...)
	s.calls = append(s.calls, argv)
	fmt.Fprintf(stdout, "ran %s\n", args[0])
	if err, ok := s.fail[args[0]]; ok {
		return err
	}
	return nil
}

func defaultPlan(t *testing.T) pipeline.Plan {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Dataset.DataPath = "/data/shared/projects/pkasolver-data"
	cfg.Paths.ScriptsDir = "scripts"
	plan, err := pipeline.BuildPlan(cfg, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	return plan
}

func shellPlan(stages ...[2]string) pipeline.Plan {
	plan := pipeline.Plan{Version: "1", DataPath: "/d"}
	for _, stage := range stages {
		plan.Invocations = append(plan.Invocations, pipeline.Invocation{
			Stage:  stage[0],
			Binary: "sh",
			Args:   []string{"-c", stage[1]},
		})
	}
	return plan
}

func TestRunIssuesSameArgvEachTime(t *testing.T) {
	plan := defaultPlan(t)
	stub := &stubExecutor{}
	var out bytes.Buffer
	l := launcher.New(launcher.WithExecutor(stub), launcher.WithOutput(&out, io.Discard))

	for i := 0; i < 2; i++ {
		result, err := l.Run(context.Background(), plan)
		if err != nil {
			t.Fatalf("run %d returned error: %v", i, err)
		}
		if len(result.Steps) != 1 || result.Steps[0].Status != history.StatusSucceeded {
			t.Fatalf("unexpected result: %+v", result)
		}
		if result.RunID == "" {
			t.Fatal("expected run id")
		}
	}

	want := []string{
		"python", "scripts/05_data_preprocessing.py",
		"--input", "/data/shared/projects/pkasolver-data/04_split_mols_v1.sdf",
		"--output", "/data/shared/projects/pkasolver-data/05_chembl_pretrain_data_v1.pkl",
	}
	if diff := cmp.Diff([][]string{want, want}, stub.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
	if strings.Count(out.String(), "ran scripts/05_data_preprocessing.py") != 2 {
		t.Fatalf("expected forwarded output twice, got %q", out.String())
	}
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStages("convert-mae-to-sdf", "split", "preprocess"))
	plan, err := pipeline.BuildPlan(cfg, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	splitScript := cfg.Paths.ScriptsDir + "/04_split_mols.py"
	stub := &stubExecutor{fail: map[string]error{splitScript: errors.New("boom")}}
	l := launcher.New(launcher.WithExecutor(stub), launcher.WithOutput(io.Discard, io.Discard))

	result, err := l.Run(context.Background(), plan)
	if err == nil {
		t.Fatal("expected error")
	}
	var stageErr *launcher.StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %T", err)
	}
	if stageErr.Stage != "split" || stageErr.Index != 1 || stageErr.ExitCode != 1 {
		t.Fatalf("unexpected stage error: %+v", stageErr)
	}
	if len(stub.calls) != 2 {
		t.Fatalf("expected preprocess to be skipped, calls: %v", stub.calls)
	}
	if len(result.Steps) != 2 || result.Steps[1].Status != history.StatusFailed {
		t.Fatalf("unexpected steps: %+v", result.Steps)
	}
	if launcher.ExitCode(err) != 1 {
		t.Fatalf("expected exit 1, got %d", launcher.ExitCode(err))
	}
}

func TestRunPropagatesChildExitCode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	plan := shellPlan([2]string{"split", "exit 0"}, [2]string{"preprocess", "echo failing >&2; exit 3"}, [2]string{"never", "exit 0"})

	var stderr bytes.Buffer
	l := launcher.New(
		launcher.WithRecorder(store),
		launcher.WithOutput(io.Discard, &stderr),
		launcher.WithRunID("run-exit"),
	)
	result, err := l.Run(context.Background(), plan)
	if launcher.ExitCode(err) != 3 {
		t.Fatalf("expected exit 3, got %d (%v)", launcher.ExitCode(err), err)
	}
	if !launcher.IsChildExit(err) {
		t.Fatalf("expected child exit error, got %v", err)
	}
	if len(result.Steps) != 2 {
		t.Fatalf("expected two started steps, got %+v", result.Steps)
	}
	if !strings.Contains(stderr.String(), "failing") {
		t.Fatalf("expected child stderr forwarded, got %q", stderr.String())
	}

	records, err := store.ByRun(context.Background(), "run-exit")
	if err != nil {
		t.Fatalf("ByRun: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected two history records, got %d", len(records))
	}
	if records[0].Status != history.StatusSucceeded || *records[0].ExitCode != 0 {
		t.Fatalf("unexpected first record: %+v", records[0])
	}
	if records[1].Status != history.StatusFailed || records[1].ExitCode == nil || *records[1].ExitCode != 3 {
		t.Fatalf("unexpected failed record: %+v", records[1])
	}
}

func TestRunMissingProgramExits127(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	plan := pipeline.Plan{Invocations: []pipeline.Invocation{{
		Stage:  "preprocess",
		Binary: "pkaprep-test-missing-program",
		Args:   []string{"--output", "/d/out.pkl"},
	}}}

	l := launcher.New(launcher.WithRecorder(store), launcher.WithRunID("run-missing"))
	result, err := l.Run(context.Background(), plan)
	if got := launcher.ExitCode(err); got != launcher.ExitNotFound {
		t.Fatalf("expected 127, got %d (%v)", got, err)
	}
	if launcher.IsChildExit(err) {
		t.Fatal("missing program should not look like a child exit")
	}
	if result.Steps[0].Status != history.StatusMissingProgram {
		t.Fatalf("unexpected status %q", result.Steps[0].Status)
	}
	records, err := store.ByRun(context.Background(), "run-missing")
	if err != nil {
		t.Fatalf("ByRun: %v", err)
	}
	if records[0].ExitCode != nil {
		t.Fatalf("expected no recorded exit code, got %d", *records[0].ExitCode)
	}
}

func TestRunMissingInputFailsThroughChild(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithProgram("preprocess", "sh", "-c", `test -f "$2" && cp "$2" "$4"`, "preprocess"),
	)
	plan, err := pipeline.BuildPlan(cfg, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	l := launcher.New(launcher.WithOutput(io.Discard, io.Discard))

	if _, err := l.Run(context.Background(), plan); launcher.ExitCode(err) == 0 {
		t.Fatal("expected non-zero exit when the input file is missing")
	}

	testsupport.WriteFile(t, pipeline.InputPath(cfg.Dataset.DataPath, cfg.Dataset.Version), 16)
	if _, err := l.Run(context.Background(), plan); err != nil {
		t.Fatalf("expected success once input exists, got %v", err)
	}
	if _, err := os.Stat(pipeline.OutputPath(cfg.Dataset.DataPath, cfg.Dataset.Version)); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestRunWithStubbedInterpreter(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	plan, err := pipeline.BuildPlan(cfg, nil)
	if err != nil {
		t.Fatalf("BuildPlan: %v", err)
	}
	if _, err := launcher.New(launcher.WithOutput(io.Discard, io.Discard)).Run(context.Background(), plan); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	output := pipeline.OutputPath(cfg.Dataset.DataPath, cfg.Dataset.Version)
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected stub to write %s: %v", filepath.Base(output), err)
	}
}

func TestRunStageTimeout(t *testing.T) {
	plan := shellPlan([2]string{"predict", "exec sleep 5"})
	l := launcher.New(launcher.WithStageTimeout(100*time.Millisecond), launcher.WithOutput(io.Discard, io.Discard))

	result, err := l.Run(context.Background(), plan)
	if got := launcher.ExitCode(err); got != launcher.ExitTimeout {
		t.Fatalf("expected timeout exit, got %d (%v)", got, err)
	}
	if result.Steps[0].Status != history.StatusTimedOut {
		t.Fatalf("unexpected status %q", result.Steps[0].Status)
	}
}

func TestRunCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stub := &stubExecutor{}
	l := launcher.New(launcher.WithExecutor(stub))

	_, err := l.Run(ctx, defaultPlan(t))
	if launcher.ExitCode(err) != launcher.ExitInterrupted {
		t.Fatalf("expected interrupted exit, got %d", launcher.ExitCode(err))
	}
	if len(stub.calls) != 0 {
		t.Fatalf("expected no calls, got %v", stub.calls)
	}
}

// lockedBuffer lets the test read output while the child is still writing.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunForwardsCarriageReturnOutputWhileRunning(t *testing.T) {
	plan := shellPlan([2]string{"preprocess", "printf '10%%\\r' >&2; sleep 2; printf '100%%\\n' >&2"})
	var stderr lockedBuffer

	done := make(chan error, 1)
	go func() {
		_, err := launcher.New(launcher.WithOutput(io.Discard, &stderr)).Run(context.Background(), plan)
		done <- err
	}()

	deadline := time.Now().Add(1500 * time.Millisecond)
	for stderr.String() != "10%\r" {
		if time.Now().After(deadline) {
			t.Fatalf("progress output not forwarded while the stage runs, got %q", stderr.String())
		}
		time.Sleep(20 * time.Millisecond)
	}

	if err := <-done; err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := stderr.String(); got != "10%\r100%\n" {
		t.Fatalf("unexpected forwarded output %q", got)
	}
}

func TestRunForwardsOutputVerbatim(t *testing.T) {
	plan := shellPlan([2]string{"split", "printf 'one\\ntwo'"})
	var out bytes.Buffer
	if _, err := launcher.New(launcher.WithOutput(&out, io.Discard)).Run(context.Background(), plan); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if out.String() != "one\ntwo" {
		t.Fatalf("unexpected forwarded output %q", out.String())
	}
}
