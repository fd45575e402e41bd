package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"pkaprep/internal/history"
	"pkaprep/internal/logging"
	"pkaprep/internal/pipeline"
	"pkaprep/internal/services"
)

// Recorder persists invocation outcomes. *history.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, entry history.Entry) (int64, error)
	Finish(ctx context.Context, id int64, status history.Status, exitCode int, message string) error
}

// Option configures the launcher.
type Option func(*Launcher)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(l *Launcher) {
		if exec != nil {
			l.exec = exec
		}
	}
}

// WithRecorder records every invocation through r.
func WithRecorder(r Recorder) Option {
	return func(l *Launcher) {
		l.recorder = r
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithStageTimeout bounds each invocation. Zero disables the bound.
func WithStageTimeout(d time.Duration) Option {
	return func(l *Launcher) {
		if d > 0 {
			l.stageTimeout = d
		}
	}
}

// WithOutput sets where child stdout and stderr are forwarded.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		if stdout != nil {
			l.stdout = stdout
		}
		if stderr != nil {
			l.stderr = stderr
		}
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(l *Launcher) {
		if id != "" {
			l.newRunID = func() string { return id }
		}
	}
}

// Launcher executes plans.
type Launcher struct {
	exec         Executor
	recorder     Recorder
	logger       *slog.Logger
	stdout       io.Writer
	stderr       io.Writer
	stageTimeout time.Duration
	newRunID     func() string
}

// New constructs a launcher that runs real processes and forwards their
// output to the process streams.
func New(opts ...Option) *Launcher {
	l := &Launcher{
		exec:     commandExecutor{},
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.NewComponentLogger(l.logger, "launcher")
	return l
}

// StepResult describes one finished invocation.
type StepResult struct {
	Stage    string
	Argv     []string
	Status   history.Status
	ExitCode int
	Duration time.Duration
}

// Result summarizes a run. Steps holds every invocation that was started,
// including the failing one.
type Result struct {
	RunID string
	Steps []StepResult
}

// Run executes the plan sequentially and stops at the first failing
// invocation, returning a *StageError for it. Running the same plan again
// issues the same commands again.
func (l *Launcher) Run(ctx context.Context, plan pipeline.Plan) (Result, error) {
	result := Result{RunID: l.newRunID()}
	ctx = services.WithRunID(ctx, result.RunID)
	logger := logging.WithContext(ctx, l.logger)

	total := len(plan.Invocations)
	logger.Info("run started",
		logging.String("version", plan.Version),
		logging.String("data_path", plan.DataPath),
		logging.Strings("stages", plan.Stages()),
		logging.String(logging.FieldEventType, "run_started"),
	)
	runStart := time.Now()

	for idx, inv := range plan.Invocations {
		if err := ctx.Err(); err != nil {
			return result, &StageError{Stage: inv.Stage, Index: idx, ExitCode: ExitInterrupted, Err: err}
		}
		step, err := l.runStep(ctx, idx, total, inv)
		result.Steps = append(result.Steps, step)
		if err != nil {
			return result, &StageError{Stage: inv.Stage, Index: idx, ExitCode: step.ExitCode, Err: err}
		}
	}

	logger.Info("run finished",
		logging.Int("stage_count", total),
		logging.Duration("duration", time.Since(runStart)),
		logging.String(logging.FieldEventType, "run_finished"),
	)
	return result, nil
}

func (l *Launcher) runStep(ctx context.Context, idx, total int, inv pipeline.Invocation) (StepResult, error) {
	ctx = services.WithStage(ctx, inv.Stage)
	logger := logging.WithContext(ctx, l.logger)
	argv := inv.Argv()
	step := StepResult{Stage: inv.Stage, Argv: argv}

	stageCtx := ctx
	if l.stageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, l.stageTimeout)
		defer cancel()
	}

	recordID := l.begin(ctx, logger, inv, argv)

	logger.Info("stage started",
		logging.String("progress", fmt.Sprintf("%d/%d", idx+1, total)),
		logging.String("input", inv.InputPath),
		logging.String("output", inv.OutputPath),
		logging.String(logging.FieldEventType, "stage_started"),
	)
	logger.Debug("stage command", logging.Strings(logging.FieldArgv, argv))

	start := time.Now()
	err := l.exec.Run(stageCtx, inv.Binary, inv.Args, l.stdout, l.stderr)
	step.Duration = time.Since(start)
	err = l.classify(ctx, stageCtx, inv, err)

	step.Status = services.FailureStatus(err)
	step.ExitCode = exitCodeFor(err)
	if err == nil {
		step.ExitCode = 0
	}
	l.finish(ctx, logger, recordID, step.Status, childExitCode(err), err)

	if err != nil {
		logging.ErrorWithContext(logger, "stage failed", "stage_failed",
			logging.String("status", string(step.Status)),
			logging.Int(logging.FieldExitCode, step.ExitCode),
			logging.Duration("duration", step.Duration),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, failureHint(step.Status)),
		)
		return step, err
	}

	logger.Info("stage finished",
		logging.Int(logging.FieldExitCode, 0),
		logging.Duration("duration", step.Duration),
		logging.String(logging.FieldEventType, "stage_finished"),
	)
	return step, nil
}

// classify attaches stage context to an executor error and tags timeouts and
// interruptions so they can be told apart from ordinary child failures.
func (l *Launcher) classify(ctx, stageCtx context.Context, inv pipeline.Invocation, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case ctx.Err() != nil:
		return fmt.Errorf("%s: %w: %w", inv.Stage, ctx.Err(), err)
	case errors.Is(stageCtx.Err(), context.DeadlineExceeded):
		return services.Wrap(services.ErrTimeout, inv.Stage, "run", fmt.Sprintf("exceeded %s", l.stageTimeout), err)
	case errors.Is(err, services.ErrNotFound):
		return fmt.Errorf("%s: %w", inv.Stage, err)
	default:
		return services.Wrap(services.ErrExternalTool, inv.Stage, "run", inv.Binary, err)
	}
}

func (l *Launcher) begin(ctx context.Context, logger *slog.Logger, inv pipeline.Invocation, argv []string) int64 {
	if l.recorder == nil {
		return 0
	}
	runID, _ := services.RunIDFromContext(ctx)
	id, err := l.recorder.Begin(ctx, history.Entry{
		RunID:      runID,
		Stage:      inv.Stage,
		Argv:       argv,
		InputPath:  inv.InputPath,
		OutputPath: inv.OutputPath,
	})
	if err != nil {
		logging.WarnWithContext(logger, "history record failed; invocation not recorded", "history_begin_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "pkaprep history will not list this invocation"),
		)
		return 0
	}
	return id
}

func (l *Launcher) finish(ctx context.Context, logger *slog.Logger, id int64, status history.Status, exitCode int, runErr error) {
	if l.recorder == nil || id == 0 {
		return
	}
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	// The run context may already be cancelled; the outcome is still recorded.
	if err := l.recorder.Finish(context.WithoutCancel(ctx), id, status, exitCode, message); err != nil {
		logging.WarnWithContext(logger, "history update failed; invocation left as running", "history_finish_failed",
			logging.Error(err),
			logging.Int64("record_id", id),
		)
	}
}

func failureHint(status history.Status) string {
	switch status {
	case history.StatusMissingProgram:
		return "install the program or fix [python] interpreter / [stages.<name>] program"
	case history.StatusTimedOut:
		return "raise workflow.stage_timeout_seconds or set it to 0"
	case history.StatusInterrupted:
		return "rerun the plan; completed stages are not skipped"
	default:
		return "see the stage output above"
	}
}
