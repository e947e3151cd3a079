package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// CommandName identifies an external executable known to the executor.
type CommandName string

// Commands supported by the audit pipeline.
const (
	// CommandPylint runs the pylint static analyzer.
	CommandPylint CommandName = "pylint"
)

// pylint reports discovered issues through an exit-code bitmask; any code below
// the usage-error threshold still carries a usable JSON report on stdout.
const pylintUsageErrorExitCodeConstant = 32

// CommandDetails describes the invocation parameters for a shell command.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand pairs an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a completed command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner executes shell commands and reports their results.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// Sentinel errors reported during executor construction.
var (
	ErrLoggerNotConfigured        = errors.New("shell executor requires a logger")
	ErrCommandRunnerNotConfigured = errors.New("shell executor requires a command runner")
)

// CommandFailedError reports a command that ran to completion with an unexpected exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error renders the failure including trailing standard error output when present.
func (failure CommandFailedError) Error() string {
	return failureMessage(failure.Command, failure.Result)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error renders the underlying execution failure.
func (failure CommandExecutionError) Error() string {
	return executionFailureMessage(failure.Command, failure.Cause)
}

// Unwrap exposes the underlying cause for errors.Is and errors.As inspection.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}

// exitCodeClassifier reports whether an exit code counts as a successful run.
type exitCodeClassifier func(exitCode int) bool

// ShellExecutor runs external commands with structured logging and event notifications.
type ShellExecutor struct {
	logger   *zap.Logger
	runner   CommandRunner
	observer CommandEventObserver
}

// NewShellExecutor constructs an executor backed by the supplied logger and runner.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner) (*ShellExecutor, error) {
	return NewShellExecutorWithObserver(logger, runner, nil)
}

// NewShellExecutorWithObserver constructs an executor that also notifies the provided observer.
func NewShellExecutorWithObserver(logger *zap.Logger, runner CommandRunner, observer CommandEventObserver) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}
	if observer == nil {
		observer = noopCommandEventObserver{}
	}
	return &ShellExecutor{logger: logger, runner: runner, observer: observer}, nil
}

// ExecutePylint runs the pylint analyzer. Exit codes below the usage-error
// threshold are successful runs whose stdout carries the diagnostic report.
func (executor *ShellExecutor) ExecutePylint(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	command := ShellCommand{Name: CommandPylint, Details: details}
	return executor.executeCommand(executionContext, command, pylintExitCodeAccepted)
}

func pylintExitCodeAccepted(exitCode int) bool {
	return exitCode >= 0 && exitCode < pylintUsageErrorExitCodeConstant
}

func defaultExitCodeAccepted(exitCode int) bool {
	return exitCode == 0
}

func (executor *ShellExecutor) executeCommand(executionContext context.Context, command ShellCommand, accepted exitCodeClassifier) (ExecutionResult, error) {
	if accepted == nil {
		accepted = defaultExitCodeAccepted
	}

	executor.logger.Debug(
		startMessage(command),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Strings(logFieldCommandArgumentsConstant, command.Details.Arguments),
	)
	executor.observer.CommandStarted(command)

	executionResult, runError := executor.runner.Run(executionContext, command)
	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.logger.Error(
			executionFailure.Error(),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Error(runError),
		)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, executionFailure
	}

	executor.observer.CommandCompleted(command, executionResult)

	if !accepted(executionResult.ExitCode) {
		commandFailure := CommandFailedError{Command: command, Result: executionResult}
		executor.logger.Error(
			commandFailure.Error(),
			zap.String(logFieldCommandNameConstant, string(command.Name)),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
		)
		return ExecutionResult{}, commandFailure
	}

	executor.logger.Debug(
		successMessage(command),
		zap.String(logFieldCommandNameConstant, string(command.Name)),
		zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
	)
	return executionResult, nil
}

func commandLabel(command ShellCommand) string {
	label := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		label = fmt.Sprintf(commandWithArgumentsTemplateConstant, label, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	return label
}
