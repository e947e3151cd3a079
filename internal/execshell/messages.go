package execshell

import (
	"fmt"
	"strings"
)

const (
	startTemplateConstant                  = "Running %s"
	successTemplateConstant                = "Completed %s"
	failureTemplateConstant                = "%s failed with exit code %d%s"
	executionFailureTemplateConstant       = "%s failed: %s"
	commandLabelTemplateConstant           = "%s%s"
	commandWithArgumentsTemplateConstant   = "%s %s"
	workingDirectorySuffixTemplateConstant = " (in %s)"
	commandArgumentsJoinSeparatorConstant  = " "
	standardErrorSuffixTemplateConstant    = ": %s"
	unknownFailureMessageConstant          = "unknown error"
	emptyStringConstant                    = ""
)

const (
	logFieldCommandNameConstant      = "command"
	logFieldCommandArgumentsConstant = "arguments"
	logFieldExitCodeConstant         = "exit_code"
)

func startMessage(command ShellCommand) string {
	return fmt.Sprintf(startTemplateConstant, describeCommand(command))
}

func successMessage(command ShellCommand) string {
	return fmt.Sprintf(successTemplateConstant, describeCommand(command))
}

func failureMessage(command ShellCommand, result ExecutionResult) string {
	return fmt.Sprintf(failureTemplateConstant, describeCommand(command), result.ExitCode, standardErrorSuffix(result.StandardError))
}

func executionFailureMessage(command ShellCommand, failure error) string {
	return fmt.Sprintf(executionFailureTemplateConstant, describeCommand(command), describeFailure(failure))
}

func describeCommand(command ShellCommand) string {
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel(command), workingDirectorySuffix(command))
}

func workingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func standardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}
