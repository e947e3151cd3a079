package audit

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/codeaudit/internal/analyzer"
	"github.com/temirov/codeaudit/internal/execshell"
	"github.com/temirov/codeaudit/internal/experimentlog"
	"github.com/temirov/codeaudit/internal/plan"
	"github.com/temirov/codeaudit/internal/reasoning"
	"github.com/temirov/codeaudit/internal/utils"
	flagsutils "github.com/temirov/codeaudit/internal/utils/flags"
	pathutils "github.com/temirov/codeaudit/internal/utils/path"
)

const (
	commandUseConstant      = "audit <target-directory>"
	commandShortDescription = "Audit a directory of Python files with pylint and an LLM reviewer"
	commandLongDescription  = `Audit runs every Python file in the target directory through pylint,
asks the configured reasoning model to review the file together with the
static diagnostics, and prints a prioritized remediation plan per file.
Every reasoning request is journaled to an append-only experiment log.`

	flagDelayName             = "delay"
	flagDelayDescription      = "seconds to wait between files; 0 disables the wait and risks reasoning service quotas"
	flagLogFileName           = "log-file"
	flagLogFileDescription    = "path of the append-only experiment log"
	flagFormatName            = "format"
	flagFormatDescription     = "consolidated report format"
	flagModelName             = "model"
	flagModelDescription      = "reasoning model identifier"
	flagReportsDirName        = "reports-dir"
	flagReportsDirDescription = "directory for per-file report files; empty disables them"

	invalidFormatTemplateConstant = "invalid report format %q (expected %s, %s, or %s)"
)

var reportFormatChoices = []string{
	string(ReportFormatText),
	string(ReportFormatJSON),
	string(ReportFormatYAML),
}

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies the resolved audit configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the audit cobra command with configurable
// dependencies. Unset collaborators resolve to the production implementations.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Discoverer            FileDiscoverer
	Collector             DiagnosticCollector
	Reasoner              ReasoningAnalyzer
	Merger                PlanMerger
	Recorder              experimentlog.Recorder
	Sleeper               Sleeper
	Clock                 Clock
	CommandEventsObserver execshell.CommandEventObserver
}

// Build constructs the cobra command for audit runs.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	command.Flags().Int(flagDelayName, int(defaults.Delay/time.Second), flagDelayDescription)
	command.Flags().String(flagLogFileName, defaults.LogFile, flagLogFileDescription)
	command.Flags().String(flagFormatName, defaults.Format, flagsutils.FormatChoiceUsage(defaults.Format, reportFormatChoices, flagFormatDescription))
	command.Flags().String(flagModelName, defaults.Model, flagModelDescription)
	command.Flags().String(flagReportsDirName, defaults.ReportsDirectory, flagReportsDirDescription)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	configuration = applyFlagOverrides(command, configuration).sanitize()

	homeExpander := pathutils.NewHomeExpander()
	configuration.LogFile = homeExpander.Expand(configuration.LogFile)
	configuration.ReportsDirectory = homeExpander.Expand(configuration.ReportsDirectory)

	reportFormat, formatError := parseReportFormat(configuration.Format)
	if formatError != nil {
		return formatError
	}

	options := CommandOptions{
		TargetDirectory:  homeExpander.Expand(arguments[0]),
		Delay:            configuration.Delay,
		Format:           reportFormat,
		ReportsDirectory: configuration.ReportsDirectory,
	}

	logger := builder.resolveLogger()

	recorder, closeRecorder, recorderError := builder.resolveRecorder(configuration)
	if recorderError != nil {
		return recorderError
	}
	defer closeRecorder()

	reasoner, reasonerError := builder.resolveReasoner(logger, recorder, configuration)
	if reasonerError != nil {
		return reasonerError
	}

	collector, collectorError := builder.resolveCollector(logger)
	if collectorError != nil {
		return collectorError
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:       logger,
		Discoverer:   builder.resolveDiscoverer(),
		Collector:    collector,
		Reasoner:     reasoner,
		Merger:       builder.resolveMerger(),
		Recorder:     recorder,
		Clock:        builder.Clock,
		Sleeper:      builder.Sleeper,
		OutputWriter: command.OutOrStdout(),
		ErrorWriter:  utils.NewFlushingWriter(command.ErrOrStderr()),
	})
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), options)
	return runError
}

func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	if command.Flags().Changed(flagDelayName) {
		delaySeconds, _ := command.Flags().GetInt(flagDelayName)
		configuration.Delay = time.Duration(delaySeconds) * time.Second
	}
	if command.Flags().Changed(flagLogFileName) {
		configuration.LogFile, _ = command.Flags().GetString(flagLogFileName)
	}
	if command.Flags().Changed(flagFormatName) {
		configuration.Format, _ = command.Flags().GetString(flagFormatName)
	}
	if command.Flags().Changed(flagModelName) {
		configuration.Model, _ = command.Flags().GetString(flagModelName)
	}
	if command.Flags().Changed(flagReportsDirName) {
		configuration.ReportsDirectory, _ = command.Flags().GetString(flagReportsDirName)
	}
	return configuration
}

func parseReportFormat(rawFormat string) (ReportFormat, error) {
	switch ReportFormat(rawFormat) {
	case ReportFormatText, ReportFormatJSON, ReportFormatYAML:
		return ReportFormat(rawFormat), nil
	default:
		return "", fmt.Errorf(invalidFormatTemplateConstant, rawFormat, ReportFormatText, ReportFormatJSON, ReportFormatYAML)
	}
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveRecorder(configuration CommandConfiguration) (experimentlog.Recorder, func(), error) {
	if builder.Recorder != nil {
		return builder.Recorder, func() {}, nil
	}
	journalLogger, creationError := experimentlog.NewLogger(configuration.LogFile)
	if creationError != nil {
		return nil, nil, creationError
	}
	return journalLogger, func() { _ = journalLogger.Close() }, nil
}

func (builder *CommandBuilder) resolveReasoner(logger *zap.Logger, recorder experimentlog.Recorder, configuration CommandConfiguration) (ReasoningAnalyzer, error) {
	if builder.Reasoner != nil {
		return builder.Reasoner, nil
	}

	completionClient, clientError := reasoning.NewHTTPClient(logger, reasoning.ClientConfiguration{
		BaseURL:                configuration.BaseURL,
		APIKey:                 configuration.APIKey,
		RequestTimeout:         configuration.RequestTimeout,
		MinimumRequestInterval: configuration.MinimumRequestInterval,
	})
	if clientError != nil {
		return nil, clientError
	}

	return reasoning.NewService(logger, completionClient, recorder, reasoning.ServiceConfiguration{
		Model:      configuration.Model,
		RetryDelay: configuration.Delay,
	})
}

func (builder *CommandBuilder) resolveCollector(logger *zap.Logger) (DiagnosticCollector, error) {
	if builder.Collector != nil {
		return builder.Collector, nil
	}

	shellExecutor, executorError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), builder.CommandEventsObserver)
	if executorError != nil {
		return nil, executorError
	}
	return analyzer.NewPylintCollector(logger, shellExecutor)
}

func (builder *CommandBuilder) resolveDiscoverer() FileDiscoverer {
	if builder.Discoverer != nil {
		return builder.Discoverer
	}
	return NewPythonFileDiscoverer()
}

func (builder *CommandBuilder) resolveMerger() PlanMerger {
	if builder.Merger != nil {
		return builder.Merger
	}
	return plan.NewMerger()
}
