package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/codeaudit/internal/experimentlog"
	"github.com/temirov/codeaudit/internal/findings"
)

const (
	progressLineTemplateConstant = "[%d/%d] analyzing %s\n"

	runStartedDetailConstant   = "audit run started"
	runCompletedDetailConstant = "audit run completed"
	runAbortedDetailConstant   = "audit run aborted"
	runFailedDetailConstant    = "audit run failed"

	stateTransitionMessageConstant = "State transition"
	fileDegradedMessageConstant    = "File degraded"
	readFileTemplateConstant       = "unable to read %s: %v"

	logFieldStateConstant        = "state"
	logFieldTargetConstant       = "target_directory"
	logFieldAuditFileConstant    = "file_path"
	logFieldFailureStageConstant = "stage"

	stageAnalysisLabelConstant  = "analysis"
	stageReasoningLabelConstant = "reasoning"
)

// Service construction errors.
var (
	ErrLoggerNotConfigured     = errors.New("audit service requires a logger")
	ErrDiscovererNotConfigured = errors.New("audit service requires a file discoverer")
	ErrCollectorNotConfigured  = errors.New("audit service requires a diagnostic collector")
	ErrReasonerNotConfigured   = errors.New("audit service requires a reasoning analyzer")
	ErrMergerNotConfigured     = errors.New("audit service requires a plan merger")
	ErrRecorderNotConfigured   = errors.New("audit service requires an experiment recorder")
)

// ServiceDependencies carries the orchestrator's collaborators.
type ServiceDependencies struct {
	Logger       *zap.Logger
	Discoverer   FileDiscoverer
	Collector    DiagnosticCollector
	Reasoner     ReasoningAnalyzer
	Merger       PlanMerger
	Recorder     experimentlog.Recorder
	Clock        Clock
	Sleeper      Sleeper
	OutputWriter io.Writer
	ErrorWriter  io.Writer
}

// Service drives one audit run through its state machine. A run aborts only
// when the target directory cannot be read; every per-file failure degrades
// that file's plan and the run continues.
type Service struct {
	dependencies ServiceDependencies
	currentState RunState
}

// NewService validates collaborators and constructs an orchestrator.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if dependencies.Discoverer == nil {
		return nil, ErrDiscovererNotConfigured
	}
	if dependencies.Collector == nil {
		return nil, ErrCollectorNotConfigured
	}
	if dependencies.Reasoner == nil {
		return nil, ErrReasonerNotConfigured
	}
	if dependencies.Merger == nil {
		return nil, ErrMergerNotConfigured
	}
	if dependencies.Recorder == nil {
		return nil, ErrRecorderNotConfigured
	}
	if dependencies.Clock == nil {
		dependencies.Clock = SystemClock{}
	}
	if dependencies.Sleeper == nil {
		dependencies.Sleeper = SystemSleeper{}
	}
	if dependencies.OutputWriter == nil {
		dependencies.OutputWriter = os.Stdout
	}
	if dependencies.ErrorWriter == nil {
		dependencies.ErrorWriter = os.Stderr
	}
	return &Service{dependencies: dependencies, currentState: RunStateIdle}, nil
}

// State returns the orchestrator's current lifecycle state.
func (service *Service) State() RunState {
	return service.currentState
}

// Run executes one audit over options.TargetDirectory and returns the
// consolidated report.
func (service *Service) Run(executionContext context.Context, options CommandOptions) (AuditReport, error) {
	startTime := service.dependencies.Clock.Now()

	service.transition(RunStateScanning)
	service.recordRunEvent(options.TargetDirectory, experimentlog.StatusSuccess, runStartedDetailConstant, int(options.Delay.Seconds()))

	discoveredFiles, discoveryError := service.dependencies.Discoverer.Discover(options.TargetDirectory)
	if discoveryError != nil {
		service.transition(RunStateAborted)
		service.recordRunEvent(options.TargetDirectory, experimentlog.StatusFailure, runAbortedDetailConstant+": "+discoveryError.Error(), 0)
		return AuditReport{}, discoveryError
	}

	filePlans := make([]findings.FilePlan, 0, len(discoveredFiles))
	failureCount := 0

	for fileIndex, filePath := range discoveredFiles {
		fmt.Fprintf(service.dependencies.ErrorWriter, progressLineTemplateConstant, fileIndex+1, len(discoveredFiles), filePath)

		isLastFile := fileIndex == len(discoveredFiles)-1
		// The wait after this file precedes the next file's requests; its
		// journal entries carry that observed delay so the log replays the
		// run's pacing.
		upcomingDelaySeconds := 0
		if !isLastFile && options.Delay > 0 {
			upcomingDelaySeconds = int(options.Delay.Seconds())
		}

		filePlan, fileFailures := service.auditFile(executionContext, filePath, upcomingDelaySeconds)
		filePlans = append(filePlans, filePlan)
		failureCount += fileFailures

		if !isLastFile && options.Delay > 0 {
			service.transition(RunStateWaiting)
			service.dependencies.Sleeper.Sleep(options.Delay)
		}
	}

	service.transition(RunStateReporting)

	auditReport := AuditReport{
		TargetDirectory: options.TargetDirectory,
		StartTime:       startTime,
		EndTime:         service.dependencies.Clock.Now(),
		FileCount:       len(discoveredFiles),
		FailureCount:    failureCount,
		FilePlans:       filePlans,
	}

	if renderError := WriteReport(service.dependencies.OutputWriter, auditReport, options.Format); renderError != nil {
		service.recordRunEvent(options.TargetDirectory, experimentlog.StatusFailure, runFailedDetailConstant+": "+renderError.Error(), 0)
		return auditReport, renderError
	}
	if len(options.ReportsDirectory) > 0 {
		if writeError := WriteFileReports(options.ReportsDirectory, auditReport.FilePlans); writeError != nil {
			service.recordRunEvent(options.TargetDirectory, experimentlog.StatusFailure, runFailedDetailConstant+": "+writeError.Error(), 0)
			return auditReport, writeError
		}
	}

	service.recordRunEvent(options.TargetDirectory, experimentlog.StatusSuccess, runCompletedDetailConstant, 0)
	service.transition(RunStateDone)

	return auditReport, nil
}

// auditFile runs the per-file pipeline stages and reports how many stages
// degraded. The plan is always produced from whatever findings succeeded.
// upcomingDelaySeconds is the inter-file wait that follows this file.
func (service *Service) auditFile(executionContext context.Context, filePath string, upcomingDelaySeconds int) (findings.FilePlan, int) {
	failureCount := 0

	service.transition(RunStateAnalyzing)
	staticFindings, collectionError := service.dependencies.Collector.Collect(executionContext, filePath)
	analysisStatus := experimentlog.StatusSuccess
	analysisDetail := ""
	if collectionError != nil {
		failureCount++
		analysisStatus = experimentlog.StatusFailure
		analysisDetail = collectionError.Error()
		staticFindings = nil
		service.logDegradation(filePath, stageAnalysisLabelConstant, collectionError)
	}
	service.recordAnalysisEvent(filePath, analysisStatus, analysisDetail, upcomingDelaySeconds)

	fileContent := service.readFileContent(filePath)

	service.transition(RunStateReasoning)
	modelFindings, reasoningError := service.dependencies.Reasoner.Analyze(executionContext, filePath, fileContent, staticFindings)
	if reasoningError != nil {
		failureCount++
		modelFindings = nil
		service.logDegradation(filePath, stageReasoningLabelConstant, reasoningError)
	}

	service.transition(RunStateMerging)
	return service.dependencies.Merger.Merge(filePath, staticFindings, modelFindings), failureCount
}

// readFileContent loads the source for the reasoning prompt. A read failure
// is not fatal; reasoning proceeds on the static findings alone.
func (service *Service) readFileContent(filePath string) string {
	fileContent, readError := os.ReadFile(filePath)
	if readError != nil {
		service.dependencies.Logger.Warn(
			fmt.Sprintf(readFileTemplateConstant, filePath, readError),
			zap.String(logFieldAuditFileConstant, filePath),
		)
		return ""
	}
	return string(fileContent)
}

func (service *Service) transition(nextState RunState) {
	service.currentState = nextState
	service.dependencies.Logger.Debug(
		stateTransitionMessageConstant,
		zap.String(logFieldStateConstant, string(nextState)),
	)
}

func (service *Service) logDegradation(filePath string, stage string, cause error) {
	service.dependencies.Logger.Warn(
		fileDegradedMessageConstant,
		zap.String(logFieldAuditFileConstant, filePath),
		zap.String(logFieldFailureStageConstant, stage),
		zap.Error(cause),
	)
}

func (service *Service) recordRunEvent(targetDirectory string, status experimentlog.Status, detail string, delaySeconds int) {
	runRecord := experimentlog.Record{
		EventType:    experimentlog.EventTypeRun,
		FilePath:     targetDirectory,
		Status:       status,
		DelaySeconds: delaySeconds,
	}
	if status == experimentlog.StatusSuccess {
		runRecord.Response = detail
	} else {
		runRecord.ErrorDetail = detail
	}
	appendError := service.dependencies.Recorder.Append(runRecord)
	if appendError != nil {
		service.dependencies.Logger.Warn(appendError.Error(), zap.String(logFieldTargetConstant, targetDirectory))
	}
}

func (service *Service) recordAnalysisEvent(filePath string, status experimentlog.Status, detail string, delaySeconds int) {
	appendError := service.dependencies.Recorder.Append(experimentlog.Record{
		EventType:    experimentlog.EventTypeAnalysis,
		FilePath:     filePath,
		Status:       status,
		ErrorDetail:  detail,
		DelaySeconds: delaySeconds,
	})
	if appendError != nil {
		service.dependencies.Logger.Warn(appendError.Error(), zap.String(logFieldAuditFileConstant, filePath))
	}
}
