package reasoning

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/codeaudit/internal/experimentlog"
	"github.com/temirov/codeaudit/internal/findings"
)

const (
	maximumAttemptCountConstant  = 2
	defaultRetryDelayConstant    = 10 * time.Second
	attemptFailedMessageConstant = "Reasoning request failed"
	retryingMessageConstant      = "Retrying reasoning request"
	degradedMessageConstant      = "Reasoning degraded to static findings only"

	logFieldReasoningFileConstant = "file_path"
	logFieldAttemptConstant       = "attempt"
)

// Service construction errors.
var (
	ErrServiceLoggerNotConfigured = errors.New("reasoning service requires a logger")
	ErrCompleterNotConfigured     = errors.New("reasoning service requires a chat completer")
	ErrRecorderNotConfigured      = errors.New("reasoning service requires an experiment recorder")
	ErrModelNotConfigured         = errors.New("reasoning service requires a model name")
)

// ServiceConfiguration carries the reasoning policy settings.
type ServiceConfiguration struct {
	Model      string
	RetryDelay time.Duration
}

// Service drives reasoning for one file at a time: build the prompt, call the
// completer, retry a failed call exactly once after the configured delay, and
// degrade to zero model findings when both attempts fail. Every attempt is
// recorded durably before the service returns.
type Service struct {
	logger        *zap.Logger
	completer     ChatCompleter
	recorder      experimentlog.Recorder
	configuration ServiceConfiguration
	sleeper       Sleeper
}

// NewService validates collaborators and constructs a reasoning service.
func NewService(logger *zap.Logger, completer ChatCompleter, recorder experimentlog.Recorder, configuration ServiceConfiguration) (*Service, error) {
	return NewServiceWithSleeper(logger, completer, recorder, configuration, realSleeper{})
}

// NewServiceWithSleeper constructs a reasoning service with an injected sleeper.
func NewServiceWithSleeper(logger *zap.Logger, completer ChatCompleter, recorder experimentlog.Recorder, configuration ServiceConfiguration, sleeper Sleeper) (*Service, error) {
	if logger == nil {
		return nil, ErrServiceLoggerNotConfigured
	}
	if completer == nil {
		return nil, ErrCompleterNotConfigured
	}
	if recorder == nil {
		return nil, ErrRecorderNotConfigured
	}
	if len(configuration.Model) == 0 {
		return nil, ErrModelNotConfigured
	}
	// Zero is a valid retry delay; only a missing (negative) value falls back.
	if configuration.RetryDelay < 0 {
		configuration.RetryDelay = defaultRetryDelayConstant
	}
	if sleeper == nil {
		sleeper = realSleeper{}
	}
	return &Service{
		logger:        logger,
		completer:     completer,
		recorder:      recorder,
		configuration: configuration,
		sleeper:       sleeper,
	}, nil
}

// Analyze requests model findings for one file. On exhausted retries it
// returns zero findings together with the final error so the caller can count
// the degradation; the run itself is expected to continue.
func (service *Service) Analyze(executionContext context.Context, filePath string, fileContent string, staticFindings []findings.Finding) ([]findings.Finding, error) {
	userPrompt := BuildPrompt(filePath, fileContent, staticFindings)

	var lastAttemptError error
	for attemptNumber := 1; attemptNumber <= maximumAttemptCountConstant; attemptNumber++ {
		rawReply, completionError := service.completer.Complete(executionContext, CompletionRequest{
			Model:        service.configuration.Model,
			SystemPrompt: SystemPrompt(),
			UserPrompt:   userPrompt,
		})

		if completionError == nil {
			if recordError := service.recordAttempt(filePath, userPrompt, rawReply, experimentlog.StatusSuccess, "", 0); recordError != nil {
				return nil, recordError
			}
			return ParseReply(filePath, rawReply), nil
		}

		lastAttemptError = completionError
		service.logger.Warn(
			attemptFailedMessageConstant,
			zap.String(logFieldReasoningFileConstant, filePath),
			zap.Int(logFieldAttemptConstant, attemptNumber),
			zap.Error(completionError),
		)

		willRetry := attemptNumber < maximumAttemptCountConstant
		observedDelaySeconds := 0
		if willRetry {
			observedDelaySeconds = int(service.configuration.RetryDelay.Seconds())
		}
		if recordError := service.recordAttempt(filePath, userPrompt, "", experimentlog.StatusFailure, completionError.Error(), observedDelaySeconds); recordError != nil {
			return nil, recordError
		}

		if willRetry {
			service.logger.Info(retryingMessageConstant, zap.String(logFieldReasoningFileConstant, filePath))
			service.sleeper.Sleep(service.configuration.RetryDelay)
		}
	}

	service.logger.Warn(degradedMessageConstant, zap.String(logFieldReasoningFileConstant, filePath))
	return nil, lastAttemptError
}

func (service *Service) recordAttempt(filePath string, prompt string, response string, status experimentlog.Status, errorDetail string, delaySeconds int) error {
	return service.recorder.Append(experimentlog.Record{
		EventType:    experimentlog.EventTypeReasoning,
		FilePath:     filePath,
		Model:        service.configuration.Model,
		Prompt:       prompt,
		Response:     response,
		Status:       status,
		ErrorDetail:  errorDetail,
		DelaySeconds: delaySeconds,
	})
}
