package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
)

const (
	chatCompletionsPathConstant      = "/chat/completions"
	authorizationHeaderNameConstant  = "Authorization"
	authorizationHeaderTemplateConst = "Bearer %s"
	contentTypeHeaderNameConstant    = "Content-Type"
	jsonContentTypeConstant          = "application/json"
	systemMessageRoleConstant        = "system"
	userMessageRoleConstant          = "user"

	defaultRequestTimeoutConstant         = 60 * time.Second
	defaultMinimumRequestIntervalConstant = time.Second

	encodeRequestTemplateConstant   = "unable to encode completion request: %w"
	buildRequestTemplateConstant    = "unable to build completion request: %w"
	sendRequestTemplateConstant     = "unable to reach reasoning service: %w"
	readResponseTemplateConstant    = "unable to read reasoning service response: %w"
	decodeResponseTemplateConstant  = "unable to decode reasoning service response: %w"
	serviceStatusTemplateConstant   = "reasoning service returned status %d: %s"
	responseBodySnippetLimitConstant = 512

	issuingRequestMessageConstant = "Issuing reasoning request"
	logFieldModelConstant         = "model"
	logFieldEndpointConstant      = "endpoint"
)

// Client construction and response errors.
var (
	ErrBaseURLNotConfigured = errors.New("reasoning client requires a base URL")
	ErrAPIKeyNotConfigured  = errors.New("reasoning client requires an API key")
	ErrLoggerNotConfigured  = errors.New("reasoning client requires a logger")
	ErrEmptyCompletion      = errors.New("reasoning service returned no choices")
)

// ClientConfiguration carries the transport settings for the HTTP client.
type ClientConfiguration struct {
	BaseURL                string
	APIKey                 string
	RequestTimeout         time.Duration
	MinimumRequestInterval time.Duration
}

// HTTPClient talks to an OpenAI-compatible chat-completions endpoint. It
// enforces a minimum interval between requests to stay inside service quotas.
type HTTPClient struct {
	logger          *zap.Logger
	configuration   ClientConfiguration
	httpClient      *http.Client
	requestMutex    sync.Mutex
	lastRequestTime time.Time
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionChoice struct {
	Message chatMessage `json:"message"`
}

type chatCompletionResponse struct {
	Choices []chatCompletionChoice `json:"choices"`
}

// NewHTTPClient validates the configuration and constructs a client. Zero
// timeout and interval values fall back to defaults.
func NewHTTPClient(logger *zap.Logger, configuration ClientConfiguration) (*HTTPClient, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if len(strings.TrimSpace(configuration.BaseURL)) == 0 {
		return nil, ErrBaseURLNotConfigured
	}
	if len(strings.TrimSpace(configuration.APIKey)) == 0 {
		return nil, ErrAPIKeyNotConfigured
	}
	if configuration.RequestTimeout <= 0 {
		configuration.RequestTimeout = defaultRequestTimeoutConstant
	}
	if configuration.MinimumRequestInterval <= 0 {
		configuration.MinimumRequestInterval = defaultMinimumRequestIntervalConstant
	}

	return &HTTPClient{
		logger:        logger,
		configuration: configuration,
		httpClient:    &http.Client{Timeout: configuration.RequestTimeout},
	}, nil
}

// Complete sends one chat-completion request and returns the assistant reply.
func (client *HTTPClient) Complete(executionContext context.Context, request CompletionRequest) (string, error) {
	client.waitForRequestWindow()

	requestPayload := chatCompletionRequest{
		Model: request.Model,
		Messages: []chatMessage{
			{Role: systemMessageRoleConstant, Content: request.SystemPrompt},
			{Role: userMessageRoleConstant, Content: request.UserPrompt},
		},
	}

	encodedPayload, encodeError := json.Marshal(requestPayload)
	if encodeError != nil {
		return "", fmt.Errorf(encodeRequestTemplateConstant, encodeError)
	}

	endpointURL := strings.TrimSuffix(client.configuration.BaseURL, "/") + chatCompletionsPathConstant

	httpRequest, buildError := http.NewRequestWithContext(executionContext, http.MethodPost, endpointURL, bytes.NewReader(encodedPayload))
	if buildError != nil {
		return "", fmt.Errorf(buildRequestTemplateConstant, buildError)
	}
	httpRequest.Header.Set(contentTypeHeaderNameConstant, jsonContentTypeConstant)
	httpRequest.Header.Set(authorizationHeaderNameConstant, fmt.Sprintf(authorizationHeaderTemplateConst, client.configuration.APIKey))

	client.logger.Debug(
		issuingRequestMessageConstant,
		zap.String(logFieldModelConstant, request.Model),
		zap.String(logFieldEndpointConstant, endpointURL),
	)

	httpResponse, sendError := client.httpClient.Do(httpRequest)
	if sendError != nil {
		return "", fmt.Errorf(sendRequestTemplateConstant, sendError)
	}
	defer func() { _ = httpResponse.Body.Close() }()

	responseBody, readError := io.ReadAll(httpResponse.Body)
	if readError != nil {
		return "", fmt.Errorf(readResponseTemplateConstant, readError)
	}

	if httpResponse.StatusCode != http.StatusOK {
		return "", fmt.Errorf(serviceStatusTemplateConstant, httpResponse.StatusCode, bodySnippet(responseBody))
	}

	var completionResponse chatCompletionResponse
	if decodeError := json.Unmarshal(responseBody, &completionResponse); decodeError != nil {
		return "", fmt.Errorf(decodeResponseTemplateConstant, decodeError)
	}
	if len(completionResponse.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return completionResponse.Choices[0].Message.Content, nil
}

// waitForRequestWindow blocks until the minimum interval since the previous
// request has elapsed.
func (client *HTTPClient) waitForRequestWindow() {
	client.requestMutex.Lock()
	defer client.requestMutex.Unlock()

	elapsedSinceLastRequest := time.Since(client.lastRequestTime)
	if elapsedSinceLastRequest < client.configuration.MinimumRequestInterval {
		time.Sleep(client.configuration.MinimumRequestInterval - elapsedSinceLastRequest)
	}
	client.lastRequestTime = time.Now()
}

// bodySnippet truncates at the limit, backing up so no multi-byte rune is
// split mid-sequence.
func bodySnippet(responseBody []byte) string {
	snippet := strings.TrimSpace(string(responseBody))
	if len(snippet) <= responseBodySnippetLimitConstant {
		return snippet
	}
	cutIndex := responseBodySnippetLimitConstant
	for cutIndex > 0 && !utf8.RuneStart(snippet[cutIndex]) {
		cutIndex--
	}
	return snippet[:cutIndex]
}
