package audit_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/codeaudit/internal/audit"
)

func newStubbedCommandBuilder(recorder *recordingServiceRecorder, sleeper *recordingServiceSleeper) *audit.CommandBuilder {
	return &audit.CommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		Collector:      &stubCollector{},
		Reasoner:       &stubReasoner{},
		Recorder:       recorder,
		Sleeper:        sleeper,
	}
}

func executeAuditCommand(testInstance *testing.T, builder *audit.CommandBuilder, arguments ...string) (string, string, error) {
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	outputBuffer := &bytes.Buffer{}
	errorBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(errorBuffer)
	command.SetArgs(arguments)

	executionError := command.Execute()
	return outputBuffer.String(), errorBuffer.String(), executionError
}

func TestCommandBuilderBuildsAuditCommand(testInstance *testing.T) {
	builder := newStubbedCommandBuilder(&recordingServiceRecorder{}, &recordingServiceSleeper{})

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	require.Equal(testInstance, "audit", command.Name())

	for _, flagName := range []string{"delay", "log-file", "format", "model", "reports-dir"} {
		require.NotNil(testInstance, command.Flags().Lookup(flagName), flagName)
	}
}

func TestCommandRunsAuditOverTargetDirectory(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(targetDirectory, "sample.py"), []byte("pass\n"), 0o644))

	recorder := &recordingServiceRecorder{}
	builder := newStubbedCommandBuilder(recorder, &recordingServiceSleeper{})

	standardOutput, standardError, executionError := executeAuditCommand(testInstance, builder, targetDirectory)

	require.NoError(testInstance, executionError)
	require.Contains(testInstance, standardOutput, "1 files")
	require.Contains(testInstance, standardError, "[1/1] analyzing")
	require.NotEmpty(testInstance, recorder.appendedRecords)
}

func TestCommandDelayFlagOverridesConfiguration(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	for _, fileName := range []string{"a.py", "b.py"} {
		require.NoError(testInstance, os.WriteFile(filepath.Join(targetDirectory, fileName), []byte("pass\n"), 0o644))
	}

	sleeper := &recordingServiceSleeper{}
	builder := newStubbedCommandBuilder(&recordingServiceRecorder{}, sleeper)

	_, _, executionError := executeAuditCommand(testInstance, builder, targetDirectory, "--delay", "0")

	require.NoError(testInstance, executionError)
	require.Empty(testInstance, sleeper.sleptDurations)
}

func TestCommandFormatFlagSelectsJSONReport(testInstance *testing.T) {
	targetDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.WriteFile(filepath.Join(targetDirectory, "sample.py"), []byte("pass\n"), 0o644))

	builder := newStubbedCommandBuilder(&recordingServiceRecorder{}, &recordingServiceSleeper{})

	standardOutput, _, executionError := executeAuditCommand(testInstance, builder, targetDirectory, "--format", "json")

	require.NoError(testInstance, executionError)

	var decodedReport audit.AuditReport
	require.NoError(testInstance, json.Unmarshal([]byte(standardOutput), &decodedReport))
	require.Equal(testInstance, 1, decodedReport.FileCount)
}

func TestCommandRejectsInvalidFormat(testInstance *testing.T) {
	builder := newStubbedCommandBuilder(&recordingServiceRecorder{}, &recordingServiceSleeper{})

	_, _, executionError := executeAuditCommand(testInstance, builder, testInstance.TempDir(), "--format", "xml")

	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "invalid report format")
}

func TestCommandFailsOnUnreadableTargetDirectory(testInstance *testing.T) {
	builder := newStubbedCommandBuilder(&recordingServiceRecorder{}, &recordingServiceSleeper{})

	missingDirectory := filepath.Join(testInstance.TempDir(), "missing")
	_, _, executionError := executeAuditCommand(testInstance, builder, missingDirectory)

	require.Error(testInstance, executionError)
}

func TestCommandRequiresTargetDirectoryArgument(testInstance *testing.T) {
	builder := newStubbedCommandBuilder(&recordingServiceRecorder{}, &recordingServiceSleeper{})

	_, _, executionError := executeAuditCommand(testInstance, builder)

	require.Error(testInstance, executionError)
}
