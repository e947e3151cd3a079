package cli

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: warn\ntools:\n  audit:\n    delay: 3s\n    model: custom-model\n"
)

func TestInitializeConfigurationAppliesEmbeddedDefaults(testInstance *testing.T) {
	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "info", application.configuration.Common.LogLevel)
	require.Equal(testInstance, 10*time.Second, application.configuration.Tools.Audit.Delay)
	require.Equal(testInstance, "llama-3.3-70b-versatile", application.configuration.Tools.Audit.Model)
}

func TestInitializeConfigurationMergesConfigurationFile(testInstance *testing.T) {
	configurationPath := filepath.Join(testInstance.TempDir(), testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(testConfigurationContentConstant), 0o600))

	application := NewApplication()
	application.configurationFilePath = configurationPath

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "warn", application.configuration.Common.LogLevel)
	require.Equal(testInstance, 3*time.Second, application.configuration.Tools.Audit.Delay)
	require.Equal(testInstance, "custom-model", application.configuration.Tools.Audit.Model)
	require.Equal(testInstance, configurationPath, application.configurationMetadata.ConfigFileUsed)
}

func TestInitializeConfigurationHonorsLogLevelFlagOverride(testInstance *testing.T) {
	application := NewApplication()
	require.NoError(testInstance, application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, "debug"))

	initializationError := application.initializeConfiguration(application.rootCommand)
	require.NoError(testInstance, initializationError)

	require.Equal(testInstance, "debug", application.configuration.Common.LogLevel)
}
