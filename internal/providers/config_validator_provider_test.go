package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"postpilot/internal/structures"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Generation: structures.GenerationConfig{
			Provider:      "gemini",
			APIKey:        "test-key",
			TextModel:     "gemini-2.5-flash",
			ImageModel:    "gemini-2.5-flash-image",
			TextTimeout:   30 * time.Second,
			SearchTimeout: 60 * time.Second,
			ImageTimeout:  90 * time.Second,
		},
		News: structures.NewsConfig{
			RefreshWindow:     time.Hour,
			InProgressTimeout: 2 * time.Minute,
		},
		Checkpoint: structures.CheckpointConfig{
			Dir:       "/tmp/checkpoints",
			Staleness: time.Hour,
		},
		Storage: structures.StorageConfig{
			ProjectID: "test-project",
			Bucket:    "test-bucket",
		},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_UnknownProvider(t *testing.T) {
	c := validConfig()
	c.Generation.Provider = "llamafile"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_MissingAPIKey(t *testing.T) {
	c := validConfig()
	c.Generation.APIKey = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_MissingBucket(t *testing.T) {
	c := validConfig()
	c.Storage.Bucket = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_MissingCheckpointDir(t *testing.T) {
	c := validConfig()
	c.Checkpoint.Dir = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}
