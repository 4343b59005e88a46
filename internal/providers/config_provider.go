package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"postpilot/internal/structures"
)

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config

	filename := filepath.Base(flags.ConfigPath)
	viper.AddConfigPath(filepath.Dir(flags.ConfigPath))
	viper.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	viper.SetConfigType("yaml")

	viper.BindEnv("logger.level", "POSTPILOT_LOG_LEVEL")
	viper.BindEnv("generation.apiKey", "POSTPILOT_API_KEY")
	viper.BindEnv("generation.provider", "POSTPILOT_PROVIDER")
	viper.BindEnv("news.refreshWindow", "POSTPILOT_NEWS_REFRESH_WINDOW")
	viper.BindEnv("checkpoint.dir", "POSTPILOT_CHECKPOINT_DIR")
	viper.BindEnv("storage.bucket", "POSTPILOT_BUCKET")
	viper.BindEnv("cache.enabled", "POSTPILOT_CACHE_ENABLED")
	viper.BindEnv("cache.size", "POSTPILOT_CACHE_SIZE")

	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = viper.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	applyDefaults(&conf)

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = "PostPilot"
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

func applyDefaults(conf *structures.Config) {
	if conf.Generation.InitialBackoff <= 0 {
		conf.Generation.InitialBackoff = time.Second
	}
	if conf.Generation.BackoffFactor < 1 {
		conf.Generation.BackoffFactor = 2.0
	}
	if conf.News.BatchSize <= 0 {
		conf.News.BatchSize = 6
	}
	if conf.Checkpoint.SweepSpec == "" {
		conf.Checkpoint.SweepSpec = "@hourly"
	}
}
