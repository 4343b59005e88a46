package structures

import "time"

type CliFlags struct {
	ConfigPath string
	DebugMode  bool
}

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type GenerationConfig struct {
	Provider       string        `yaml:"provider" validate:"required|in:gemini,openai"`
	APIKey         string        `yaml:"apiKey" validate:"required"`
	TextModel      string        `yaml:"textModel" validate:"required"`
	ImageModel     string        `yaml:"imageModel" validate:"required"`
	TextTimeout    time.Duration `yaml:"textTimeout" validate:"required|min:1"`
	SearchTimeout  time.Duration `yaml:"searchTimeout" validate:"required|min:1"`
	ImageTimeout   time.Duration `yaml:"imageTimeout" validate:"required|min:1"`
	InitialBackoff time.Duration `yaml:"initialBackoff"`
	BackoffFactor  float64       `yaml:"backoffFactor"`
}

type NewsConfig struct {
	RefreshWindow     time.Duration `yaml:"refreshWindow" validate:"required|min:1"`
	InProgressTimeout time.Duration `yaml:"inProgressTimeout" validate:"required|min:1"`
	BatchSize         int           `yaml:"batchSize"`
}

type CheckpointConfig struct {
	Dir       string        `yaml:"dir" validate:"required|unixPath"`
	Staleness time.Duration `yaml:"staleness" validate:"required|min:1"`
	SweepSpec string        `yaml:"sweepSpec"`
}

type StorageConfig struct {
	ProjectID  string `yaml:"projectId" validate:"required"`
	Bucket     string `yaml:"bucket" validate:"required"`
	KeyPath    string `yaml:"keyPath"`
	URLPrefix  string `yaml:"urlPrefix"`
	Collection string `yaml:"collection"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName    string
	Debug      bool
	Path       string
	WebServer  Server           `yaml:"webServer"`
	Logger     LoggerConfig     `yaml:"logger"`
	Generation GenerationConfig `yaml:"generation"`
	News       NewsConfig       `yaml:"news"`
	Checkpoint CheckpointConfig `yaml:"checkpoint"`
	Storage    StorageConfig    `yaml:"storage"`
	Cache      CacheConfig      `yaml:"cache"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}
