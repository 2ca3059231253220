package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data   DataConfig   `yaml:"data" mapstructure:"data"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Model  ModelConfig  `yaml:"model" mapstructure:"model"`
	Export ExportConfig `yaml:"export" mapstructure:"export"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// DataConfig points at the input files.
type DataConfig struct {
	TripGlobs         []string `yaml:"trip_globs" mapstructure:"trip_globs"`
	BoundaryPath      string   `yaml:"boundary_path" mapstructure:"boundary_path"`
	BoundaryNameField string   `yaml:"boundary_name_field" mapstructure:"boundary_name_field"`
	HolidayPath       string   `yaml:"holiday_path" mapstructure:"holiday_path"`
}

// OutputConfig configures where tables, charts, and maps are written.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ModelConfig configures the regression stage.
type ModelConfig struct {
	TestFraction float64 `yaml:"test_fraction" mapstructure:"test_fraction"`
	Seed         int64   `yaml:"seed" mapstructure:"seed"`
	Folds        int     `yaml:"folds" mapstructure:"folds"`
	LambdaMin    float64 `yaml:"lambda_min" mapstructure:"lambda_min"`
	LambdaMax    float64 `yaml:"lambda_max" mapstructure:"lambda_max"`
	LambdaCount  int     `yaml:"lambda_count" mapstructure:"lambda_count"`
	LassoMaxIter int     `yaml:"lasso_max_iter" mapstructure:"lasso_max_iter"`
	LassoTol     float64 `yaml:"lasso_tol" mapstructure:"lasso_tol"`
}

// ExportConfig configures the optional relational sink.
type ExportConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"`
	DSN        string `yaml:"dsn" mapstructure:"dsn"`
	SampleSize int    `yaml:"sample_size" mapstructure:"sample_size"`
}

// ServerConfig configures the report file server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("NYCTAXI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.trip_globs", []string{"data/yellow_tripdata_*.csv"})
	v.SetDefault("data.boundary_path", "data/nta.geojson")
	v.SetDefault("data.boundary_name_field", "ntaname")
	v.SetDefault("output.dir", "out")
	v.SetDefault("model.test_fraction", 0.25)
	v.SetDefault("model.seed", 42)
	v.SetDefault("model.folds", 5)
	v.SetDefault("model.lambda_min", 1e-3)
	v.SetDefault("model.lambda_max", 1e3)
	v.SetDefault("model.lambda_count", 13)
	v.SetDefault("model.lasso_max_iter", 1000)
	v.SetDefault("model.lasso_tol", 1e-6)
	v.SetDefault("export.driver", "sqlite")
	v.SetDefault("export.dsn", "out/trips.db")
	v.SetDefault("export.sample_size", 1000)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
