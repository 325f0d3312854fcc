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
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Schedule ScheduleConfig `yaml:"schedule" mapstructure:"schedule"`
	FTP      FTPConfig      `yaml:"ftp" mapstructure:"ftp"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// SourcesConfig locates the input files and the report output directory.
type SourcesConfig struct {
	WorkbookPath       string   `yaml:"workbook_path" mapstructure:"workbook_path"`
	DrivingHistoryDirs []string `yaml:"driving_history_dirs" mapstructure:"driving_history_dirs"`
	ActivityDetailDirs []string `yaml:"activity_detail_dirs" mapstructure:"activity_detail_dirs"`
	ReportDir          string   `yaml:"report_dir" mapstructure:"report_dir"`
}

// ScheduleConfig holds the default shift window and classifier thresholds.
type ScheduleConfig struct {
	DefaultStart      string `yaml:"default_start" mapstructure:"default_start"`
	DefaultEnd        string `yaml:"default_end" mapstructure:"default_end"`
	LateThresholdMin  int    `yaml:"late_threshold_minutes" mapstructure:"late_threshold_minutes"`
	EarlyThresholdMin int    `yaml:"early_end_threshold_minutes" mapstructure:"early_end_threshold_minutes"`
	ShiftsPath        string `yaml:"shifts_path" mapstructure:"shifts_path"`
}

// FTPConfig configures the optional telematics drop-zone sync.
type FTPConfig struct {
	DropURL     string `yaml:"drop_url" mapstructure:"drop_url"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// PipelineConfig configures multi-date run behavior.
type PipelineConfig struct {
	MaxConcurrentDates int `yaml:"max_concurrent_dates" mapstructure:"max_concurrent_dates"`
}

// StoreConfig configures the run-history backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
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
	v.SetEnvPrefix("TRAXOVO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("sources.workbook_path", "data/equipment_billing.xlsx")
	v.SetDefault("sources.driving_history_dirs", []string{"data/driving_history", "data", "."})
	v.SetDefault("sources.activity_detail_dirs", []string{"data/activity_detail", "data", "."})
	v.SetDefault("sources.report_dir", "reports")
	v.SetDefault("schedule.default_start", "07:00")
	v.SetDefault("schedule.default_end", "17:00")
	v.SetDefault("schedule.late_threshold_minutes", 15)
	v.SetDefault("schedule.early_end_threshold_minutes", 30)
	v.SetDefault("schedule.shifts_path", "shifts.yaml")
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("pipeline.max_concurrent_dates", 1)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "attendance.db")
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
