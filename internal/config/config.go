package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/deal-desk/internal/approval"
	"github.com/sells-group/deal-desk/internal/store"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Approval ApprovalConfig `yaml:"approval" mapstructure:"approval"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string           `yaml:"driver" mapstructure:"driver"` // memory | sqlite | postgres
	SQLitePath  string           `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string           `yaml:"database_url" mapstructure:"database_url"`
	Pool        store.PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// ServerConfig configures the REST API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	WriteRPS       float64  `yaml:"write_rps" mapstructure:"write_rps"`
	WriteBurst     int      `yaml:"write_burst" mapstructure:"write_burst"`
}

// ApprovalConfig configures the routing matrix and standard-deal bounds.
type ApprovalConfig struct {
	MatrixPath   string                        `yaml:"matrix_path" mapstructure:"matrix_path"`
	StandardDeal approval.StandardDealCriteria `yaml:"standard_deal" mapstructure:"standard_deal"`
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
	v.SetEnvPrefix("DEALDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.sqlite_path", "dealdesk.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.write_rps", 10.0)
	v.SetDefault("server.write_burst", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("approval.standard_deal.deal_types", approval.DefaultStandardDealCriteria().DealTypes)
	v.SetDefault("approval.standard_deal.sales_channels", approval.DefaultStandardDealCriteria().SalesChannels)
	v.SetDefault("approval.standard_deal.max_value", approval.DefaultStandardDealCriteria().MaxValue)

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

// Matrix returns the approval matrix: the YAML override when configured,
// otherwise the compiled-in default.
func (c *Config) Matrix() (approval.Matrix, error) {
	if c.Approval.MatrixPath == "" {
		return approval.DefaultMatrix(), nil
	}
	return approval.LoadMatrix(c.Approval.MatrixPath)
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
