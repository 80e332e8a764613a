package reminder_config

import (
	"time"

	pginfra "github.com/jafetfresenbet/TrueTime/internal/repository/postgres"
)

type KafkaCfg struct {
	Enable  bool     `mapstructure:"enable"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type SMTP struct {
	Addr       string        `mapstructure:"addr"`
	From       string        `mapstructure:"from"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	UseTLS     bool          `mapstructure:"use_tls"`
	Timeout    time.Duration `mapstructure:"timeout"`
	SubjPrefix string        `mapstructure:"subj_prefix"`
}

type WorkerCfg struct {
	Tick            time.Duration `mapstructure:"tick"`
	CycleTimeout    time.Duration `mapstructure:"cycle_timeout"`
	SendConcurrency int           `mapstructure:"send_concurrency"`
	SendAttempts    int           `mapstructure:"send_attempts"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
}

type OTELCfg struct {
	Enable       bool    `mapstructure:"enable"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
}

type Config struct {
	DB       pginfra.Config `mapstructure:"db"`
	Kafka    KafkaCfg       `mapstructure:"kafka"`
	SMTP     SMTP           `mapstructure:"smtp"`
	Worker   WorkerCfg      `mapstructure:"worker"`
	OTEL     OTELCfg        `mapstructure:"otel"`
	LogLevel string         `mapstructure:"log_level"`
}
