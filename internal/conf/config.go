package conf

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	MongoDB  MongoConfig
	Upstream UpstreamConfig
	Refresh  RefreshConfig
	Alerting AlertingConfig
}

type ServerConfig struct {
	Port string
}

type MongoConfig struct {
	URI      string
	Database string
}

// UpstreamConfig 通報後端 API 的連線設定
type UpstreamConfig struct {
	BaseURL    string        `mapstructure:"base_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries uint          `mapstructure:"max_retries"` // 暫時性錯誤 (網路/5xx) 的重試上限
}

// RefreshConfig 背景更新排程
type RefreshConfig struct {
	Enabled  bool
	Schedule string // cron 表達式 (5 欄位)
}

// AlertingConfig 降級告警 Webhook
type AlertingConfig struct {
	WebhookURL       string `mapstructure:"webhook_url"`
	FailureThreshold int    `mapstructure:"failure_threshold"` // 連續失敗幾次才告警
}

func LoadConfig() (*Config, error) {
	viper.AddConfigPath("./config") // 設定檔路徑
	viper.SetConfigName("config")   // 檔名
	viper.SetConfigType("yaml")     // 格式

	viper.AutomaticEnv() // 允許讀取環境變數

	// 預設值：沒有設定檔也要能跑起來
	viper.SetDefault("server.port", ":8080")
	viper.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	viper.SetDefault("mongodb.database", "report_dashboard")
	viper.SetDefault("upstream.base_url", "http://localhost:9000")
	viper.SetDefault("upstream.timeout", "10s")
	viper.SetDefault("upstream.max_retries", 3)
	viper.SetDefault("refresh.enabled", true)
	viper.SetDefault("refresh.schedule", "*/5 * * * *")
	viper.SetDefault("alerting.failure_threshold", 3)

	if err := viper.ReadInConfig(); err != nil {
		// 找不到設定檔就全部吃預設值，其他錯誤 (格式壞掉) 才回報
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
		logrus.Warn("找不到設定檔，使用預設值")
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	logrus.Info("設定檔讀取成功")
	return &cfg, nil
}
