package configuration

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"trend-api/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App          App          `json:"app"`
	Store        Store        `json:"store"`
	Database     Database     `json:"database"`
	RedisClient  RedisClient  `json:"redisClient"`
	YouTube      YouTube      `json:"youtube"`
	GoogleTrends GoogleTrends `json:"googleTrends"`
	Trends       Trends       `json:"trends"`
	Pubsub       Pubsub       `json:"pubsub"`
	ServiceBus   ServiceBus   `json:"serviceBus"`
	Logger       Logger       `json:"logger"`
	Cors         Cors         `json:"cors"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

// Store selects the trend store backend: postgres, mssql, mysql, mongo or sqlite.
type Store struct {
	Driver string `json:"driver"`
}

type Database struct {
	Psql   Db     `json:"psql"`
	MySql  Db     `json:"mysql"`
	Mongo  Db     `json:"mongo"`
	Mssql  Db     `json:"mssql"`
	Sqlite Sqlite `json:"sqlite"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	URI      string `json:"uri"`
}

type Sqlite struct {
	Path string `json:"path"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type YouTube struct {
	APIKey       string `json:"apiKey"`
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
	Endpoint     string `json:"endpoint"`
}

type GoogleTrends struct {
	BaseURL      string  `json:"baseURL"`
	Language     string  `json:"language"`
	TimezoneMins int     `json:"timezoneMins"`
	RetryMax     int     `json:"retryMax"`
	RateLimit    float64 `json:"rateLimit"`
	RateBurst    int     `json:"rateBurst"`
}

// Trends holds the cache tuning knobs. Durations are Go duration strings ("3h", "15s").
type Trends struct {
	FreshnessWindow    string `json:"freshnessWindow"`
	ProviderTimeout    string `json:"providerTimeout"`
	VideoRetention     string `json:"videoRetention"`
	TopicRetention     string `json:"topicRetention"`
	EvictionSchedule   string `json:"evictionSchedule"`
	EvictOnStartup     bool   `json:"evictOnStartup"`
	VideoFetchSize     int64  `json:"videoFetchSize"`
	TagFetchConcurrent int    `json:"tagFetchConcurrent"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Logger struct {
	Format string `json:"format"`
	Level  string `json:"level"`
}

type Cors struct {
	AllowOrigins []string `json:"allowOrigins"`
}

const (
	DefaultFreshnessWindow  = 3 * time.Hour
	DefaultProviderTimeout  = 15 * time.Second
	DefaultVideoRetention   = 3 * time.Hour
	DefaultTopicRetention   = 24 * time.Hour
	DefaultEvictionSchedule = "0 */3 * * *"
	DefaultVideoFetchSize   = 10
	DefaultTagConcurrency   = 4
)

var C Config

func init() {
	// OS environment keeps precedence over both files
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	initStore(&C)
	initDatabase(&C)
	initApp(&C)
	initTrends(&C)
	initProviders(&C)
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initStore(C *Config) {
	if v := os.Getenv("STORE_DRIVER"); v != "" {
		C.Store.Driver = v
	}
	C.Store.Driver = strings.ToLower(strings.TrimSpace(C.Store.Driver))
	if C.Store.Driver == "" {
		C.Store.Driver = "sqlite"
	}
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")

	C.Database.MySql.Name = getConfigValue(C.Database.MySql.Name, "MYSQL_DB_NAME", "")
	C.Database.MySql.Host = getConfigValue(C.Database.MySql.Host, "MYSQL_HOST", "localhost")
	C.Database.MySql.Port = getConfigValue(C.Database.MySql.Port, "MYSQL_PORT", "3306")
	C.Database.MySql.User = getConfigValue(C.Database.MySql.User, "MYSQL_USER", "")
	C.Database.MySql.Password = getConfigValue(C.Database.MySql.Password, "MYSQL_PASSWORD", "")

	// MSSQL defaults match the local docker-compose container
	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "localhost")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "sa")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "Toughpass1!")

	C.Database.Mongo.URI = getConfigValue(C.Database.Mongo.URI, "MONGO_URI", "")
	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "trend_api")

	C.Database.Sqlite.Path = getConfigValue(C.Database.Sqlite.Path, "SQLITE_PATH", "trends.db")

	C.RedisClient.Host = getConfigValue(C.RedisClient.Host, "REDIS_HOST", "")
	C.RedisClient.Port = getConfigValue(C.RedisClient.Port, "REDIS_PORT", "6379")
	C.RedisClient.Username = getConfigValue(C.RedisClient.Username, "REDIS_USERNAME", "")
	C.RedisClient.Password = getConfigValue(C.RedisClient.Password, "REDIS_PASSWORD", "")
}

func initApp(C *Config) {
	// SECRET_KEY from the environment overrides the config file
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order: APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			C.App.TLSEnabled = b
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.TLSEnabled {
		logger.GetLogger().WithFields(map[string]interface{}{"cert": C.App.TLSCertFile, "key": C.App.TLSKeyFile}).Info("TLS enabled via configuration")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
	if len(C.Cors.AllowOrigins) == 0 {
		if v := os.Getenv("CORS_ALLOW_ORIGINS"); v != "" {
			C.Cors.AllowOrigins = strings.Split(v, ",")
		} else {
			C.Cors.AllowOrigins = []string{"*"}
		}
	}
}

func initTrends(C *Config) {
	C.Trends.FreshnessWindow = getConfigValue(C.Trends.FreshnessWindow, "TRENDS_FRESHNESS_WINDOW", DefaultFreshnessWindow.String())
	C.Trends.ProviderTimeout = getConfigValue(C.Trends.ProviderTimeout, "TRENDS_PROVIDER_TIMEOUT", DefaultProviderTimeout.String())
	C.Trends.VideoRetention = getConfigValue(C.Trends.VideoRetention, "TRENDS_VIDEO_RETENTION", DefaultVideoRetention.String())
	C.Trends.TopicRetention = getConfigValue(C.Trends.TopicRetention, "TRENDS_TOPIC_RETENTION", DefaultTopicRetention.String())
	C.Trends.EvictionSchedule = getConfigValue(C.Trends.EvictionSchedule, "TRENDS_EVICTION_SCHEDULE", DefaultEvictionSchedule)
	if v := os.Getenv("TRENDS_EVICT_ON_STARTUP"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			C.Trends.EvictOnStartup = b
		}
	}
	if C.Trends.VideoFetchSize <= 0 {
		C.Trends.VideoFetchSize = DefaultVideoFetchSize
	}
	if C.Trends.TagFetchConcurrent <= 0 {
		C.Trends.TagFetchConcurrent = DefaultTagConcurrency
	}
}

func initProviders(C *Config) {
	C.GoogleTrends.BaseURL = getConfigValue(C.GoogleTrends.BaseURL, "GOOGLE_TRENDS_BASE_URL", "https://trends.google.com")
	C.GoogleTrends.Language = getConfigValue(C.GoogleTrends.Language, "GOOGLE_TRENDS_LANGUAGE", "en-US")
	if C.GoogleTrends.RetryMax <= 0 {
		C.GoogleTrends.RetryMax = 2
	}
	if C.GoogleTrends.RateLimit <= 0 {
		C.GoogleTrends.RateLimit = 1
	}
	if C.GoogleTrends.RateBurst <= 0 {
		C.GoogleTrends.RateBurst = 3
	}
	C.Pubsub.ProjectID = getConfigValue(C.Pubsub.ProjectID, "PUBSUB_PROJECT_ID", "")
	C.Pubsub.Topic = getConfigValue(C.Pubsub.Topic, "PUBSUB_TOPIC", "trend-events")
	C.ServiceBus.Namespace = getConfigValue(C.ServiceBus.Namespace, "SERVICEBUS_NAMESPACE", "")
	C.ServiceBus.Queue = getConfigValue(C.ServiceBus.Queue, "SERVICEBUS_QUEUE", "trend-events")
}

// FreshnessWindowDuration returns the configured window, falling back to the default when unparsable.
func (t Trends) FreshnessWindowDuration() time.Duration {
	return ParseDuration(t.FreshnessWindow, DefaultFreshnessWindow)
}

func (t Trends) ProviderTimeoutDuration() time.Duration {
	return ParseDuration(t.ProviderTimeout, DefaultProviderTimeout)
}

func (t Trends) VideoRetentionDuration() time.Duration {
	return ParseDuration(t.VideoRetention, DefaultVideoRetention)
}

func (t Trends) TopicRetentionDuration() time.Duration {
	return ParseDuration(t.TopicRetention, DefaultTopicRetention)
}

// ParseDuration parses raw as a positive duration. Empty, invalid or non-positive input yields def.
func ParseDuration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		logger.GetLogger().WithFields(map[string]interface{}{"value": raw, "default": def.String()}).Warn("Invalid duration in configuration, using default")
		return def
	}
	return d
}
