package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	config     *Config
	configOnce sync.Once
)

// Config stores all configuration of the application
type Config struct {
	// Environment type
	EnvType string

	// Database，DBHost 为空时不启用数据库（管理员账户与提交日志）
	DBHost          string
	DBUser          string
	DBPassword      string
	DBName          string
	DBPort          string
	DBMigrationMode string // 数据库迁移模式: "auto"(默认), "drop"(删除重建)

	// Server
	ServerPort string
	CORSOrigin string

	// Redis，RedisHost 为空时使用内存存储
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// 住户名册（发布为 CSV 的表格）
	RosterCSVURL      string
	RosterRefreshSpec string // cron 表达式，为空则不定时刷新

	// 工单表格（Apps Script Web App）
	SpreadsheetID      string
	SheetScriptURL     string // 写入地址
	SheetReadURL       string // 读取地址，默认与写入地址相同
	SheetConfirmWrites bool   // 是否解析写入响应以确认写入成功
	HTTPTimeout        time.Duration

	// 缓存与会话
	TicketCacheTTL   time.Duration
	IntakeSessionTTL time.Duration

	// Gemini 故障排查建议
	GeminiAPIKey string
	GeminiModel  string

	// MQTT配置，MQTTBrokerURL 为空时不发送工单通知
	MQTTBrokerURL   string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTQoS         int
	MQTTRetained    bool
	MQTTSSLEnabled  bool
	MQTTTicketTopic string

	// JWT Authentication
	JWTSecretKey string
	JWTExpiry    time.Duration

	// Admin
	AdminCredentials     map[string]string // 固定的管理员账号密码对，格式 user:pass,user:pass
	DefaultAdminPassword string
}

// LoadConfig loads config from environment variables based on ENV_TYPE
func LoadConfig() *Config {
	envType := getEnv("ENV_TYPE", "LOCAL")
	prefix := ""

	if strings.ToUpper(envType) == "LOCAL" {
		prefix = "LOCAL_"
	} else if strings.ToUpper(envType) == "SERVER" {
		prefix = "SERVER_"
	} else {
		fmt.Printf("Warning: Unknown ENV_TYPE '%s', defaulting to LOCAL environment\n", envType)
		prefix = "LOCAL_"
		envType = "LOCAL"
	}

	fmt.Printf("Loading configuration for environment: %s\n", envType)

	scriptURL := getEnvRequired("SHEET_SCRIPT_URL")

	return &Config{
		EnvType: envType,

		DBHost:          getEnv(prefix+"DB_HOST", ""),
		DBUser:          getEnv(prefix+"DB_USER", ""),
		DBPassword:      getEnv(prefix+"DB_PASSWORD", ""),
		DBName:          getEnv(prefix+"DB_NAME", ""),
		DBPort:          getEnv(prefix+"DB_PORT", "3306"),
		DBMigrationMode: getEnv(prefix+"DB_MIGRATION_MODE", "auto"),

		ServerPort: getEnv(prefix+"SERVER_PORT", getEnv("SERVER_PORT", "8080")),
		CORSOrigin: getEnv("CORS_ORIGIN", "*"),

		RedisHost:     getEnv(prefix+"REDIS_HOST", getEnv("REDIS_HOST", "")),
		RedisPort:     getEnv(prefix+"REDIS_PORT", getEnv("REDIS_PORT", "6379")),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		RosterCSVURL:      getEnvRequired("ROSTER_CSV_URL"),
		RosterRefreshSpec: getEnv("ROSTER_REFRESH_SPEC", "@every 30m"),

		SpreadsheetID:      getEnv("SPREADSHEET_ID", ""),
		SheetScriptURL:     scriptURL,
		SheetReadURL:       getEnv("SHEET_READ_URL", scriptURL),
		SheetConfirmWrites: getEnvAsBool("SHEET_CONFIRM_WRITES", false),
		HTTPTimeout:        time.Duration(getEnvAsInt("HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		TicketCacheTTL:   time.Duration(getEnvAsInt("TICKET_CACHE_TTL_SECONDS", 30)) * time.Second,
		IntakeSessionTTL: time.Duration(getEnvAsInt("INTAKE_SESSION_TTL_MINUTES", 120)) * time.Minute,

		GeminiAPIKey: getEnv("GEMINI_API_KEY", getEnv("API_KEY", "")),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),

		MQTTBrokerURL:   getEnv("MQTT_BROKER_URL", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "vdp_support_server"),
		MQTTUsername:    getEnv("MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MQTT_PASSWORD", ""),
		MQTTQoS:         getEnvAsInt("MQTT_QOS", 1),
		MQTTRetained:    getEnvAsBool("MQTT_RETAINED", false),
		MQTTSSLEnabled:  getEnvAsBool("MQTT_SSL_ENABLED", false),
		MQTTTicketTopic: getEnv("MQTT_TICKET_TOPIC", "support/tickets/new"),

		JWTSecretKey: getEnv("JWT_SECRET_KEY", "vdp-support-secret-key-change-in-production"),
		JWTExpiry:    time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		AdminCredentials:     ParseCredentials(getEnv("ADMIN_CREDENTIALS", "")),
		DefaultAdminPassword: getEnv("DEFAULT_ADMIN_PASSWORD", ""),
	}
}

// GetConfig returns the application configuration as a singleton
func GetConfig() *Config {
	configOnce.Do(func() {
		config = LoadConfig()
	})
	return config
}

// DBEnabled 是否配置了数据库
func (c *Config) DBEnabled() bool {
	return c.DBHost != ""
}

// RedisEnabled 是否配置了 Redis
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// MQTTEnabled 是否配置了 MQTT
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBrokerURL != ""
}

// GetDSN returns the database connection string
func (c *Config) GetDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?charset=utf8mb4&parseTime=True&loc=Local&allowNativePasswords=true"
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// GetSheetURL 返回表格的浏览地址
func (c *Config) GetSheetURL() string {
	if c.SpreadsheetID == "" {
		return ""
	}
	return "https://docs.google.com/spreadsheets/d/" + c.SpreadsheetID + "/edit"
}

// ParseCredentials 解析 "user:pass,user2:pass2" 格式的账号列表
func ParseCredentials(raw string) map[string]string {
	creds := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.Index(pair, ":")
		if idx <= 0 {
			continue
		}
		creds[pair[:idx]] = pair[idx+1:]
	}
	return creds
}

// Helper function to get environment variable with default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as integer with default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variable as boolean with default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// 要求必须提供环境变量的辅助函数
func getEnvRequired(key string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	panic(fmt.Sprintf("Required environment variable %s is not set", key))
}
