package lottery

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config 配置结构
type Config struct {
	// 抽奖机配置
	Lottery *MachineConfig `mapstructure:"lottery"`

	// 日志配置
	Log *LogConfig `mapstructure:"log"`

	// Redis 配置
	Redis *RedisConfig `mapstructure:"redis"`

	// 开奖记录配置
	Journal *JournalConfig `mapstructure:"journal"`

	// 熔断器配置
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Lottery == nil {
		return ErrConfigInvalid.WithDetails("lottery section is required")
	}
	if err := c.Lottery.Validate(); err != nil {
		return err
	}

	if c.Journal != nil && c.Journal.Enabled {
		if err := c.Journal.Validate(); err != nil {
			return err
		}
		if c.Redis == nil || c.Redis.Addr == "" {
			return ErrConfigInvalid.WithDetails("redis address is required when the journal is enabled")
		}
		if c.Redis.PoolSize <= 0 {
			return ErrConfigInvalid.WithDetails("redis pool size must be positive")
		}
	}

	return nil
}

// MachineConfig 抽奖机配置
type MachineConfig struct {
	TotalBalls       int       `mapstructure:"total_balls"`
	StartingPot      int       `mapstructure:"starting_pot"`
	PrizeSchedule    []float64 `mapstructure:"prize_schedule"`
	AutoDrawSchedule string    `mapstructure:"auto_draw_schedule"` // cron spec, empty disables automatic draws
	Seed             int64     `mapstructure:"seed"`               // 0 uses crypto/rand, otherwise a seeded math/rand
}

// DefaultMachineConfig 返回默认抽奖机配置
func DefaultMachineConfig() *MachineConfig {
	return &MachineConfig{
		TotalBalls:    DefaultTotalBalls,
		StartingPot:   DefaultStartingPot,
		PrizeSchedule: DefaultPrizeSchedule(),
	}
}

// Validate 验证抽奖机配置
func (mc *MachineConfig) Validate() error {
	if err := ValidatePrizeSchedule(mc.PrizeSchedule); err != nil {
		return err
	}
	if err := ValidateTotalBalls(mc.TotalBalls, len(mc.PrizeSchedule)); err != nil {
		return err
	}
	if mc.StartingPot < 0 {
		return ErrInvalidStartingPot
	}
	if mc.AutoDrawSchedule != "" {
		if _, err := cron.ParseStandard(mc.AutoDrawSchedule); err != nil {
			return ErrInvalidDrawSchedule.WithCause(err).WithDetails(mc.AutoDrawSchedule)
		}
	}
	return nil
}

// Options 转换为抽奖机构造选项
func (mc *MachineConfig) Options() []MachineOption {
	opts := []MachineOption{
		WithTotalBalls(mc.TotalBalls),
		WithStartingPot(mc.StartingPot),
	}
	if mc.Seed != 0 {
		opts = append(opts, WithRandomGenerator(NewMathRandGenerator(mc.Seed)))
	}
	return opts
}

// LogConfig 日志配置
type LogConfig struct {
	Debug bool   `mapstructure:"debug"`
	File  string `mapstructure:"file"` // empty logs to stderr
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// 连接配置
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// 连接池配置
	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	// 超时配置
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`

	// TLS 配置
	TLSEnabled bool `mapstructure:"tls_enabled"`
}

// DefaultRedisConfig 返回默认的Redis配置
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         DefaultRedisAddr,
		Password:     DefaultRedisPassword,
		DB:           DefaultRedisDB,
		PoolSize:     DefaultRedisPoolSize,
		MinIdleConns: DefaultRedisMinIdleConns,
		MaxRetries:   DefaultRedisMaxRetries,
		DialTimeout:  DefaultRedisDialTimeout,
		ReadTimeout:  DefaultRedisReadTimeout,
		WriteTimeout: DefaultRedisWriteTimeout,
		PoolTimeout:  DefaultRedisPoolTimeout,
	}
}

// NewRedisClientFromConfig 从配置创建Redis客户端
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	options := &redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	}
	if config.TLSEnabled {
		options.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return redis.NewClient(options)
}

// JournalConfig 开奖记录配置
type JournalConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Key           string        `mapstructure:"key"`
	MaxEntries    int           `mapstructure:"max_entries"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
}

// DefaultJournalConfig 返回默认开奖记录配置
func DefaultJournalConfig() *JournalConfig {
	return &JournalConfig{
		Enabled:       false,
		Key:           DefaultJournalKey,
		MaxEntries:    DefaultJournalMaxEntries,
		Timeout:       DefaultJournalTimeout,
		RetryAttempts: DefaultRetryAttempts,
		RetryInterval: DefaultRetryInterval,
	}
}

// Validate 验证开奖记录配置
func (jc *JournalConfig) Validate() error {
	if jc.Key == "" {
		return ErrConfigInvalid.WithDetails("journal key is required")
	}
	if jc.MaxEntries <= 0 {
		return ErrInvalidCount.WithDetails("journal max entries must be positive")
	}
	if jc.Timeout <= 0 {
		return ErrConfigInvalid.WithDetails("journal timeout must be positive")
	}
	if jc.RetryAttempts < 0 || jc.RetryAttempts > MaxRetryAttempts {
		return ErrInvalidRetryAttempts
	}
	if jc.RetryInterval < 0 {
		return ErrInvalidRetryInterval
	}
	return nil
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: DefaultCircuitBreakerOnStateChange,
	}
}

// DefaultConfig 返回完整的默认配置
func DefaultConfig() *Config {
	return &Config{
		Lottery:        DefaultMachineConfig(),
		Log:            &LogConfig{},
		Redis:          DefaultRedisConfig(),
		Journal:        DefaultJournalConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
	}
}

// ConfigManager 配置管理器
type ConfigManager struct {
	viper  *viper.Viper
	logger Logger

	mu     sync.RWMutex
	config *Config
}

// NewConfigManager 创建配置管理器
func NewConfigManager() *ConfigManager {
	v := viper.New()

	// 设置配置文件名和路径
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/lotto")
	v.AddConfigPath("$HOME/.lotto")

	// 设置环境变量前缀
	v.SetEnvPrefix("LOTTO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &ConfigManager{
		viper:  v,
		logger: NewSilentLogger(),
	}
}

// NewConfigManagerWithFile 创建读取指定配置文件的配置管理器
func NewConfigManagerWithFile(path string) *ConfigManager {
	cm := NewConfigManager()
	cm.viper.SetConfigFile(path)
	return cm
}

// SetLogger 设置日志
func (cm *ConfigManager) SetLogger(logger Logger) {
	if logger != nil {
		cm.logger = logger
	}
}

// LoadConfig 加载配置
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	// 设置默认值
	cm.setDefaults()

	// 读取配置文件
	if err := cm.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// 配置文件不存在时使用默认配置
		cm.logger.Debug("No config file found, using defaults and environment")
	} else {
		cm.logger.Info("Loaded config file %s", cm.viper.ConfigFileUsed())
	}

	config, err := cm.decode()
	if err != nil {
		return nil, err
	}

	cm.mu.Lock()
	cm.config = config
	cm.mu.Unlock()
	return config, nil
}

// decode 解析并验证配置
func (cm *ConfigManager) decode() (*Config, error) {
	config := &Config{}
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// setDefaults 设置默认配置值
func (cm *ConfigManager) setDefaults() {
	// 抽奖机默认配置
	cm.viper.SetDefault("lottery.total_balls", DefaultTotalBalls)
	cm.viper.SetDefault("lottery.starting_pot", DefaultStartingPot)
	cm.viper.SetDefault("lottery.prize_schedule", []float64(DefaultPrizeSchedule()))
	cm.viper.SetDefault("lottery.auto_draw_schedule", "")
	cm.viper.SetDefault("lottery.seed", 0)

	// 日志默认配置
	cm.viper.SetDefault("log.debug", false)
	cm.viper.SetDefault("log.file", "")

	// Redis 默认配置
	cm.viper.SetDefault("redis.addr", DefaultRedisAddr)
	cm.viper.SetDefault("redis.password", DefaultRedisPassword)
	cm.viper.SetDefault("redis.db", DefaultRedisDB)
	cm.viper.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", DefaultRedisMinIdleConns)
	cm.viper.SetDefault("redis.max_retries", DefaultRedisMaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", "5s")
	cm.viper.SetDefault("redis.read_timeout", "3s")
	cm.viper.SetDefault("redis.write_timeout", "3s")
	cm.viper.SetDefault("redis.pool_timeout", "4s")
	cm.viper.SetDefault("redis.tls_enabled", false)

	// 开奖记录默认配置
	cm.viper.SetDefault("journal.enabled", false)
	cm.viper.SetDefault("journal.key", DefaultJournalKey)
	cm.viper.SetDefault("journal.max_entries", DefaultJournalMaxEntries)
	cm.viper.SetDefault("journal.timeout", "2s")
	cm.viper.SetDefault("journal.retry_attempts", DefaultRetryAttempts)
	cm.viper.SetDefault("journal.retry_interval", "100ms")

	// 熔断器默认配置
	cm.viper.SetDefault("circuit_breaker.enabled", true)
	cm.viper.SetDefault("circuit_breaker.name", DefaultCircuitBreakerName)
	cm.viper.SetDefault("circuit_breaker.max_requests", DefaultCircuitBreakerMaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", "60s")
	cm.viper.SetDefault("circuit_breaker.timeout", "30s")
	cm.viper.SetDefault("circuit_breaker.failure_ratio", DefaultCircuitBreakerFailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", DefaultCircuitBreakerMinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", DefaultCircuitBreakerOnStateChange)
}

// WatchConfig 监听配置变化, 新配置验证通过后才会回调
func (cm *ConfigManager) WatchConfig(callback func(*Config)) {
	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		cm.logger.Debug("Config file changed: %s (%s)", e.Name, e.Op)

		config, err := cm.decode()
		if err != nil {
			// 记录错误但不中断服务
			cm.logger.Error("Ignoring config change from %s: %v", e.Name, err)
			return
		}

		cm.mu.Lock()
		cm.config = config
		cm.mu.Unlock()

		if callback != nil {
			callback(config)
		}
	})
	cm.viper.WatchConfig()
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.config
}

// ConfigFileUsed 返回已加载的配置文件路径, 未使用配置文件时为空
func (cm *ConfigManager) ConfigFileUsed() string { return cm.viper.ConfigFileUsed() }

// ReloadConfig 重新加载配置
func (cm *ConfigManager) ReloadConfig() (*Config, error) { return cm.LoadConfig() }

// NewDefaultConfigManager 创建使用默认配置的配置管理器
func NewDefaultConfigManager() *ConfigManager {
	cm := NewConfigManager()
	cm.setDefaults()
	cm.config = DefaultConfig()
	return cm
}
