package lottery

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "lotto.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigManager_LoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		setupEnv    func(t *testing.T)
		file        string
		expectError bool
		validate    func(*testing.T, *Config)
	}{
		{
			name: "default_config",
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, DefaultTotalBalls, config.Lottery.TotalBalls)
				assert.Equal(t, DefaultStartingPot, config.Lottery.StartingPot)
				assert.Equal(t, []float64{0.75, 0.15, 0.10}, config.Lottery.PrizeSchedule)
				assert.Empty(t, config.Lottery.AutoDrawSchedule)
				assert.Equal(t, "localhost:6379", config.Redis.Addr)
				assert.False(t, config.Journal.Enabled)
				assert.Equal(t, DefaultJournalKey, config.Journal.Key)
				assert.Equal(t, 2*time.Second, config.Journal.Timeout)
				assert.Equal(t, 100*time.Millisecond, config.Journal.RetryInterval)
				assert.True(t, config.CircuitBreaker.Enabled)
				assert.Equal(t, 30*time.Second, config.CircuitBreaker.Timeout)
				assert.False(t, config.Log.Debug)
			},
		},
		{
			name: "environment_variables",
			setupEnv: func(t *testing.T) {
				t.Setenv("LOTTO_LOTTERY_TOTAL_BALLS", "30")
				t.Setenv("LOTTO_LOTTERY_STARTING_POT", "500")
				t.Setenv("LOTTO_REDIS_ADDR", "redis:6379")
				t.Setenv("LOTTO_JOURNAL_ENABLED", "true")
				t.Setenv("LOTTO_JOURNAL_TIMEOUT", "5s")
				t.Setenv("LOTTO_LOG_DEBUG", "true")
			},
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, 30, config.Lottery.TotalBalls)
				assert.Equal(t, 500, config.Lottery.StartingPot)
				assert.Equal(t, "redis:6379", config.Redis.Addr)
				assert.True(t, config.Journal.Enabled)
				assert.Equal(t, 5*time.Second, config.Journal.Timeout)
				assert.True(t, config.Log.Debug)
			},
		},
		{
			name: "config_file",
			file: `
lottery:
  total_balls: 40
  prize_schedule: [0.6, 0.3, 0.1]
  auto_draw_schedule: "@every 30m"
  seed: 42
journal:
  enabled: true
  key: lotto:test
  max_entries: 10
circuit_breaker:
  enabled: false
`,
			validate: func(t *testing.T, config *Config) {
				assert.Equal(t, 40, config.Lottery.TotalBalls)
				assert.Equal(t, []float64{0.6, 0.3, 0.1}, config.Lottery.PrizeSchedule)
				assert.Equal(t, "@every 30m", config.Lottery.AutoDrawSchedule)
				assert.Equal(t, int64(42), config.Lottery.Seed)
				assert.Equal(t, "lotto:test", config.Journal.Key)
				assert.Equal(t, 10, config.Journal.MaxEntries)
				assert.False(t, config.CircuitBreaker.Enabled)
				assert.Equal(t, DefaultStartingPot, config.Lottery.StartingPot)
			},
		},
		{
			name:        "invalid_schedule_in_file",
			file:        "lottery:\n  prize_schedule: [0.5, 0.4]\n",
			expectError: true,
		},
		{
			name:        "invalid_auto_draw_schedule",
			setupEnv:    func(t *testing.T) { t.Setenv("LOTTO_LOTTERY_AUTO_DRAW_SCHEDULE", "sometimes") },
			expectError: true,
		},
		{
			name:        "too_few_balls",
			setupEnv:    func(t *testing.T) { t.Setenv("LOTTO_LOTTERY_TOTAL_BALLS", "2") },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			t.Chdir(dir)
			t.Setenv("HOME", dir)
			if tt.setupEnv != nil {
				tt.setupEnv(t)
			}

			cm := NewConfigManager()
			if tt.file != "" {
				cm = NewConfigManagerWithFile(writeConfigFile(t, dir, tt.file))
			}

			config, err := cm.LoadConfig()
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cm.GetConfig())
				return
			}

			require.NoError(t, err)
			require.NotNil(t, config)
			assert.Same(t, config, cm.GetConfig())
			if tt.validate != nil {
				tt.validate(t, config)
			}
		})
	}
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		wantErr      error
	}{
		{"valid_config", func(c *Config) {}, nil},
		{"missing_lottery", func(c *Config) { c.Lottery = nil }, ErrConfigInvalid},
		{"bad_schedule", func(c *Config) { c.Lottery.PrizeSchedule = []float64{0.9} }, ErrInvalidPrizeSchedule},
		{"too_few_balls", func(c *Config) { c.Lottery.TotalBalls = 2 }, ErrInvalidTotalBalls},
		{"negative_pot", func(c *Config) { c.Lottery.StartingPot = -5 }, ErrInvalidStartingPot},
		{"bad_cron", func(c *Config) { c.Lottery.AutoDrawSchedule = "* *" }, ErrInvalidDrawSchedule},
		{"disabled_journal_is_not_checked", func(c *Config) { c.Journal.Key = "" }, nil},
		{"journal_without_key", func(c *Config) { c.Journal.Enabled = true; c.Journal.Key = "" }, ErrConfigInvalid},
		{"journal_without_entries", func(c *Config) { c.Journal.Enabled = true; c.Journal.MaxEntries = 0 }, ErrInvalidCount},
		{"journal_bad_retries", func(c *Config) { c.Journal.Enabled = true; c.Journal.RetryAttempts = 11 }, ErrInvalidRetryAttempts},
		{"journal_bad_interval", func(c *Config) { c.Journal.Enabled = true; c.Journal.RetryInterval = -1 }, ErrInvalidRetryInterval},
		{"journal_without_redis", func(c *Config) { c.Journal.Enabled = true; c.Redis.Addr = "" }, ErrConfigInvalid},
		{"journal_bad_pool", func(c *Config) { c.Journal.Enabled = true; c.Redis.PoolSize = 0 }, ErrConfigInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modifyConfig(config)

			err := config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMachineConfigOptions(t *testing.T) {
	config := DefaultMachineConfig()
	config.TotalBalls = 10
	config.StartingPot = 0
	config.Seed = 99

	build := func() *LotteryMachine {
		m, err := NewLotteryMachineWithSchedule(config.PrizeSchedule,
			append(config.Options(), WithLogger(NewSilentLogger()))...)
		require.NoError(t, err)
		return m
	}

	m1, m2 := build(), build()
	assert.Equal(t, 10, m1.TotalBalls())
	assert.Equal(t, 0, m1.PrizePot())

	n1, err := m1.Draw()
	require.NoError(t, err)
	n2, err := m2.Draw()
	require.NoError(t, err)
	assert.Equal(t, n1, n2)
}

func TestDefaultConfigManager(t *testing.T) {
	cm := NewDefaultConfigManager()
	config := cm.GetConfig()

	require.NotNil(t, config)
	assert.NoError(t, config.Validate())
	assert.Empty(t, cm.ConfigFileUsed())
	assert.Equal(t, DefaultCircuitBreakerName, config.CircuitBreaker.Name)
}

func TestNewRedisClientFromConfig(t *testing.T) {
	config := DefaultRedisConfig()
	config.Addr = "redis.internal:6380"
	config.DB = 2
	config.TLSEnabled = true

	client := NewRedisClientFromConfig(config)
	defer client.Close()

	opts := client.Options()
	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, 2, opts.DB)
	assert.NotNil(t, opts.TLSConfig)

	defaultClient := NewRedisClientFromConfig(nil)
	defer defaultClient.Close()
	assert.Equal(t, DefaultRedisAddr, defaultClient.Options().Addr)
}

func TestConfigManager_WatchConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, dir, "lottery:\n  prize_schedule: [0.75, 0.15, 0.10]\n")

	cm := NewConfigManagerWithFile(path)
	_, err := cm.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, path, cm.ConfigFileUsed())

	machine := newTestMachine(t, NewSecureRandomGenerator())
	cm.WatchConfig(func(c *Config) {
		_ = machine.UpdatePrizeSchedule(c.Lottery.PrizeSchedule)
	})

	// viper starts its watcher asynchronously
	time.Sleep(100 * time.Millisecond)
	writeConfigFile(t, dir, "lottery:\n  prize_schedule: [0.5, 0.5]\n")

	require.Eventually(t, func() bool {
		return len(machine.PrizeSchedule()) == 2
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, PrizeSchedule{0.5, 0.5}, machine.PrizeSchedule())
	assert.Equal(t, []float64{0.5, 0.5}, cm.GetConfig().Lottery.PrizeSchedule)
}
