package lottery

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
)

// CircuitBreakerJournal 带熔断器的开奖记录
type CircuitBreakerJournal struct {
	journal DrawJournal

	breaker *gobreaker.CircuitBreaker
	logger  Logger
	config  *CircuitBreakerConfig
}

// NewCircuitBreakerJournal 创建带熔断器的开奖记录
func NewCircuitBreakerJournal(journal DrawJournal, config *CircuitBreakerConfig, logger Logger) *CircuitBreakerJournal {
	if config == nil {
		config = DefaultCircuitBreakerConfig()
	}
	if logger == nil {
		logger = NewSilentLogger()
	}

	if !config.Enabled {
		// 如果熔断器未启用，返回一个透传的包装器
		return &CircuitBreakerJournal{
			journal: journal,
			logger:  logger,
			config:  config,
		}
	}

	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// 当请求数达到最小要求且失败率超过阈值时触发熔断
			return counts.Requests >= config.MinRequests &&
				float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// 参数错误不代表 Redis 不可用
			return err == nil || errors.Is(err, ErrInvalidParameters) ||
				errors.Is(err, ErrInvalidCount) || errors.Is(err, ErrDrawResultCorrupted)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if config.OnStateChange {
				logger.Info("Circuit breaker '%s' state changed from %s to %s", name, from, to)
			}
		},
	}

	return &CircuitBreakerJournal{
		journal: journal,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger,
		config:  config,
	}
}

// executeWithBreaker 使用熔断器执行操作
func (c *CircuitBreakerJournal) executeWithBreaker(operation func() (any, error)) (any, error) {
	if c.breaker == nil {
		// 熔断器未启用，直接执行
		return operation()
	}

	result, err := c.breaker.Execute(operation)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) {
			return nil, ErrCircuitBreakerOpen.WithDetails("draw journal is failing, requests are being rejected")
		}
		if errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrServiceUnavailable.WithCause(err).WithDetails("draw journal is recovering, too many trial requests")
		}
	}

	return result, err
}

// RecordDraw 记录开奖结果
func (c *CircuitBreakerJournal) RecordDraw(ctx context.Context, result *DrawResult) error {
	_, err := c.executeWithBreaker(func() (any, error) {
		return nil, c.journal.RecordDraw(ctx, result)
	})
	return err
}

// RecentDraws 读取最近的开奖结果
func (c *CircuitBreakerJournal) RecentDraws(ctx context.Context, limit int) ([]*DrawResult, error) {
	result, err := c.executeWithBreaker(func() (any, error) {
		return c.journal.RecentDraws(ctx, limit)
	})
	if err != nil {
		return nil, err
	}

	return result.([]*DrawResult), nil
}

// State 获取熔断器状态
func (c *CircuitBreakerJournal) State() gobreaker.State {
	if c.breaker == nil {
		return gobreaker.StateClosed
	}
	return c.breaker.State()
}

// Counts 获取熔断器计数
func (c *CircuitBreakerJournal) Counts() gobreaker.Counts {
	if c.breaker == nil {
		return gobreaker.Counts{}
	}
	return c.breaker.Counts()
}
