package lottery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// setupBenchmarkRedisClient 创建用于基准测试的Redis客户端
func setupBenchmarkRedisClient() *redis.Client {
	config := DefaultRedisConfig()
	config.DB = 2 // 使用专门的基准测试数据库
	config.PoolSize = 20
	config.MinIdleConns = 5
	return NewRedisClientFromConfig(config)
}

// BenchmarkPurchaseTicket 购票性能基准测试
func BenchmarkPurchaseTicket(b *testing.B) {
	m, err := NewLotteryMachine(WithLogger(NewSilentLogger()))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.PurchaseTicket("Player"); err != nil {
			// 票池已满, 开奖后继续
			b.StopTimer()
			if _, err := m.Draw(); err != nil {
				b.Fatal(err)
			}
			b.StartTimer()
		}
	}
}

// BenchmarkDraw 开奖性能基准测试
func BenchmarkDraw(b *testing.B) {
	for _, sold := range []int{0, 25, DefaultTotalBalls} {
		b.Run(fmt.Sprintf("售出%d张", sold), func(b *testing.B) {
			m, err := NewLotteryMachine(WithLogger(NewSilentLogger()), WithRandomGenerator(NewMathRandGenerator(1)))
			if err != nil {
				b.Fatal(err)
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				for j := 0; j < sold; j++ {
					if _, err := m.PurchaseTicket("Player"); err != nil {
						b.Fatal(err)
					}
				}
				b.StartTimer()

				if _, err := m.DrawRound(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkConcurrentPurchase 并发购票性能基准测试
func BenchmarkConcurrentPurchase(b *testing.B) {
	m, err := NewLotteryMachine(WithLogger(NewSilentLogger()))
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := m.PurchaseTicket("Player"); err != nil {
				_, _ = m.Draw()
			}
		}
	})
}

// BenchmarkRedisJournal 开奖记录写入性能基准测试, 需要本地 Redis
func BenchmarkRedisJournal(b *testing.B) {
	rdb := setupBenchmarkRedisClient()
	defer func() {
		rdb.FlushDB(context.Background())
		rdb.Close()
	}()

	// 测试Redis连接
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		b.Skip("Redis不可用，跳过基准测试")
	}

	journal := NewRedisDrawJournal(rdb, &JournalConfig{
		Key:        "bench:draws",
		MaxEntries: 100,
		Timeout:    time.Second,
	}, NewSilentLogger())
	ctx := context.Background()
	result := sampleDrawResult(1)

	b.Run("写入", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := journal.RecordDraw(ctx, result); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("读取", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := journal.RecentDraws(ctx, 10); err != nil {
				b.Fatal(err)
			}
		}
	})
}
