package lottery

import (
	"sync"
	"sync/atomic"
	"time"
)

// MachineMetrics 抽奖机运行指标
type MachineMetrics struct {
	// 彩票统计
	TicketsSold       int64 `json:"tickets_sold"`       // 售出彩票数
	PurchasesRejected int64 `json:"purchases_rejected"` // 被拒绝的购买次数

	// 开奖统计
	TotalDraws       int64 `json:"total_draws"`        // 总开奖次数
	DrawsWithWinners int64 `json:"draws_with_winners"` // 有中奖者的开奖次数
	RanksWon         int64 `json:"ranks_won"`          // 中奖名次总数
	TotalPayout      int64 `json:"total_payout"`       // 累计派奖金额
	FailedDraws      int64 `json:"failed_draws"`       // 失败的开奖次数
	TotalDrawTime    int64 `json:"total_draw_time"`    // 总开奖时间(纳秒)
	AverageDrawTime  int64 `json:"average_draw_time"`  // 平均开奖时间(纳秒)
	JournalFailures  int64 `json:"journal_failures"`   // 开奖记录写入失败次数

	// 时间戳
	StartTime      int64 `json:"start_time"`       // 开始时间
	LastUpdateTime int64 `json:"last_update_time"` // 最后更新时间
}

// WinRate 获取有中奖者的开奖比例
func (m *MachineMetrics) WinRate() float64 {
	if m.TotalDraws == 0 {
		return 0.0
	}
	return float64(m.DrawsWithWinners) / float64(m.TotalDraws) * 100.0
}

// AverageDrawDuration 获取平均开奖时间
func (m *MachineMetrics) AverageDrawDuration() time.Duration {
	return time.Duration(m.AverageDrawTime)
}

// MachineMonitor 抽奖机监控器
type MachineMonitor struct {
	metrics MachineMetrics
	mu      sync.RWMutex
	enabled bool
}

// NewMachineMonitor 创建新的监控器
func NewMachineMonitor() *MachineMonitor {
	mm := &MachineMonitor{enabled: true}
	mm.Reset()
	return mm
}

// Enable 启用监控
func (mm *MachineMonitor) Enable() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.enabled = true
}

// Disable 禁用监控
func (mm *MachineMonitor) Disable() {
	mm.mu.Lock()
	defer mm.mu.Unlock()

	mm.enabled = false
}

// IsEnabled 检查是否启用了监控
func (mm *MachineMonitor) IsEnabled() bool {
	mm.mu.RLock()
	defer mm.mu.RUnlock()

	return mm.enabled
}

func (mm *MachineMonitor) touch() {
	atomic.StoreInt64(&mm.metrics.LastUpdateTime, time.Now().UnixNano())
}

// RecordPurchase 记录购票操作
func (mm *MachineMonitor) RecordPurchase(success bool) {
	if !mm.IsEnabled() {
		return
	}

	if success {
		atomic.AddInt64(&mm.metrics.TicketsSold, 1)
	} else {
		atomic.AddInt64(&mm.metrics.PurchasesRejected, 1)
	}
	mm.touch()
}

// RecordDraw 记录开奖操作
func (mm *MachineMonitor) RecordDraw(result *DrawResult, duration time.Duration) {
	if !mm.IsEnabled() {
		return
	}

	if result == nil {
		atomic.AddInt64(&mm.metrics.FailedDraws, 1)
		mm.touch()
		return
	}

	totalDraws := atomic.AddInt64(&mm.metrics.TotalDraws, 1)
	totalTime := atomic.AddInt64(&mm.metrics.TotalDrawTime, int64(duration))
	atomic.StoreInt64(&mm.metrics.AverageDrawTime, totalTime/totalDraws)

	if won := result.WinnerCount(); won > 0 {
		atomic.AddInt64(&mm.metrics.DrawsWithWinners, 1)
		atomic.AddInt64(&mm.metrics.RanksWon, int64(won))
	}
	atomic.AddInt64(&mm.metrics.TotalPayout, int64(result.TotalPayout))
	mm.touch()
}

// RecordJournalFailure 记录开奖记录写入失败
func (mm *MachineMonitor) RecordJournalFailure() {
	if !mm.IsEnabled() {
		return
	}

	atomic.AddInt64(&mm.metrics.JournalFailures, 1)
	mm.touch()
}

// GetMetrics 获取指标的副本
func (mm *MachineMonitor) GetMetrics() MachineMetrics {
	return MachineMetrics{
		TicketsSold:       atomic.LoadInt64(&mm.metrics.TicketsSold),
		PurchasesRejected: atomic.LoadInt64(&mm.metrics.PurchasesRejected),
		TotalDraws:        atomic.LoadInt64(&mm.metrics.TotalDraws),
		DrawsWithWinners:  atomic.LoadInt64(&mm.metrics.DrawsWithWinners),
		RanksWon:          atomic.LoadInt64(&mm.metrics.RanksWon),
		TotalPayout:       atomic.LoadInt64(&mm.metrics.TotalPayout),
		FailedDraws:       atomic.LoadInt64(&mm.metrics.FailedDraws),
		TotalDrawTime:     atomic.LoadInt64(&mm.metrics.TotalDrawTime),
		AverageDrawTime:   atomic.LoadInt64(&mm.metrics.AverageDrawTime),
		JournalFailures:   atomic.LoadInt64(&mm.metrics.JournalFailures),
		StartTime:         atomic.LoadInt64(&mm.metrics.StartTime),
		LastUpdateTime:    atomic.LoadInt64(&mm.metrics.LastUpdateTime),
	}
}

// Reset 重置指标
func (mm *MachineMonitor) Reset() {
	atomic.StoreInt64(&mm.metrics.TicketsSold, 0)
	atomic.StoreInt64(&mm.metrics.PurchasesRejected, 0)
	atomic.StoreInt64(&mm.metrics.TotalDraws, 0)
	atomic.StoreInt64(&mm.metrics.DrawsWithWinners, 0)
	atomic.StoreInt64(&mm.metrics.RanksWon, 0)
	atomic.StoreInt64(&mm.metrics.TotalPayout, 0)
	atomic.StoreInt64(&mm.metrics.FailedDraws, 0)
	atomic.StoreInt64(&mm.metrics.TotalDrawTime, 0)
	atomic.StoreInt64(&mm.metrics.AverageDrawTime, 0)
	atomic.StoreInt64(&mm.metrics.JournalFailures, 0)
	atomic.StoreInt64(&mm.metrics.StartTime, time.Now().UnixNano())
	atomic.StoreInt64(&mm.metrics.LastUpdateTime, time.Now().UnixNano())
}
