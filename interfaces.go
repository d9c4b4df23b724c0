package lottery

import "context"

// DrawJournal records draw results for readers outside the machine
type DrawJournal interface {
	// RecordDraw appends a finished draw
	RecordDraw(ctx context.Context, result *DrawResult) error

	// RecentDraws returns up to limit draws, newest first
	RecentDraws(ctx context.Context, limit int) ([]*DrawResult, error)
}

// DrawObserver is notified after every successful draw
type DrawObserver func(result *DrawResult)
