package scheduler

import "time"

type Scheduler interface {
	Start() error
	Stop()
}

const (
	// IntervalQuoteRefresh paces the external market-quote refresh.
	IntervalQuoteRefresh = 1 * time.Minute
	// IntervalAlertScan paces the price-alert sweep.
	IntervalAlertScan = 1 * time.Minute
)
