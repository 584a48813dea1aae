package scheduler

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/interfaces"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/logger"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/models"
	"github.com/bunyCloud/gmx-eth-price-feed-avalanche/src/tracker"

	"github.com/shopspring/decimal"
)

// -----------------------------------------------------------------------------
// Pipeline
// -----------------------------------------------------------------------------

// Pipeline drives one fetch cycle per interval: read the chain price,
// track the change, fan out to subscribers, append to the ledger.
// Cycles run inline in the ticker loop, so only one is ever in flight;
// the interval is assumed to exceed a cycle's duration, which is not
// enforced.
type Pipeline struct {
	Config  *models.MConfig
	Logger  *logger.Logger
	Source  interfaces.IPriceSource
	Tracker *tracker.ChangeTracker
	Ledger  interfaces.ILedger
	Hub     interfaces.IBroadcaster
	Journal interfaces.IJournal

	countdown atomic.Int64
}

// -----------------------------------------------------------------------------

func NewPipeline(
	cfg *models.MConfig,
	source interfaces.IPriceSource,
	track *tracker.ChangeTracker,
	ledger interfaces.ILedger,
	hub interfaces.IBroadcaster,
	journal interfaces.IJournal,
) *Pipeline {
	return &Pipeline{
		Config:  cfg,
		Logger:  logger.NewLogger("Pipeline"),
		Source:  source,
		Tracker: track,
		Ledger:  ledger,
		Hub:     hub,
		Journal: journal,
	}
}

// -----------------------------------------------------------------------------

// Countdown reports the display counter, in seconds.
func (p *Pipeline) Countdown() int64 {
	return p.countdown.Load()
}

// -----------------------------------------------------------------------------

// Run blocks until ctx is cancelled. The first cycle fires immediately;
// afterwards the fetch ticker fires at the configured interval
// regardless of cycle outcomes. A second ticker drives the cosmetic
// countdown: it is reset by each cycle but otherwise independent of the
// fetch ticker, so the two drift. The drift is display-only and kept
// as-is.
func (p *Pipeline) Run(ctx context.Context) {
	interval := time.Duration(p.Config.Feed.IntervalSeconds) * time.Second
	countTick := time.Duration(p.Config.Feed.CountdownSeconds) * time.Second

	p.countdown.Store(int64(p.Config.Feed.IntervalSeconds))

	fetchTicker := time.NewTicker(interval)
	defer fetchTicker.Stop()

	countdownTicker := time.NewTicker(countTick)
	defer countdownTicker.Stop()

	p.RunCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-fetchTicker.C:
			p.RunCycle(ctx)

		case <-countdownTicker.C:
			p.tickCountdown()
		}
	}
}

// -----------------------------------------------------------------------------

// tickCountdown decrements the display counter and wraps it back to the
// full interval once it would go negative.
func (p *Pipeline) tickCountdown() {
	remaining := p.countdown.Load()
	p.Logger.Info("%d seconds until next price check...", remaining)

	remaining -= int64(p.Config.Feed.CountdownSeconds)
	if remaining < 0 {
		remaining = int64(p.Config.Feed.IntervalSeconds)
	}
	p.countdown.Store(remaining)
}

// -----------------------------------------------------------------------------

// RunCycle performs one fetch→distribute→append sequence. Every error
// is contained here: a failed fetch notifies subscribers and leaves all
// state untouched, and a failed append never undoes the broadcast that
// already went out.
func (p *Pipeline) RunCycle(ctx context.Context) {
	p.countdown.Store(int64(p.Config.Feed.IntervalSeconds))

	p.Hub.Broadcast(models.StatusMessage("Updating price..."))

	price, err := p.Source.FetchPrice(ctx)
	if err != nil {
		p.Logger.Error("Price fetch failed: %v", err)
		p.Hub.Broadcast(models.ErrorMessage("Failed to fetch price"))
		return
	}

	obs := models.MObservation{Price: price, ObservedAt: time.Now()}

	// The last price moves forward even when everything downstream
	// fails.
	change, hasChange := p.Tracker.Update(price)

	// Subscribers hear about the price before any ledger I/O starts.
	p.Hub.Broadcast(models.PriceMessage(price.InexactFloat64()))

	row, err := p.Ledger.AppendObservation(ctx, obs, change, hasChange)
	ledgerOK := err == nil
	if err != nil {
		p.Logger.Error("Ledger append failed: %v", err)
	}

	p.recordJournal(obs, change, hasChange, row, ledgerOK)
}

// -----------------------------------------------------------------------------

func (p *Pipeline) recordJournal(obs models.MObservation, change decimal.Decimal, hasChange bool, row int, ledgerOK bool) {
	if p.Journal == nil {
		return
	}

	rec := models.MJournalRecord{
		ObservedAt: obs.ObservedAt,
		Price:      obs.Price,
		LedgerRow:  row,
		LedgerOK:   ledgerOK,
	}
	if hasChange {
		c := change
		rec.PercentChange = &c
	}

	if err := p.Journal.RecordObservation(rec); err != nil {
		p.Logger.Warning("Journal write failed: %v", err)
	}
}
