// File: /jobs/active_event_audit_job.go
package jobs

import (
	"context"
	"sync"
	"time"

	"convoy-api/models"
	"convoy-api/observability"
	"convoy-api/utils"
)

type ActiveStateChecker interface {
	ActiveState(ctx context.Context) (models.ActiveStateReport, error)
}

// ActiveEventAlerter is told when the active-event count leaves one.
type ActiveEventAlerter interface {
	SendActiveEventAlert(report models.ActiveStateReport) error
}

// ActiveEventAuditJob periodically checks that exactly one event is active.
// A failed two-step activation leaves zero active events; this is where that
// gets noticed.
type ActiveEventAuditJob struct {
	events   ActiveStateChecker
	alerter  ActiveEventAlerter
	interval time.Duration
	ticker   *time.Ticker
	done     chan bool

	mu         sync.Mutex
	lastStatus models.ActiveStatus
}

func NewActiveEventAuditJob(events ActiveStateChecker, alerter ActiveEventAlerter, interval time.Duration) *ActiveEventAuditJob {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &ActiveEventAuditJob{
		events:     events,
		alerter:    alerter,
		interval:   interval,
		done:       make(chan bool),
		lastStatus: models.ActiveOne,
	}
}

// Start begins the audit job
func (j *ActiveEventAuditJob) Start() {
	utils.Logger.Info("active event audit job started", "interval", j.interval.String())
	j.ticker = time.NewTicker(j.interval)

	go func() {
		j.RunOnce(context.Background())

		for {
			select {
			case <-j.ticker.C:
				j.RunOnce(context.Background())
			case <-j.done:
				utils.Logger.Info("active event audit job stopped")
				return
			}
		}
	}()
}

// Stop stops the audit job
func (j *ActiveEventAuditJob) Stop() {
	if j.ticker == nil {
		return
	}
	j.ticker.Stop()
	j.done <- true
}

// RunOnce performs one check. Admins are alerted once per transition into an
// unhealthy state, not on every tick.
func (j *ActiveEventAuditJob) RunOnce(ctx context.Context) (models.ActiveStateReport, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	report, err := j.events.ActiveState(ctx)
	if err != nil {
		utils.Logger.Error("active event audit failed", "error", err)
		return report, err
	}
	observability.ActiveEvents.Set(float64(report.Count))

	j.mu.Lock()
	previous := j.lastStatus
	j.lastStatus = report.Status
	j.mu.Unlock()

	if report.Healthy() {
		if previous != models.ActiveOne {
			utils.Logger.Info("active event state recovered", "active_ids", report.ActiveIDs)
		}
		return report, nil
	}

	utils.Logger.Warn("active event invariant violated",
		"status", report.Status,
		"count", report.Count,
		"active_ids", report.ActiveIDs,
	)
	if report.Status != previous && j.alerter != nil {
		if err := j.alerter.SendActiveEventAlert(report); err != nil {
			utils.Logger.Warn("failed to send active event alert", "error", err)
		}
	}
	return report, nil
}
