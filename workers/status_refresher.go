package workers

import (
	stdcontext "context"
	"github.com/openaccess/exchange/context"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/stats"
)

// StatusRefresher asks repositories what became of the deposits in
// the deposit store. Only records a repository may still change are
// checked: pending and published deposits with an identifier.
type StatusRefresher struct {
	Context *context.Context
}

func NewStatusRefresher(_context *context.Context) *StatusRefresher {
	return &StatusRefresher{Context: _context}
}

// Run refreshes every refreshable record and saves the ones whose
// status changed. Problems with single records are collected in the
// returned stats and don't stop the run.
func (refresher *StatusRefresher) Run(ctx stdcontext.Context) *stats.RefreshStats {
	refreshStats := stats.NewRefreshStats()
	records := make([]*models.DepositRecord, 0)
	err := refresher.Context.Store.ForEach(func(record *models.DepositRecord) error {
		if record.Refreshable() {
			records = append(records, record)
		} else {
			refreshStats.AddSkipped()
		}
		return nil
	})
	if err != nil {
		refreshStats.AddError("Cannot read deposit records: %v", err)
	}
	refresher.Context.MessageLog.Infof("Refreshing the status of %d deposits", len(records))
	for i, record := range records {
		if ctx.Err() != nil {
			refreshStats.AddError("Refresh stopped with %d deposits left: %v",
				len(records)-i, ctx.Err())
			break
		}
		refresher.refresh(ctx, record, refreshStats)
	}
	refreshStats.Finish()
	refresher.Context.MessageLog.Infof("%s", refreshStats.Summary())
	return refreshStats
}

func (refresher *StatusRefresher) refresh(ctx stdcontext.Context, record *models.DepositRecord, refreshStats *stats.RefreshStats) {
	repo := refresher.Context.Repository(record.RepositoryId)
	if repo == nil {
		refreshStats.AddError("Deposit %s: repository %d is not configured", record.Id, record.RepositoryId)
		return
	}
	if record.Protocol != "" && record.Protocol != repo.Protocol {
		refreshStats.AddError("Deposit %s was made with %s, but %s now uses %s",
			record.Id, record.Protocol, repo.Name, repo.Protocol)
		return
	}
	protocol, err := refresher.Context.Registry.NewProtocol(repo)
	if err != nil {
		refreshStats.AddError("Deposit %s: %v", record.Id, err)
		return
	}
	from := record.Status
	if err := protocol.RefreshDepositStatus(ctx, record); err != nil {
		refreshStats.AddError("Deposit %s (%s on %s): %v", record.Id, record.Identifier, repo.Name, err)
		refresher.Context.MessageLog.Debugf("Refresh log for %s:\n%s", record.Id, protocol.Logs())
		return
	}
	refreshStats.AddResult(record.Id, record.Identifier, from, record.Status)
	refresher.Context.Metrics.ObserveRefresh(record.Status)
	if record.Status == from {
		return
	}
	if err := refresher.Context.Store.SaveRecord(record); err != nil {
		refreshStats.AddError("Cannot save deposit %s: %v", record.Id, err)
		return
	}
	refresher.Context.MessageLog.Infof("Deposit %s (%s on %s) went from %s to %s",
		record.Id, record.Identifier, repo.Name, from, record.Status)
}
