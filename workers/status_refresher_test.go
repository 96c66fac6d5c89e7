package workers_test

import (
	stdcontext "context"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util/storage"
	"github.com/openaccess/exchange/util/testutil"
	"github.com/openaccess/exchange/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func saveRecord(t *testing.T, store *storage.BoltDB, repositoryId int, identifier, status string) *models.DepositRecord {
	record := testutil.MakeDepositRecord(status)
	record.RepositoryId = repositoryId
	record.Identifier = identifier
	require.Nil(t, store.SaveRecord(record))
	return record
}

func TestStatusRefresher(t *testing.T) {
	server := newOSFServer()
	defer server.Close()
	server.SetPublished(true)
	server.deleted["gone1"] = true
	_context, _ := testContext(t, server)

	nowPublished := saveRecord(t, _context.Store, 1, "pend1", constants.StatusPending)
	stillPublished := saveRecord(t, _context.Store, 1, "pub01", constants.StatusPublished)
	deleted := saveRecord(t, _context.Store, 1, "gone1", constants.StatusPublished)
	saveRecord(t, _context.Store, 1, "fail1", constants.StatusFailed)
	saveRecord(t, _context.Store, 1, "", constants.StatusPending)
	unknownRepo := saveRecord(t, _context.Store, 77, "lost1", constants.StatusPending)

	refreshStats := workers.NewStatusRefresher(_context).Run(stdcontext.Background())

	assert.Equal(t, 3, refreshStats.Checked)
	assert.Equal(t, 1, refreshStats.Unchanged)
	assert.Equal(t, 2, refreshStats.Skipped)
	require.Equal(t, 1, len(refreshStats.Errors))
	assert.Contains(t, refreshStats.Errors[0], unknownRepo.Id)
	require.Equal(t, 1, len(refreshStats.ChangesTo(constants.StatusPublished)))
	assert.Equal(t, nowPublished.Id, refreshStats.ChangesTo(constants.StatusPublished)[0].RecordId)
	require.Equal(t, 1, len(refreshStats.ChangesTo(constants.StatusDeleted)))
	assert.False(t, refreshStats.FinishedAt.IsZero())

	saved, err := _context.Store.GetRecord(nowPublished.Id)
	require.Nil(t, err)
	assert.Equal(t, constants.StatusPublished, saved.Status)
	assert.True(t, saved.UpdatedAt.After(nowPublished.UpdatedAt) || saved.UpdatedAt.Equal(nowPublished.UpdatedAt))

	saved, err = _context.Store.GetRecord(deleted.Id)
	require.Nil(t, err)
	assert.Equal(t, constants.StatusDeleted, saved.Status)

	saved, err = _context.Store.GetRecord(stillPublished.Id)
	require.Nil(t, err)
	assert.Equal(t, constants.StatusPublished, saved.Status)

	// Deleted deposits are not checked again.
	server.SetPublished(false)
	refreshStats = workers.NewStatusRefresher(_context).Run(stdcontext.Background())
	assert.Equal(t, 2, refreshStats.Checked)
	assert.Equal(t, 2, len(refreshStats.ChangesTo(constants.StatusPending)))
}

func TestStatusRefresherCancelled(t *testing.T) {
	server := newOSFServer()
	defer server.Close()
	_context, _ := testContext(t, server)
	saveRecord(t, _context.Store, 1, "pend1", constants.StatusPending)
	saveRecord(t, _context.Store, 1, "pend2", constants.StatusPending)

	ctx, cancel := stdcontext.WithCancel(stdcontext.Background())
	cancel()
	refreshStats := workers.NewStatusRefresher(_context).Run(ctx)
	assert.Equal(t, 0, refreshStats.Checked)
	require.Equal(t, 1, len(refreshStats.Errors))
	assert.Contains(t, refreshStats.Errors[0], "2 deposits left")
	assert.Empty(t, server.Calls())
}

func TestStatusRefresherProtocolMismatch(t *testing.T) {
	server := newOSFServer()
	defer server.Close()
	_context, _ := testContext(t, server)
	record := testutil.MakeDepositRecord(constants.StatusPending)
	record.RepositoryId = 1
	record.Protocol = "SWORDProtocol"
	require.Nil(t, _context.Store.SaveRecord(record))

	refreshStats := workers.NewStatusRefresher(_context).Run(stdcontext.Background())
	require.Equal(t, 1, len(refreshStats.Errors))
	assert.Contains(t, refreshStats.Errors[0], "SWORDProtocol")
}
