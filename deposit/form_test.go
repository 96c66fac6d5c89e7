package deposit_test

import (
	"context"
	"github.com/openaccess/exchange/deposit"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestGetForm(t *testing.T) {
	p := initFakeProtocol()
	form := deposit.GetForm(p)
	assert.Equal(t, 1234, form.PaperId)
	assert.Equal(t, []string{"paper_id", "abstract", "license"}, form.Fields)
	assert.Equal(t, 1, len(form.Licenses))
	// The backend's initial data, not just the base's.
	assert.Equal(t, "1234", form.Initial["paper_id"])
	assert.Equal(t, "cc-by", form.Initial["license"])
	assert.False(t, form.IsBound())
}

func TestGetBoundForm(t *testing.T) {
	p := initFakeProtocol()
	form := deposit.GetBoundForm(p, deposit.FormData{
		"abstract": "  An abstract. ",
		"license":  "cc-by",
		"unknown":  "dropped",
	})
	assert.True(t, form.IsBound())
	assert.Equal(t, 1234, form.PaperId)
	cleaned := form.CleanedData()
	assert.Equal(t, "An abstract.", cleaned["abstract"])
	assert.Equal(t, "cc-by", cleaned["license"])
	_, hasUnknown := cleaned["unknown"]
	assert.False(t, hasUnknown)
	_, hasPaperId := cleaned["paper_id"]
	assert.False(t, hasPaperId)

	form = deposit.GetBoundForm(p, nil)
	assert.True(t, form.IsBound())
	assert.Empty(t, form.CleanedData())
}

func TestBaseProtocolDefaults(t *testing.T) {
	repo := fakeRepository()
	base := deposit.NewBaseProtocol(repo)
	assert.Equal(t, repo, base.Repository())
	assert.Nil(t, base.Paper())
	assert.Empty(t, base.FormInitialData())
	assert.Equal(t, []string{"paper_id"}, base.FormFields())

	base.Log("stale line")
	assert.True(t, base.InitDeposit(fakePaper(), fakeUser()))
	assert.Equal(t, "", base.Logs())
	assert.Equal(t, "1234", base.FormInitialData()["paper_id"])
	assert.Equal(t, "abyron", base.User().Username)

	assert.False(t, base.InitDeposit(nil, fakeUser()))
	assert.Nil(t, base.RefreshDepositStatus(context.Background(), nil))
}
