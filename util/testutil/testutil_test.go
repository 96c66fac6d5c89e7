package testutil_test

import (
	"github.com/openaccess/exchange/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
)

func TestLoadPaperFixture(t *testing.T) {
	paper, err := testutil.LoadPaperFixture(filepath.Join("testdata", "json_objects", "paper.json"))
	require.Nil(t, err)
	assert.NotEmpty(t, paper.Title)

	_, err = testutil.LoadPaperFixture(filepath.Join("testdata", "json_objects", "nope.json"))
	assert.NotNil(t, err)
}

func TestMakePaper(t *testing.T) {
	paper := testutil.MakePaper(3, 2)
	assert.Equal(t, 3, len(paper.Authors))
	assert.Equal(t, 2, len(paper.Records))
	assert.NotEmpty(t, paper.DOI())
	year, err := paper.PublicationYear()
	require.Nil(t, err)
	assert.Equal(t, 4, len(year))

	paper = testutil.MakePaper(1, 0)
	assert.Empty(t, paper.DOI())
}

func TestMakeRepository(t *testing.T) {
	repo := testutil.MakeRepository("http://localhost:8080/")
	assert.Equal(t, "http://localhost:8080/", repo.Endpoint)
	assert.NotEmpty(t, repo.APIKey)
	assert.Equal(t, 2, len(repo.Licenses))
}

func TestMakeDepositRecord(t *testing.T) {
	record := testutil.MakeDepositRecord("pending")
	assert.Equal(t, "pending", record.Status)
	assert.True(t, record.Refreshable())
	assert.NotEmpty(t, record.OaiRecordIdentifier)
}
