package models_test

import (
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util"
	"github.com/openaccess/exchange/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"testing"
)

func TestDepositRequestFixture(t *testing.T) {
	request, err := testutil.LoadDepositRequestFixture(
		filepath.Join("testdata", "json_objects", "deposit_request.json"))
	require.Nil(t, err)
	assert.Equal(t, "5a8b8bd3-44a7-4d1b-a1c9-3b1d0d1c2f11", request.RequestId)
	assert.Equal(t, 1234, request.Paper.Id)
	assert.Equal(t, "abyron", request.User.Username)
	assert.Equal(t, 3, request.RepositoryId)
	assert.Equal(t, "s3://deposits/1234/article.pdf", request.PDF)
	assert.Equal(t, "open access, deposits", request.Form["tags"])
	assert.False(t, request.DryRun)
}

func TestNewDepositRequest(t *testing.T) {
	paper := testutil.MakePaper(1, 0)
	user := testutil.MakeUser()
	request := models.NewDepositRequest(paper, user, 8, "/tmp/x.pdf")
	assert.True(t, util.LooksLikeUUID(request.RequestId))
	assert.NotNil(t, request.Form)
	assert.False(t, request.CreatedAt.IsZero())
	assert.Nil(t, request.Validate())

	data, err := request.ToJson()
	require.Nil(t, err)
	parsed, err := models.DepositRequestFromJson(data)
	require.Nil(t, err)
	assert.Equal(t, request.RequestId, parsed.RequestId)
	assert.Equal(t, paper.Title, parsed.Paper.Title)
}

func TestDepositRequestFromJsonAssignsId(t *testing.T) {
	data := []byte(`{"paper":{"id":1,"title":"T"},"user":{"id":2,"username":"u"},"repository_id":1,"pdf":"/tmp/a.pdf"}`)
	request, err := models.DepositRequestFromJson(data)
	require.Nil(t, err)
	assert.True(t, util.LooksLikeUUID(request.RequestId))
	assert.NotNil(t, request.Form)
}

func TestDepositRequestValidate(t *testing.T) {
	bad := map[string]string{
		"not json":      `{"paper":`,
		"no paper":      `{"user":{"id":2},"repository_id":1,"pdf":"/a.pdf"}`,
		"no user":       `{"paper":{"id":1},"repository_id":1,"pdf":"/a.pdf"}`,
		"no repository": `{"paper":{"id":1},"user":{"id":2},"pdf":"/a.pdf"}`,
		"no pdf":        `{"paper":{"id":1},"user":{"id":2},"repository_id":1}`,
		"bad id":        `{"request_id":"x","paper":{"id":1},"user":{"id":2},"repository_id":1,"pdf":"/a.pdf"}`,
	}
	for desc, data := range bad {
		_, err := models.DepositRequestFromJson([]byte(data))
		assert.NotNil(t, err, desc)
	}

	// Dry runs don't need a PDF.
	dryRun := `{"paper":{"id":1},"user":{"id":2},"repository_id":1,"dry_run":true}`
	_, err := models.DepositRequestFromJson([]byte(dryRun))
	assert.Nil(t, err)

	request := models.NewDepositRequest(testutil.MakePaper(1, 1), testutil.MakeUser(), 1, "/a.pdf")
	assert.Nil(t, request.Validate())
	request.RequestId = "5a8b8bd3-44a7"
	err = request.Validate()
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "is not a UUID")
}
