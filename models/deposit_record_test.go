package models_test

import (
	"encoding/json"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util"
	"github.com/openaccess/exchange/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"testing"
)

func TestNewDepositRecord(t *testing.T) {
	request := testutil.MakeDepositRequest(5)
	result, err := models.NewDepositResult(constants.StatusPublished)
	require.Nil(t, err)
	result.Identifier = "pp123"
	result.SplashURL = "https://osf.io/pp123"
	result.PDFURL = "https://osf.io/pp123/download"
	result.Logs = "--- Request to ...\n"
	result.OaiRecord = &models.OaiRecord{Identifier: models.DepositionIdentifier(5, "pp123")}
	result.AddInfo("Project", "https://osf.io/node1")

	record := models.NewDepositRecord(request, constants.ProtocolOSF, result)
	assert.True(t, util.LooksLikeUUID(record.Id))
	assert.Equal(t, request.RequestId, record.RequestId)
	assert.Equal(t, request.Paper.Id, record.PaperId)
	assert.Equal(t, request.User.Id, record.UserId)
	assert.Equal(t, 5, record.RepositoryId)
	assert.Equal(t, constants.ProtocolOSF, record.Protocol)
	assert.Equal(t, "pp123", record.Identifier)
	assert.Equal(t, "https://osf.io/pp123", record.SplashURL)
	assert.Equal(t, "deposition:5:pp123", record.OaiRecordIdentifier)
	assert.Equal(t, 1, len(record.AdditionalInfo))
	assert.False(t, record.CreatedAt.IsZero())
	assert.Equal(t, record.CreatedAt, record.UpdatedAt)
}

func TestDepositRecordSetStatus(t *testing.T) {
	record := testutil.MakeDepositRecord(constants.StatusPending)
	updatedAt := record.UpdatedAt
	require.Nil(t, record.SetStatus(constants.StatusPublished))
	assert.Equal(t, constants.StatusPublished, record.Status)
	assert.False(t, record.UpdatedAt.Before(updatedAt))

	assert.NotNil(t, record.SetStatus("gone"))
	assert.Equal(t, constants.StatusPublished, record.Status)
}

func TestDepositRecordRefreshable(t *testing.T) {
	assert.True(t, testutil.MakeDepositRecord(constants.StatusPending).Refreshable())
	assert.True(t, testutil.MakeDepositRecord(constants.StatusPublished).Refreshable())
	assert.False(t, testutil.MakeDepositRecord(constants.StatusFailed).Refreshable())
	assert.False(t, testutil.MakeDepositRecord(constants.StatusDeleted).Refreshable())
	assert.False(t, testutil.MakeDepositRecord(constants.StatusFaked).Refreshable())

	record := testutil.MakeDepositRecord(constants.StatusPending)
	record.Identifier = ""
	assert.False(t, record.Refreshable())
}

func TestDepositRecordToJson(t *testing.T) {
	record := testutil.MakeDepositRecord(constants.StatusPublished)
	jsonString, err := record.ToJson()
	require.Nil(t, err)
	copy := &models.DepositRecord{}
	require.Nil(t, json.Unmarshal([]byte(jsonString), copy))
	assert.Equal(t, record.Id, copy.Id)
	assert.Equal(t, record.SplashURL, copy.SplashURL)
}

func TestDepositRecordToStringArray(t *testing.T) {
	record := testutil.MakeDepositRecord(constants.StatusPublished)
	s := record.ToStringArray()
	assert.Equal(t, len(models.DepositRecordCSVHeaders), len(s))
	for i, str := range s {
		assert.NotEmpty(t, str, "String at %d should not be empty", i)
	}
}

func TestDepositRecordToCSV(t *testing.T) {
	record := testutil.MakeDepositRecord(constants.StatusPublished)
	csvString, err := record.ToCSV(',')
	require.Nil(t, err)
	assert.True(t, strings.Contains(csvString, ","))
	assert.True(t, strings.HasPrefix(csvString, record.Id))

	csvString, err = record.ToCSV('|')
	require.Nil(t, err)
	assert.True(t, strings.Contains(csvString, "|"))
}
