package testutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/models"
	"io"
	"os"
	"strings"
)

// FindDepositRecordInLog returns the last copy of the deposit record
// with the given request id written to the JSON log at pathToLogFile.
func FindDepositRecordInLog(pathToLogFile, requestId string) (record *models.DepositRecord, err error) {
	file, err := os.Open(pathToLogFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	jsonString := findJsonString(file, requestId)
	if len(jsonString) == 0 {
		err = fmt.Errorf("Request %s not found in %s", requestId, pathToLogFile)
	} else {
		record = &models.DepositRecord{}
		err = json.Unmarshal([]byte(jsonString), record)
	}
	return record, err
}

func findJsonString(file io.Reader, requestId string) string {
	startPrefix := fmt.Sprintf("-------- BEGIN %s", requestId)
	endPrefix := fmt.Sprintf("-------- END %s", requestId)
	inJson := false
	jsonLines := make([]string, 0)
	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, startPrefix) {
			// Only the last copy counts.
			inJson = true
			jsonLines = make([]string, 0)
			continue
		} else if strings.HasPrefix(trimmed, endPrefix) {
			inJson = false
		}
		if inJson {
			jsonLines = append(jsonLines, line)
		}
	}
	return strings.TrimSpace(strings.Join(jsonLines, ""))
}
