package stats

import (
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/util/fileutil"
	"io/ioutil"
	"os"
	"regexp"
	"time"
)

// StatusChange is one deposit whose status the refresher changed.
type StatusChange struct {
	RecordId   string
	Identifier string
	From       string
	To         string
}

// RefreshStats records information about what a status refresh did.
type RefreshStats struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Checked    int
	Unchanged  int
	Skipped    int
	Changes    []StatusChange
	Errors     []string
}

// NewRefreshStats creates a new, empty RefreshStats object.
func NewRefreshStats() *RefreshStats {
	return &RefreshStats{
		StartedAt: time.Now().UTC(),
		Changes:   make([]StatusChange, 0),
		Errors:    make([]string, 0),
	}
}

// AddResult records the outcome of one refresh of the record with
// the specified id.
func (stats *RefreshStats) AddResult(recordId, identifier, from, to string) {
	stats.Checked++
	if from == to {
		stats.Unchanged++
		return
	}
	stats.Changes = append(stats.Changes, StatusChange{
		RecordId:   recordId,
		Identifier: identifier,
		From:       from,
		To:         to,
	})
}

// AddSkipped counts a record that was not worth refreshing.
func (stats *RefreshStats) AddSkipped() {
	stats.Skipped++
}

func (stats *RefreshStats) AddError(format string, a ...interface{}) {
	stats.Errors = append(stats.Errors, fmt.Sprintf(format, a...))
}

func (stats *RefreshStats) HasErrors() bool {
	return len(stats.Errors) > 0
}

// Finish sets FinishedAt.
func (stats *RefreshStats) Finish() {
	stats.FinishedAt = time.Now().UTC()
}

// ChangesTo returns the changes that left records in status.
func (stats *RefreshStats) ChangesTo(status string) []StatusChange {
	changes := make([]StatusChange, 0)
	for _, change := range stats.Changes {
		if change.To == status {
			changes = append(changes, change)
		}
	}
	return changes
}

// Summary returns a one-line description for the message log.
func (stats *RefreshStats) Summary() string {
	return fmt.Sprintf("Checked %d deposits: %d changed, %d unchanged, %d skipped, %d errors",
		stats.Checked, len(stats.Changes), stats.Unchanged, stats.Skipped, len(stats.Errors))
}

// RefreshStatsLoadFromFile loads RefreshStats from a JSON file.
func RefreshStatsLoadFromFile(pathToFile string) (*RefreshStats, error) {
	file, err := ioutil.ReadFile(pathToFile)
	if err != nil {
		detailedError := fmt.Errorf("Error reading file '%s': %v\n",
			pathToFile, err)
		return nil, detailedError
	}
	_stats := &RefreshStats{}
	err = json.Unmarshal(file, _stats)
	if err != nil {
		detailedError := fmt.Errorf("Error parsing JSON from file '%s': %v",
			pathToFile, err)
		return nil, detailedError
	}
	return _stats, nil
}

// DumpToFile dumps a JSON representation of this object to a file at the specified
// path. This will overwrite the existing file, if the existing file has
// a .json extension. See also RefreshStatsLoadFromFile.
func (stats *RefreshStats) DumpToFile(pathToFile string) error {
	// Matches .json, or tempfile with random ending, like .json43272
	fileNameLooksSafe, err := regexp.MatchString("\\.json\\d*$", pathToFile)
	if err != nil {
		return fmt.Errorf("DumpToFile(): path '%s'?? : %v", pathToFile, err)
	}
	if fileutil.FileExists(pathToFile) && !fileNameLooksSafe {
		return fmt.Errorf("DumpToFile() will not overwrite existing file "+
			"'%s' because that might be dangerous. Give your output file a .json "+
			"extension to be safe.", pathToFile)
	}

	jsonData, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}

	outputFile, err := os.Create(pathToFile)
	if err != nil {
		return err
	}
	defer outputFile.Close()
	_, err = outputFile.Write(jsonData)
	return err
}
