package workers_test

import (
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/context"
	"github.com/openaccess/exchange/deposit"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util/testutil"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

const (
	fakeNodeId     = "wk3nd"
	fakePreprintId = "wk9pp"
)

// osfServer answers deposit and refresh calls the way OSF does.
// Preprints listed in deleted answer 404.
type osfServer struct {
	server      *httptest.Server
	mutex       sync.Mutex
	calls       []string
	isPublished bool
	deleted     map[string]bool
}

func newOSFServer() *osfServer {
	s := &osfServer{deleted: make(map[string]bool)}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *osfServer) Close() {
	s.server.Close()
}

func (s *osfServer) Calls() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *osfServer) SetPublished(published bool) {
	s.mutex.Lock()
	s.isPublished = published
	s.mutex.Unlock()
}

func (s *osfServer) handle(w http.ResponseWriter, r *http.Request) {
	ioutil.ReadAll(r.Body)
	call := fmt.Sprintf("%s %s", r.Method, r.URL.Path)
	s.mutex.Lock()
	s.calls = append(s.calls, call)
	isPublished := s.isPublished
	s.mutex.Unlock()

	w.Header().Set("Content-Type", constants.JsonApiContentType)
	switch {
	case call == "POST /v2/nodes/":
		writeResource(w, http.StatusCreated, fakeNodeId, nil)
	case call == "GET /v2/nodes/"+fakeNodeId+"/files/":
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []interface{}{map[string]interface{}{
				"links": map[string]interface{}{"upload": s.server.URL + "/upload/" + fakeNodeId + "/"},
			}},
		})
	case call == "PUT /upload/"+fakeNodeId+"/":
		writeResource(w, http.StatusCreated, "", map[string]interface{}{"path": "/f1le"})
	case call == "POST /v2/nodes/"+fakeNodeId+"/contributors/":
		writeResource(w, http.StatusCreated, "c0ntrib", nil)
	case call == "PATCH /v2/nodes/"+fakeNodeId+"/":
		writeResource(w, http.StatusOK, fakeNodeId, nil)
	case call == "POST /v2/preprints/":
		writeResource(w, http.StatusCreated, fakePreprintId, nil)
	case call == "PATCH /v2/preprints/"+fakePreprintId+"/":
		writeResource(w, http.StatusOK, fakePreprintId, nil)
	case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/v2/preprints/"):
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v2/preprints/"), "/")
		s.mutex.Lock()
		gone := s.deleted[id]
		s.mutex.Unlock()
		if gone {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"errors":[{"detail":"Not found."}]}`)
			return
		}
		writeResource(w, http.StatusOK, id, map[string]interface{}{"is_published": isPublished})
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errors":[{"detail":"Not found."}]}`)
	}
}

func writeResource(w http.ResponseWriter, status int, id string, attributes map[string]interface{}) {
	if attributes == nil {
		attributes = make(map[string]interface{})
	}
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"data": map[string]interface{}{"id": id, "attributes": attributes},
	})
}

// notificationRecorder keeps every payload a worker sends.
type notificationRecorder struct {
	mutex    sync.Mutex
	payloads []*models.NotificationPayload
}

func (recorder *notificationRecorder) Notify(payload *models.NotificationPayload) error {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	recorder.payloads = append(recorder.payloads, payload)
	return nil
}

func (recorder *notificationRecorder) Payloads() []*models.NotificationPayload {
	recorder.mutex.Lock()
	defer recorder.mutex.Unlock()
	return append([]*models.NotificationPayload(nil), recorder.payloads...)
}

var _ deposit.Notifier = (*notificationRecorder)(nil)

// testContext returns a context whose only repository, id 1, is an
// OSF sandbox served by server.
func testContext(t *testing.T, server *osfServer) (*context.Context, *notificationRecorder) {
	appConfig, err := testutil.LoadTestConfig(t.TempDir())
	require.Nil(t, err)
	appConfig.DepositWorker.Workers = 2
	_context, err := context.NewContext(appConfig)
	require.Nil(t, err)
	t.Cleanup(_context.Close)

	repo := testutil.MakeRepository(server.server.URL + "/")
	repo.Id = 1
	repo.Environment = constants.EnvSandbox
	_context.Repositories = []*models.Repository{repo}

	recorder := &notificationRecorder{}
	_context.Notifier = recorder
	return _context, recorder
}

// depositRequest returns a request for repository 1 with a PDF
// that exists.
func depositRequest(t *testing.T) *models.DepositRequest {
	pdfPath := filepath.Join(t.TempDir(), "article.pdf")
	require.Nil(t, ioutil.WriteFile(pdfPath, []byte("%PDF-1.4 fake article"), 0644))
	request := testutil.MakeDepositRequest(1)
	request.PDF = pdfPath
	return request
}

// waitFor polls condition until it is true or a few seconds pass.
func waitFor(t *testing.T, condition func() bool, what string) {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}
