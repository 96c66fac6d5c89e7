package osf_test

import (
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/constants"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util/testutil"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
)

const (
	fakeNodeId     = "nd4ck"
	fakePreprintId = "pp7xq"
	fakeFilePath   = "/5c3b2a1f9e8d7c0012ab34cd"
)

// osfCall is one request the fake OSF server received.
type osfCall struct {
	Method      string
	Path        string
	RawQuery    string
	Auth        string
	ContentType string
	Body        []byte
}

func (call osfCall) String() string {
	return fmt.Sprintf("%s %s", call.Method, call.Path)
}

func (call osfCall) JsonBody(t *testing.T) map[string]interface{} {
	data := make(map[string]interface{})
	require.Nil(t, json.Unmarshal(call.Body, &data), string(call.Body))
	return data
}

// fakeOSF answers the calls of a deposit the way OSF does. Set
// a status in failures to make a call fail.
type fakeOSF struct {
	server      *httptest.Server
	mutex       sync.Mutex
	calls       []osfCall
	failures    map[string]int
	uploadLinks []string
	isPublished bool
}

func newFakeOSF() *fakeOSF {
	f := &fakeOSF{
		failures:    make(map[string]int),
		isPublished: true,
	}
	f.server = httptest.NewServer(http.HandlerFunc(f.handle))
	f.uploadLinks = []string{f.server.URL + "/upload/" + fakeNodeId + "/providers/osfstorage/"}
	return f
}

func (f *fakeOSF) Close() {
	f.server.Close()
}

// Endpoint is the API URL repositories should use.
func (f *fakeOSF) Endpoint() string {
	return f.server.URL + "/"
}

func (f *fakeOSF) Calls() []osfCall {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]osfCall(nil), f.calls...)
}

func (f *fakeOSF) CallNames() []string {
	names := make([]string, 0)
	for _, call := range f.Calls() {
		names = append(names, call.String())
	}
	return names
}

// FindCall returns the first call to method and path.
func (f *fakeOSF) FindCall(method, path string) *osfCall {
	for _, call := range f.Calls() {
		if call.Method == method && call.Path == path {
			return &call
		}
	}
	return nil
}

func (f *fakeOSF) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := ioutil.ReadAll(r.Body)
	call := osfCall{
		Method:      r.Method,
		Path:        r.URL.Path,
		RawQuery:    r.URL.RawQuery,
		Auth:        r.Header.Get("Authorization"),
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	}
	f.mutex.Lock()
	f.calls = append(f.calls, call)
	status, failing := f.failures[call.String()]
	f.mutex.Unlock()

	w.Header().Set("Content-Type", constants.JsonApiContentType)
	if failing {
		w.WriteHeader(status)
		fmt.Fprintf(w, `{"errors":[{"detail":"fake failure of %s"}]}`, call.String())
		return
	}
	switch call.String() {
	case "POST /v2/nodes/":
		writeJson(w, http.StatusCreated, resource(fakeNodeId, nil))
	case "GET /v2/nodes/" + fakeNodeId + "/files/":
		entries := make([]interface{}, 0)
		for _, link := range f.uploadLinks {
			entries = append(entries, map[string]interface{}{
				"attributes": map[string]interface{}{"name": "osfstorage"},
				"links":      map[string]interface{}{"upload": link},
			})
		}
		writeJson(w, http.StatusOK, map[string]interface{}{"data": entries})
	case "PUT /upload/" + fakeNodeId + "/providers/osfstorage/":
		writeJson(w, http.StatusCreated, resource("", map[string]interface{}{"path": fakeFilePath}))
	case "POST /v2/nodes/" + fakeNodeId + "/contributors/":
		writeJson(w, http.StatusCreated, resource(fakeNodeId+"-contributor", nil))
	case "PATCH /v2/nodes/" + fakeNodeId + "/":
		writeJson(w, http.StatusOK, resource(fakeNodeId, nil))
	case "POST /v2/preprints/":
		writeJson(w, http.StatusCreated, resource(fakePreprintId, nil))
	case "PATCH /v2/preprints/" + fakePreprintId + "/":
		writeJson(w, http.StatusOK, resource(fakePreprintId, nil))
	case "GET /v2/preprints/" + fakePreprintId + "/":
		writeJson(w, http.StatusOK, resource(fakePreprintId, map[string]interface{}{"is_published": f.isPublished}))
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"errors":[{"detail":"Not found."}]}`)
	}
}

func resource(id string, attributes map[string]interface{}) map[string]interface{} {
	if attributes == nil {
		attributes = make(map[string]interface{})
	}
	return map[string]interface{}{
		"data": map[string]interface{}{
			"id":         id,
			"attributes": attributes,
		},
	}
}

func writeJson(w http.ResponseWriter, status int, obj interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(obj)
}

// sandboxRepository returns an OSF sandbox repository served by f.
func sandboxRepository(f *fakeOSF) *models.Repository {
	repo := testutil.MakeRepository(f.Endpoint())
	repo.Environment = constants.EnvSandbox
	return repo
}

// writePDF creates a small fake PDF and returns its path.
func writePDF(t *testing.T) string {
	pdfPath := filepath.Join(t.TempDir(), "article.pdf")
	require.Nil(t, ioutil.WriteFile(pdfPath, []byte("%PDF-1.4 fake article"), 0644))
	return pdfPath
}
