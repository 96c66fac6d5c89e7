package network

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
)

// RestResponse holds the request, the response and any error
// from one call to a JSON API. The body is read and closed as
// soon as the call returns, so callers never need to close it.
type RestResponse struct {
	Request     *http.Request
	Response    *http.Response
	Error       error
	data        []byte
	hasBeenRead bool
}

// NewRestResponse returns a pointer to a new response object.
func NewRestResponse() *RestResponse {
	return &RestResponse{}
}

// Returns the raw body of the HTTP response as a byte slice.
// The return value may be nil.
func (resp *RestResponse) RawResponseData() ([]byte, error) {
	if !resp.hasBeenRead {
		resp.readResponse()
	}
	return resp.data, resp.Error
}

// Text returns the response body as a string, for logging.
func (resp *RestResponse) Text() string {
	data, _ := resp.RawResponseData()
	return string(data)
}

// StatusCode returns the HTTP status of the response, or zero
// if no response came back.
func (resp *RestResponse) StatusCode() int {
	if resp.Response == nil {
		return 0
	}
	return resp.Response.StatusCode
}

// Url returns the URL that was requested.
func (resp *RestResponse) Url() string {
	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return ""
}

// UnmarshalJson parses the response body into obj.
func (resp *RestResponse) UnmarshalJson(obj interface{}) error {
	data, err := resp.RawResponseData()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("Response from %s has no body", resp.Url())
	}
	return json.Unmarshal(data, obj)
}

// Reads the body of an HTTP response object, closes the stream, and
// returns a byte array. The body MUST be closed, or you'll wind up
// with a lot of open network connections.
func (resp *RestResponse) readResponse() {
	if !resp.hasBeenRead && resp.Response != nil && resp.Response.Body != nil {
		resp.data, resp.Error = ioutil.ReadAll(resp.Response.Body)
		resp.Response.Body.Close()
		resp.hasBeenRead = true
	}
}
