package network

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/openaccess/exchange/constants"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// RestClient talks to JSON:API services like OSF. Every request
// carries the bearer token and the JSON:API content type.
type RestClient struct {
	HostUrl    string
	APIKey     string
	httpClient *http.Client
	transport  *http.Transport
}

// NewRestClient creates a new client for the API at hostUrl.
// Param timeout bounds each request, from dial to the end of
// the response body.
func NewRestClient(hostUrl, apiKey string, timeout time.Duration) *RestClient {
	transport := &http.Transport{
		MaxIdleConnsPerHost: 8,
		DisableKeepAlives:   false,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	httpClient := &http.Client{
		Transport:     transport,
		Timeout:       timeout,
		CheckRedirect: RedirectHandler,
	}
	return &RestClient{
		HostUrl:    hostUrl,
		APIKey:     apiKey,
		httpClient: httpClient,
		transport:  transport,
	}
}

// BuildUrl combines client.HostUrl with relativeUrl to create an
// absolute URL. If client.HostUrl is "https://api.osf.io/", then
// client.BuildUrl("v2/nodes/", nil) returns
// "https://api.osf.io/v2/nodes/". Absolute URLs, like the upload
// links OSF hands out, are returned as they are, with the query
// params added.
func (client *RestClient) BuildUrl(relativeUrl string, queryParams *url.Values) string {
	fullUrl := relativeUrl
	if !strings.HasPrefix(relativeUrl, "http://") && !strings.HasPrefix(relativeUrl, "https://") {
		fullUrl = strings.TrimRight(client.HostUrl, "/") + "/" + strings.TrimLeft(relativeUrl, "/")
	}
	if queryParams != nil && len(*queryParams) > 0 {
		separator := "?"
		if strings.Contains(fullUrl, "?") {
			separator = "&"
		}
		fullUrl = fmt.Sprintf("%s%s%s", fullUrl, separator, queryParams.Encode())
	}
	return fullUrl
}

// NewJsonRequest returns a new request with headers indicating
// JSON:API request and response formats.
func (client *RestClient) NewJsonRequest(ctx context.Context, method, targetUrl string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequest(method, targetUrl, body)
	if err != nil {
		return nil, err
	}
	if ctx != nil {
		req = req.WithContext(ctx)
	}
	req.Header.Add("Content-Type", constants.JsonApiContentType)
	req.Header.Add("Accept", constants.JsonApiContentType)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", client.APIKey))
	req.Header.Add("Connection", "Keep-Alive")
	return req, nil
}

// Get issues a GET to targetUrl, which may be relative to HostUrl.
func (client *RestClient) Get(ctx context.Context, targetUrl string) *RestResponse {
	return client.doJson(ctx, "GET", targetUrl, nil)
}

// PostJson sends obj as JSON in a POST to targetUrl.
func (client *RestClient) PostJson(ctx context.Context, targetUrl string, obj interface{}) *RestResponse {
	return client.doJson(ctx, "POST", targetUrl, obj)
}

// PatchJson sends obj as JSON in a PATCH to targetUrl.
func (client *RestClient) PatchJson(ctx context.Context, targetUrl string, obj interface{}) *RestResponse {
	return client.doJson(ctx, "PATCH", targetUrl, obj)
}

// PutFile streams the file at pathToFile in a PUT to targetUrl.
func (client *RestClient) PutFile(ctx context.Context, targetUrl, pathToFile string) *RestResponse {
	resp := NewRestResponse()
	file, err := os.Open(pathToFile)
	if err != nil {
		resp.Error = err
		return resp
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		resp.Error = err
		return resp
	}
	request, err := client.NewJsonRequest(ctx, "PUT", client.BuildUrl(targetUrl, nil), file)
	resp.Request = request
	resp.Error = err
	if resp.Error != nil {
		return resp
	}
	request.ContentLength = stat.Size()
	client.execute(resp, request)
	return resp
}

func (client *RestClient) doJson(ctx context.Context, method, targetUrl string, obj interface{}) *RestResponse {
	resp := NewRestResponse()
	var body io.Reader
	if obj != nil {
		data, err := json.Marshal(obj)
		if err != nil {
			resp.Error = err
			return resp
		}
		body = bytes.NewBuffer(data)
	}
	client._doRequest(ctx, resp, method, client.BuildUrl(targetUrl, nil), body)
	return resp
}

// _doRequest issues an HTTP request, reads the response, and closes the
// connection to the remote server. If an error occurs, it will be
// recorded in resp.Error.
func (client *RestClient) _doRequest(ctx context.Context, resp *RestResponse, method, absoluteUrl string, requestData io.Reader) {
	// Build the request
	request, err := client.NewJsonRequest(ctx, method, absoluteUrl, requestData)
	resp.Request = request
	resp.Error = err
	if resp.Error != nil {
		return
	}

	client.execute(resp, request)
}

func (client *RestClient) execute(resp *RestResponse, request *http.Request) {
	// Issue the HTTP request
	resp.Response, resp.Error = client.httpClient.Do(request)
	if resp.Error != nil {
		return
	}

	// Read the response data and close the response body.
	// That's the only way to close the remote HTTP connection,
	// which will otherwise stay open indefinitely.
	resp.readResponse()
}

// By default, the Go HTTP client does not send headers from the
// original request to the redirect location. We want to send all
// headers from the original request, but we'll send the auth header
// only if the host of the redirect URL matches the host of the
// original URL.
func RedirectHandler(req *http.Request, via []*http.Request) error {
	if len(via) >= 10 {
		return fmt.Errorf("too many redirects")
	}
	if len(via) == 0 {
		return nil
	}
	for attr, val := range via[0].Header {
		if _, ok := req.Header[attr]; !ok {
			if attr != "Authorization" || req.URL.Host == via[0].URL.Host {
				req.Header[attr] = val
			}
		}
	}
	return nil
}
