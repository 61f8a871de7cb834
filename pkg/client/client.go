package client

import (
	"time"

	"github.com/go-resty/resty/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/config"
	"github.com/Gh0styTongue/tubi-frontend-source-sub002/pkg/logger"
)

// UserAgent identifies this client to the ingestion endpoints.
const UserAgent = "Signals-CLI/0.1.0"

var httpClient *resty.Client

// Init initializes the HTTP client
func Init() {
	httpClient = New(time.Duration(config.GetInt("api.timeout")) * time.Second)
}

// New builds a resty client with the shared defaults.
func New(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	c.SetHeader("User-Agent", UserAgent)

	json := jsoniter.ConfigCompatibleWithStandardLibrary
	c.JSONMarshal = json.Marshal
	c.JSONUnmarshal = json.Unmarshal

	c.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		logger.Debug("HTTP Request", "method", req.Method, "url", req.URL)
		return nil
	})

	c.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		logger.Debug("HTTP Response", "status", resp.StatusCode(), "url", resp.Request.URL)
		return nil
	})

	return c
}

// GetClient returns the HTTP client
func GetClient() *resty.Client {
	if httpClient == nil {
		Init()
	}
	return httpClient
}
