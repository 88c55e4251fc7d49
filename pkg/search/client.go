package search

import (
	"crypto/tls"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/pkg/errors"
)

// Client binds one engine client to one tenant's connection settings.
// Exactly one instance exists per tenant; the registry owns the lifecycle.
type Client struct {
	api       *opensearchapi.Client
	transport *http.Transport
	tenant    string
}

// newClient builds the engine client for a tenant.
func newClient(tenant string, cfg ConnectionConfig) (*Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureSSL {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	api, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses: []string{cfg.Address()},
			Username:  cfg.Username,
			Password:  cfg.Password,
			Transport: transport,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create search client for tenant %q", tenant)
	}

	return &Client{
		api:       api,
		transport: transport,
		tenant:    tenant,
	}, nil
}

// Close releases the client's network resources.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
