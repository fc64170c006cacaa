// Package rangefetch exposes builders for the resumable fetcher and its
// transport.
package rangefetch

import (
	"github.com/adamwoolhether/rangefetch/client"
	"github.com/adamwoolhether/rangefetch/client/fetch"
)

// NewClient instantiates a new *Client for addr ("host:port") with the
// provided options.
func NewClient(addr string, opts ...client.Option) (*client.Client, error) {
	return client.Build(addr, opts...)
}

// NewFetcher builds a Fetcher that retrieves the resource at addr over a
// default client. Use client.Build and fetch.New directly to customise the
// transport.
func NewFetcher(addr string, opts ...fetch.Option) (*fetch.Fetcher, error) {
	c, err := client.Build(addr)
	if err != nil {
		return nil, err
	}

	return fetch.New(c, opts...)
}
