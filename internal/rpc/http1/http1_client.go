// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package http1

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

type http1Client struct {
	hc      http.Client
	calcURL string
}

func (c *http1Client) RoundTrip(ctx context.Context, frame []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.calcURL, bytes.NewReader(frame))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	r, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer r.Body.Close()

	if r.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server replied with status %s", r.Status)
	}
	return io.ReadAll(io.LimitReader(r.Body, maxBodySize))
}

func (c *http1Client) Close() error {
	c.hc.CloseIdleConnections()
	return nil
}

func newHttp1Client(_ context.Context, addr string) (*http1Client, error) {
	dialerCtx := func(dialer *net.Dialer) func(context.Context, string, string) (net.Conn, error) {
		return dialer.DialContext
	}

	hc := http.Client{
		// Create one transport per client so each client keeps its own
		// connection, like the stream transports.
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: dialerCtx(&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}),
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}

	return &http1Client{
		hc:      hc,
		calcURL: "http://" + addr + Path,
	}, nil
}
