// Copyright (c) 2025 Matheus Degiovani
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRequest(t *testing.T) {
	c := requests.WithLabelValues("test-rec", "addition", "Ok")
	before := testutil.ToFloat64(c)
	RecordRequest("test-rec", "addition", "Ok")
	RecordRequest("test-rec", "addition", "Ok")
	assert.Equal(t, before+2, testutil.ToFloat64(c))
}

func TestSessions(t *testing.T) {
	g := sessions.WithLabelValues("test-sess")
	closeA := SessionOpened("test-sess")
	closeB := SessionOpened("test-sess")
	assert.Equal(t, float64(2), testutil.ToFloat64(g))
	closeA()
	closeB()
	assert.Equal(t, float64(0), testutil.ToFloat64(g))
}

func TestHandler(t *testing.T) {
	RecordRequest("test-http", OpMalformed, "Invalid")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	res, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body),
		`calcproto_requests_total{op="malformed",status="Invalid",transport="test-http"}`)
}
