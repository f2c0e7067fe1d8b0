package centralcontrol

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTransportFraming(t *testing.T) {

	assert := assert.New(t)

	var body string
	var header http.Header
	var host string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		header = r.Header.Clone()
		host = r.Host
		w.Write([]byte("{\"jsonrpc\":\"2.0\",\"id\":0,\"result\":{\"ok\":true}}\x00"))
	}))
	defer srv.Close()

	tr, err := NewTransport(srv.URL, "session=abc", time.Second, zap.NewNop())
	require.NoError(t, err)

	res, err := tr.Call(context.Background(), NewRequest(0, MethodGetItemList, nil))
	require.NoError(t, err)

	assert.False(res.Failed())
	assert.True(res.Response.HasResult())
	assert.JSONEq(`{"ok":true}`, string(res.Response.Result))
	assert.True(strings.HasSuffix(body, "\x00"), "request ends with terminator")
	assert.JSONEq(`{"jsonrpc":"2.0","id":0,"method":"deviced.deviced_get_item_list","params":{}}`, strings.TrimSuffix(body, "\x00"))
	assert.Equal("text/plain", header.Get("Content-Type"))
	assert.Equal("https://gw.b-tronic.net", header.Get("Origin"))
	assert.Equal("session=abc", header.Get("Cookie"))
	assert.Equal("gw.b-tronic.net", host)
}

func TestTransportNoCookie(t *testing.T) {

	var cookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie = r.Header.Get("Cookie")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr, err := NewTransport(srv.URL, "", time.Second, nil)
	require.NoError(t, err)

	_, err = tr.Call(context.Background(), NewRequest(0, MethodGetItemList, nil))
	require.NoError(t, err)
	assert.Empty(t, cookie)
}

func TestTransportStripsEmbeddedTerminators(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[{\"id\":0,\"result\":{}}\x00,\x00{\"id\":1,\"result\":{}}]\x00\x00"))
	}))
	defer srv.Close()

	tr, err := NewTransport(srv.URL, "", time.Second, nil)
	require.NoError(t, err)

	res, err := tr.CallBatch(context.Background(), []Request{
		NewRequest(5, MethodGroupGetState, nil),
		NewRequest(5, MethodItemGetState, nil),
	})
	require.NoError(t, err)
	assert.False(t, res.Failed())
	assert.Len(t, res.Responses, 2)
}

func TestTransportBatchIds(t *testing.T) {

	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tr, err := NewTransport(srv.URL, "", time.Second, nil)
	require.NoError(t, err)

	_, err = tr.CallBatch(context.Background(), []Request{
		NewRequest(9, MethodGroupGetState, map[string]any{"group_id": 1}),
		NewRequest(9, MethodItemGetState, map[string]any{"item_id": 1}),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"jsonrpc":"2.0","id":0,"method":"deviced.group_get_state","params":{"group_id":1}},
		{"jsonrpc":"2.0","id":1,"method":"deviced.item_get_state","params":{"item_id":1}}
	]`, strings.TrimSuffix(body, "\x00"))
}

func TestTransportTimeout(t *testing.T) {

	assert := assert.New(t)

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	core, logs := observer.New(zapcore.WarnLevel)
	tr, err := NewTransport(srv.URL, "", 50*time.Millisecond, zap.New(core))
	require.NoError(t, err)

	batch, err := tr.CallBatch(context.Background(), []Request{NewRequest(0, MethodGroupGetState, nil)})
	assert.NoError(err)
	assert.NotNil(batch.Responses)
	assert.Empty(batch.Responses)
	assert.Equal(FailureTimeout, batch.Failure)

	single, err := tr.Call(context.Background(), NewRequest(0, MethodGetItemList, nil))
	assert.NoError(err)
	assert.False(single.Response.HasResult())
	assert.Equal(FailureTimeout, single.Failure)

	assert.Equal(2, logs.FilterMessage("gateway call failed").Len())
	assert.Equal("timeout", logs.All()[0].ContextMap()["reason"])
}

func TestTransportDecodeFailure(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	tr, err := NewTransport(srv.URL, "", time.Second, nil)
	require.NoError(t, err)

	single, err := tr.Call(context.Background(), NewRequest(0, MethodGetItemList, nil))
	require.NoError(t, err)
	assert.Equal(t, FailureDecode, single.Failure)
	assert.Equal(t, Response{}, single.Response)

	batch, err := tr.CallBatch(context.Background(), []Request{NewRequest(0, MethodGroupGetState, nil)})
	require.NoError(t, err)
	assert.Equal(t, FailureDecode, batch.Failure)
	assert.Equal(t, []Response{}, batch.Responses)
}

func TestTransportConnectionFailure(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	address := srv.URL
	srv.Close()

	tr, err := NewTransport(address, "", time.Second, nil)
	require.NoError(t, err)

	res, err := tr.Call(context.Background(), NewRequest(0, MethodGetItemList, nil))
	require.NoError(t, err)
	assert.Equal(t, FailureTransport, res.Failure)
	assert.Error(t, res.Err)
}

func TestTransportInvalidAddress(t *testing.T) {

	for _, address := range []string{"", "192.168.1.10/cgi-bin/cc51rpc.cgi", "ftp://gateway", "://bad"} {
		_, err := NewTransport(address, "", time.Second, nil)
		assert.ErrorIs(t, err, ErrInvalidAddress, address)
	}
}

func TestTransportInstrument(t *testing.T) {

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var recorded []string
	tr, err := NewTransport(srv.URL, "", time.Second, nil, Instrument{
		RecordTime: func(method string, _ time.Duration) {
			recorded = append(recorded, method)
		},
	})
	require.NoError(t, err)

	_, err = tr.Call(context.Background(), NewRequest(0, MethodGroupSendCmd, nil))
	require.NoError(t, err)
	assert.Equal(t, []string{MethodGroupSendCmd}, recorded)
}
