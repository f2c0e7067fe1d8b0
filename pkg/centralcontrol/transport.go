package centralcontrol

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultTimeout = 10 * time.Second

	jsonRPCVersion  = "2.0"
	relayOrigin     = "https://gw.b-tronic.net"
	relayHost       = "gw.b-tronic.net"
	frameTerminator = "\x00"
)

var ErrInvalidAddress = errors.New("centralcontrol: invalid gateway address")

// Failure tells why a call produced an empty result.
type Failure int

const (
	FailureNone Failure = iota
	FailureTimeout
	FailureDecode
	FailureTransport
)

func (f Failure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureTimeout:
		return "timeout"
	case FailureDecode:
		return "decode"
	case FailureTransport:
		return "transport"
	}
	return fmt.Sprintf("failure(%d)", int(f))
}

type Request struct {
	JSONRPC string         `json:"jsonrpc"`
	Id      int            `json:"id"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type Response struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Id      *int            `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// HasResult is false for the empty response returned on failure.
func (r Response) HasResult() bool {
	return len(r.Result) > 0 && !bytes.Equal(r.Result, []byte("null"))
}

// Result of a single call. On failure Response is the zero value.
type Result struct {
	Response Response
	Failure  Failure
	Err      error
}

func (r Result) Failed() bool {
	return r.Failure != FailureNone
}

// BatchResult of a batched call. On failure Responses is empty, never nil.
type BatchResult struct {
	Responses []Response
	Failure   Failure
	Err       error
}

func (r BatchResult) Failed() bool {
	return r.Failure != FailureNone
}

type Instrument struct {
	RecordTime func(method string, callTime time.Duration)
}

// Transport posts JSON-RPC envelopes to the gateway. It keeps no state
// between calls and every call uses its own connection.
type Transport struct {
	address    string
	cookie     string
	timeout    time.Duration
	httpClient *http.Client
	instrument []Instrument
	logger     *zap.Logger
}

func NewTransport(address, cookie string, timeout time.Duration, logger *zap.Logger, instrument ...Instrument) (*Transport, error) {
	u, err := url.Parse(address)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, address)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transport{
		address: address,
		cookie:  cookie,
		timeout: timeout,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				DisableKeepAlives: true,
			},
		},
		instrument: instrument,
		logger:     logger,
	}, nil
}

func NewRequest(id int, method string, params map[string]any) Request {
	if params == nil {
		params = map[string]any{}
	}
	return Request{
		JSONRPC: jsonRPCVersion,
		Id:      id,
		Method:  method,
		Params:  params,
	}
}

// Call sends a single request. Only request construction errors are returned.
func (t *Transport) Call(ctx context.Context, req Request) (Result, error) {
	body, failure, err := t.post(ctx, req.Method, req)
	if err != nil {
		return Result{}, err
	}
	if failure != nil {
		return Result{Failure: failure.reason, Err: failure.err}, nil
	}
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		t.logFailure(req.Method, FailureDecode, err)
		return Result{Failure: FailureDecode, Err: err}, nil
	}
	t.logRPCError(req.Method, resp)
	return Result{Response: resp}, nil
}

// CallBatch sends all requests in one round trip. Ids are reassigned to
// 0, 1, 2... in call order.
func (t *Transport) CallBatch(ctx context.Context, reqs []Request) (BatchResult, error) {
	batch := make([]Request, len(reqs))
	for i := range reqs {
		batch[i] = reqs[i]
		batch[i].Id = i
	}
	body, failure, err := t.post(ctx, "batch", batch)
	if err != nil {
		return BatchResult{Responses: []Response{}}, err
	}
	if failure != nil {
		return BatchResult{Responses: []Response{}, Failure: failure.reason, Err: failure.err}, nil
	}
	var resps []Response
	if err := json.Unmarshal(body, &resps); err != nil {
		t.logFailure("batch", FailureDecode, err)
		return BatchResult{Responses: []Response{}, Failure: FailureDecode, Err: err}, nil
	}
	if resps == nil {
		resps = []Response{}
	}
	for i := range resps {
		t.logRPCError("batch", resps[i])
	}
	return BatchResult{Responses: resps}, nil
}

type callFailure struct {
	reason Failure
	err    error
}

func (t *Transport) post(ctx context.Context, method string, payload any) ([]byte, *callFailure, error) {
	defer RecordTimer(method, t.instrument)()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s: %w", method, err)
	}
	data = append(data, frameTerminator...)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.address, bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("build %s request: %w", method, err)
	}
	t.setHeaders(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		reason := classify(err)
		t.logFailure(method, reason, err)
		return nil, &callFailure{reason: reason, err: err}, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		reason := classify(err)
		t.logFailure(method, reason, err)
		return nil, &callFailure{reason: reason, err: err}, nil
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("unexpected status %d", resp.StatusCode)
		t.logFailure(method, FailureTransport, err)
		return nil, &callFailure{reason: FailureTransport, err: err}, nil
	}

	return bytes.ReplaceAll(body, []byte(frameTerminator), nil), nil, nil
}

func (t *Transport) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Origin", relayOrigin)
	req.Host = relayHost
	if t.cookie != "" {
		req.Header.Set("Cookie", t.cookie)
	}
}

func (t *Transport) logFailure(method string, reason Failure, err error) {
	t.logger.Warn("gateway call failed",
		zap.String("method", method),
		zap.Stringer("reason", reason),
		zap.Error(err))
}

func (t *Transport) logRPCError(method string, resp Response) {
	if resp.Error != nil {
		t.logger.Debug("gateway rpc error",
			zap.String("method", method),
			zap.Int("code", resp.Error.Code),
			zap.String("message", resp.Error.Message))
	}
}

func classify(err error) Failure {
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return FailureTimeout
	}
	return FailureTransport
}

func RecordTimer(name string, instrument []Instrument) func() {
	if instrument == nil {
		return func() {}
	}

	start := time.Now()
	return func() {
		duration := time.Since(start)
		for i := range instrument {
			instrument[i].RecordTime(name, duration)
		}
	}
}
