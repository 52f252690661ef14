package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

type captured struct {
	method string
	header http.Header
	body   string
}

func newCaptureServer(t *testing.T, status int, reply string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.method = r.Method
		c.header = r.Header.Clone()
		c.body = string(data)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func TestSendPostsJSON(t *testing.T) {
	srv, got := newCaptureServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
	cfg := testConfig()
	cfg.EndpointURL = srv.URL

	resp, err := NewClient(nil, zap.NewNop()).Send(context.Background(), cfg, BuildRequest(cfg, nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, `{"choices":[{"message":{"content":"ok"}}]}`, string(resp.Body))
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	assert.Contains(t, got.body, `"stream":false`)
	assert.Contains(t, got.body, `"role":"system"`)
}

func TestSendAuthorizationHeader(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   string
	}{
		{"empty key", "", ""},
		{"whitespace key", "   \t ", ""},
		{"plain key", "sk-test", "Bearer sk-test"},
		{"padded key is trimmed", "  sk-test \n", "Bearer sk-test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, got := newCaptureServer(t, http.StatusOK, `{"choices":[{"message":{"content":"ok"}}]}`)
			cfg := testConfig()
			cfg.EndpointURL = srv.URL
			cfg.APIKey = tt.apiKey

			_, err := NewClient(nil, nil).Send(context.Background(), cfg, BuildRequest(cfg, nil))
			require.NoError(t, err)

			assert.Equal(t, tt.want, got.header.Get("Authorization"))
			if tt.want == "" {
				_, present := got.header["Authorization"]
				assert.False(t, present)
			}
		})
	}
}

func TestSendNon2xxIsTransportError(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusInternalServerError, `internal boom`)
	cfg := testConfig()
	cfg.EndpointURL = srv.URL

	resp, err := NewClient(nil, nil).Send(context.Background(), cfg, BuildRequest(cfg, nil))
	assert.Nil(t, resp)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.Status)
	assert.Equal(t, "endpoint returned HTTP 500: internal boom", err.Error())
}

func TestSendDecodesOpenAIErrorEnvelope(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","param":null,"code":"invalid_api_key"}}`)
	cfg := testConfig()
	cfg.EndpointURL = srv.URL

	_, err := NewClient(nil, nil).Send(context.Background(), cfg, BuildRequest(cfg, nil))
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.Equal(t, "endpoint returned HTTP 401: Incorrect API key provided", err.Error())
}

func TestSendEmptyErrorBodyUsesStatusText(t *testing.T) {
	srv, _ := newCaptureServer(t, http.StatusBadGateway, ``)
	cfg := testConfig()
	cfg.EndpointURL = srv.URL

	_, err := NewClient(nil, nil).Send(context.Background(), cfg, BuildRequest(cfg, nil))
	require.Error(t, err)
	assert.Equal(t, "endpoint returned HTTP 502: Bad Gateway", err.Error())
}

func TestSendConnectionFailure(t *testing.T) {
	boom := errors.New("connection refused")
	client := NewClient(&mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return nil, boom
		},
	}, nil)

	_, err := client.Send(context.Background(), testConfig(), BuildRequest(testConfig(), nil))
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestSendInvalidEndpoint(t *testing.T) {
	cfg := testConfig()
	cfg.EndpointURL = "://not a url"

	_, err := NewClient(nil, nil).Send(context.Background(), cfg, BuildRequest(cfg, nil))
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestSendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig()
	cfg.EndpointURL = srv.URL
	client := NewClient(&http.Client{Timeout: 50 * time.Millisecond}, nil)

	_, err := client.Send(context.Background(), cfg, BuildRequest(cfg, nil))
	require.Error(t, err)
	assert.True(t, IsTransportError(err))
}

func TestSendPassesBodyThroughFor2xx(t *testing.T) {
	client := NewClient(&mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusCreated,
				Body:       io.NopCloser(strings.NewReader(`not json`)),
			}, nil
		},
	}, nil)

	resp, err := client.Send(context.Background(), testConfig(), BuildRequest(testConfig(), nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.Status)

	_, err = ParseReply(resp.Body)
	assert.True(t, IsMalformedResponse(err))
}

func TestErrorMessageTruncatesLongBodies(t *testing.T) {
	msg := errorMessage([]byte(strings.Repeat("x", 2000)))
	assert.Len(t, msg, maxErrorBody+3)
	assert.True(t, strings.HasSuffix(msg, "..."))
}

func TestErrorMessageTruncatesOnRuneBoundary(t *testing.T) {
	// Each "é" is two bytes; an odd prefix puts maxErrorBody mid-rune.
	msg := errorMessage([]byte("x" + strings.Repeat("é", maxErrorBody)))
	assert.True(t, utf8.ValidString(msg))
	assert.True(t, strings.HasSuffix(msg, "..."))
	assert.LessOrEqual(t, len(msg), maxErrorBody+3)
}

func TestSendRejectsOversizedBody(t *testing.T) {
	client := NewClient(&mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(strings.Repeat(" ", maxResponseSize+1))),
			}, nil
		},
	}, nil)

	resp, err := client.Send(context.Background(), testConfig(), BuildRequest(testConfig(), nil))
	assert.Nil(t, resp)
	require.Error(t, err)
	assert.True(t, IsMalformedResponse(err))
	assert.Contains(t, err.Error(), "response too large")
}

func TestSendAcceptsBodyAtCap(t *testing.T) {
	reply := `{"choices":[{"message":{"content":"ok"}}]}`
	padded := reply + strings.Repeat(" ", maxResponseSize-len(reply))
	client := NewClient(&mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(padded))}, nil
		},
	}, nil)

	resp, err := client.Send(context.Background(), testConfig(), BuildRequest(testConfig(), nil))
	require.NoError(t, err)
	got, err := ParseReply(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}
