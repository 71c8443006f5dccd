package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	status int
	body   []byte
	err    error
	calls  int
	last   []byte
}

func (f *fakeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.calls++
	if req.Body != nil {
		f.last, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}
	if f.err != nil {
		return nil, f.err
	}
	resp := &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(bytes.NewReader(f.body)),
		Header:     make(http.Header),
		Request:    req,
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp, nil
}

func messageJSON(text string) []byte {
	return []byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude-3-haiku-20240307",` +
		`"content":[{"type":"text","text":` + mustQuote(text) + `}],` +
		`"stop_reason":"end_turn","usage":{"input_tokens":3,"output_tokens":2}}`)
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func newTestGenerator(key string, rt http.RoundTripper) *AnthropicGenerator {
	return NewAnthropicGenerator(
		AnthropicConfig{APIKey: key},
		option.WithHTTPClient(&http.Client{Transport: rt}),
	)
}

func TestAnthropic_Success(t *testing.T) {
	rt := &fakeTransport{status: http.StatusOK, body: messageJSON("X")}
	g := newTestGenerator("test-key", rt)

	out, err := g.Generate(context.Background(), SystemPrompt, "本文")
	require.NoError(t, err)
	assert.Equal(t, "X", out)
	assert.Equal(t, 1, rt.calls)

	var sent struct {
		Model  string `json:"model"`
		System []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string `json:"role"`
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rt.last, &sent))
	assert.Equal(t, DefaultModel, sent.Model)
	require.Len(t, sent.System, 1)
	assert.Equal(t, SystemPrompt, sent.System[0].Text)
	require.Len(t, sent.Messages, 1)
	assert.Equal(t, "user", sent.Messages[0].Role)
	assert.Equal(t, "本文", sent.Messages[0].Content[0].Text)
}

func TestAnthropic_MissingKeyMakesNoCall(t *testing.T) {
	rt := &fakeTransport{status: http.StatusOK, body: messageJSON("X")}
	g := newTestGenerator("", rt)

	_, err := g.Generate(context.Background(), SystemPrompt, "text")
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Equal(t, 0, rt.calls)
}

func TestAnthropic_StatusErrorIsUpstreamWithoutRetry(t *testing.T) {
	rt := &fakeTransport{
		status: http.StatusInternalServerError,
		body:   []byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`),
	}
	g := newTestGenerator("test-key", rt)

	_, err := g.Generate(context.Background(), SystemPrompt, "text")
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, 1, rt.calls)
}

func TestAnthropic_NoTextIsUpstream(t *testing.T) {
	rt := &fakeTransport{status: http.StatusOK, body: []byte(`{"id":"m","type":"message","role":"assistant","content":[]}`)}
	_, err := newTestGenerator("k", rt).Generate(context.Background(), SystemPrompt, "text")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestAnthropic_TransportErrorIsNotUpstream(t *testing.T) {
	rt := &fakeTransport{err: errors.New("connection reset")}
	_, err := newTestGenerator("k", rt).Generate(context.Background(), SystemPrompt, "text")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUpstream))
	assert.Equal(t, 1, rt.calls)
}

func TestGatewayWithAnthropic(t *testing.T) {
	rt := &fakeTransport{status: http.StatusOK, body: messageJSON("三行の要約")}
	res := New(newTestGenerator("k", rt)).Summarize(context.Background(), "長い文章")
	assert.Equal(t, Result{Success: true, Summary: "三行の要約"}, res)

	res = New(newTestGenerator("", rt)).Summarize(context.Background(), "長い文章")
	assert.Equal(t, MissingCredentials, res.Error)
}
