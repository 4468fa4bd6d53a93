package model

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, cs *ChunkStream) (string, error) {
	t.Helper()
	var got string
	for {
		delta, err := cs.Recv(make(chan struct{}))
		if errors.Is(err, io.EOF) {
			return got, nil
		}
		if err != nil {
			return got, err
		}
		got += delta
	}
}

func TestPumpRelaysChunks(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](4)
	cs, w := NewChunkStream(time.Second, 4)
	go pump(sr, w, 0)

	sw.Send(&schema.Message{Role: schema.Assistant, Content: "Hel"}, nil)
	sw.Send(&schema.Message{Role: schema.Assistant, Content: ""}, nil) // 空增量跳过
	sw.Send(&schema.Message{Role: schema.Assistant, Content: "lo"}, nil)
	sw.Close()

	got, err := drain(t, cs)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got)
	sum := cs.Summary()
	require.NotNil(t, sum)
	assert.False(t, sum.Truncated)
}

func TestPumpTokenBound(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](4)
	cs, w := NewChunkStream(time.Second, 4)
	go pump(sr, w, 2) // 两个token约八个字符

	sw.Send(&schema.Message{Role: schema.Assistant, Content: "12345678"}, nil)
	sw.Send(&schema.Message{Role: schema.Assistant, Content: "overflow"}, nil)
	sw.Close()

	// 超限的增量被丢弃, 按截断终结
	got, err := drain(t, cs)
	require.NoError(t, err)
	assert.Equal(t, "12345678", got)
	sum := cs.Summary()
	require.NotNil(t, sum)
	assert.True(t, sum.Truncated)
	assert.Equal(t, int32(2), sum.CompletionTokens)
}

func TestPumpUsageFromProvider(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](4)
	cs, w := NewChunkStream(time.Second, 4)
	go pump(sr, w, 0)

	sw.Send(&schema.Message{
		Role:    schema.Assistant,
		Content: "ok",
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 11, CompletionTokens: 7, TotalTokens: 18},
		},
	}, nil)
	sw.Close()

	_, err := drain(t, cs)
	require.NoError(t, err)
	sum := cs.Summary()
	require.NotNil(t, sum)
	// provider的精确统计优先于估算
	assert.Equal(t, int32(11), sum.PromptTokens)
	assert.Equal(t, int32(7), sum.CompletionTokens)
	assert.Equal(t, int32(18), sum.TotalTokens)
}

func TestPumpTokenBoundWithProviderUsage(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](4)
	cs, w := NewChunkStream(time.Second, 4)
	go pump(sr, w, 2)

	sw.Send(&schema.Message{Role: schema.Assistant, Content: "12345678"}, nil)
	sw.Send(&schema.Message{
		Role:    schema.Assistant,
		Content: "overflow",
		ResponseMeta: &schema.ResponseMeta{
			Usage: &schema.TokenUsage{PromptTokens: 7, CompletionTokens: 50, TotalTokens: 57},
		},
	}, nil)
	sw.Close()

	got, err := drain(t, cs)
	require.NoError(t, err)
	assert.Equal(t, "12345678", got)

	// provider统计含被丢弃的增量, 截断后的用量不能超出上限
	sum := cs.Summary()
	require.NotNil(t, sum)
	assert.True(t, sum.Truncated)
	assert.Equal(t, int32(7), sum.PromptTokens)
	assert.Equal(t, int32(2), sum.CompletionTokens)
	assert.Equal(t, int32(9), sum.TotalTokens)
}

func TestPumpProviderFailure(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](4)
	cs, w := NewChunkStream(time.Second, 4)
	go pump(sr, w, 0)

	sw.Send(&schema.Message{Role: schema.Assistant, Content: "半"}, nil)
	sw.Send(nil, errors.New("upstream 503"))
	sw.Close()

	got, err := drain(t, cs)
	assert.Equal(t, "半", got)
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.Retryable)
}

func TestPumpStopsOnAbandon(t *testing.T) {
	sr, sw := schema.Pipe[*schema.Message](0)
	cs, w := NewChunkStream(time.Second, 0)
	done := make(chan struct{})
	go func() {
		pump(sr, w, 0)
		close(done)
	}()

	cs.Abandon()
	sw.Send(&schema.Message{Role: schema.Assistant, Content: "没人收"}, nil)
	sw.Send(&schema.Message{Role: schema.Assistant, Content: "还在发"}, nil)
	sw.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pump did not exit after abandon")
	}
}

func TestNormalizeProviderErr(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"rate limit", errors.New("HTTP 429 Too Many Requests"), true},
		{"server error", errors.New("status code: 503"), true},
		{"bad gateway", errors.New("502 bad gateway"), true},
		{"auth", errors.New("invalid api key"), false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var pe *ProviderError
			require.ErrorAs(t, normalizeProviderErr(c.err), &pe)
			assert.Equal(t, c.retryable, pe.Retryable)
		})
	}

	// 已经是ProviderError的保持原样
	orig := &ProviderError{Retryable: true, Reason: "rate limited"}
	assert.Same(t, orig, normalizeProviderErr(orig).(*ProviderError))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("a"))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 1, EstimateTokens("你好")) // 按rune计数
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported(GPT4o))
	assert.True(t, Supported(DoubaoPro))
	assert.False(t, Supported("llama-0"))
}
