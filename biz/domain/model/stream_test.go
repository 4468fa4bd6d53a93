package model

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkStreamRecvAndFinish(t *testing.T) {
	cs, w := NewChunkStream(time.Second, 4)
	go func() {
		w.Send("你")
		w.Send("好")
		w.Finish(&Summary{CompletionTokens: 2, TotalTokens: 2})
	}()

	cancel := make(chan struct{})
	var got string
	for {
		delta, err := cs.Recv(cancel)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got += delta
	}
	assert.Equal(t, "你好", got)
	sum := cs.Summary()
	require.NotNil(t, sum)
	assert.Equal(t, int32(2), sum.TotalTokens)
	assert.False(t, sum.Truncated)
}

func TestChunkStreamFail(t *testing.T) {
	cs, w := NewChunkStream(time.Second, 1)
	w.Fail(&ProviderError{Retryable: true, Reason: "rate limited"})

	_, err := cs.Recv(make(chan struct{}))
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.True(t, pe.Retryable)
	assert.Nil(t, cs.Summary())
}

func TestChunkStreamCancel(t *testing.T) {
	cs, w := NewChunkStream(time.Second, 0)
	cancel := make(chan struct{})
	close(cancel)

	_, err := cs.Recv(cancel)
	assert.ErrorIs(t, err, ErrAbandoned)
	// 放弃后生产端直接失败
	assert.False(t, w.Send("迟到的chunk"))
}

func TestChunkStreamInactivityTimeout(t *testing.T) {
	cs, w := NewChunkStream(10*time.Millisecond, 0)

	_, err := cs.Recv(make(chan struct{}))
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.Retryable)
	assert.Contains(t, pe.Reason, "timeout")
	assert.False(t, w.Send("超时后的chunk"))
}

func TestChunkStreamFinishIdempotent(t *testing.T) {
	cs, w := NewChunkStream(time.Second, 1)
	w.Finish(&Summary{Truncated: true})
	w.Finish(nil)
	w.Fail(errors.New("ignored"))

	_, err := cs.Recv(make(chan struct{}))
	assert.ErrorIs(t, err, io.EOF)
	require.NotNil(t, cs.Summary())
	assert.True(t, cs.Summary().Truncated)
}
