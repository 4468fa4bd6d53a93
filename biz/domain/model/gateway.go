package model

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/domain/agent"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/pkg/safego"
)

// IGateway 流式生成入口, 屏蔽各provider差异
// 返回的ChunkStream只产出纯文本增量, 错误统一归一化成ProviderError
type IGateway interface {
	Stream(ctx context.Context, uid string, snap *agent.Snapshot, history []*schema.Message, userMsg *schema.Message) (*ChunkStream, error)
}

type Gateway struct {
	Conf *config.Config
}

var GatewaySet = wire.NewSet(
	wire.Struct(new(Gateway), "*"),
	wire.Bind(new(IGateway), new(*Gateway)),
)

func (g *Gateway) Stream(ctx context.Context, uid string, snap *agent.Snapshot,
	history []*schema.Message, userMsg *schema.Message) (*ChunkStream, error) {
	cm, err := getModel(ctx, snap.Model, uid)
	if err != nil {
		return nil, err
	}

	msgs := make([]*schema.Message, 0, len(history)+2)
	if snap.Instructions != "" {
		msgs = append(msgs, schema.SystemMessage(snap.Instructions))
	}
	msgs = append(msgs, history...)
	msgs = append(msgs, userMsg)

	reader, err := cm.Stream(ctx, msgs,
		einomodel.WithTemperature(float32(snap.Temperature)),
		einomodel.WithMaxTokens(snap.MaxTokens))
	if err != nil {
		return nil, normalizeProviderErr(err)
	}

	cs, w := NewChunkStream(time.Duration(g.Conf.Stream.InactivityMs)*time.Millisecond, 8)
	safego.Go(ctx, func() { pump(reader, w, snap.MaxTokens) })
	return cs, nil
}

// pump 把provider流搬运到ChunkStream, 同时执行token上限
func pump(reader *schema.StreamReader[*schema.Message], w *ChunkWriter, maxTokens int) {
	defer reader.Close()

	var tokens int
	var usage *schema.TokenUsage
	for {
		msg, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			w.Finish(summarize(tokens, usage, false))
			return
		}
		if err != nil {
			w.Fail(normalizeProviderErr(err))
			return
		}
		if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
			usage = msg.ResponseMeta.Usage
		}
		if msg.Content == "" {
			continue
		}

		est := EstimateTokens(msg.Content)
		if maxTokens > 0 && tokens+est > maxTokens {
			// 超出token上限, 丢弃当前增量并按截断终结
			w.Finish(summarize(tokens, usage, true))
			return
		}
		tokens += est
		if !w.Send(msg.Content) { // 消费方已放弃
			return
		}
	}
}

func summarize(tokens int, usage *schema.TokenUsage, truncated bool) *Summary {
	s := &Summary{
		CompletionTokens: int32(tokens),
		TotalTokens:      int32(tokens),
		Truncated:        truncated,
	}
	// provider给了精确统计就用精确的
	if usage != nil {
		s.PromptTokens = int32(usage.PromptTokens)
		s.CompletionTokens = int32(usage.CompletionTokens)
		s.TotalTokens = int32(usage.TotalTokens)
	}
	// 截断时provider统计的是含被丢增量的全量, 回落到已下发部分的估算值
	if truncated && s.CompletionTokens > int32(tokens) {
		s.CompletionTokens = int32(tokens)
		s.TotalTokens = s.PromptTokens + s.CompletionTokens
	}
	return s
}

// EstimateTokens 粗略估算token数, 约四个字符一个token
func EstimateTokens(s string) int {
	n := len([]rune(s))
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}

// normalizeProviderErr 把provider侧错误归一化成ProviderError
func normalizeProviderErr(err error) error {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Reason: "provider timeout", cause: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "rate limit"):
		return &ProviderError{Retryable: true, Reason: "rate limited", cause: err}
	case strings.Contains(msg, "500"), strings.Contains(msg, "502"),
		strings.Contains(msg, "503"), strings.Contains(msg, "504"):
		return &ProviderError{Retryable: true, Reason: "provider unavailable", cause: err}
	default:
		return &ProviderError{Reason: "provider error", cause: err}
	}
}
