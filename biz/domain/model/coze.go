package model

import (
	"context"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/coze-dev/coze-go"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util/httpx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

func init() {
	RegisterModel(CozeBot, NewCozeModel)
}

const CozeBot = "coze-bot"

var (
	autoSaveHistory = false
	isStream        = true
)

// CozeModel 把coze智能体包装成ChatModel
type CozeModel struct {
	cli   *coze.CozeAPI
	uid   string
	botId string
}

func NewCozeModel(ctx context.Context, _, uid string) (einomodel.ToolCallingChatModel, error) {
	c := config.GetConfig()
	cli := coze.NewCozeAPI(coze.NewTokenAuth(c.Coze.PAT),
		coze.WithBaseURL(c.Coze.BaseURL),
		coze.WithHttpClient(httpx.GetClient()))
	return &CozeModel{cli: &cli, uid: uid, botId: c.Coze.BotId}, nil
}

func (c *CozeModel) Generate(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (*schema.Message, error) {
	return nil, errorx.New(errno.UnImplementErrCode)
}

func (c *CozeModel) Stream(ctx context.Context, in []*schema.Message, opts ...einomodel.Option) (sr *schema.StreamReader[*schema.Message], err error) {
	sr, sw := schema.Pipe[*schema.Message](5)
	request := &coze.CreateChatsReq{
		BotID:           c.botId,
		UserID:          c.uid,
		Messages:        e2c(in),
		AutoSaveHistory: &autoSaveHistory,
		Stream:          &isStream,
	}
	var stream coze.Stream[coze.ChatEvent]
	if stream, err = c.cli.Chat.Stream(ctx, request); err != nil {
		return nil, err
	}
	go process(ctx, stream, sw)
	return sr, nil
}

func process(ctx context.Context, reader coze.Stream[coze.ChatEvent], writer *schema.StreamWriter[*schema.Message]) {
	defer func() { _ = reader.Close() }()
	defer writer.Close()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			event, err := reader.Recv()
			if err != nil {
				writer.Send(nil, err)
				return
			}
			if event.Message == nil || event.Event != coze.ChatEventConversationMessageDelta {
				continue
			}
			writer.Send(&schema.Message{
				Role:    schema.Assistant,
				Content: event.Message.Content,
			}, nil)
		}
	}
}

func (c *CozeModel) WithTools(tools []*schema.ToolInfo) (einomodel.ToolCallingChatModel, error) {
	return c, nil
}

func e2c(in []*schema.Message) (out []*coze.Message) {
	for _, m := range in {
		out = append(out, &coze.Message{
			Role:        coze.MessageRole(m.Role),
			Content:     m.Content,
			Type:        "question",
			ContentType: "text",
		})
	}
	return
}
