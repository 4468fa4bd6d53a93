package msg

import (
	"time"

	"github.com/cloudwego/eino/schema"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/core_api"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/agent"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cst"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/conversation"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/message"
)

// NewUserMsg 构造一条用户消息
func NewUserMsg(c *conversation.Conversation, seq int64, content string) *message.Message {
	now := time.Now()
	return &message.Message{
		MessageId:      primitive.NewObjectID(),
		ConversationId: c.ConversationId,
		UserId:         c.UserId,
		Seq:            seq,
		Role:           cst.UserEnum,
		Content:        content,
		Flag:           cst.FlagComplete,
		CreateTime:     now,
		UpdateTime:     now,
	}
}

// NewAssistantMsg 构造一条agent回复, flag标记完整/截断/失败
func NewAssistantMsg(c *conversation.Conversation, snap *agent.Snapshot, seq int64,
	content string, flag int32, usage *message.Usage, sensitive []string) *message.Message {
	now := time.Now()
	m := &message.Message{
		MessageId:      primitive.NewObjectID(),
		ConversationId: c.ConversationId,
		UserId:         c.UserId,
		Seq:            seq,
		Role:           cst.AssistantEnum,
		Content:        content,
		Flag:           flag,
		Usage:          usage,
		Sensitive:      sensitive,
		CreateTime:     now,
		UpdateTime:     now,
	}
	if snap != nil && snap.AgentId != "" {
		if oid, err := primitive.ObjectIDFromHex(snap.AgentId); err == nil {
			m.AgentId = oid
		}
	}
	return m
}

// ToSchema mapper消息转换为模型输入
// 入参按seq倒序, 返回按seq正序
func ToSchema(msgs []*message.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		switch m.Role {
		case cst.AssistantEnum:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		case cst.UserEnum:
			out = append(out, schema.UserMessage(m.Content))
		case cst.SystemEnum:
			out = append(out, schema.SystemMessage(m.Content))
		}
	}
	return out
}

// ToDTO mapper消息转换为接口层消息
func ToDTO(ms []*message.Message) []*core_api.Message {
	out := make([]*core_api.Message, 0, len(ms))
	for _, m := range ms {
		out = append(out, ToDTOOne(m))
	}
	return out
}

func ToDTOOne(m *message.Message) *core_api.Message {
	if m == nil {
		return nil
	}
	d := &core_api.Message{
		MessageId:      m.MessageId.Hex(),
		ConversationId: m.ConversationId.Hex(),
		Seq:            m.Seq,
		Role:           RoleStr(m.Role),
		Content:        m.Content,
		Status:         FlagStr(m.Flag),
		CreateTime:     m.CreateTime.Unix(),
	}
	if m.Usage != nil {
		d.Usage = &core_api.Usage{
			PromptTokens:     m.Usage.PromptTokens,
			CompletionTokens: m.Usage.CompletionTokens,
			TotalTokens:      m.Usage.TotalTokens,
		}
	}
	return d
}

// RoleStr 角色枚举的对外展示值
func RoleStr(role int32) string {
	switch role {
	case cst.AssistantEnum:
		return cst.Assistant
	case cst.SystemEnum:
		return cst.System
	default:
		return cst.User
	}
}

// FlagStr 完成标志的对外展示值
func FlagStr(flag int32) string {
	switch flag {
	case cst.FlagTruncated:
		return cst.FlagTruncatedStr
	case cst.FlagFailed:
		return cst.FlagFailedStr
	default:
		return cst.FlagCompleteStr
	}
}
