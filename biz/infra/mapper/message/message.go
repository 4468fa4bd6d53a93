package message

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Usage 一次agent回复消耗的token统计
type Usage struct {
	PromptTokens     int32 `bson:"prompt_tokens" json:"prompt_tokens"`
	CompletionTokens int32 `bson:"completion_tokens" json:"completion_tokens"`
	TotalTokens      int32 `bson:"total_tokens" json:"total_tokens"`
}

// Message 对话内的一条消息
// Seq在同一对话内严格递增且无空洞, 由conversation计数器分配
// Flag标记完成状态: 完整/截断/失败
type Message struct {
	MessageId      primitive.ObjectID `bson:"_id,omitempty" json:"message_id"`
	ConversationId primitive.ObjectID `bson:"conversation_id" json:"conversation_id"`
	UserId         primitive.ObjectID `bson:"user_id" json:"user_id"`
	AgentId        primitive.ObjectID `bson:"agent_id,omitempty" json:"agent_id,omitempty"`
	Seq            int64              `bson:"seq" json:"seq"`
	Role           int32              `bson:"role" json:"role"`
	Content        string             `bson:"content" json:"content"`
	Flag           int32              `bson:"flag" json:"flag"`
	Usage          *Usage             `bson:"usage,omitempty" json:"usage,omitempty"`
	Sensitive      []string           `bson:"sensitive,omitempty" json:"sensitive,omitempty"`
	Status         int                `bson:"status,omitempty" json:"status"`
	CreateTime     time.Time          `bson:"create_time" json:"create_time"`
	UpdateTime     time.Time          `bson:"update_time" json:"update_time"`
	DeleteTime     time.Time          `bson:"delete_time,omitempty" json:"-"`
}
