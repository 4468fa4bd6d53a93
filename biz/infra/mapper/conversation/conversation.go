package conversation

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cst"
)

// Conversation 一个用户与一个智能体的对话
// Seq是消息序号计数器, 每持久化一条消息自增一次
type Conversation struct {
	ConversationId primitive.ObjectID `bson:"_id,omitempty" json:"conversation_id"`
	UserId         primitive.ObjectID `bson:"user_id" json:"user_id"`
	OrgId          primitive.ObjectID `bson:"org_id,omitempty" json:"org_id,omitempty"`
	AgentId        primitive.ObjectID `bson:"agent_id,omitempty" json:"agent_id,omitempty"`
	Brief          string             `bson:"brief" json:"brief"`
	Seq            int64              `bson:"seq" json:"seq"`
	Status         int                `bson:"status,omitempty" json:"status"`
	CreateTime     time.Time          `bson:"create_time" json:"create_time"`
	UpdateTime     time.Time          `bson:"update_time" json:"update_time"`
	DeleteTime     time.Time          `bson:"delete_time,omitempty" json:"-"`
}

func (c *Conversation) Archived() bool {
	return c != nil && c.Status == cst.ConversationArchived
}
