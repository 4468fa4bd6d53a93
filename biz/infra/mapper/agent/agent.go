package agent

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cst"
)

// Agent 一份智能体配置: 模型与采样参数加上系统指令
type Agent struct {
	AgentId      primitive.ObjectID `bson:"_id,omitempty" json:"agent_id"`
	OwnerId      primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	OrgId        primitive.ObjectID `bson:"org_id,omitempty" json:"org_id,omitempty"`
	Name         string             `bson:"name" json:"name"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	Model        string             `bson:"model" json:"model"`
	Temperature  float64            `bson:"temperature" json:"temperature"`
	MaxTokens    int                `bson:"max_tokens" json:"max_tokens"`
	Instructions string             `bson:"instructions" json:"instructions"`
	Visibility   int32              `bson:"visibility" json:"visibility"`
	Active       bool               `bson:"active" json:"active"`
	Status       int                `bson:"status,omitempty" json:"status"`
	CreateTime   time.Time          `bson:"create_time" json:"create_time"`
	UpdateTime   time.Time          `bson:"update_time" json:"update_time"`
	DeleteTime   time.Time          `bson:"delete_time,omitempty" json:"-"`
}

func (a *Agent) Public() bool {
	return a != nil && a.Visibility == cst.AgentPublic
}

// AccessibleBy 公开的人人可用, 私有的限属主和同组织成员
func (a *Agent) AccessibleBy(uid, orgId string) bool {
	if a == nil {
		return false
	}
	if a.Public() || a.OwnerId.Hex() == uid {
		return true
	}
	return !a.OrgId.IsZero() && a.OrgId.Hex() == orgId
}
