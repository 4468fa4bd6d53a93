package core_api

import (
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/basic"
)

// CompletionsReq websocket不可用时的HTTP回退入口
type CompletionsReq struct {
	ConversationId string `json:"conversation_id,omitempty"`
	AgentId        string `json:"agent_id,omitempty"`
	Message        string `json:"message"`
}

// CompletionsResp 完整的一轮回复, 没有增量
type CompletionsResp struct {
	Resp           *basic.Response `json:"resp"`
	ConversationId string          `json:"conversation_id"`
	Message        *Message        `json:"message"`
}
