package core_api

import (
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/basic"
)

type Conversation struct {
	ConversationId string `json:"conversation_id"`
	AgentId        string `json:"agent_id,omitempty"`
	Brief          string `json:"brief"`
	Status         int32  `json:"status"`
	CreateTime     int64  `json:"create_time"`
	UpdateTime     int64  `json:"update_time"`
}

type Usage struct {
	PromptTokens     int32 `json:"prompt_tokens"`
	CompletionTokens int32 `json:"completion_tokens"`
	TotalTokens      int32 `json:"total_tokens"`
}

// Message 接口层消息, status为complete/truncated/failed
type Message struct {
	MessageId      string `json:"message_id"`
	ConversationId string `json:"conversation_id"`
	Seq            int64  `json:"seq"`
	Role           string `json:"role"`
	Content        string `json:"content"`
	Status         string `json:"status"`
	Usage          *Usage `json:"usage,omitempty"`
	CreateTime     int64  `json:"create_time"`
}

type CreateConversationReq struct {
	AgentId string `json:"agent_id,omitempty"`
}

type CreateConversationResp struct {
	Resp           *basic.Response `json:"resp"`
	ConversationId string          `json:"conversation_id"`
}

type ListConversationReq struct {
	Page *basic.Page `json:"page,omitempty"`
}

func (r *ListConversationReq) GetPage() *basic.Page { return r.Page }

type ListConversationResp struct {
	Resp          *basic.Response `json:"resp"`
	Conversations []*Conversation `json:"conversations"`
	HasMore       bool            `json:"has_more"`
	Cursor        string          `json:"cursor,omitempty"`
}

type GetConversationReq struct {
	ConversationId string      `json:"conversation_id"`
	Page           *basic.Page `json:"page,omitempty"`
}

func (r *GetConversationReq) GetPage() *basic.Page { return r.Page }

type GetConversationResp struct {
	Resp     *basic.Response `json:"resp"`
	Messages []*Message      `json:"messages"`
	HasMore  bool            `json:"has_more"`
	Cursor   string          `json:"cursor,omitempty"`
}

type RenameConversationReq struct {
	ConversationId string `json:"conversation_id"`
	Brief          string `json:"brief"`
}

type RenameConversationResp struct {
	Resp *basic.Response `json:"resp"`
}

type ArchiveConversationReq struct {
	ConversationId string `json:"conversation_id"`
}

type ArchiveConversationResp struct {
	Resp *basic.Response `json:"resp"`
}

type DeleteConversationReq struct {
	ConversationId string `json:"conversation_id"`
}

type DeleteConversationResp struct {
	Resp *basic.Response `json:"resp"`
}

type SearchConversationReq struct {
	Key  string      `json:"key"`
	Page *basic.Page `json:"page,omitempty"`
}

func (r *SearchConversationReq) GetPage() *basic.Page { return r.Page }

type SearchConversationResp struct {
	Resp          *basic.Response `json:"resp"`
	Conversations []*Conversation `json:"conversations"`
	HasMore       bool            `json:"has_more"`
	Cursor        string          `json:"cursor,omitempty"`
}
