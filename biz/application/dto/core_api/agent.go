package core_api

import (
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/basic"
)

type Agent struct {
	AgentId      string  `json:"agent_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	Instructions string  `json:"instructions,omitempty"`
	Visibility   int32   `json:"visibility"`
	Active       bool    `json:"active"`
	CreateTime   int64   `json:"create_time"`
	UpdateTime   int64   `json:"update_time"`
}

type CreateAgentReq struct {
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Model        string  `json:"model,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
	Visibility   int32   `json:"visibility,omitempty"`
}

type CreateAgentResp struct {
	Resp    *basic.Response `json:"resp"`
	AgentId string          `json:"agent_id"`
}

type UpdateAgentReq struct {
	AgentId      string  `json:"agent_id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Model        string  `json:"model,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
	MaxTokens    int     `json:"max_tokens,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
	Visibility   int32   `json:"visibility,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

type UpdateAgentResp struct {
	Resp *basic.Response `json:"resp"`
}

type GetAgentReq struct {
	AgentId string `json:"agent_id" query:"agent_id"`
}

type GetAgentResp struct {
	Resp  *basic.Response `json:"resp"`
	Agent *Agent          `json:"agent"`
}

type ListAgentReq struct {
	Page *basic.Page `json:"page,omitempty"`
}

func (r *ListAgentReq) GetPage() *basic.Page { return r.Page }

type ListAgentResp struct {
	Resp    *basic.Response `json:"resp"`
	Agents  []*Agent        `json:"agents"`
	HasMore bool            `json:"has_more"`
}

type DeleteAgentReq struct {
	AgentId string `json:"agent_id"`
}

type DeleteAgentResp struct {
	Resp *basic.Response `json:"resp"`
}
