package errno

import (
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx/code"
)

const (
	AgentNotFoundErrCode  = 40001
	AgentForbiddenErrCode = 40002
	AgentCreateErrCode    = 40003
	AgentUpdateErrCode    = 40004
	AgentListErrCode      = 40005
	AgentDeleteErrCode    = 40006
)

func init() {
	code.Register(AgentNotFoundErrCode, "智能体不存在或已停用", code.WithAffectStability(false))
	code.Register(AgentForbiddenErrCode, "无权访问该智能体", code.WithAffectStability(false))
	code.Register(AgentCreateErrCode, "创建智能体失败", code.WithAffectStability(true))
	code.Register(AgentUpdateErrCode, "更新智能体失败", code.WithAffectStability(true))
	code.Register(AgentListErrCode, "获取智能体列表失败", code.WithAffectStability(true))
	code.Register(AgentDeleteErrCode, "删除智能体失败", code.WithAffectStability(true))
}
