package errno

import (
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx/code"
)

const (
	ConversationCreateErrCode   = 30001
	ConversationListErrCode     = 30002
	ConversationGetErrCode      = 30003
	ConversationRenameErrCode   = 30004
	ConversationDeleteErrCode   = 30005
	ConversationSearchErrCode   = 30006
	ConversationArchiveErrCode  = 30007
	ConversationNotFoundErrCode = 30008
	ConversationReadOnlyErrCode = 30009
)

func init() {
	code.Register(ConversationCreateErrCode, "创建对话失败", code.WithAffectStability(true))
	code.Register(ConversationListErrCode, "获取对话列表失败", code.WithAffectStability(true))
	code.Register(ConversationGetErrCode, "获取对话记录失败", code.WithAffectStability(true))
	code.Register(ConversationRenameErrCode, "重命名对话失败", code.WithAffectStability(true))
	code.Register(ConversationDeleteErrCode, "删除对话失败", code.WithAffectStability(true))
	code.Register(ConversationSearchErrCode, "搜索对话失败", code.WithAffectStability(true))
	code.Register(ConversationArchiveErrCode, "归档对话失败", code.WithAffectStability(true))
	code.Register(ConversationNotFoundErrCode, "对话不存在", code.WithAffectStability(false))
	code.Register(ConversationReadOnlyErrCode, "对话已归档, 不能继续发消息", code.WithAffectStability(false))
}
