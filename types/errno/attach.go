package errno

import (
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx/code"
)

const (
	AttachPresignErrCode = 50001
	AttachUploadErrCode  = 50002
)

func init() {
	code.Register(AttachPresignErrCode, "获取上传链接失败", code.WithAffectStability(true))
	code.Register(AttachUploadErrCode, "附件上传失败", code.WithAffectStability(true))
}
