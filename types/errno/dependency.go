package errno

import (
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx/code"
)

const (
	MongoErrCode = 99001
)

func init() {
	code.Register(MongoErrCode, "存储服务异常", code.WithAffectStability(true))
}
