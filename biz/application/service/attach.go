package service

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor"
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/core_api"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/storage"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

type IAttachService interface {
	PresignAttach(ctx context.Context, req *core_api.PresignAttachReq) (*core_api.PresignAttachResp, error)
}

// AttachService 附件直传
// 服务端只发预签名链接, 文件不过本服务
type AttachService struct {
	COS storage.COS
}

var AttachServiceSet = wire.NewSet(
	wire.Struct(new(AttachService), "*"),
	wire.Bind(new(IAttachService), new(*AttachService)),
)

func (s *AttachService) PresignAttach(ctx context.Context, req *core_api.PresignAttachReq) (*core_api.PresignAttachResp, error) {
	// 鉴权
	uid, err := adaptor.ExtractUserId(ctx)
	if err != nil {
		logs.Errorf("extract user id error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.UnAuthErrCode)
	}
	if req.Filename == "" {
		return nil, errorx.NewWithMsg(errno.ParamErrCode, "filename不能为空")
	}

	// 对象键: {uid}/{cid}/{时间戳}{后缀}
	key := fmt.Sprintf("%s/%s/%d%s", uid, req.ConversationId, time.Now().UnixNano(), path.Ext(req.Filename))
	url, err := s.COS.GenPresignURL(ctx, key, nil)
	if err != nil {
		logs.Errorf("presign attach error: %s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.AttachPresignErrCode)
	}

	return &core_api.PresignAttachResp{
		Resp:      util.Success(),
		UploadURL: url,
		AccessURL: s.COS.GetPermanentAccessURL(key),
		Key:       key,
	}, nil
}
