package storage

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util/httpx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

var _ COS = (*cosClient)(nil)

type COS interface {
	Upload(ctx context.Context, key string, r io.Reader, opt *cos.ObjectPutOptions) (*cos.Response, error)
	GenPresignURL(ctx context.Context, key string, opt *cos.PresignedURLOptions) (string, error)
	GetPermanentAccessURL(key string) string
}

type cosClient struct {
	Conf   *config.COS
	Client *cos.Client
}

func NewCOS(c *config.Config) COS {
	b := &cos.BaseURL{
		BucketURL: util.Str2URL(c.COS.BucketURL),
	}
	client := cos.NewClient(b, newCOSHTTPClient(c))
	return &cosClient{
		Conf:   &c.COS,
		Client: client,
	}
}

// Upload 服务端直传对象
// key 对象键, 形如 {user_id}/{conversation_id}/{时间戳}
func (c *cosClient) Upload(ctx context.Context, key string, r io.Reader, opt *cos.ObjectPutOptions) (*cos.Response, error) {
	if opt == nil {
		opt = &cos.ObjectPutOptions{}
	}
	resp, err := c.Client.Object.Put(ctx, key, r, opt)
	if err != nil {
		return nil, errorx.WrapByCode(err, errno.AttachUploadErrCode)
	}
	return resp, nil
}

// GenPresignURL 生成上传预签名链接, 前端拿到后直传
func (c *cosClient) GenPresignURL(ctx context.Context, key string, opt *cos.PresignedURLOptions) (string, error) {
	if opt == nil {
		opt = &cos.PresignedURLOptions{}
	}
	u, err := c.Client.Object.GetPresignedURL2(ctx, http.MethodPut, key,
		time.Minute, // 1分钟内过期
		opt,
	)
	if err != nil || u == nil {
		return "", errorx.WrapByCode(err, errno.AttachPresignErrCode)
	}
	return u.String(), nil
}

func (c *cosClient) GetPermanentAccessURL(key string) string {
	if c.Conf.CDN != "" {
		return c.Conf.CDN + "/" + key
	}
	return c.Client.Object.GetObjectURL(key).String()
}

func newCOSHTTPClient(c *config.Config) *http.Client {
	// cos的鉴权transport单独包一层, 其余配置复用全局客户端
	gCli := httpx.GetClient()
	return &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  c.COS.SecretID,
			SecretKey: c.COS.SecretKey,
			Transport: gCli.Transport,
		},
	}
}
