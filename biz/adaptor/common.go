package adaptor

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
	hertz "github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/golang-jwt/jwt/v4"
	"github.com/xh-polaris/gopkg/util"
	"go.opentelemetry.io/contrib/propagators/b3"
	"go.opentelemetry.io/otel/propagation"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
)

const hertzContext = "hertz_context"

func InjectContext(ctx context.Context, c *app.RequestContext) context.Context {
	return context.WithValue(ctx, hertzContext, c) //nolint:staticcheck
}

func ExtractContext(ctx context.Context) (*app.RequestContext, error) {
	c, ok := ctx.Value(hertzContext).(*app.RequestContext)
	if !ok {
		return nil, errors.New("hertz context not found")
	}
	return c, nil
}

// ExtractUserMeta 从请求中解析用户身份与所属组织
// HTTP走Authorization头, websocket握手兜底query参数token; 组织是可选声明
func ExtractUserMeta(ctx context.Context) (userId, orgId string, err error) {
	defer func() {
		if err != nil {
			logs.CtxInfof(ctx, "extract user meta fail, err=%v", err)
		}
	}()
	c, err := ExtractContext(ctx)
	if err != nil {
		return "", "", err
	}

	tokenString := strings.TrimPrefix(string(c.GetHeader("Authorization")), "Bearer ")
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	token, err := jwt.Parse(tokenString, func(_ *jwt.Token) (interface{}, error) {
		return jwt.ParseECPublicKeyFromPEM([]byte(config.GetConfig().Auth.PublicKey))
	})
	if err != nil {
		return "", "", err
	}
	if !token.Valid {
		return "", "", errors.New("token is not valid")
	}

	data, err := json.Marshal(token.Claims)
	if err != nil {
		return "", "", err
	}
	var claims map[string]interface{}
	if err = json.Unmarshal(data, &claims); err != nil {
		return "", "", err
	}
	uid, ok := claims["userId"].(string)
	if !ok {
		return "", "", errors.New("userId claim missing")
	}
	orgId, _ = claims["orgId"].(string)
	return uid, orgId, nil
}

// ExtractUserId 只取用户身份
func ExtractUserId(ctx context.Context) (string, error) {
	uid, _, err := ExtractUserMeta(ctx)
	return uid, err
}

// PostProcess 处理http响应, resp要求指针或接口类型
// 在日志中记录本次调用详情, 同时向响应头中注入符合b3规范的链路信息, 主要是trace_id
// 最佳实践:
// - 在controller中调用业务处理, 处理结束后调用PostProcess
func PostProcess(ctx context.Context, c *app.RequestContext, req, resp any, err error) {
	b3.New().Inject(ctx, &headerProvider{headers: &c.Response.Header})
	logs.CtxInfof(ctx, "[%s] req=%s, resp=%s, err=%v", c.Path(), util.JSONF(req), util.JSONF(resp), err)

	// 无错, 正常响应
	if err == nil {
		c.JSON(hertz.StatusOK, resp)
		return
	}

	var ex errorx.IErrorx
	if errorx.AsErrorx(err, &ex) { // 业务异常, 状态码200, {code, msg}
		c.JSON(hertz.StatusOK, map[string]any{"code": ex.GetCode(), "msg": ex.GetMsg()})
		return
	}
	// 常规错误, 状态码500
	logs.CtxErrorf(ctx, "internal error, err=%s", err.Error())
	c.String(hertz.StatusInternalServerError, err.Error())
}

var _ propagation.TextMapCarrier = &headerProvider{}

type headerProvider struct {
	headers *protocol.ResponseHeader
}

// Get a value from metadata by key
func (m *headerProvider) Get(key string) string {
	return m.headers.Get(key)
}

// Set a value to metadata by k/v
func (m *headerProvider) Set(key, value string) {
	m.headers.Set(key, value)
}

// Keys Iteratively get all keys of metadata
func (m *headerProvider) Keys() []string {
	out := make([]string, 0)
	m.headers.VisitAll(func(key, value []byte) {
		out = append(out, string(key))
	})
	return out
}
