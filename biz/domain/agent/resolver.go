package agent

import (
	"context"

	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	agentmapper "github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/agent"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

// Snapshot 一轮对话内生效的智能体配置快照
// 解析完成后不再读库, 中途改配置不影响进行中的轮次
type Snapshot struct {
	AgentId      string
	Name         string
	Model        string
	Temperature  float64
	MaxTokens    int
	Instructions string
}

type Resolver struct {
	Conf        *config.Config
	AgentMapper agentmapper.MongoMapper
}

var ResolverSet = wire.NewSet(
	wire.Struct(new(Resolver), "*"),
)

// Resolve 解析本轮使用的智能体配置
// agentId为空时回落到平台默认配置; 不存在/已停用/无权访问分别报错,
// 私有智能体限属主和同组织成员
func (r *Resolver) Resolve(ctx context.Context, uid, orgId, agentId string) (*Snapshot, error) {
	if agentId == "" {
		return r.defaultSnapshot(), nil
	}

	a, err := r.AgentMapper.FindById(ctx, agentId)
	if err != nil {
		return nil, err
	}
	if !a.Active {
		return nil, errorx.New(errno.AgentNotFoundErrCode)
	}
	if !a.AccessibleBy(uid, orgId) {
		return nil, errorx.New(errno.AgentForbiddenErrCode)
	}

	snap := &Snapshot{
		AgentId:      a.AgentId.Hex(),
		Name:         a.Name,
		Model:        a.Model,
		Temperature:  a.Temperature,
		MaxTokens:    a.MaxTokens,
		Instructions: a.Instructions,
	}
	// 缺省字段回落到平台默认值
	if snap.Model == "" {
		snap.Model = r.Conf.Stream.DefaultModel
	}
	if snap.MaxTokens <= 0 {
		snap.MaxTokens = r.Conf.Stream.DefaultMaxTokens
	}
	return snap, nil
}

func (r *Resolver) defaultSnapshot() *Snapshot {
	return &Snapshot{
		Model:       r.Conf.Stream.DefaultModel,
		Temperature: r.Conf.Stream.DefaultTemperature,
		MaxTokens:   r.Conf.Stream.DefaultMaxTokens,
	}
}
