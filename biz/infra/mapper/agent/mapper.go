package agent

import (
	"context"
	"errors"
	"time"

	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/basic"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cst"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/util"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

var _ MongoMapper = (*mongoMapper)(nil)

const (
	collection     = "agent"
	cacheKeyPrefix = "cache:agent:"
)

type MongoMapper interface {
	Insert(ctx context.Context, a *Agent) (err error)
	FindById(ctx context.Context, aid string) (a *Agent, err error)
	ListVisible(ctx context.Context, uid, orgId string, page *basic.Page) (as []*Agent, hasMore bool, err error)
	Update(ctx context.Context, uid string, a *Agent) (err error)
	Delete(ctx context.Context, uid, aid string) (err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewAgentMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

func (m *mongoMapper) Insert(ctx context.Context, a *Agent) (err error) {
	now := time.Now()
	if a.AgentId.IsZero() {
		a.AgentId = primitive.NewObjectID()
	}
	a.CreateTime, a.UpdateTime = now, now
	if _, err = m.conn.InsertOne(ctx, cacheKeyPrefix+a.AgentId.Hex(), a); err != nil {
		return errorx.WrapByCode(err, errno.AgentCreateErrCode)
	}
	return nil
}

// FindById 查找未删除的智能体, 可见性校验交给上层
func (m *mongoMapper) FindById(ctx context.Context, aid string) (a *Agent, err error) {
	oaid, err := util.ObjectIDFromHex(aid)
	if err != nil {
		logs.Errorf("[agent mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}

	a = new(Agent)
	filter := bson.M{cst.Id: oaid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if err = m.conn.FindOne(ctx, cacheKeyPrefix+aid, a, filter); err != nil {
		if errors.Is(err, monc.ErrNotFound) {
			return nil, errorx.New(errno.AgentNotFoundErrCode)
		}
		return nil, errorx.WrapByCode(err, errno.MongoErrCode)
	}
	return a, nil
}

// ListVisible 列出自己的/本组织的/公开的智能体
func (m *mongoMapper) ListVisible(ctx context.Context, uid, orgId string, page *basic.Page) (as []*Agent, hasMore bool, err error) {
	ouid, err := util.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[agent mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, err
	}

	or := bson.A{bson.M{cst.OwnerId: ouid}, bson.M{cst.Visibility: cst.AgentPublic}}
	if orgId != "" {
		ooid, err := util.ObjectIDFromHex(orgId)
		if err != nil {
			logs.Errorf("[agent mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
			return nil, false, err
		}
		or = append(or, bson.M{cst.OrgId: ooid})
	}

	var total int64
	filter := bson.M{cst.Status: bson.M{cst.NE: cst.DeletedStatus}, "$or": or}
	opts := util.BuildFindOption(page).SetSort(bson.M{cst.CreateTime: -1})
	if err = m.conn.Find(ctx, &as, filter, opts); err != nil {
		return nil, false, errorx.WrapByCode(err, errno.AgentListErrCode)
	}
	if total, err = m.conn.CountDocuments(ctx, filter); err != nil {
		return nil, false, errorx.WrapByCode(err, errno.AgentListErrCode)
	}
	return as, util.HasMore(total, page), nil
}

// Update 只有属主能改
func (m *mongoMapper) Update(ctx context.Context, uid string, a *Agent) (err error) {
	ouid, err := util.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[agent mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return err
	}

	filter := bson.M{cst.Id: a.AgentId, cst.OwnerId: ouid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	update := bson.M{cst.Set: bson.M{
		"name":         a.Name,
		"description":  a.Description,
		"model":        a.Model,
		"temperature":  a.Temperature,
		"max_tokens":   a.MaxTokens,
		"instructions": a.Instructions,
		cst.Visibility: a.Visibility,
		cst.Active:     a.Active,
		cst.UpdateTime: time.Now(),
	}}
	if _, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+a.AgentId.Hex(), filter, update); err != nil {
		return errorx.WrapByCode(err, errno.AgentUpdateErrCode)
	}
	return nil
}

// Delete 软删除, 只有属主能删
func (m *mongoMapper) Delete(ctx context.Context, uid, aid string) (err error) {
	oids, err := util.ObjectIDsFromHex(uid, aid)
	if err != nil {
		logs.Errorf("[agent mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	ouid, oaid := oids[0], oids[1]

	now := time.Now()
	filter := bson.M{cst.Id: oaid, cst.OwnerId: ouid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if _, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+aid, filter,
		bson.M{cst.Set: bson.M{cst.UpdateTime: now, cst.DeleteTime: now, cst.Status: cst.DeletedStatus}}); err != nil {
		return errorx.WrapByCode(err, errno.AgentDeleteErrCode)
	}
	return nil
}
