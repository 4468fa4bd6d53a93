package conversation

import (
	"context"
	"errors"
	"time"

	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

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
	collection     = "conversation"
	cacheKeyPrefix = "cache:conversation:"

	defaultBrief = "未命名对话"
)

type MongoMapper interface {
	CreateNewConversation(ctx context.Context, uid, orgId, agentId string) (c *Conversation, err error)
	FindConversation(ctx context.Context, uid, cid string) (c *Conversation, err error)
	NextSeq(ctx context.Context, cid string) (seq int64, err error)
	ListConversations(ctx context.Context, uid string, page *basic.Page) (cs []*Conversation, hasMore bool, err error)
	UpdateConversationBrief(ctx context.Context, uid, cid, brief string) (err error)
	ArchiveConversation(ctx context.Context, uid, cid string) (err error)
	DeleteConversation(ctx context.Context, uid, cid string) (err error)
	SearchConversations(ctx context.Context, uid, key string, page *basic.Page) (cs []*Conversation, hasMore bool, err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewConversationMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

// CreateNewConversation 创建并缓存一个新的对话, 组织归属可选
func (m *mongoMapper) CreateNewConversation(ctx context.Context, uid, orgId, agentId string) (c *Conversation, err error) {
	oid, err := util.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}

	now := time.Now()
	c = &Conversation{
		ConversationId: primitive.NewObjectID(),
		UserId:         oid,
		Brief:          defaultBrief,
		CreateTime:     now,
		UpdateTime:     now,
	}
	if orgId != "" {
		if c.OrgId, err = util.ObjectIDFromHex(orgId); err != nil {
			logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
			return nil, err
		}
	}
	if agentId != "" {
		if c.AgentId, err = util.ObjectIDFromHex(agentId); err != nil {
			logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
			return nil, err
		}
	}

	if _, err = m.conn.InsertOne(ctx, cacheKeyPrefix+c.ConversationId.Hex(), c); err != nil {
		return nil, errorx.WrapByCode(err, errno.ConversationCreateErrCode)
	}
	return c, nil
}

// FindConversation 查找属于uid且未删除的对话, 其他用户的对话一律按不存在处理
func (m *mongoMapper) FindConversation(ctx context.Context, uid, cid string) (c *Conversation, err error) {
	oids, err := util.ObjectIDsFromHex(uid, cid)
	if err != nil {
		logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, err
	}
	ouid, ocid := oids[0], oids[1]

	c = new(Conversation)
	filter := bson.M{cst.Id: ocid, cst.UserId: ouid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if err = m.conn.FindOne(ctx, cacheKeyPrefix+cid, c, filter); err != nil {
		if errors.Is(err, monc.ErrNotFound) {
			return nil, errorx.New(errno.ConversationNotFoundErrCode)
		}
		return nil, errorx.WrapByCode(err, errno.ConversationGetErrCode)
	}
	if c.UserId != ouid { // 缓存键未带uid, 命中后仍需校验归属
		return nil, errorx.New(errno.ConversationNotFoundErrCode)
	}
	return c, nil
}

// NextSeq 原子自增对话的消息序号计数器, 返回自增后的值
// 序号由Mongo侧$inc产生, 同一对话内严格递增无空洞
func (m *mongoMapper) NextSeq(ctx context.Context, cid string) (seq int64, err error) {
	ocid, err := util.ObjectIDFromHex(cid)
	if err != nil {
		logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return 0, err
	}

	var updated Conversation
	filter := bson.M{cst.Id: ocid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	update := bson.M{cst.Inc: bson.M{cst.Seq: 1}, cst.Set: bson.M{cst.UpdateTime: time.Now()}}
	opt := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err = m.conn.FindOneAndUpdateNoCache(ctx, &updated, filter, update, opt); err != nil {
		if errors.Is(err, monc.ErrNotFound) {
			return 0, errorx.New(errno.ConversationNotFoundErrCode)
		}
		return 0, errorx.WrapByCode(err, errno.MongoErrCode)
	}
	// 计数器变了, 旧缓存作废
	if err = m.conn.DelCache(ctx, cacheKeyPrefix+cid); err != nil {
		logs.Errorf("[conversation mapper] del cache err:%s", errorx.ErrorWithoutStack(err))
	}
	return updated.Seq, nil
}

// ListConversations 分页查询用户对话列表
func (m *mongoMapper) ListConversations(ctx context.Context, uid string, page *basic.Page) (cs []*Conversation, hasMore bool, err error) {
	oid, err := util.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, err
	}

	// 分页, 创建时间倒序
	var total int64
	opts := util.BuildFindOption(page).SetSort(bson.M{cst.CreateTime: -1})
	filter := bson.M{cst.UserId: oid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if err = m.conn.Find(ctx, &cs, filter, opts); err != nil {
		return nil, false, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}
	if total, err = m.conn.CountDocuments(ctx, filter); err != nil {
		return nil, false, errorx.WrapByCode(err, errno.ConversationListErrCode)
	}
	return cs, util.HasMore(total, page), nil
}

// UpdateConversationBrief 更新对话简要概述
func (m *mongoMapper) UpdateConversationBrief(ctx context.Context, uid, cid, brief string) (err error) {
	oids, err := util.ObjectIDsFromHex(uid, cid)
	if err != nil {
		logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	ouid, ocid := oids[0], oids[1]

	filter := bson.M{cst.Id: ocid, cst.UserId: ouid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if _, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+cid, filter,
		bson.M{cst.Set: bson.M{cst.UpdateTime: time.Now(), cst.Brief: brief}}); err != nil {
		return errorx.WrapByCode(err, errno.ConversationRenameErrCode)
	}
	return nil
}

// ArchiveConversation 归档对话, 归档后只读
func (m *mongoMapper) ArchiveConversation(ctx context.Context, uid, cid string) (err error) {
	oids, err := util.ObjectIDsFromHex(uid, cid)
	if err != nil {
		logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	ouid, ocid := oids[0], oids[1]

	filter := bson.M{cst.Id: ocid, cst.UserId: ouid, cst.Status: cst.ConversationActive}
	if _, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+cid, filter,
		bson.M{cst.Set: bson.M{cst.UpdateTime: time.Now(), cst.Status: cst.ConversationArchived}}); err != nil {
		return errorx.WrapByCode(err, errno.ConversationArchiveErrCode)
	}
	return nil
}

// DeleteConversation 软删除对话
func (m *mongoMapper) DeleteConversation(ctx context.Context, uid, cid string) (err error) {
	oids, err := util.ObjectIDsFromHex(uid, cid)
	if err != nil {
		logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	ouid, ocid := oids[0], oids[1]

	now := time.Now()
	filter := bson.M{cst.Id: ocid, cst.UserId: ouid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if _, err = m.conn.UpdateOne(ctx, cacheKeyPrefix+cid, filter,
		bson.M{cst.Set: bson.M{cst.UpdateTime: now, cst.DeleteTime: now, cst.Status: cst.DeletedStatus}}); err != nil {
		return errorx.WrapByCode(err, errno.ConversationDeleteErrCode)
	}
	return nil
}

// SearchConversations 按brief模糊搜索
func (m *mongoMapper) SearchConversations(ctx context.Context, uid, key string, page *basic.Page) (cs []*Conversation, hasMore bool, err error) {
	oid, err := util.ObjectIDFromHex(uid)
	if err != nil {
		logs.Errorf("[conversation mapper] from hex err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, err
	}

	var total int64
	filter := bson.M{cst.UserId: oid, cst.Status: bson.M{cst.NE: cst.DeletedStatus},
		cst.Brief: bson.M{cst.Regex: key, cst.Options: "i"}}
	opts := util.BuildFindOption(page).SetSort(bson.M{cst.CreateTime: -1})
	if err = m.conn.Find(ctx, &cs, filter, opts); err != nil {
		return nil, false, errorx.WrapByCode(err, errno.ConversationSearchErrCode)
	}
	if total, err = m.conn.CountDocuments(ctx, filter); err != nil {
		return nil, false, errorx.WrapByCode(err, errno.ConversationSearchErrCode)
	}
	return cs, util.HasMore(total, page), nil
}
