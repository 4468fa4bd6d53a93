package message

import (
	"context"
	"errors"

	"github.com/zeromicro/go-zero/core/stores/monc"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
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

const collection = "message"

type MongoMapper interface {
	InsertOne(ctx context.Context, msg *Message) error
	RetrieveMessages(ctx context.Context, conversation string, size int) (msgs []*Message, err error)
	ListMessage(ctx context.Context, conversation string, page *basic.Page) (msgs []*Message, hasMore bool, err error)
}

type mongoMapper struct {
	conn *monc.Model
}

func NewMessageMongoMapper(config *config.Config) MongoMapper {
	conn := monc.MustNewModel(config.Mongo.URL, config.Mongo.DB, collection, config.Cache)
	return &mongoMapper{conn: conn}
}

// InsertOne 插入一条msg, 消息无单条缓存
func (m *mongoMapper) InsertOne(ctx context.Context, msg *Message) error {
	if _, err := m.conn.InsertOneNoCache(ctx, msg); err != nil {
		return errorx.WrapByCode(err, errno.MessagePersistErrCode)
	}
	return nil
}

// RetrieveMessages 按序号倒序取出size条msg记录, 为0则取出所有的
func (m *mongoMapper) RetrieveMessages(ctx context.Context, conversation string, size int) (msgs []*Message, err error) {
	ocid, err := util.ObjectIDFromHex(conversation)
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.M{cst.Seq: -1})
	if size > 0 {
		opts.SetLimit(int64(size))
	}
	if err = m.conn.Find(ctx, &msgs, bson.M{cst.ConversationId: ocid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}},
		opts); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		logs.Errorf("[message mapper] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, errorx.WrapByCode(err, errno.MongoErrCode)
	}
	return msgs, nil
}

// ListMessage 游标分页获取Message, 新消息在前
func (m *mongoMapper) ListMessage(ctx context.Context, conversation string, page *basic.Page) (msgs []*Message, hasMore bool, err error) {
	ocid, err := util.ObjectIDFromHex(conversation)
	if err != nil {
		return nil, false, err
	}

	opts := options.Find().SetSort(bson.M{cst.Id: -1}).SetLimit(page.GetSize() + 1)
	filter := bson.M{cst.ConversationId: ocid, cst.Status: bson.M{cst.NE: cst.DeletedStatus}}
	if cursor := page.GetCursor(); cursor != "" { // 取比游标更早的
		ocur, err := util.ObjectIDFromHex(cursor)
		if err != nil {
			return nil, false, err
		}
		filter[cst.Id] = bson.M{cst.LT: ocur}
	}
	if err = m.conn.Find(ctx, &msgs, filter, opts); err != nil {
		logs.Errorf("[message mapper] find err:%s", errorx.ErrorWithoutStack(err))
		return nil, false, errorx.WrapByCode(err, errno.MongoErrCode)
	}
	msgs, hasMore = util.SplitAndHasMore(msgs, page)
	return msgs, hasMore, nil
}
