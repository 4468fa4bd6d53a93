package history

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cache"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/message"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
)

/* 对话历史记录 */

const cachePrefix = "joulaa:message:"

// HistoryManager 历史记录管理, 读穿redis, 按seq做hash field
type HistoryManager struct {
	cache  cache.Cmdable
	mapper message.MongoMapper
}

// New 创建一个新的历史记录管理器
func New(cache cache.Cmdable, mapper message.MongoMapper) *HistoryManager {
	return &HistoryManager{cache: cache, mapper: mapper}
}

// RetrieveMessage 获取消息, 返回按seq倒序, size小于等于0时取出所有
// 首先从缓存中获取, 获取失败时从数据库中获取, 后重新构建缓存
func (h *HistoryManager) RetrieveMessage(ctx context.Context, cid string, size int) (msgs []*message.Message, err error) {
	if msgs, err = h.RetrieveMessagesFromCache(ctx, cid, size); err == nil {
		return msgs, nil
	}
	if msgs, err = h.mapper.RetrieveMessages(ctx, cid, size); err != nil {
		return nil, err
	}
	if len(msgs) > 0 {
		if err = h.CacheMessages(ctx, cid, msgs, true); err != nil {
			logs.Errorf("[history] cache msgs err:%s", errorx.ErrorWithoutStack(err))
		}
	}
	return msgs, nil
}

// RetrieveMessagesFromCache 从缓存中获取一批消息
// 缓存中找不到时返回cache.Nil, 否则返回size指定的数量
func (h *HistoryManager) RetrieveMessagesFromCache(ctx context.Context, cid string, size int) ([]*message.Message, error) {
	result, err := h.cache.HGetAll(ctx, key(cid)).Result()
	if err != nil {
		return nil, err
	} else if len(result) == 0 {
		return nil, cache.Nil
	}

	msgs := make([]*message.Message, 0, len(result))
	for _, data := range result {
		var m message.Message
		if err = sonic.Unmarshal([]byte(data), &m); err != nil {
			logs.Errorf("[history] unmarshal err:%s", errorx.ErrorWithoutStack(err))
			return nil, err
		}
		msgs = append(msgs, &m)
	}

	sort.Slice(msgs, func(i, j int) bool { return msgs[i].Seq > msgs[j].Seq }) // 倒序
	if size > 0 && len(msgs) > size {
		return msgs[:size], nil
	}
	return msgs, nil
}

// CacheMessages 构建msgs的缓存, re为true时删除已有缓存
func (h *HistoryManager) CacheMessages(ctx context.Context, cid string, msgs []*message.Message, re bool) (err error) {
	fields := make(map[string]string, len(msgs))
	for _, m := range msgs {
		var data []byte
		if data, err = sonic.Marshal(m); err != nil {
			return err
		}
		fields[strconv.FormatInt(m.Seq, 10)] = string(data)
	}
	p, k := h.cache.Pipeline(), key(cid)
	if re {
		p.Del(ctx, k)
	}
	p.HSet(ctx, k, fields)
	p.Expire(ctx, k, time.Hour*6)
	_, err = p.Exec(ctx)
	return
}

// AddMessage 新增消息
// 首先插入数据库, 然后缓存消息; 入库失败时缓存不动
func (h *HistoryManager) AddMessage(ctx context.Context, cid string, m *message.Message) (err error) {
	if err = h.mapper.InsertOne(ctx, m); err != nil {
		logs.Errorf("[history] add message err:%s", errorx.ErrorWithoutStack(err))
		return err
	}
	if err = h.CacheMessages(ctx, cid, []*message.Message{m}, false); err != nil {
		logs.Errorf("[history] cache msgs err:%s", errorx.ErrorWithoutStack(err))
	}
	return nil
}

func key(cid string) string {
	return cachePrefix + cid
}
