package relay

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/domain/agent"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/memory/history"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/model"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/msg"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cst"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/conversation"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/message"
	"github.com/joulaa-platform/joulaa-core-api/pkg/ac"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

// 协调器依赖的最小存储面, 由mapper与history实现
type ConversationStore interface {
	CreateNewConversation(ctx context.Context, uid, orgId, agentId string) (*conversation.Conversation, error)
	FindConversation(ctx context.Context, uid, cid string) (*conversation.Conversation, error)
	NextSeq(ctx context.Context, cid string) (int64, error)
	UpdateConversationBrief(ctx context.Context, uid, cid, brief string) error
}

type MessageStore interface {
	RetrieveMessage(ctx context.Context, cid string, size int) ([]*message.Message, error)
	AddMessage(ctx context.Context, cid string, m *message.Message) error
}

type AgentResolver interface {
	Resolve(ctx context.Context, uid, orgId, agentId string) (*agent.Snapshot, error)
}

var (
	_ ConversationStore = (conversation.MongoMapper)(nil)
	_ MessageStore      = (*history.HistoryManager)(nil)
	_ AgentResolver     = (*agent.Resolver)(nil)
)

// Turn 一轮生成的输入
type Turn struct {
	UserId         string
	OrgId          string // 发起者所属组织, 可为空
	SessionId      string // 发起的websocket连接, HTTP回退路径为空
	ConversationId string // 为空时新建对话
	AgentId        string
	Content        string
}

// Result 一轮生成的终态
type Result struct {
	Conversation *conversation.Conversation
	UserMsg      *message.Message
	AssistantMsg *message.Message
}

// flight 一轮在途生成
type flight struct {
	sessionId string
	userId    string
	cancel    chan struct{}
	once      sync.Once
}

func (f *flight) stop() { f.once.Do(func() { close(f.cancel) }) }

// Coordinator 流式对话协调器
// 同一对话同时只允许一轮生成, 序号由对话计数器分配, 落库前后顺序保证无空洞
type Coordinator struct {
	conf         *config.Config
	conversation ConversationStore
	history      MessageStore
	resolver     AgentResolver
	gateway      model.IGateway

	mu      sync.Mutex
	flights map[string]*flight // cid -> 在途轮次
}

var CoordinatorSet = wire.NewSet(NewCoordinator)

func NewCoordinator(conf *config.Config, cs ConversationStore, ms MessageStore,
	ar AgentResolver, gw model.IGateway) *Coordinator {
	return &Coordinator{
		conf:         conf,
		conversation: cs,
		history:      ms,
		resolver:     ar,
		gateway:      gw,
		flights:      make(map[string]*flight),
	}
}

// Submit 执行一轮生成, 阻塞到终态
// 对话忙碌时直接报错, 不落任何消息
func (co *Coordinator) Submit(ctx context.Context, t *Turn, sink Sink) (*Result, error) {
	c, err := co.locate(ctx, t)
	if err != nil {
		sink.Error(t.ConversationId, err)
		return nil, err
	}
	cid := c.ConversationId.Hex()

	fl, ok := co.acquire(cid, t)
	if !ok {
		err = errorx.New(errno.ConversationBusyErrCode)
		sink.Error(cid, err)
		return nil, err
	}
	defer co.release(cid, fl)

	return co.run(ctx, t, c, fl, sink)
}

// locate 定位或新建对话, 归档的对话只读
func (co *Coordinator) locate(ctx context.Context, t *Turn) (*conversation.Conversation, error) {
	if t.ConversationId == "" {
		return co.conversation.CreateNewConversation(ctx, t.UserId, t.OrgId, t.AgentId)
	}
	c, err := co.conversation.FindConversation(ctx, t.UserId, t.ConversationId)
	if err != nil {
		return nil, err
	}
	if c.Archived() {
		return nil, errorx.New(errno.ConversationReadOnlyErrCode)
	}
	return c, nil
}

func (co *Coordinator) run(ctx context.Context, t *Turn, c *conversation.Conversation,
	fl *flight, sink Sink) (*Result, error) {
	cid := c.ConversationId.Hex()

	// 历史在写入本轮消息前取, 按seq倒序
	hist, err := co.history.RetrieveMessage(ctx, cid, co.conf.Stream.HistorySize)
	if err != nil {
		sink.Error(cid, err)
		return nil, err
	}

	// 持久化用户消息
	seq, err := co.conversation.NextSeq(ctx, cid)
	if err != nil {
		sink.Error(cid, err)
		return nil, err
	}
	userMsg := msg.NewUserMsg(c, seq, t.Content)
	if err = co.history.AddMessage(ctx, cid, userMsg); err != nil {
		sink.Error(cid, err)
		return nil, err
	}
	if t.ConversationId == "" { // 新对话拿首条消息当标题
		if err = co.conversation.UpdateConversationBrief(ctx, t.UserId, cid, brief(t.Content)); err != nil {
			logs.CtxErrorf(ctx, "[relay] update brief err:%s", errorx.ErrorWithoutStack(err))
		}
	}

	// 解析智能体配置快照, 配置错误不落agent消息, 用户消息保留
	agentId := t.AgentId
	if agentId == "" && !c.AgentId.IsZero() {
		agentId = c.AgentId.Hex()
	}
	snap, err := co.resolver.Resolve(ctx, t.UserId, t.OrgId, agentId)
	if err != nil {
		sink.Error(cid, err)
		return nil, err
	}

	// 流式生成
	content, flag, usage, genErr := co.stream(ctx, t.UserId, cid, snap,
		msg.ToSchema(hist), schema.UserMessage(t.Content), fl, sink)

	// 终态落库: 完整/截断/失败各落一条, 序号继续递增
	aseq, err := co.conversation.NextSeq(ctx, cid)
	if err != nil {
		sink.Error(cid, err)
		return nil, err
	}
	_, sensitive := ac.AcSearch(content, false)
	aMsg := msg.NewAssistantMsg(c, snap, aseq, content, flag, usage, sensitive)
	if err = co.history.AddMessage(ctx, cid, aMsg); err != nil {
		sink.Error(cid, err)
		return nil, err
	}

	res := &Result{Conversation: c, UserMsg: userMsg, AssistantMsg: aMsg}
	if genErr != nil {
		sink.Error(cid, genErr)
		return res, genErr
	}
	sink.Complete(cid, aMsg.MessageId.Hex(), msg.FlagStr(flag))
	return res, nil
}

// stream 带重试的生成循环
// 只在还没有增量下发时重试可重试错误, 指数退避;
// 一旦下发过增量, 任何失败都按截断收尾, 不再重试
func (co *Coordinator) stream(ctx context.Context, uid, cid string, snap *agent.Snapshot,
	hist []*schema.Message, userMsg *schema.Message, fl *flight, sink Sink) (
	content string, flag int32, usage *message.Usage, err error) {

	var buf strings.Builder
	var ord int64
	backoff := time.Duration(co.conf.Stream.RetryBackoffMs) * time.Millisecond

	for attempt := 0; ; attempt++ {
		var cs *model.ChunkStream
		if cs, err = co.gateway.Stream(ctx, uid, snap, hist, userMsg); err == nil {
			err = co.consume(cs, fl, sink, cid, &buf, &ord)
		}

		switch {
		case err == nil:
			flag = cst.FlagComplete
			if sum := cs.Summary(); sum != nil {
				if sum.Truncated {
					flag = cst.FlagTruncated
				}
				usage = &message.Usage{
					PromptTokens:     sum.PromptTokens,
					CompletionTokens: sum.CompletionTokens,
					TotalTokens:      sum.TotalTokens,
				}
			}
			return buf.String(), flag, usage, nil

		case errors.Is(err, model.ErrAbandoned):
			// 取消: 已下发的部分按截断落库
			return buf.String(), cst.FlagTruncated, nil, nil
		}

		var pe *model.ProviderError
		retryable := errors.As(err, &pe) && pe.Retryable
		if retryable && buf.Len() == 0 && attempt < co.conf.Stream.MaxRetries {
			logs.CtxInfof(ctx, "[relay] retrying, cid=%s attempt=%d err=%s",
				cid, attempt+1, errorx.ErrorWithoutStack(err))
			select {
			case <-time.After(backoff << attempt):
				continue
			case <-fl.cancel:
				return buf.String(), cst.FlagTruncated, nil, nil
			case <-ctx.Done():
				return buf.String(), cst.FlagFailed, nil, errorx.WrapByCode(ctx.Err(), errno.CompletionsErrCode)
			}
		}

		if buf.Len() > 0 {
			return buf.String(), cst.FlagTruncated, nil, wrapProviderErr(err)
		}
		return "", cst.FlagFailed, nil, wrapProviderErr(err)
	}
}

// consume 把chunk流搬运到sink, ord在单次生成内单调递增
func (co *Coordinator) consume(cs *model.ChunkStream, fl *flight, sink Sink,
	cid string, buf *strings.Builder, ord *int64) error {
	for {
		delta, err := cs.Recv(fl.cancel)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		buf.WriteString(delta)
		sink.Chunk(cid, *ord, delta)
		*ord++
	}
}

// Cancel 取消指定对话的在途生成, 只有发起者本人能取消
// 无在途轮次时是幂等no-op
func (co *Coordinator) Cancel(cid, uid string) {
	co.mu.Lock()
	fl := co.flights[cid]
	co.mu.Unlock()
	if fl == nil || (uid != "" && fl.userId != uid) {
		return
	}
	fl.stop()
}

// CancelBySession 连接断开时取消它发起的所有在途生成
func (co *Coordinator) CancelBySession(sid string) {
	if sid == "" {
		return
	}
	co.mu.Lock()
	var fls []*flight
	for _, fl := range co.flights {
		if fl.sessionId == sid {
			fls = append(fls, fl)
		}
	}
	co.mu.Unlock()
	for _, fl := range fls {
		fl.stop()
	}
}

// Busy 对话是否有在途生成
func (co *Coordinator) Busy(cid string) bool {
	co.mu.Lock()
	defer co.mu.Unlock()
	_, ok := co.flights[cid]
	return ok
}

func (co *Coordinator) acquire(cid string, t *Turn) (*flight, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()
	if _, busy := co.flights[cid]; busy {
		return nil, false
	}
	fl := &flight{sessionId: t.SessionId, userId: t.UserId, cancel: make(chan struct{})}
	co.flights[cid] = fl
	return fl, true
}

func (co *Coordinator) release(cid string, fl *flight) {
	co.mu.Lock()
	defer co.mu.Unlock()
	if co.flights[cid] == fl {
		delete(co.flights, cid)
	}
}

func wrapProviderErr(err error) error {
	var pe *model.ProviderError
	if errors.As(err, &pe) && strings.Contains(pe.Reason, "timeout") {
		return errorx.WrapByCode(err, errno.ProviderTimeoutErrCode)
	}
	return errorx.WrapByCode(err, errno.ProviderErrCode)
}

const briefLimit = 20

// brief 截取首条消息作为对话标题
func brief(content string) string {
	rs := []rune(strings.TrimSpace(content))
	if len(rs) > briefLimit {
		return string(rs[:briefLimit])
	}
	return string(rs)
}
