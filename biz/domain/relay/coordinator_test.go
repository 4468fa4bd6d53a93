package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joulaa-platform/joulaa-core-api/biz/domain/agent"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/model"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cst"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/conversation"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/message"
	"github.com/joulaa-platform/joulaa-core-api/pkg/ac"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

type fakeConvStore struct {
	mu     sync.Mutex
	convs  map[string]*conversation.Conversation
	briefs map[string]string
}

func newFakeConvStore() *fakeConvStore {
	return &fakeConvStore{
		convs:  make(map[string]*conversation.Conversation),
		briefs: make(map[string]string),
	}
}

func (s *fakeConvStore) CreateNewConversation(_ context.Context, uid, orgId, _ string) (*conversation.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oid, _ := primitive.ObjectIDFromHex(uid)
	c := &conversation.Conversation{ConversationId: primitive.NewObjectID(), UserId: oid}
	if orgId != "" {
		c.OrgId, _ = primitive.ObjectIDFromHex(orgId)
	}
	s.convs[c.ConversationId.Hex()] = c
	return c, nil
}

func (s *fakeConvStore) FindConversation(_ context.Context, uid, cid string) (*conversation.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[cid]
	if !ok || c.UserId.Hex() != uid {
		return nil, errorx.New(errno.ConversationNotFoundErrCode)
	}
	return c, nil
}

func (s *fakeConvStore) NextSeq(_ context.Context, cid string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[cid]
	if !ok {
		return 0, errorx.New(errno.ConversationNotFoundErrCode)
	}
	c.Seq++
	return c.Seq, nil
}

func (s *fakeConvStore) UpdateConversationBrief(_ context.Context, _, cid, brief string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.briefs[cid] = brief
	return nil
}

func (s *fakeConvStore) put(c *conversation.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.convs[c.ConversationId.Hex()] = c
}

type fakeMsgStore struct {
	mu   sync.Mutex
	msgs map[string][]*message.Message
}

func newFakeMsgStore() *fakeMsgStore {
	return &fakeMsgStore{msgs: make(map[string][]*message.Message)}
}

func (s *fakeMsgStore) RetrieveMessage(_ context.Context, cid string, size int) ([]*message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := s.msgs[cid]
	out := make([]*message.Message, 0, size)
	for i := len(all) - 1; i >= 0 && len(out) < size; i-- { // seq倒序
		out = append(out, all[i])
	}
	return out, nil
}

func (s *fakeMsgStore) AddMessage(_ context.Context, cid string, m *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs[cid] = append(s.msgs[cid], m)
	return nil
}

func (s *fakeMsgStore) list(cid string) []*message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*message.Message(nil), s.msgs[cid]...)
}

type fakeResolver struct{ err error }

func (r *fakeResolver) Resolve(context.Context, string, string, string) (*agent.Snapshot, error) {
	if r.err != nil {
		return nil, r.err
	}
	return &agent.Snapshot{Model: "gpt-4o", Temperature: 0.7, MaxTokens: 1000}, nil
}

// scriptGateway 按attempt顺序执行预置行为
type scriptGateway struct {
	mu       sync.Mutex
	attempts int
	script   []func() (*model.ChunkStream, error)
}

func (g *scriptGateway) Stream(context.Context, string, *agent.Snapshot,
	[]*schema.Message, *schema.Message) (*model.ChunkStream, error) {
	g.mu.Lock()
	i := g.attempts
	g.attempts++
	g.mu.Unlock()
	if i >= len(g.script) {
		i = len(g.script) - 1
	}
	return g.script[i]()
}

func (g *scriptGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.attempts
}

// streamOf 预置一条正常终结的流
func streamOf(sum *model.Summary, chunks ...string) func() (*model.ChunkStream, error) {
	return func() (*model.ChunkStream, error) {
		cs, w := model.NewChunkStream(time.Second, len(chunks)+1)
		go func() {
			for _, c := range chunks {
				if !w.Send(c) {
					return
				}
			}
			w.Finish(sum)
		}()
		return cs, nil
	}
}

// streamStuck 发完chunks后不再终结, 消费方只能等到取消
func streamStuck(chunks ...string) func() (*model.ChunkStream, error) {
	return func() (*model.ChunkStream, error) {
		cs, w := model.NewChunkStream(time.Minute, len(chunks)+1)
		go func() {
			for _, c := range chunks {
				if !w.Send(c) {
					return
				}
			}
		}()
		return cs, nil
	}
}

func streamErr(err error) func() (*model.ChunkStream, error) {
	return func() (*model.ChunkStream, error) { return nil, err }
}

type sinkChunk struct {
	cid   string
	ord   int64
	delta string
}

type recSink struct {
	mu        sync.Mutex
	chunks    []sinkChunk
	completes []string // status
	errs      []error
	onChunk   chan struct{}
}

func (s *recSink) Chunk(cid string, ord int64, delta string) {
	s.mu.Lock()
	s.chunks = append(s.chunks, sinkChunk{cid: cid, ord: ord, delta: delta})
	s.mu.Unlock()
	if s.onChunk != nil {
		select {
		case s.onChunk <- struct{}{}:
		default:
		}
	}
}

func (s *recSink) Complete(_, _ string, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completes = append(s.completes, status)
}

func (s *recSink) Error(_ string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

func (s *recSink) snapshot() ([]sinkChunk, []string, []error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sinkChunk(nil), s.chunks...),
		append([]string(nil), s.completes...),
		append([]error(nil), s.errs...)
}

func testConf() *config.Config {
	return &config.Config{Stream: config.Stream{
		MaxRetries:     2,
		RetryBackoffMs: 1,
		InactivityMs:   1000,
		SessionBuffer:  16,
		HistorySize:    20,
	}}
}

func newTestCoordinator(gw model.IGateway) (*Coordinator, *fakeConvStore, *fakeMsgStore) {
	cs := newFakeConvStore()
	ms := newFakeMsgStore()
	co := NewCoordinator(testConf(), cs, ms, &fakeResolver{}, gw)
	return co, cs, ms
}

func TestSubmitNewConversation(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamOf(&model.Summary{PromptTokens: 3, CompletionTokens: 5, TotalTokens: 8}, "Hel", "lo"),
	}}
	co, cs, ms := newTestCoordinator(gw)
	sink := &recSink{}
	uid := primitive.NewObjectID().Hex()

	res, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "讲个笑话"}, sink)
	require.NoError(t, err)
	require.NotNil(t, res)

	cid := res.Conversation.ConversationId.Hex()
	chunks, completes, errs := sink.snapshot()
	require.Len(t, chunks, 2)
	assert.Equal(t, int64(0), chunks[0].ord)
	assert.Equal(t, "Hel", chunks[0].delta)
	assert.Equal(t, int64(1), chunks[1].ord)
	assert.Equal(t, "lo", chunks[1].delta)
	assert.Equal(t, []string{cst.FlagCompleteStr}, completes)
	assert.Empty(t, errs)

	msgs := ms.list(cid)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(1), msgs[0].Seq)
	assert.EqualValues(t, cst.UserEnum, msgs[0].Role)
	assert.Equal(t, "讲个笑话", msgs[0].Content)
	assert.Equal(t, int64(2), msgs[1].Seq)
	assert.EqualValues(t, cst.AssistantEnum, msgs[1].Role)
	assert.Equal(t, "Hello", msgs[1].Content)
	assert.EqualValues(t, cst.FlagComplete, msgs[1].Flag)
	require.NotNil(t, msgs[1].Usage)
	assert.Equal(t, int32(8), msgs[1].Usage.TotalTokens)

	// 新对话拿首条消息当标题
	assert.Equal(t, "讲个笑话", cs.briefs[cid])
}

func TestSubmitCarriesOrg(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamOf(nil, "好"),
	}}
	co, _, _ := newTestCoordinator(gw)
	uid, org := primitive.NewObjectID().Hex(), primitive.NewObjectID()

	// 发起者的组织归属落在新建的对话上
	res, err := co.Submit(context.Background(), &Turn{UserId: uid, OrgId: org.Hex(), Content: "你好"}, NopSink{})
	require.NoError(t, err)
	assert.Equal(t, org, res.Conversation.OrgId)

	// 无组织声明时保持零值
	res, err = co.Submit(context.Background(), &Turn{UserId: uid, Content: "你好"}, NopSink{})
	require.NoError(t, err)
	assert.True(t, res.Conversation.OrgId.IsZero())
}

func TestSeqGaplessAcrossTurns(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamOf(nil, "一"),
	}}
	co, _, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()

	res, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "第一轮"}, NopSink{})
	require.NoError(t, err)
	cid := res.Conversation.ConversationId.Hex()
	_, err = co.Submit(context.Background(), &Turn{UserId: uid, ConversationId: cid, Content: "第二轮"}, NopSink{})
	require.NoError(t, err)

	msgs := ms.list(cid)
	require.Len(t, msgs, 4)
	for i, m := range msgs {
		assert.Equal(t, int64(i+1), m.Seq)
	}
}

func TestSubmitBusy(t *testing.T) {
	release := make(chan struct{})
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		func() (*model.ChunkStream, error) {
			cs, w := model.NewChunkStream(time.Minute, 4)
			go func() {
				w.Send("忙")
				<-release
				w.Finish(nil)
			}()
			return cs, nil
		},
	}}
	co, cs, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()

	first := &recSink{onChunk: make(chan struct{}, 1)}
	done := make(chan struct{})
	var cid string
	go func() {
		defer close(done)
		res, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "第一轮"}, first)
		if err == nil {
			cid = res.Conversation.ConversationId.Hex()
		}
	}()
	<-first.onChunk

	// 同一对话的在途轮次挡掉第二次提交, 不落任何消息
	var busyCid string
	cs.mu.Lock()
	for k := range cs.convs {
		busyCid = k
	}
	cs.mu.Unlock()
	require.True(t, co.Busy(busyCid))

	second := &recSink{}
	_, err := co.Submit(context.Background(), &Turn{UserId: uid, ConversationId: busyCid, Content: "插队"}, second)
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errno.ConversationBusyErrCode))
	_, _, errs := second.snapshot()
	assert.Len(t, errs, 1)
	before := len(ms.list(busyCid))

	close(release)
	<-done
	assert.Equal(t, busyCid, cid)
	assert.False(t, co.Busy(busyCid))
	// 忙碌期间没有落消息, 第一轮结束后正好两条
	assert.Equal(t, 1, before)
	assert.Len(t, ms.list(busyCid), 2)
}

func TestCancelMidStream(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamStuck("Hel", "lo"),
	}}
	co, _, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()

	sink := &recSink{onChunk: make(chan struct{}, 2)}
	type out struct {
		res *Result
		err error
	}
	ch := make(chan out, 1)
	go func() {
		res, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "会被取消"}, sink)
		ch <- out{res, err}
	}()
	<-sink.onChunk
	<-sink.onChunk

	var cid string
	co.mu.Lock()
	for k := range co.flights {
		cid = k
	}
	co.mu.Unlock()

	// 非发起者取消是no-op
	co.Cancel(cid, primitive.NewObjectID().Hex())
	assert.True(t, co.Busy(cid))

	co.Cancel(cid, uid)
	o := <-ch
	require.NoError(t, o.err)

	// 已下发的部分按截断落库
	msgs := ms.list(cid)
	require.Len(t, msgs, 2)
	assert.Equal(t, "Hello", msgs[1].Content)
	assert.EqualValues(t, cst.FlagTruncated, msgs[1].Flag)
	_, completes, _ := sink.snapshot()
	assert.Equal(t, []string{cst.FlagTruncatedStr}, completes)

	// 重复取消幂等
	co.Cancel(cid, uid)
}

func TestRetryThenSuccess(t *testing.T) {
	retryable := &model.ProviderError{Retryable: true, Reason: "rate limited"}
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamErr(retryable),
		streamErr(retryable),
		streamOf(nil, "终于成了"),
	}}
	co, _, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()

	res, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "重试"}, NopSink{})
	require.NoError(t, err)
	assert.Equal(t, 3, gw.count())
	msgs := ms.list(res.Conversation.ConversationId.Hex())
	require.Len(t, msgs, 2)
	assert.Equal(t, "终于成了", msgs[1].Content)
	assert.EqualValues(t, cst.FlagComplete, msgs[1].Flag)
}

func TestRetriesExhausted(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamErr(&model.ProviderError{Retryable: true, Reason: "provider unavailable"}),
	}}
	co, _, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()
	sink := &recSink{}

	res, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "全挂"}, sink)
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errno.ProviderErrCode))
	assert.Equal(t, 3, gw.count()) // 首次+两次重试

	// 失败也落一条空的失败消息, 序号不回收
	msgs := ms.list(res.Conversation.ConversationId.Hex())
	require.Len(t, msgs, 2)
	assert.Equal(t, "", msgs[1].Content)
	assert.EqualValues(t, cst.FlagFailed, msgs[1].Flag)
	assert.Equal(t, int64(2), msgs[1].Seq)
	_, completes, errs := sink.snapshot()
	assert.Empty(t, completes)
	assert.Len(t, errs, 1)
}

func TestNonRetryableNoRetry(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamErr(&model.ProviderError{Reason: "provider error"}),
	}}
	co, _, _ := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()

	_, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "鉴权错"}, NopSink{})
	require.Error(t, err)
	assert.Equal(t, 1, gw.count())
}

func TestPartialThenErrorPersistsTruncated(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		func() (*model.ChunkStream, error) {
			cs, w := model.NewChunkStream(time.Second, 4)
			go func() {
				w.Send("说到一半")
				w.Fail(&model.ProviderError{Retryable: true, Reason: "provider unavailable"})
			}()
			return cs, nil
		},
	}}
	co, _, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()
	sink := &recSink{}

	// 已经下发过增量, 即使错误可重试也不再重试
	res, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "半途而废"}, sink)
	require.Error(t, err)
	assert.Equal(t, 1, gw.count())

	msgs := ms.list(res.Conversation.ConversationId.Hex())
	require.Len(t, msgs, 2)
	assert.Equal(t, "说到一半", msgs[1].Content)
	assert.EqualValues(t, cst.FlagTruncated, msgs[1].Flag)
}

func TestProviderTimeoutCode(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamErr(&model.ProviderError{Reason: "provider timeout"}),
	}}
	co, _, _ := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()

	_, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "超时"}, NopSink{})
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errno.ProviderTimeoutErrCode))
}

func TestArchivedConversationReadOnly(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){streamOf(nil, "x")}}
	co, cs, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID()
	c := &conversation.Conversation{
		ConversationId: primitive.NewObjectID(),
		UserId:         uid,
		Status:         cst.ConversationArchived,
	}
	cs.put(c)

	sink := &recSink{}
	_, err := co.Submit(context.Background(),
		&Turn{UserId: uid.Hex(), ConversationId: c.ConversationId.Hex(), Content: "写入归档对话"}, sink)
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errno.ConversationReadOnlyErrCode))
	assert.Empty(t, ms.list(c.ConversationId.Hex()))
}

func TestResolverErrorKeepsUserMsg(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){streamOf(nil, "x")}}
	cs := newFakeConvStore()
	ms := newFakeMsgStore()
	co := NewCoordinator(testConf(), cs, ms, &fakeResolver{err: errorx.New(errno.AgentForbiddenErrCode)}, gw)
	uid := primitive.NewObjectID().Hex()
	sink := &recSink{}

	_, err := co.Submit(context.Background(), &Turn{UserId: uid, AgentId: primitive.NewObjectID().Hex(), Content: "无权的agent"}, sink)
	require.Error(t, err)
	assert.True(t, errorx.Is(err, errno.AgentForbiddenErrCode))
	assert.Equal(t, 0, gw.count())

	// 配置错误时用户消息保留, 不落agent消息
	var cid string
	cs.mu.Lock()
	for k := range cs.convs {
		cid = k
	}
	cs.mu.Unlock()
	msgs := ms.list(cid)
	require.Len(t, msgs, 1)
	assert.EqualValues(t, cst.UserEnum, msgs[0].Role)
}

func TestCancelBySession(t *testing.T) {
	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){streamStuck("断开前")}}
	co, _, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()
	sid := primitive.NewObjectID().Hex()

	sink := &recSink{onChunk: make(chan struct{}, 1)}
	done := make(chan *Result, 1)
	go func() {
		res, _ := co.Submit(context.Background(), &Turn{UserId: uid, SessionId: sid, Content: "连接断开"}, sink)
		done <- res
	}()
	<-sink.onChunk

	co.CancelBySession(sid)
	res := <-done
	require.NotNil(t, res)
	msgs := ms.list(res.Conversation.ConversationId.Hex())
	require.Len(t, msgs, 2)
	assert.EqualValues(t, cst.FlagTruncated, msgs[1].Flag)

	// 未知session幂等
	co.CancelBySession("")
	co.CancelBySession(primitive.NewObjectID().Hex())
}

func TestSensitiveMarking(t *testing.T) {
	require.NoError(t, ac.InitAc([]string{"涉密"}))
	defer func() { _ = ac.InitAc(nil) }()

	gw := &scriptGateway{script: []func() (*model.ChunkStream, error){
		streamOf(nil, "这段回复包含涉密内容"),
	}}
	co, _, ms := newTestCoordinator(gw)
	uid := primitive.NewObjectID().Hex()

	res, err := co.Submit(context.Background(), &Turn{UserId: uid, Content: "问点敏感的"}, NopSink{})
	require.NoError(t, err)
	msgs := ms.list(res.Conversation.ConversationId.Hex())
	require.Len(t, msgs, 2)
	assert.Equal(t, []string{"涉密"}, msgs[1].Sensitive)
}

func TestBrief(t *testing.T) {
	assert.Equal(t, "你好", brief("  你好  "))
	long := "这是一条非常非常长的消息标题应该被截断到二十个字符为止后面都不要了"
	assert.Equal(t, 20, len([]rune(brief(long))))
}
