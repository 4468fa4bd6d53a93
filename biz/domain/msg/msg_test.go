package msg

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joulaa-platform/joulaa-core-api/biz/domain/agent"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cst"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/conversation"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/message"
)

func testConv() *conversation.Conversation {
	return &conversation.Conversation{
		ConversationId: primitive.NewObjectID(),
		UserId:         primitive.NewObjectID(),
	}
}

func TestNewUserMsg(t *testing.T) {
	c := testConv()
	m := NewUserMsg(c, 3, "你好")
	assert.Equal(t, c.ConversationId, m.ConversationId)
	assert.Equal(t, c.UserId, m.UserId)
	assert.Equal(t, int64(3), m.Seq)
	assert.EqualValues(t, cst.UserEnum, m.Role)
	assert.EqualValues(t, cst.FlagComplete, m.Flag)
	assert.False(t, m.MessageId.IsZero())
}

func TestNewAssistantMsg(t *testing.T) {
	c := testConv()
	aid := primitive.NewObjectID()
	snap := &agent.Snapshot{AgentId: aid.Hex(), Model: "gpt-4o"}
	usage := &message.Usage{PromptTokens: 3, CompletionTokens: 5, TotalTokens: 8}

	m := NewAssistantMsg(c, snap, 4, "回复", cst.FlagTruncated, usage, []string{"敏感词"})
	assert.EqualValues(t, cst.AssistantEnum, m.Role)
	assert.EqualValues(t, cst.FlagTruncated, m.Flag)
	assert.Equal(t, aid, m.AgentId)
	assert.Equal(t, usage, m.Usage)
	assert.Equal(t, []string{"敏感词"}, m.Sensitive)

	// 默认配置没有agentId
	m = NewAssistantMsg(c, &agent.Snapshot{Model: "gpt-4o"}, 5, "回复", cst.FlagComplete, nil, nil)
	assert.True(t, m.AgentId.IsZero())
}

func TestToSchemaReversesOrder(t *testing.T) {
	c := testConv()
	// mapper按seq倒序返回
	in := []*message.Message{
		NewAssistantMsg(c, nil, 2, "答", cst.FlagComplete, nil, nil),
		NewUserMsg(c, 1, "问"),
	}
	out := ToSchema(in)
	require.Len(t, out, 2)
	assert.Equal(t, schema.User, out[0].Role)
	assert.Equal(t, "问", out[0].Content)
	assert.Equal(t, schema.Assistant, out[1].Role)
	assert.Equal(t, "答", out[1].Content)
}

func TestToDTOOne(t *testing.T) {
	c := testConv()
	m := NewAssistantMsg(c, nil, 7, "内容", cst.FlagTruncated,
		&message.Usage{TotalTokens: 9}, nil)

	d := ToDTOOne(m)
	require.NotNil(t, d)
	assert.Equal(t, m.MessageId.Hex(), d.MessageId)
	assert.Equal(t, int64(7), d.Seq)
	assert.Equal(t, cst.Assistant, d.Role)
	assert.Equal(t, cst.FlagTruncatedStr, d.Status)
	require.NotNil(t, d.Usage)
	assert.Equal(t, int32(9), d.Usage.TotalTokens)

	assert.Nil(t, ToDTOOne(nil))
}

func TestFlagStr(t *testing.T) {
	assert.Equal(t, cst.FlagCompleteStr, FlagStr(cst.FlagComplete))
	assert.Equal(t, cst.FlagTruncatedStr, FlagStr(cst.FlagTruncated))
	assert.Equal(t, cst.FlagFailedStr, FlagStr(cst.FlagFailed))
}
