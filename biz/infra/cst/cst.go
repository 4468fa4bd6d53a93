package cst

const (
	// Assistant is the role of an assistant, means the message is returned by ChatModel.
	Assistant = "assistant"
	// User is the role of a user, means the message is a user message.
	User = "user"
	// System is the role of a system, means the message is a system message.
	System = "system"
)

// 角色枚举值
const (
	SystemEnum    = 0
	AssistantEnum = 1
	UserEnum      = 2
)

// 消息完成标志, 依次为完整/截断/失败
const (
	FlagComplete  = 0
	FlagTruncated = 1
	FlagFailed    = 2
)

// 完成标志的对外展示值
const (
	FlagCompleteStr  = "complete"
	FlagTruncatedStr = "truncated"
	FlagFailedStr    = "failed"
)

// 对话状态
const (
	ConversationActive   = 0
	ConversationArchived = 1
)

// 智能体可见性
const (
	AgentPublic  = 0
	AgentPrivate = 1
)

// ctx 存储键
const (
	CompletionInfo = "completion_info"
)

// mapper层字段枚举
const (
	Id             = "_id"
	ConversationId = "conversation_id"
	UserId         = "user_id"
	OrgId          = "org_id"
	OwnerId        = "owner_id"
	AgentId        = "agent_id"
	Seq            = "seq"
	Brief          = "brief"
	Visibility     = "visibility"
	Active         = "active"
	CreateTime     = "create_time"
	UpdateTime     = "update_time"
	DeleteTime     = "delete_time"

	Status        = "status"
	DeletedStatus = -1

	NE      = "$ne"
	LT      = "$lt"
	Set     = "$set"
	Inc     = "$inc"
	Regex   = "$regex"
	Options = "$options"
)
