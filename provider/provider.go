package provider

import (
	"github.com/google/wire"

	"github.com/joulaa-platform/joulaa-core-api/biz/application/service"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/agent"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/memory/history"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/model"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/relay"
	"github.com/joulaa-platform/joulaa-core-api/biz/domain/session"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/cache"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/config"
	agentmapper "github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/agent"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/conversation"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/mapper/message"
	"github.com/joulaa-platform/joulaa-core-api/biz/infra/storage"
	"github.com/joulaa-platform/joulaa-core-api/pkg/ac"
)

var provider *Provider

func Init() {
	var err error
	provider, err = NewProvider()
	if err != nil {
		panic(err)
	}
}

// Provider 提供controller依赖的对象
type Provider struct {
	Config              *config.Config
	ChatService         service.IChatService
	CompletionsService  service.ICompletionsService
	ConversationService service.IConversationService
	AgentService        service.IAgentService
	AttachService       service.IAttachService
	Registry            *session.Registry
	Coordinator         *relay.Coordinator
}

func Get() *Provider {
	return provider
}

var ApplicationSet = wire.NewSet(
	service.ChatServiceSet,
	service.CompletionsServiceSet,
	service.ConversationServiceSet,
	service.AgentServiceSet,
	service.AttachServiceSet,
)

var DomainSet = wire.NewSet(
	agent.ResolverSet,
	model.GatewaySet,
	session.RegistrySet,
	relay.CoordinatorSet,
	history.New,
)

var InfraSet = wire.NewSet(
	config.NewConfig,
	cache.NewRedis,
	conversation.NewConversationMongoMapper,
	message.NewMessageMongoMapper,
	agentmapper.NewAgentMongoMapper,
	storage.NewCOS,
)

var AllProvider = wire.NewSet(
	ApplicationSet,
	DomainSet,
	InfraSet,
)

// NewProvider 装配依赖图
// 会话注册表的关闭钩子在此处接到协调器, 连接断开即取消它发起的在途生成
func NewProvider() (*Provider, error) {
	conf, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	if err = ac.InitAc(conf.Sensitive.Dict); err != nil {
		return nil, err
	}

	rds := cache.NewRedis(conf)
	conversationMapper := conversation.NewConversationMongoMapper(conf)
	messageMapper := message.NewMessageMongoMapper(conf)
	agentMapper := agentmapper.NewAgentMongoMapper(conf)
	cos := storage.NewCOS(conf)

	hist := history.New(rds, messageMapper)
	resolver := &agent.Resolver{Conf: conf, AgentMapper: agentMapper}
	gateway := &model.Gateway{Conf: conf}
	registry := session.NewRegistry(conf)
	coordinator := relay.NewCoordinator(conf, conversationMapper, hist, resolver, gateway)
	registry.SetCloseHook(coordinator.CancelBySession)

	return &Provider{
		Config:              conf,
		ChatService:         &service.ChatService{Conf: conf, Registry: registry, Coordinator: coordinator},
		CompletionsService:  &service.CompletionsService{Coordinator: coordinator},
		ConversationService: &service.ConversationService{ConversationMapper: conversationMapper, MessageMapper: messageMapper},
		AgentService:        &service.AgentService{Conf: conf, AgentMapper: agentMapper},
		AttachService:       &service.AttachService{COS: cos},
		Registry:            registry,
		Coordinator:         coordinator,
	}, nil
}
