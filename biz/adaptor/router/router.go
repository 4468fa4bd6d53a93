package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/joulaa-platform/joulaa-core-api/biz/adaptor/controller/core_api"
)

// Register 注册全部路由
func Register(h *server.Hertz) {
	h.GET("/ws/chat", core_api.Chat)

	chat := h.Group("/chat")
	chat.POST("/completions", core_api.Completions)

	conversation := h.Group("/conversation")
	conversation.POST("/create", core_api.CreateConversation)
	conversation.POST("/list", core_api.ListConversation)
	conversation.POST("/get", core_api.GetConversation)
	conversation.POST("/rename", core_api.RenameConversation)
	conversation.POST("/archive", core_api.ArchiveConversation)
	conversation.POST("/delete", core_api.DeleteConversation)
	conversation.POST("/search", core_api.SearchConversation)

	agent := h.Group("/agent")
	agent.POST("/create", core_api.CreateAgent)
	agent.POST("/update", core_api.UpdateAgent)
	agent.GET("/get", core_api.GetAgent)
	agent.POST("/list", core_api.ListAgent)
	agent.POST("/delete", core_api.DeleteAgent)

	attach := h.Group("/attach")
	attach.POST("/presign", core_api.PresignAttach)
}
