package core_api

import (
	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/basic"
)

// PresignAttachReq 申请附件直传链接
type PresignAttachReq struct {
	ConversationId string `json:"conversation_id"`
	Filename       string `json:"filename"`
}

type PresignAttachResp struct {
	Resp      *basic.Response `json:"resp"`
	UploadURL string          `json:"upload_url"`
	AccessURL string          `json:"access_url"`
	Key       string          `json:"key"`
}
