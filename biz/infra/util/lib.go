package util

import (
	"net/url"

	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/basic"
	"github.com/joulaa-platform/joulaa-core-api/pkg/logs"
)

// Success 通用成功响应头
func Success() *basic.Response {
	return &basic.Response{Code: 0, Msg: "success"}
}

func Str2URL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		logs.Errorf("[util] parse url fail, raw=%s, err=%v", s, err)
		return &url.URL{}
	}
	return u
}
