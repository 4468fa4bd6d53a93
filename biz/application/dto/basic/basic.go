package basic

// Response 通用响应头
type Response struct {
	Code int32  `json:"code"`
	Msg  string `json:"msg"`
}

// Page 分页参数, page/size为空时取默认值
type Page struct {
	Page   *int64  `json:"page,omitempty" query:"page"`
	Size   *int64  `json:"size,omitempty" query:"size"`
	Cursor *string `json:"cursor,omitempty" query:"cursor"`
}

func (p *Page) GetPage() int64 {
	if p == nil || p.Page == nil || *p.Page < 1 {
		return 1
	}
	return *p.Page
}

func (p *Page) GetSize() int64 {
	if p == nil || p.Size == nil || *p.Size < 1 {
		return 10
	}
	return *p.Size
}

func (p *Page) GetCursor() string {
	if p == nil || p.Cursor == nil {
		return ""
	}
	return *p.Cursor
}
