package relay

// Sink 一轮生成的下行出口
// websocket路径扇出到用户的在线连接, HTTP回退路径只要终态, 增量直接丢弃
type Sink interface {
	Chunk(cid string, ord int64, delta string)
	Complete(cid, mid, status string)
	Error(cid string, err error)
}

// NopSink 丢弃所有下行帧
type NopSink struct{}

func (NopSink) Chunk(string, int64, string)     {}
func (NopSink) Complete(string, string, string) {}
func (NopSink) Error(string, error)             {}
