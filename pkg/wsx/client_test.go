package wsx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// echoServer 原样回写收到的消息, 收到"bye"后正常关闭
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if string(data) == "bye" {
				_ = conn.WriteControl(CloseMessage, NormalCloseMsg, time.Now().Add(time.Second))
				return
			}
			if err = conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestClientEcho(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	cli, err := NewClientWithDial(context.Background(), wsURL(srv), nil)
	require.NoError(t, err)
	defer cli.Close()

	require.NoError(t, cli.WriteString("你好"))
	got, err := cli.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "你好", got)

	require.NoError(t, cli.WriteBytes([]byte{0x01, 0x02}))
	data, err := cli.ReadBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)
}

func TestClientJSON(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	cli, err := NewClientWithDial(context.Background(), wsURL(srv), nil)
	require.NoError(t, err)
	defer cli.Close()

	type payload struct {
		Type string `json:"type"`
		Ord  int64  `json:"ord"`
	}
	require.NoError(t, cli.WriteJSON(&payload{Type: "message_chunk", Ord: 7}))
	var got payload
	require.NoError(t, cli.ReadJSON(&got))
	assert.Equal(t, "message_chunk", got.Type)
	assert.Equal(t, int64(7), got.Ord)
}

func TestClientNormalClose(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	cli, err := NewClientWithDial(context.Background(), wsURL(srv), nil)
	require.NoError(t, err)

	require.NoError(t, cli.WriteString("bye"))
	_, err = cli.ReadString()
	assert.ErrorIs(t, err, NormalCloseErr)
	assert.True(t, IsNormal(err))
	assert.True(t, cli.IsClosed())
	// 已关闭后Close是no-op
	assert.NoError(t, cli.Close())
}

func TestIsNormal(t *testing.T) {
	assert.True(t, IsNormal(nil))
	assert.True(t, IsNormal(NormalCloseErr))
	assert.False(t, IsNormal(AbnormalCloseErr))
}
