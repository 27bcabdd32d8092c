package push

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// 同一用户重复连接时 Run 会关闭旧连接的发送通道；
// 并发进行的 Push 不允许撞上刚被关闭的通道。
func TestPushSurvivesConnectionReplacement(t *testing.T) {
	h := NewHub()
	go h.Run()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			h.Push("7", []byte(fmt.Sprintf("msg-%d", i)))
		}
	}()

	for i := 0; i < 50; i++ {
		h.register <- &Client{hub: h, send: make(chan []byte, 1), userID: "7"}
	}
	<-done
}

func TestPushToOfflineUser(t *testing.T) {
	h := NewHub()
	go h.Run()

	assert.False(t, h.Push("nobody", []byte("hello")))
}

func TestPushDropsWhenBufferFull(t *testing.T) {
	h := NewHub()
	go h.Run()

	client := &Client{hub: h, send: make(chan []byte, 1), userID: "9"}
	h.register <- client

	assert.True(t, h.Push("9", []byte("first")))

	// 缓冲满：立即返回 false，不阻塞调用方
	start := time.Now()
	assert.False(t, h.Push("9", []byte("second")))
	assert.Less(t, time.Since(start), time.Second)

	// Run 随后把不健康的连接摘掉
	assert.Eventually(t, func() bool {
		h.Push("9", []byte("again"))
		h.lock.RLock()
		defer h.lock.RUnlock()
		_, ok := h.clients["9"]
		return !ok
	}, time.Second, 10*time.Millisecond)
}
