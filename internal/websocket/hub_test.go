package websocket

import (
	"testing"
	"time"

	"ai-cservice-be/internal/dto"

	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func clientCount(h *Hub, agentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[agentID])
}

func TestBroadcastDeliversToConnectedAgents(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	client := &Client{Hub: hub, AgentID: "agent-1", Send: make(chan []byte, 4)}
	hub.register <- client
	require.Eventually(t, func() bool {
		return clientCount(hub, "agent-1") == 1
	}, time.Second, 10*time.Millisecond)

	hub.Broadcast(dto.EscalationNotice{
		UserId:    "user123",
		SessionId: "sess-1",
		Message:   "转人工",
		Reason:    "用户请求人工客服",
	})

	select {
	case data := <-client.Send:
		require.Contains(t, string(data), "escalation")
		require.Contains(t, string(data), "sess-1")
	case <-time.After(time.Second):
		t.Fatal("broadcast never reached the client")
	}
}

func TestBroadcastUnregistersStalledClients(t *testing.T) {
	hub := NewHub(nil, nopLogger{})
	go hub.Run()

	// Unbuffered channels with no readers stall immediately.
	stalled1 := &Client{Hub: hub, AgentID: "agent-1", Send: make(chan []byte)}
	stalled2 := &Client{Hub: hub, AgentID: "agent-1", Send: make(chan []byte)}
	hub.register <- stalled1
	hub.register <- stalled2
	require.Eventually(t, func() bool {
		return clientCount(hub, "agent-1") == 2
	}, time.Second, 10*time.Millisecond)

	// Two stalled clients in one broadcast must both drop cleanly.
	hub.Broadcast(dto.EscalationNotice{UserId: "user123", SessionId: "sess-1"})

	require.Eventually(t, func() bool {
		return clientCount(hub, "agent-1") == 0
	}, time.Second, 10*time.Millisecond)

	for _, c := range []*Client{stalled1, stalled2} {
		select {
		case _, ok := <-c.Send:
			require.False(t, ok, "channel should be closed, not carrying data")
		case <-time.After(time.Second):
			t.Fatal("client channel was never closed")
		}
	}
}
