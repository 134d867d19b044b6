package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/astra-ai/astra/libs/chat-engine/internal/llm"
)

func TestHistory_Append_CapsAtTwenty(t *testing.T) {
	h := NewHistory(20)

	for i := 0; i < 25; i++ {
		h.Append("alice", llm.Exchange{
			User:      fmt.Sprintf("q%d", i),
			Assistant: fmt.Sprintf("a%d", i),
		})
	}

	log := h.Get("alice", 0)
	assert.Len(t, log, 20)
	// The five oldest exchanges were evicted.
	assert.Equal(t, "q5", log[0].User)
	assert.Equal(t, "q24", log[19].User)
}

func TestHistory_Get_LimitReturnsMostRecent(t *testing.T) {
	h := NewHistory(20)
	for i := 0; i < 10; i++ {
		h.Append("bob", llm.Exchange{User: fmt.Sprintf("q%d", i)})
	}

	log := h.Get("bob", 3)

	assert.Len(t, log, 3)
	assert.Equal(t, "q7", log[0].User)
	assert.Equal(t, "q9", log[2].User)
}

func TestHistory_Get_UnknownUserIsEmpty(t *testing.T) {
	h := NewHistory(20)

	assert.Empty(t, h.Get("nobody", 0))
	assert.Equal(t, 0, h.Len("nobody"))
}

func TestHistory_Get_ReturnsCopy(t *testing.T) {
	h := NewHistory(20)
	h.Append("carol", llm.Exchange{User: "original"})

	log := h.Get("carol", 0)
	log[0].User = "mutated"

	assert.Equal(t, "original", h.Get("carol", 0)[0].User)
}

func TestHistory_IsolatesUsers(t *testing.T) {
	h := NewHistory(20)
	h.Append("alice", llm.Exchange{User: "from alice"})
	h.Append("bob", llm.Exchange{User: "from bob"})

	assert.Equal(t, 1, h.Len("alice"))
	assert.Equal(t, 1, h.Len("bob"))
	assert.Equal(t, 2, h.Users())
	assert.Equal(t, "from alice", h.Get("alice", 0)[0].User)
}

func TestHistory_Clear(t *testing.T) {
	h := NewHistory(20)
	h.Append("alice", llm.Exchange{User: "q"})

	h.Clear("alice")

	assert.Equal(t, 0, h.Len("alice"))
	assert.Equal(t, 0, h.Users())
}

func TestNewHistory_DefaultCap(t *testing.T) {
	h := NewHistory(0)

	for i := 0; i < 30; i++ {
		h.Append("u", llm.Exchange{User: fmt.Sprintf("q%d", i)})
	}
	assert.Equal(t, DefaultHistoryCap, h.Len("u"))
}
