package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGroup(t *testing.T) {
	direct := &Conversation{UserIDs: []string{"a", "b"}}
	assert.False(t, direct.IsGroup())

	group := &Conversation{UserIDs: []string{"a", "b", "c"}}
	assert.True(t, group.IsGroup())

	bigger := &Conversation{UserIDs: []string{"a", "b", "c", "d"}}
	assert.True(t, bigger.IsGroup())
}

func TestReadByUser(t *testing.T) {
	msg := &Message{ReadBy: []ReadReceipt{{UserID: "a"}}}
	assert.True(t, msg.ReadByUser("a"))
	assert.False(t, msg.ReadByUser("b"))
}
