package messaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicNames(t *testing.T) {
	assert.Equal(t, "global_tracking", getName(GlobalPrefix, Tracking))
	assert.Equal(t, "global_item_changed", getName(GlobalPrefix, ItemsChanged))
}

func TestNewPublishing(t *testing.T) {
	msg, err := newPublishing(map[string][]uint32{"deleted": {7}})
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.JSONEq(t, `{"deleted":[7]}`, string(msg.Body))
}
