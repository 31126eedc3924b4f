package common

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTimeoutConfig(t *testing.T) {
	t.Setenv("READ_TIMEOUT", "7")
	t.Setenv("WRITE_TIMEOUT", "nope")
	t.Setenv("IDLE_TIMEOUT", "-1")

	cfg := LoadTimeoutConfig(DefaultTimeouts)
	assert.Equal(t, 7*time.Second, cfg.Read)
	assert.Equal(t, DefaultTimeouts.Write, cfg.Write)
	assert.Equal(t, DefaultTimeouts.Idle, cfg.Idle)

	s := NewServer(":0", nil, cfg)
	assert.Equal(t, 7*time.Second, s.ReadTimeout)
}

func TestRunHooksInOrder(t *testing.T) {
	var order []int
	RunHooks(context.Background(), time.Second,
		func(context.Context) error { order = append(order, 1); return errors.New("ignored") },
		nil,
		func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			order = append(order, 2)
			return nil
		},
	)
	assert.Equal(t, []int{1, 2}, order)
}

func TestHandleSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	id, isNew := HandleSessionCookie(w, httptest.NewRequest("GET", "/", nil))
	assert.True(t, isNew)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, id, cookies[0].Value)

	r := httptest.NewRequest("GET", "/", nil)
	r.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	again, isNew := HandleSessionCookie(w, r)
	assert.False(t, isNew)
	assert.Equal(t, id, again)
	assert.Empty(t, w.Result().Cookies())

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Cookie", SessionCookie+"=1234")
	other, isNew := HandleSessionCookie(httptest.NewRecorder(), r)
	assert.True(t, isNew)
	assert.NotEqual(t, "1234", other)
}
