package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_Lifecycle(t *testing.T) {
	p := NewProvider()
	var events []string
	p.OnBegin(func(s Session) { events = append(events, "begin:"+s.UserID) })
	p.OnEnd(func(s Session) { events = append(events, "end:"+s.UserID) })

	_, ok := p.Current()
	assert.False(t, ok)
	assert.Empty(t, p.Token())

	require.NoError(t, p.Begin(Session{UserID: "u1", Token: "t1"}))
	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "u1", cur.UserID)
	assert.False(t, cur.StartedAt.IsZero())
	assert.Equal(t, "t1", p.Token())

	// A second Begin ends the first session.
	require.NoError(t, p.Begin(Session{UserID: "u2", Token: "t2"}))
	assert.Equal(t, "t2", p.Token())

	p.End()
	p.End()
	assert.Empty(t, p.Token())

	assert.Equal(t, []string{"begin:u1", "end:u1", "begin:u2", "end:u2"}, events)
}

func TestProvider_BeginRequiresToken(t *testing.T) {
	p := NewProvider()
	called := false
	p.OnBegin(func(Session) { called = true })

	assert.ErrorIs(t, p.Begin(Session{UserID: "u1"}), ErrNoToken)
	assert.False(t, called)
	_, ok := p.Current()
	assert.False(t, ok)
}
