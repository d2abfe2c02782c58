package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalUnmarshal(t *testing.T) {
	t.Parallel()

	type payload struct {
		Title   Optional[string]    `json:"title"`
		DueDate Optional[time.Time] `json:"due_date"`
	}

	t.Run("absent field", func(t *testing.T) {
		t.Parallel()
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))

		assert.False(t, p.Title.Set)
		assert.False(t, p.DueDate.Set)
	})

	t.Run("explicit null", func(t *testing.T) {
		t.Parallel()
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"due_date": null}`), &p))

		assert.True(t, p.DueDate.Set)
		assert.False(t, p.DueDate.Valid)
		assert.False(t, p.Title.Set)
	})

	t.Run("present value", func(t *testing.T) {
		t.Parallel()
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"title": "hello"}`), &p))

		assert.True(t, p.Title.Set)
		assert.True(t, p.Title.Valid)
		assert.Equal(t, "hello", p.Title.Value)
	})

	t.Run("type mismatch fails", func(t *testing.T) {
		t.Parallel()
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"title": 42}`), &p))
	})
}

func TestOptionalConstructors(t *testing.T) {
	t.Parallel()

	some := Some(7)
	assert.True(t, some.Set)
	assert.True(t, some.Valid)
	assert.Equal(t, 7, some.Value)

	null := Null[int]()
	assert.True(t, null.Set)
	assert.False(t, null.Valid)
}
