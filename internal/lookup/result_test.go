package lookup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(name, value string) Provider[string, string] {
	return Provider[string, string]{
		Name: name,
		Lookup: func(ctx context.Context, in string) (string, bool, error) {
			return value, true, nil
		},
	}
}

func empty(name string) Provider[string, string] {
	return Provider[string, string]{
		Name: name,
		Lookup: func(ctx context.Context, in string) (string, bool, error) {
			return "", false, nil
		},
	}
}

func failing(name string, err error) Provider[string, string] {
	return Provider[string, string]{
		Name: name,
		Lookup: func(ctx context.Context, in string) (string, bool, error) {
			return "", false, err
		},
	}
}

func TestFirstOf(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("first found wins and later providers are skipped", func(t *testing.T) {
		called := false
		late := Provider[string, string]{
			Name: "late",
			Lookup: func(ctx context.Context, in string) (string, bool, error) {
				called = true
				return "late", true, nil
			},
		}

		res := FirstOf(ctx, "in", failing("a", boom), empty("b"), constant("c", "value"), late)

		require.True(t, res.OK())
		assert.Equal(t, "value", res.Value)
		assert.Equal(t, "c", res.Source)
		assert.False(t, called)
		require.Len(t, res.Attempts, 3)
		assert.Equal(t, StatusFailed, res.Attempts[0].Status)
		assert.Equal(t, "boom", res.Attempts[0].Error)
		assert.Equal(t, StatusEmpty, res.Attempts[1].Status)
		assert.Equal(t, StatusFound, res.Attempts[2].Status)
	})

	t.Run("all empty", func(t *testing.T) {
		res := FirstOf(ctx, "in", empty("a"), empty("b"))

		assert.Equal(t, StatusEmpty, res.Status)
		assert.NoError(t, res.Err)
		assert.Len(t, res.Attempts, 2)
		_, ok := res.Get()
		assert.False(t, ok)
	})

	t.Run("failure is reported over empty", func(t *testing.T) {
		res := FirstOf(ctx, "in", empty("a"), failing("b", boom), empty("c"))

		assert.Equal(t, StatusFailed, res.Status)
		assert.ErrorIs(t, res.Err, boom)
		assert.Equal(t, "b", res.Source)
		assert.Len(t, res.Attempts, 3)
	})

	t.Run("no providers", func(t *testing.T) {
		res := FirstOf[string, string](ctx, "in")
		assert.Equal(t, StatusEmpty, res.Status)
		assert.Empty(t, res.Attempts)
	})

	t.Run("cancelled context stops the chain", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res := FirstOf(cctx, "in", constant("a", "x"))
		assert.Equal(t, StatusFailed, res.Status)
		assert.ErrorIs(t, res.Err, context.Canceled)
	})
}

func TestProvider_Resolve(t *testing.T) {
	res := Provider[string, int]{Name: "nil"}.Resolve(context.Background(), "x")
	assert.Equal(t, StatusFailed, res.Status)

	assert.Equal(t, "value", Found("s", "value").OrZero())
	assert.Equal(t, "", Empty[string]("s").OrZero())
	assert.Equal(t, "failed", StatusFailed.String())
}
