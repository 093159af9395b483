package errors

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorBuilder_Basic(t *testing.T) {
	t.Parallel()

	base := NewStd("upstream exploded")
	err := New(base).
		Component("lawapi").
		Category(CategoryNetwork).
		Context("endpoint", 3).
		Build()

	assert.Equal(t, "upstream exploded", err.Error())
	assert.Equal(t, "lawapi", err.Component)
	assert.Equal(t, CategoryNetwork, err.Category)
	assert.Equal(t, 3, err.GetContext()["endpoint"])
	assert.ErrorIs(t, err, base)
}

func TestErrorBuilder_DefaultCategory(t *testing.T) {
	t.Parallel()

	err := Newf("something %s", "odd").Build()
	assert.Equal(t, CategoryGeneric, err.Category)
}

func TestIsCategory(t *testing.T) {
	t.Parallel()

	err := Newf("no rows").Category(CategoryNotFound).Build()
	wrapped := fmt.Errorf("lookup failed: %w", err)

	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsCategory(wrapped, CategoryDatabase))
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"timeout_category", Newf("slow").Category(CategoryTimeout).Build(), true},
		{"rate_limit_category", Newf("429").Category(CategoryRateLimit).Build(), true},
		{"network_category", Newf("reset").Category(CategoryNetwork).Build(), true},
		{"validation_category", ValidationError("bad params"), false},
		{"parsing_category", Newf("bad json").Category(CategoryParsing).Build(), false},
		{"plain_error", NewStd("plain"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransient_ContextDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	<-ctx.Done()

	// context.DeadlineExceeded implements net.Error with Timeout() == true
	assert.True(t, IsTransient(ctx.Err()))
}

func TestEnhancedError_IsByCategory(t *testing.T) {
	t.Parallel()

	a := Newf("a").Category(CategoryDatabase).Build()
	b := Newf("b").Category(CategoryDatabase).Build()
	c := Newf("c").Category(CategoryNetwork).Build()

	require.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}
