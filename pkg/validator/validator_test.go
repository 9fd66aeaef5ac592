package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type eventTypeProbe struct {
	EventType string `validate:"required,eventtype"`
}

type visibilityProbe struct {
	AccountType string `validate:"required,visibility"`
}

func TestEventTypeTag(t *testing.T) {
	ctx := context.Background()

	assert.NoError(t, Validate(ctx, eventTypeProbe{EventType: "A"}))
	assert.NoError(t, Validate(ctx, eventTypeProbe{EventType: "X"}))

	assert.Error(t, Validate(ctx, eventTypeProbe{EventType: "Z"}))
	assert.Error(t, Validate(ctx, eventTypeProbe{EventType: "a"}))
	assert.Error(t, Validate(ctx, eventTypeProbe{EventType: "AB"}))
	assert.Error(t, Validate(ctx, eventTypeProbe{}))
}

func TestVisibilityTag(t *testing.T) {
	ctx := context.Background()

	for _, v := range []string{"PUB", "PRI", "CLO"} {
		assert.NoError(t, Validate(ctx, visibilityProbe{AccountType: v}))
	}
	assert.Error(t, Validate(ctx, visibilityProbe{AccountType: "pub"}))
	assert.Error(t, Validate(ctx, visibilityProbe{AccountType: "OPEN"}))
}
