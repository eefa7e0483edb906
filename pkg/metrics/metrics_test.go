package metrics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNoApplication(t *testing.T) {
	ctx := NewContext(context.Background(), nil)

	_, ok := FromContext(ctx)
	assert.False(t, ok)

	// None of these should panic without an application
	RecordCount(ctx, "count", 1)
	RecordDuration(ctx, "duration", time.Second)
	RecordEvent(ctx, "event", map[string]interface{}{"key": "value"})

	txnCtx, end := StartTransaction(ctx, "txn")
	assert.Equal(t, ctx, txnCtx)
	end()

	tracer := TraceMethodCall(ctx, "metrics", "TestNoApplication")
	assert.Nil(t, tracer)
	tracer.AddAttribute("key", "value")
	tracer.OnError(errors.New("error"))
	tracer.End()
}

func TestFlattenEntry(t *testing.T) {
	entry := logrus.NewEntry(logrus.New())
	entry.Message = "hello"
	assert.Equal(t, "hello", flattenEntry(entry))

	entry = entry.WithField("key", "value").WithError(errors.New("failure"))
	entry.Message = "hello"
	assert.Equal(t, `message="hello", error="failure", data={"key":"value"}`, flattenEntry(entry))
}
