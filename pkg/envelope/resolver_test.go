package envelope_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/chris-alexander-pop/notifyfabric/pkg/envelope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntity struct {
	envelope.Base
	Amount int `json:"amount"`
}

func newTestEntity() envelope.Envelope { return &testEntity{} }

func TestResolveVersionlessQualifiedName(t *testing.T) {
	r := envelope.NewResolver()
	r.Register("Test.Entity", newTestEntity)

	f, ok := r.Resolve(context.Background(), "Test.Entity, FakeAsm, Version=999.0.0.0, Culture=neutral, PublicKeyToken=null")
	require.True(t, ok)
	assert.NotNil(t, f())
}

func TestResolveEmptyNameIsAbsent(t *testing.T) {
	r := envelope.NewResolver()
	_, ok := r.Resolve(context.Background(), "   ")
	assert.False(t, ok)
}

func TestDeserializeOrFallbackConcreteType(t *testing.T) {
	r := envelope.NewResolver()
	r.Register("Test.Entity", newTestEntity)

	body := []byte(`{"amount":42,"notification_id":"n-1"}`)
	env := r.DeserializeOrFallback(context.Background(), body, "Test.Entity, FakeAsm, Version=1.0.0.0", "", time.Time{})

	entity, ok := env.(*testEntity)
	require.True(t, ok)
	assert.Equal(t, 42, entity.Amount)
	assert.Equal(t, "n-1", entity.ID())
	assert.False(t, entity.Timestamp().IsZero())
}

func TestDeserializeOrFallbackUnknownTypeFallsBack(t *testing.T) {
	r := envelope.NewResolver()

	body := []byte(`{"a":1}`)
	env := r.DeserializeOrFallback(context.Background(), body, "Nonsuch.Type, X", "", time.Time{})

	generic, ok := env.(*envelope.Generic)
	require.True(t, ok)
	assert.True(t, generic.IsGeneric())
	assert.Equal(t, "Nonsuch.Type, X", generic.Type())
	assert.JSONEq(t, `{"a":1}`, string(generic.RawBody()))
	assert.NotEmpty(t, generic.ID())
}

func TestDeserializeOrFallbackNeverFails(t *testing.T) {
	r := envelope.NewResolver()
	r.Register("Bad.Entity", newTestEntity)

	// Not valid JSON for testEntity's shape but still valid JSON syntax,
	// exercising the decode-failure branch rather than a parse panic.
	body := []byte(`"not-an-object"`)
	env := r.DeserializeOrFallback(context.Background(), body, "Bad.Entity", "", time.Time{})

	require.NotNil(t, env)
	generic, ok := env.(*envelope.Generic)
	require.True(t, ok)
	var raw string
	require.NoError(t, json.Unmarshal(generic.RawBody(), &raw))
	assert.Equal(t, "not-an-object", raw)
}

func TestHasAnyTag(t *testing.T) {
	e := &testEntity{Base: envelope.Base{NotificationTags: []string{"billing", "urgent"}}}
	assert.True(t, envelope.HasAnyTag(e, nil))
	assert.True(t, envelope.HasAnyTag(e, []string{"urgent"}))
	assert.False(t, envelope.HasAnyTag(e, []string{"shipping"}))
}
