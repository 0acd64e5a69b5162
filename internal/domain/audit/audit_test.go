package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildBaseQuery(t *testing.T) {
	query, args := buildBaseQuery("SELECT COUNT(1)", Filter{})
	assert.Equal(t, "SELECT COUNT(1) FROM audit_events WHERE 1 = 1", query)
	assert.Empty(t, args)

	query, args = buildBaseQuery("SELECT id", Filter{Action: ActionPunchRecord, EntityID: "e1", ActorID: "a1"})
	assert.Equal(t, "SELECT id FROM audit_events WHERE 1 = 1 AND action = $1 AND entity_id = $2 AND actor_id::text = $3", query)
	assert.Equal(t, []any{ActionPunchRecord, "e1", "a1"}, args)
}

func TestMarshalOptional(t *testing.T) {
	raw, err := marshalOptional(nil)
	assert.NoError(t, err)
	assert.Nil(t, raw)

	raw, err = marshalOptional(map[string]string{"kind": "entry"})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"kind":"entry"}`, string(raw))
}
