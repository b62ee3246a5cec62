package plan_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/wonderfulgo/internal/database"
	"github.com/edgard/wonderfulgo/internal/plan"
)

func samplePlan(title string) plan.Plan {
	return plan.Plan{
		Title:           title,
		GreetingMessage: "Let's go!",
		Timestamp:       "10/15 09:05",
		Spots: []plan.Spot{
			{Name: "Dog Run A", Address: "1-2-3 Shibuya", Description: "Big run", PetCondition: "leash off inside"},
			{Name: "Cafe B", Address: "4-5 Meguro", Description: "Terrace", PetCondition: "terrace only", ParkingInfo: "coin parking 300 yen/h"},
		},
	}
}

func TestHistory_PrependIsNewestFirst(t *testing.T) {
	ctx := context.Background()
	h := plan.NewHistory(database.NewMemoryStore(), nil)

	require.NoError(t, h.Prepend(ctx, samplePlan("first")))
	require.NoError(t, h.Prepend(ctx, samplePlan("second")))

	got := h.List(ctx)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Title)
	assert.Equal(t, "first", got[1].Title)
	assert.Equal(t, samplePlan("first"), got[1])
}

func TestHistory_TruncatesToCapacity(t *testing.T) {
	ctx := context.Background()
	h := plan.NewHistory(database.NewMemoryStore(), nil)

	for i := 1; i <= 13; i++ {
		require.NoError(t, h.Prepend(ctx, samplePlan(fmt.Sprintf("p%d", i))))
	}

	got := h.List(ctx)
	require.Len(t, got, plan.Capacity)
	for i, p := range got {
		assert.Equal(t, fmt.Sprintf("p%d", 13-i), p.Title)
	}
}

func TestHistory_CorruptStorageIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	store.SetRaw(database.KeyPlanHistory, []byte(`not json`))
	h := plan.NewHistory(store, nil)

	assert.Empty(t, h.List(ctx))
	require.NoError(t, h.Prepend(ctx, samplePlan("recovered")))
	assert.Len(t, h.List(ctx), 1)
}

func TestPlan_WireNames(t *testing.T) {
	data, err := json.Marshal(samplePlan("t"))
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(data, &generic))
	assert.Contains(t, generic, "plan_title")
	assert.Contains(t, generic, "greeting_message")

	spots := generic["spots"].([]any)
	assert.Contains(t, spots[0], "pet_condition")
	assert.NotContains(t, spots[0], "parking_info")
	assert.Contains(t, spots[1], "parking_info")
}
