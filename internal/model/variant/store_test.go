package variant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedHasSingleEmbedVariant(t *testing.T) {
	embeds := 0
	for _, v := range Seed() {
		if v.Embed {
			embeds++
		}
		assert.NotEmpty(t, v.Instruction, v.ID)
	}
	assert.Equal(t, 1, embeds)
}

func TestMemoryStoreFindByID(t *testing.T) {
	store := NewMemoryStore(Seed())

	got, ok := store.FindByID("upload")
	require.True(t, ok)
	assert.Equal(t, DeliveryUpload, got.Delivery)

	_, ok = store.FindByID("missing")
	assert.False(t, ok)
}

func TestMemoryStoreListIsCopy(t *testing.T) {
	store := NewMemoryStore(Seed())

	list := store.List()
	list[0].ID = "mutated"

	_, ok := store.FindByID("classic")
	assert.True(t, ok)
}
