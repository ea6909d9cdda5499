package card

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pool(n int, selected bool) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("id-%d", i), Text: fmt.Sprintf("item %d", i), Selected: selected}
	}
	return items
}

func ids(inst Instance) []string {
	out := make([]string, len(inst))
	for i, it := range inst {
		out[i] = it.ID
	}
	sort.Strings(out)
	return out
}

func TestComposeFullPermutation(t *testing.T) {
	items := pool(9, true)
	want := ids(Instance(items))

	cards, err := Compose(items, 9, 20, Seeded(7, 1))
	require.NoError(t, err)
	require.Len(t, cards, 20)
	for i, c := range cards {
		assert.Equal(t, want, ids(c), "card %d is not a permutation of the selected set", i)
	}
}

func TestComposeFiveItemsOneRow(t *testing.T) {
	items := pool(5, true)
	cards, err := Compose(items, 1*5, 1, nil)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.Len(t, cards[0], 5)
	for _, it := range cards[0] {
		assert.NotEmpty(t, it.ID)
	}
	assert.Equal(t, ids(Instance(items)), ids(cards[0]))
}

func TestComposeInsufficientItems(t *testing.T) {
	items := append(pool(3, true), pool(4, false)...)
	for _, n := range []int{0, 1, 5} {
		_, err := Compose(items, 2*2, n, nil)
		require.Error(t, err)
		var insufficient *InsufficientItemsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, 4, insufficient.Required)
		assert.Equal(t, 3, insufficient.Selected)
		assert.Contains(t, err.Error(), "4")
	}
}

func TestComposeFiltersUnselected(t *testing.T) {
	items := pool(6, true)
	items[0].Selected = false
	items[3].Selected = false

	cards, err := Compose(items, 4, 3, nil)
	require.NoError(t, err)
	for _, c := range cards {
		for _, it := range c {
			assert.NotEqual(t, "id-0", it.ID)
			assert.NotEqual(t, "id-3", it.ID)
		}
	}
}

func TestComposeDoesNotMutatePool(t *testing.T) {
	items := pool(8, true)
	before := make([]Item, len(items))
	copy(before, items)

	_, err := Compose(items, 4, 10, Seeded(1, 2))
	require.NoError(t, err)
	assert.Equal(t, before, items)
}

func TestComposeSeededIsReproducible(t *testing.T) {
	items := pool(12, true)
	a, err := Compose(items, 6, 3, Seeded(42, 0))
	require.NoError(t, err)
	b, err := Compose(items, 6, 3, Seeded(42, 0))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestItemsCodecRegeneratesIDs(t *testing.T) {
	src := `[{"image":"a.png","text":"Apple","selected":1},{"image":"","text":"Pear","selected":0},{"text":"Fig","selected":true}]`
	items, err := DecodeItems(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.True(t, items[0].Selected)
	assert.False(t, items[1].Selected)
	assert.True(t, items[2].Selected)
	assert.Equal(t, "a.png", items[0].Image)
	assert.NotEqual(t, items[0].ID, items[1].ID)

	var buf bytes.Buffer
	require.NoError(t, EncodeItems(&buf, items))
	assert.Contains(t, buf.String(), `"selected": 1`)
	assert.Contains(t, buf.String(), `"selected": 0`)
	assert.NotContains(t, buf.String(), items[0].ID)

	again, err := DecodeItems(&buf)
	require.NoError(t, err)
	require.Len(t, again, 3)
	assert.Equal(t, items[2].Text, again[2].Text)
	assert.NotEqual(t, items[0].ID, again[0].ID)
}

func TestDecodeItemsRejectsGarbage(t *testing.T) {
	_, err := DecodeItems(strings.NewReader(`[{"text":"x","selected":"maybe"}]`))
	assert.Error(t, err)
}
