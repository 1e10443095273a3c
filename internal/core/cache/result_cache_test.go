package cache

import (
	"context"
	"testing"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchKeyStableUnderPermutation(t *testing.T) {
	a := searchKey([]string{"Tomato", "onion", "Garlic"}, []string{"Vegan"})
	b := searchKey([]string{"garlic", "tomato", "ONION"}, []string{"vegan"})
	assert.Equal(t, a, b, "order and casing must not split the cache")
}

func TestSearchKeyDistinguishesInputs(t *testing.T) {
	base := searchKey([]string{"tomato"}, nil)
	assert.NotEqual(t, base, searchKey([]string{"tomato", "onion"}, nil))
	assert.NotEqual(t, base, searchKey([]string{"tomato"}, []string{"vegan"}))

	// the separator keeps ingredient/dietary boundaries unambiguous
	assert.NotEqual(t,
		searchKey([]string{"tomato", "vegan"}, nil),
		searchKey([]string{"tomato"}, []string{"vegan"}),
	)
}

func TestSearchKeyIgnoresBlankEntries(t *testing.T) {
	assert.Equal(t,
		searchKey([]string{"tomato", "", "  "}, nil),
		searchKey([]string{"tomato"}, nil),
	)
}

func TestDisabledCacheReturnsTypedMiss(t *testing.T) {
	c, err := NewResultCache(&config.CacheConfig{Enabled: false})
	require.NoError(t, err)

	_, err = c.Get(context.Background(), []string{"tomato"}, nil)
	assert.ErrorIs(t, err, common.ErrCacheDisabled)

	assert.NoError(t, c.Set(context.Background(), []string{"tomato"}, nil, []int{1, 2}))
	assert.NoError(t, c.Close())
}
