package pagination_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/cardswap/internal/utils/pagination"
)

func TestDecodeEmptyTokenIsFirstPage(t *testing.T) {
	c, err := pagination.Decode("")
	require.NoError(t, err)
	assert.True(t, c.IsZero())
}

func TestNextTokenRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 123_000_000, time.UTC)
	token := pagination.Next("abc", created)
	require.NotNil(t, token)

	c, err := pagination.Decode(*token)
	require.NoError(t, err)
	assert.Equal(t, "abc", c.ID)
	assert.True(t, c.Time().Equal(created))
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := pagination.Decode("%%%")
	assert.Error(t, err)

	_, err = pagination.Decode("bm90LWpzb24=") // "not-json"
	assert.Error(t, err)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, pagination.DefaultLimit, pagination.ClampLimit(0))
	assert.Equal(t, 7, pagination.ClampLimit(7))
	assert.Equal(t, pagination.MaxLimit, pagination.ClampLimit(10_000))
}

type row struct {
	id string
	at time.Time
}

func TestTrim(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	key := func(r row) (string, time.Time) { return r.id, r.at }
	rows := []row{{"c", base.Add(3 * time.Minute)}, {"b", base.Add(2 * time.Minute)}, {"a", base.Add(time.Minute)}}

	page, next := pagination.Trim(rows, 2, key)
	require.Len(t, page, 2)
	require.NotNil(t, next)
	c, err := pagination.Decode(*next)
	require.NoError(t, err)
	assert.Equal(t, "b", c.ID)

	page, next = pagination.Trim(rows, 3, key)
	assert.Len(t, page, 3)
	assert.Nil(t, next)
}
