package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/joulaa-platform/joulaa-core-api/biz/application/dto/basic"
	"github.com/joulaa-platform/joulaa-core-api/pkg/errorx"
	"github.com/joulaa-platform/joulaa-core-api/types/errno"
)

func page(p, s int64) *basic.Page {
	return &basic.Page{Page: &p, Size: &s}
}

func TestHasMore(t *testing.T) {
	assert.True(t, HasMore(25, page(2, 10)))
	assert.False(t, HasMore(20, page(2, 10)))
	assert.False(t, HasMore(0, nil))
	// 空分页取默认第一页十条
	assert.True(t, HasMore(11, &basic.Page{}))
}

func TestSplitAndHasMore(t *testing.T) {
	list := []int{1, 2, 3, 4}
	got, more := SplitAndHasMore(list, page(1, 3))
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.True(t, more)

	got, more = SplitAndHasMore(list, page(1, 4))
	assert.Equal(t, list, got)
	assert.False(t, more)

	got, more = SplitAndHasMore([]int{}, page(1, 3))
	assert.Empty(t, got)
	assert.False(t, more)
}

func TestObjectIDFromHex(t *testing.T) {
	oid := primitive.NewObjectID()
	got, err := ObjectIDFromHex(oid.Hex())
	require.NoError(t, err)
	assert.Equal(t, oid, got)

	_, err = ObjectIDFromHex("not-an-oid")
	assert.True(t, errorx.Is(err, errno.OIDErrCode))
}

func TestObjectIDsFromHex(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	got, err := ObjectIDsFromHex(a.Hex(), b.Hex())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a, got[0])
	assert.Equal(t, b, got[1])

	_, err = ObjectIDsFromHex(a.Hex(), "bad")
	assert.Error(t, err)
}
