package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "cotton-shirt-xl", Slugify("  Cotton Shirt (XL) "))
	assert.Equal(t, "item", Slugify("!!!"))
}

func TestUniqueSlug(t *testing.T) {
	a, err := UniqueSlug("Denim Jacket")
	require.NoError(t, err)
	b, err := UniqueSlug("Denim Jacket")
	require.NoError(t, err)
	assert.Regexp(t, `^denim-jacket-[0-9a-f]{8}$`, a)
	assert.NotEqual(t, a, b)
}

func TestOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		otp, err := OTP(6)
		require.NoError(t, err)
		assert.Regexp(t, `^[0-9]{6}$`, otp)
	}
	long, err := OTP(12)
	require.NoError(t, err)
	assert.Len(t, long, 12)
}

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", target, nil)
	return c
}

func TestParamID(t *testing.T) {
	c := testContext("/")
	c.Params = gin.Params{{Key: "id", Value: "42"}}
	id, err := ParamID(c, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, err = ParamID(c, "id")
	assert.EqualError(t, err, "id must be a positive integer")
}

func TestPagination(t *testing.T) {
	limit, offset := Pagination(testContext("/?page=3&limit=10"), 20, 100)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, offset = Pagination(testContext("/?limit=500&offset=5"), 20, 100)
	assert.Equal(t, 100, limit)
	assert.Equal(t, 5, offset)

	limit, offset = Pagination(testContext("/"), 20, 100)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)
}

func TestPaginationHugePageStaysPositive(t *testing.T) {
	limit, offset := Pagination(testContext("/?page=922337203685477580&limit=20"), 20, 100)
	assert.Equal(t, 20, limit)
	assert.Equal(t, (maxPage-1)*20, offset)
	assert.Positive(t, offset)
}

func TestQueryHelpers(t *testing.T) {
	c := testContext("/?product_id=9&is_read=false&bad=-1")
	assert.Equal(t, int64(9), *QueryInt64(c, "product_id"))
	assert.Nil(t, QueryInt64(c, "bad"))
	assert.Nil(t, QueryInt64(c, "missing"))
	assert.False(t, *QueryBool(c, "is_read"))
	assert.Nil(t, QueryBool(c, "missing"))
}
