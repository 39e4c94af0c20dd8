package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	cases := []struct {
		page, size string
		want       Page
	}{
		{"", "", Page{}},
		{"1", "", Page{Offset: 0, Limit: DefaultPageSize}},
		{"3", "10", Page{Offset: 20, Limit: 10}},
		{"", "500", Page{Offset: 0, Limit: MaxPageSize}},
	}
	for _, tc := range cases {
		got, err := ParsePage(tc.page, tc.size)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "page=%q size=%q", tc.page, tc.size)
	}

	for _, bad := range [][2]string{{"0", ""}, {"x", "10"}, {"1", "-5"}} {
		_, err := ParsePage(bad[0], bad[1])
		assert.ErrorIs(t, err, ErrBadPage)
	}
	assert.True(t, Page{}.All())
}
