package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapcellar/beer-catalog/internal/model"
)

func TestNewPage(t *testing.T) {
	tests := []struct {
		name          string
		number        int
		size          int
		totalElements int64
		wantPages     int
	}{
		{"exact multiple", 0, 25, 100, 4},
		{"partial last page", 0, 25, 101, 5},
		{"catalog dataset", 0, 25, 2410, 97},
		{"empty result", 0, 25, 0, 0},
		{"single element", 0, 25, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := model.NewPage([]int{}, tt.number, tt.size, tt.totalElements)

			assert.Equal(t, tt.wantPages, page.TotalPages)
			assert.Equal(t, tt.totalElements, page.TotalElements)
		})
	}
}

func TestPageFirstLast(t *testing.T) {
	t.Run("first of many", func(t *testing.T) {
		page := model.NewPage([]int{1, 2}, 0, 2, 10)
		assert.True(t, page.First())
		assert.False(t, page.Last())
	})

	t.Run("middle", func(t *testing.T) {
		page := model.NewPage([]int{5, 6}, 2, 2, 10)
		assert.False(t, page.First())
		assert.False(t, page.Last())
	})

	t.Run("last", func(t *testing.T) {
		page := model.NewPage([]int{9, 10}, 4, 2, 10)
		assert.False(t, page.First())
		assert.True(t, page.Last())
	})

	t.Run("only page is both first and last", func(t *testing.T) {
		page := model.NewPage([]int{1}, 0, 25, 1)
		assert.True(t, page.First())
		assert.True(t, page.Last())
	})

	t.Run("out-of-range page counts as last", func(t *testing.T) {
		page := model.NewPage([]int{}, 9, 25, 10)
		assert.False(t, page.First())
		assert.True(t, page.Last())
	})
}
