package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination(t *testing.T) {
	tests := []struct {
		name  string
		opts  PageOptions
		count int64
		want  *Pagination
	}{
		{
			"one page",
			PageOptions{PageNumber: 1, PageSize: 20},
			1,
			&Pagination{CurrentPage: 1, TotalPages: 1, TotalCount: 1},
		},
		{
			"first of several pages",
			PageOptions{PageNumber: 1, PageSize: 10},
			101,
			&Pagination{CurrentPage: 1, NextPage: new(2), TotalPages: 11, TotalCount: 101},
		},
		{
			"last of several pages",
			PageOptions{PageNumber: 11, PageSize: 10},
			101,
			&Pagination{CurrentPage: 11, PreviousPage: new(10), TotalPages: 11, TotalCount: 101},
		},
		{
			"defaults",
			PageOptions{},
			0,
			&Pagination{CurrentPage: 1, TotalPages: 1, TotalCount: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPagination(tt.opts, tt.count))
		})
	}
}

func TestPageOptionsOffset(t *testing.T) {
	assert.Equal(t, 0, PageOptions{}.GetOffset())
	assert.Equal(t, 40, PageOptions{PageNumber: 3, PageSize: 20}.GetOffset())
	assert.Equal(t, MaxPageSize, PageOptions{PageSize: 1000}.GetLimit())
}
