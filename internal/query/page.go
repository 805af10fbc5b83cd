package query

import (
	"github.com/samber/lo"

	"github.com/Skotchmaster/sweet_shop/internal/util"
)

type Page struct {
	Number int
	Size   int
}

func NewPage(number, size int) Page {
	number, size = util.Normalize(number, size)
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	offset, _ := util.Calculate(p.Number, p.Size)
	return offset
}

type Result[T any] struct {
	Items       []T   `json:"items"`
	TotalCount  int64 `json:"total_count"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

func NewResult[T any](items []T, total int64, p Page) Result[T] {
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:       items,
		TotalCount:  total,
		TotalPages:  util.TotalPages(total, p.Size),
		CurrentPage: p.Number,
		PageSize:    p.Size,
	}
}

func MapResult[T, U any](r Result[T], f func(T) U) Result[U] {
	return Result[U]{
		Items:       lo.Map(r.Items, func(item T, _ int) U { return f(item) }),
		TotalCount:  r.TotalCount,
		TotalPages:  r.TotalPages,
		CurrentPage: r.CurrentPage,
		PageSize:    r.PageSize,
	}
}
