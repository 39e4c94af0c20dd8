package util

import (
	"errors"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrBadPage = errors.New("page and size must be positive integers")

// Page is a window over a listing. The zero value selects everything.
type Page struct {
	Offset int
	Limit  int
}

func (p Page) All() bool {
	return p.Limit == 0
}

func Calculate(page, size int) Page {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Offset: (page - 1) * size, Limit: size}
}

// ParsePage reads the page and size query values. Paging only applies when
// at least one of them is present.
func ParsePage(page, size string) (Page, error) {
	if page == "" && size == "" {
		return Page{}, nil
	}
	p, err := atoiDefault(page, 1)
	if err != nil {
		return Page{}, err
	}
	s, err := atoiDefault(size, DefaultPageSize)
	if err != nil {
		return Page{}, err
	}
	return Calculate(p, s), nil
}

func atoiDefault(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, ErrBadPage
	}
	return v, nil
}
