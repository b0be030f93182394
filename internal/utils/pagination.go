package utils

import (
	"fmt"
	"strings"
)

const defaultPageSize = 50

// Page is one window of a paged entry listing. Number is 1-based.
type Page struct {
	Number int
	Size   int
	Total  int
}

// PageOf clamps number into the pages that total entries fill at size per page.
func PageOf(total, size, number int) Page {
	if size <= 0 {
		size = defaultPageSize
	}
	p := Page{Size: size, Total: max(total, 0)}
	p.Number = min(max(number, 1), p.Count())
	return p
}

// Count is the number of pages. An empty listing still has one.
func (p Page) Count() int {
	return max(1, (p.Total+p.Size-1)/p.Size)
}

// Offset is the number of entries before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Bounds are the 1-based positions of the first and last entry on the page.
func (p Page) Bounds() (first, last int) {
	if p.Total == 0 {
		return 0, 0
	}
	return p.Offset() + 1, min(p.Offset()+p.Size, p.Total)
}

func (p Page) String() string {
	if p.Total == 0 {
		return "no entries"
	}
	first, last := p.Bounds()
	noun := "entries"
	if p.Total == 1 {
		noun = "entry"
	}
	s := fmt.Sprintf("%s %d-%d of %d", noun, first, last, p.Total)
	if n := p.Count(); n > 1 {
		s += fmt.Sprintf(", page %d of %d", p.Number, n)
	}
	return s
}

// Hint names the --page values for the neighbouring pages.
func (p Page) Hint() string {
	var hints []string
	if p.Number > 1 {
		hints = append(hints, fmt.Sprintf("previous: --page %d", p.Number-1))
	}
	if p.Number < p.Count() {
		hints = append(hints, fmt.Sprintf("next: --page %d", p.Number+1))
	}
	return strings.Join(hints, "  ")
}
