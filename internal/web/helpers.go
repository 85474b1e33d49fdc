package web

import (
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

func itoa(value int) string {
	return strconv.Itoa(value)
}

func pageURL(base string, page, perPage int) string {
	if strings.Contains(base, "?") {
		return base + "&page=" + itoa(page) + "&per_page=" + itoa(perPage)
	}
	return base + "?page=" + itoa(page) + "&per_page=" + itoa(perPage)
}

func esc(value string) string {
	return templ.EscapeString(value)
}

func slotsLabel(open int) string {
	switch open {
	case 0:
		return "full"
	case 1:
		return "1 spot left"
	default:
		return itoa(open) + " spots left"
	}
}
