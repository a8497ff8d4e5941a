// Package pagination - номер страницы из query-параметра и границы выборки для списков.
package pagination

import (
	"errors"
	"strconv"
	"strings"
)

// MaxPage - верхняя граница номера страницы, дальше смещение не считается
const MaxPage = 1_000_000

// ParsePage: пусто, мусор или < 1 дают 1; слишком большой номер прижимается к MaxPage
func ParsePage(raw string) int {
	page, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && page > 0 {
		return MaxPage
	}
	if err != nil || page < 1 {
		return 1
	}
	if page > MaxPage {
		return MaxPage
	}
	return page
}

// TotalPages не бывает меньше 1, даже для пустого списка
func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// Skip возвращает смещение страницы. ok == false, если страница за концом выборки
// и запрашивать хранилище не нужно.
func Skip(page, pageSize int, total int64) (skip int64, ok bool) {
	if pageSize <= 0 || total <= 0 {
		return 0, false
	}
	if page < 1 {
		page = 1
	}
	pages := (total + int64(pageSize) - 1) / int64(pageSize)
	if int64(page-1) >= pages {
		return 0, false
	}
	return int64(page-1) * int64(pageSize), true
}
