package persistence

import (
	"errors"
	"strings"

	"github.com/destocard/backend/internal/domain/shared"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
)

// ValidateSortOrder normalizes the sort order to ASC or DESC (default).
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField returns sortField when whitelisted, else defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"price":      true,
	"stock":      true,
}

// CardSortFields contains allowed sort fields for cards
var CardSortFields = map[string]bool{
	"name":       true,
	"number":     true,
	"created_at": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"created_at": true,
	"total":      true,
	"status":     true,
}

// paginate applies a whitelisted ORDER BY and LIMIT/OFFSET from filter
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField, defaultDir string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	dir := defaultDir
	if filter.OrderDir != "" {
		dir = ValidateSortOrder(filter.OrderDir)
	}
	return query.
		Order(field + " " + dir).
		Limit(filter.Limit()).
		Offset(filter.Offset())
}

// mapWriteError turns a unique violation into ErrAlreadyExists
func mapWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

// likeClause is a portable case-insensitive match on column
func likeClause(column string) string {
	return "LOWER(" + column + ") LIKE ? ESCAPE '\\'"
}

// likePattern builds a case-insensitive LIKE pattern from user input. The
// input is NFC-normalized so that composed and decomposed accents match.
func likePattern(search string) string {
	s := strings.ToLower(norm.NFC.String(strings.TrimSpace(search)))
	s = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
	return "%" + s + "%"
}
