package storage

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/lib/pq"
)

func pgCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return pgCode(err) == pgerrcode.UniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == pgerrcode.ForeignKeyViolation
}

func isCheckViolation(err error) bool {
	return pgCode(err) == pgerrcode.CheckViolation
}
