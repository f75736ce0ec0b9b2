package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Key builds an object key scoped to a company, e.g.
// "companies/3/employees/12/documents/<uuid>.pdf".
func Key(companyID uint, parts ...string) string {
	segs := append([]string{"companies", fmt.Sprint(companyID)}, parts...)
	return path.Join(segs...)
}

// UniqueName keeps the extension of filename and replaces the rest.
func UniqueName(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return uuid.NewString() + ext
}
