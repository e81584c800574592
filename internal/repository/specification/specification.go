package specification

import "gorm.io/gorm"

// Specification narrows a query. The in-memory backend switches on the
// concrete type instead of calling Apply, so it rejects types it does not
// know.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
