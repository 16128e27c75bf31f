package store

import "time"

// endOfTime is the expiry assigned to session cookies. It keeps them sortable
// against persistent cookies while never marking them expired; expiry
// comparisons only apply to persistent entries.
var endOfTime = time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC)

// Entry is a single stored cookie.
type Entry struct {
	Name     string
	Value    string
	Domain   string // lowercase scoping domain, without a leading dot
	HostOnly bool   // no Domain attribute: exact-host matching only
	Path     string
	Secure   bool
	HTTPOnly bool

	Persistent bool
	Expires    time.Time

	Created    time.Time // set at first insertion, preserved across overwrites
	LastAccess time.Time // bumped whenever the entry is selected for a request
}

// id is the identity tuple of an entry; entries with equal ids overwrite each
// other.
type id struct {
	name, domain, path string
}

func (e *Entry) id() id {
	return id{name: e.Name, domain: e.Domain, path: e.Path}
}
