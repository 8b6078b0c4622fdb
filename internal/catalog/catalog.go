// Package catalog defines the fixed set of remote resource collections.
package catalog

import "strings"

// Resource maps a logical collection name to its remote path segment.
type Resource struct {
	Name string
	Path string
}

// The six collections exposed by the remote API. The set is fixed for the
// process lifetime; there is no registration mechanism.
var (
	Posts    = Resource{Name: "Posts", Path: "posts"}
	Comments = Resource{Name: "Comments", Path: "comments"}
	Albums   = Resource{Name: "Albums", Path: "albums"}
	Photos   = Resource{Name: "Photos", Path: "photos"}
	Todos    = Resource{Name: "Todos", Path: "todos"}
	Users    = Resource{Name: "Users", Path: "users"}
)

var all = []Resource{Posts, Comments, Albums, Photos, Todos, Users}

// All returns the resources in display order. The returned slice is a copy.
func All() []Resource {
	out := make([]Resource, len(all))
	copy(out, all)
	return out
}

// Lookup finds a resource by logical name, case-insensitively.
func Lookup(name string) (Resource, bool) {
	for _, r := range all {
		if strings.EqualFold(r.Name, name) {
			return r, true
		}
	}
	return Resource{}, false
}

// Names returns the logical names in display order.
func Names() []string {
	names := make([]string, len(all))
	for i, r := range all {
		names[i] = r.Name
	}
	return names
}

// SupportsOwnerFilter reports whether the collection can be filtered by the
// owning user id. Only Posts defines the owner filter.
func (r Resource) SupportsOwnerFilter() bool {
	return r.Name == Posts.Name
}

// ExportFilename returns the conventional CSV export filename.
func (r Resource) ExportFilename() string {
	return strings.ToLower(r.Name) + "_data.csv"
}

// Singular returns the singular form of the resource name, used in prompts.
func (r Resource) Singular() string {
	return strings.ToLower(strings.TrimSuffix(r.Name, "s"))
}
