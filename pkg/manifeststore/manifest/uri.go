package manifest

import "strings"

// URI builds the public address of a manifest:
// <scheme>://<host><route>/<id>.
func URI(scheme, host, route, id string) string {
	var b strings.Builder
	b.Grow(len(scheme) + len(host) + len(route) + len(id) + 4)
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(host)
	b.WriteString(route)
	b.WriteByte('/')
	b.WriteString(id)
	return b.String()
}

// NormalizeRoute returns route with a single leading slash and no trailing
// slash. The root route normalizes to "".
func NormalizeRoute(route string) string {
	route = strings.Trim(strings.TrimSpace(route), "/")
	if route == "" {
		return ""
	}
	return "/" + route
}
