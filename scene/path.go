package scene

import "strings"

// GeomPath returns "/" followed by the names of obj's ancestors, topmost first,
// and obj's own name, joined by "/". A parent cycle ends the walk at the first
// object seen twice.
func GeomPath(r Reader, obj *Object) string {
	if obj == nil {
		return "/"
	}
	names := []string{obj.Name}
	seen := map[*Object]struct{}{obj: {}}
	for p := r.Parent(obj); p != nil; p = r.Parent(p) {
		if _, loop := seen[p]; loop {
			break
		}
		seen[p] = struct{}{}
		names = append(names, p.Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/")
}
