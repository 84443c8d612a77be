package catalog

import "strings"

const uriPrefix = "catalog://"

// URI returns the resource URI of an entry, e.g. catalog://dataset/german
func URI(category Category, id string) string {
	return uriPrefix + string(category) + "/" + strings.TrimSpace(id)
}

func ParseURI(uri string) (category Category, id string, ok bool) {
	uri = strings.TrimSpace(uri)
	if !strings.HasPrefix(uri, uriPrefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, uriPrefix)
	cat, id, found := strings.Cut(rest, "/")
	if !found || cat == "" || strings.TrimSpace(id) == "" {
		return "", "", false
	}
	return Category(cat), strings.TrimSpace(id), true
}
