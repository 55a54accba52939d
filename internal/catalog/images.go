package catalog

// imageKeys: kolejność pól obiektu obrazka; bierzemy tylko pierwsze niepuste.
var imageKeys = []string{"src", "thumbnail", "url", "full", "original", "full_src"}

// CollectImageURLs przechodzi string / listę / obiekt i zwraca adresy
// w kolejności wystąpienia.
func CollectImageURLs(v Value) []string {
	return collectImageURLs(v, nil)
}

func collectImageURLs(v Value, out []string) []string {
	switch v.Kind() {
	case Scalar:
		if s, ok := v.Raw().(string); ok && hasText(s) {
			out = append(out, v.trimmed())
		}
	case Sequence:
		for _, item := range v.Items() {
			out = collectImageURLs(item, out)
		}
	case Object:
		for _, key := range imageKeys {
			if field := v.Get(key); HasContent(field) {
				out = append(out, field.trimmed())
				break
			}
		}
	}
	return out
}

// ResolveImageURLs: CollectImageURLs + rozwiązanie względem sklepu,
// bez pustych i bez duplikatów.
func ResolveImageURLs(v Value, siteRoot string) []string {
	return resolveAll(CollectImageURLs(v), siteRoot)
}

func resolveAll(candidates []string, siteRoot string) []string {
	out := make([]string, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		abs := ResolveURL(c, siteRoot)
		if abs == "" {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	}
	return out
}
