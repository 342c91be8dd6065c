package parser

// Inspect traverses items depth-first, descending into module and extern
// block bodies. If fn returns false the children of that item are skipped.
func Inspect(items []Item, fn func(Item) bool) {
	for _, item := range items {
		if !fn(item) {
			continue
		}
		switch it := item.(type) {
		case *ItemMod:
			Inspect(it.Items, fn)
		case *ItemForeignMod:
			Inspect(it.Items, fn)
		}
	}
}

// FindAttribute returns the first attribute whose path matches one of
// names, compared without generic arguments (e.g. "cxx_qt::qobject").
func FindAttribute(attrs []*Attribute, names ...string) *Attribute {
	for _, attr := range attrs {
		plain := attr.Path.Plain()
		for _, name := range names {
			if plain == name {
				return attr
			}
		}
	}
	return nil
}
