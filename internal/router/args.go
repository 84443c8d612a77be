package router

// Args holds validated tool arguments as decoded from JSON
type Args map[string]any

// Has reports whether name was supplied or defaulted
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

func (a Args) String(name string) string {
	s, _ := a[name].(string)
	return s
}

func (a Args) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

func (a Args) Int(name string) int {
	switch v := a[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

// Object returns a nested object argument (nil when absent)
func (a Args) Object(name string) Args {
	m, _ := a[name].(map[string]any)
	return Args(m)
}
