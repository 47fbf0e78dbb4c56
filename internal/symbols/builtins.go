package symbols

// Builtin describes one predeclared function.
type Builtin struct {
	Name   string
	Params []string
	Doc    string
}

// Builtins returns the predeclared drift functions in deterministic order.
func Builtins() []Builtin {
	return []Builtin{
		{Name: "clock", Params: nil, Doc: "seconds since process start"},
		{Name: "len", Params: []string{"value"}, Doc: "length of a string or array"},
		{Name: "num", Params: []string{"value"}, Doc: "convert a value to a number"},
		{Name: "print", Params: []string{"value"}, Doc: "write a value to stdout"},
		{Name: "println", Params: []string{"value"}, Doc: "write a value and a newline to stdout"},
		{Name: "push", Params: []string{"list", "value"}, Doc: "append a value to an array"},
		{Name: "range", Params: []string{"n"}, Doc: "array of integers 0..n-1"},
		{Name: "str", Params: []string{"value"}, Doc: "convert a value to a string"},
	}
}

// BuiltinDoc returns the doc string for a builtin name, or "".
func BuiltinDoc(name string) string {
	for _, b := range Builtins() {
		if b.Name == name {
			return b.Doc
		}
	}
	return ""
}
