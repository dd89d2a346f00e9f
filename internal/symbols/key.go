package symbols

import "strings"

// Key is a lookup key. Variables, classes, enums and template parameters
// use their plain identifier; functions and methods use a signature key:
// the name followed by the parameter signature codes, "area(C<Shape>,i)".
type Key string

func NameKey(name string) Key { return Key(name) }

func SigKey(name string, codes []string) Key {
	return Key(name + "(" + strings.Join(codes, ",") + ")")
}

// Name returns the identifier part of the key.
func (k Key) Name() string {
	s := string(k)
	if i := strings.IndexByte(s, '('); i >= 0 {
		return s[:i]
	}
	return s
}

// IsSignature reports whether the key belongs to a function or method.
func (k Key) IsSignature() bool {
	return strings.IndexByte(string(k), '(') >= 0
}

func (k Key) String() string { return string(k) }
