package naming

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/mappificator/descriptor"
)

// Marker ends every generated name, so that it cannot shadow a field or
// local variable written by hand.
const Marker = "_"

// JavaKeywords is the default set of reserved words.
var JavaKeywords = wordSet(
	"abstract", "assert", "boolean", "break", "byte", "case", "catch", "char",
	"class", "const", "continue", "default", "do", "double", "else", "enum",
	"extends", "final", "finally", "float", "for", "goto", "if", "implements",
	"import", "instanceof", "int", "interface", "long", "native", "new",
	"package", "private", "protected", "public", "return", "short", "static",
	"strictfp", "super", "switch", "synchronized", "this", "throw", "throws",
	"transient", "try", "void", "volatile", "while", "true", "false", "null",
)

func wordSet(words ...string) map[string]bool {
	out := make(map[string]bool, len(words))
	for _, w := range words {
		out[w] = true
	}
	return out
}

// GenerateName derives a parameter name from a field descriptor:
// Ljava/util/List; becomes list_, [[I becomes intArrayArray_ and
// Lnet/Foo$1$Bar; becomes bar_.
func GenerateName(desc string) (string, error) {
	name, arrays, err := descriptor.DescriptorToType(desc)
	if err != nil {
		return "", err
	}
	name = simpleName(name)
	name = strings.TrimLeft(name, "0123456789")
	if name == "" {
		name = "param"
	}
	name += strings.Repeat("Array", arrays)
	return lowerFirst(name) + Marker, nil
}

// simpleName strips the package path and inner class qualifiers, keeping
// the last $ segment that is not purely numeric.
func simpleName(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	segments := strings.Split(name, "$")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" && !isNumeric(segments[i]) {
			return segments[i]
		}
	}
	return segments[0]
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 64)
	return err == nil
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// SimpleClassNames returns the lower-cased simple names of top level
// classes. A parameter sharing one of these names would read like a local
// variable of that type.
func SimpleClassNames(classes []string) map[string]bool {
	out := make(map[string]bool, len(classes))
	for _, c := range classes {
		if i := strings.LastIndexByte(c, '/'); i >= 0 {
			c = c[i+1:]
		}
		if strings.Contains(c, "$") {
			continue
		}
		out[strings.ToLower(c)] = true
	}
	return out
}

// resolveConflict suffixes name with the smallest positive integer that
// makes it absent from reserved. A trailing marker is kept after the digits
// and digits already present are replaced.
func resolveConflict(name string, reserved map[string]bool) string {
	if !reserved[name] {
		return name
	}
	proto, auto := strings.CutSuffix(name, Marker)
	proto = strings.TrimRight(proto, "0123456789")
	suffix := ""
	if auto {
		suffix = Marker
	}
	for count := 1; ; count++ {
		candidate := proto + strconv.Itoa(count) + suffix
		if !reserved[candidate] {
			return candidate
		}
	}
}
