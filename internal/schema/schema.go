// Package schema generates the admin configuration form from the typed
// workflow configuration and applies submitted values back to it.
//
// Fields are declared with struct tags: `json` names the field and `kind`
// selects how it is edited.
package schema

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// Kind is the editing kind of a configuration field
type Kind string

const (
	KindText        Kind = "text"
	KindStyle       Kind = "style"
	KindAsset       Kind = "asset"
	KindLeaderboard Kind = "leaderboard"
	KindGroup       Kind = "group"
)

// ReadOnly reports whether values of this kind are maintained by the system
func (k Kind) ReadOnly() bool {
	return k == KindLeaderboard || k == KindGroup
}

var (
	ErrUnknownField = errors.New("unknown configuration field")
	ErrReadOnly     = errors.New("configuration field is read-only")
	ErrInvalidValue = errors.New("invalid configuration value")
)

const maxTextLength = 1000

// Field is one node of the generated form
type Field struct {
	Path     string      `json:"path"`
	Label    string      `json:"label"`
	Kind     Kind        `json:"kind"`
	ReadOnly bool        `json:"readOnly,omitempty"`
	Value    interface{} `json:"value,omitempty"`
	Children []Field     `json:"children,omitempty"`
}

// Describe walks a tagged struct (or pointer to one) and returns its form
func Describe(v interface{}) []Field {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return describe(rv, "")
}

func describe(rv reflect.Value, prefix string) []Field {
	var fields []Field
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name, kind, ok := tags(sf)
		if !ok {
			continue
		}
		path := join(prefix, name)
		f := Field{Path: path, Label: Label(name), Kind: kind, ReadOnly: kind.ReadOnly()}
		fv := rv.Field(i)
		switch kind {
		case KindGroup:
			if fv.Kind() == reflect.Struct {
				f.Children = describe(fv, path)
			}
		default:
			f.Value = fv.Interface()
		}
		fields = append(fields, f)
	}
	return fields
}

// Apply validates values keyed by dotted path and writes them into the
// struct pointed to by v. Nothing is written if any value is rejected.
func Apply(v interface{}, values map[string]string) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("schema: Apply needs a pointer to a struct, got %T", v)
	}

	index := make(map[string]leaf)
	collect(rv.Elem(), "", index)

	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		l, ok := index[p]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, p)
		}
		if l.kind.ReadOnly() {
			return fmt.Errorf("%w: %s", ErrReadOnly, p)
		}
		if err := Validate(l.kind, values[p]); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	for _, p := range paths {
		index[p].value.SetString(values[p])
	}
	return nil
}

type leaf struct {
	kind  Kind
	value reflect.Value
}

func collect(rv reflect.Value, prefix string, index map[string]leaf) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		name, kind, ok := tags(rt.Field(i))
		if !ok {
			continue
		}
		path := join(prefix, name)
		fv := rv.Field(i)
		if kind == KindGroup {
			index[path] = leaf{kind: kind}
			if fv.Kind() == reflect.Struct {
				collect(fv, path, index)
			}
			continue
		}
		if fv.Kind() != reflect.String && !kind.ReadOnly() {
			continue
		}
		index[path] = leaf{kind: kind, value: fv}
	}
}

var styleToken = regexp.MustCompile(`^[A-Za-z0-9_:#/.%\-\[\]()!,]+$`)

// Validate checks a single value against its kind
func Validate(kind Kind, value string) error {
	switch kind {
	case KindText:
		if len(value) > maxTextLength {
			return fmt.Errorf("%w: text longer than %d characters", ErrInvalidValue, maxTextLength)
		}
		for _, r := range value {
			if unicode.IsControl(r) && r != '\n' {
				return fmt.Errorf("%w: control character in text", ErrInvalidValue)
			}
		}
	case KindStyle:
		for _, tok := range strings.Fields(value) {
			if !styleToken.MatchString(tok) {
				return fmt.Errorf("%w: %q is not a style class", ErrInvalidValue, tok)
			}
		}
	case KindAsset:
		if value == "" || (strings.HasPrefix(value, "/") && !strings.HasPrefix(value, "//")) {
			return nil
		}
		u, err := url.Parse(value)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q is not an absolute URL or rooted path", ErrInvalidValue, value)
		}
	case KindLeaderboard, KindGroup:
		return ErrReadOnly
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidValue, kind)
	}
	return nil
}

// Label turns a camelCase field name into a form label
func Label(name string) string {
	rs := []rune(name)
	var b strings.Builder
	for i, r := range rs {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			prevLower := !unicode.IsUpper(rs[i-1])
			acronymEnd := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if prevLower || acronymEnd {
				b.WriteByte(' ')
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

func tags(sf reflect.StructField) (string, Kind, bool) {
	if !sf.IsExported() {
		return "", "", false
	}
	kind := Kind(sf.Tag.Get("kind"))
	if kind == "" {
		return "", "", false
	}
	name := strings.Split(sf.Tag.Get("json"), ",")[0]
	if name == "" || name == "-" {
		name = sf.Name
	}
	return name, kind, true
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
