// Package bindings derives placeholder bindings from the process environment.
//
// POSIX environment variable names cannot carry the dotted keys that config
// files use, like db.connection.url. The convention is to smuggle the key
// inside the value: any environment entry whose value contains a semicolon is
// treated as a binding, with the text left of the first semicolon as the
// placeholder key and everything right of it as the replacement value.
//
//	CONNECTION_URL=db.connection.url;postgres://db:5432/app
//
// binds ${db.connection.url} to postgres://db:5432/app. Entries without a
// semicolon are ordinary environment variables and are ignored.
package bindings

import (
	"sort"
	"strings"
)

// Separator splits a binding-carrying environment value into key and value.
const Separator = ";"

// Binding replaces every literal ${Key} token with Value.
type Binding struct {
	Key   string
	Value string
}

// Token returns the placeholder token the binding matches, ${key}.
func (b Binding) Token() string {
	return "${" + b.Key + "}"
}

// Derive extracts bindings from env, a map of environment variable names to
// values. Only values containing Separator yield a binding; the value splits
// at the first Separator. Entries with an empty key, like "=foo", are
// dropped.
//
// Each placeholder key yields at most one binding: when several environment
// variables carry the same key, the value from the lexically greatest
// variable name wins. Map iteration order never leaks into the result. The
// bindings are returned sorted by key.
func Derive(env map[string]string) []Binding {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	byKey := make(map[string]string, len(env))
	for _, name := range names {
		key, value, ok := cut(env[name], Separator)
		if !ok || key == "" {
			continue
		}
		byKey[key] = value
	}
	bs := make([]Binding, 0, len(byKey))
	for key, value := range byKey {
		bs = append(bs, Binding{Key: key, Value: value})
	}
	sort.Slice(bs, func(i, j int) bool { return bs[i].Key < bs[j].Key })
	return bs
}

// FromEnviron converts os.Environ style "NAME=value" entries into a map.
// Entries without an equals sign are skipped.
func FromEnviron(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, entry := range environ {
		name, val, ok := cut(entry, "=")
		if !ok {
			continue
		}
		env[name] = val
	}
	return env
}

// cut is strings.Cut, which postdates this module's Go baseline.
func cut(s, sep string) (before, after string, found bool) {
	if i := strings.Index(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}
