package bindings

import (
	"testing"

	"github.com/entrygate/entrygate/internal/difftest"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want []Binding
	}{
		{"empty env", map[string]string{}, nil},
		{"nil env", nil, nil},
		{
			"plain vars ignored",
			map[string]string{"PATH": "/usr/bin:/bin", "HOME": "/root"},
			nil,
		},
		{
			"dotted key",
			map[string]string{"CONNECTION_URL": "db.connection.url;http://host/path"},
			[]Binding{{Key: "db.connection.url", Value: "http://host/path"}},
		},
		{
			"splits at first separator only",
			map[string]string{"X": "a.b;left;right"},
			[]Binding{{Key: "a.b", Value: "left;right"}},
		},
		{
			"empty value kept",
			map[string]string{"X": "some.key;"},
			[]Binding{{Key: "some.key", Value: ""}},
		},
		{
			"empty key dropped",
			map[string]string{"X": ";value"},
			nil,
		},
		{
			"sorted by key",
			map[string]string{
				"B": "zz.last;2",
				"A": "aa.first;1",
				"C": "mm.middle;3",
			},
			[]Binding{
				{Key: "aa.first", Value: "1"},
				{Key: "mm.middle", Value: "3"},
				{Key: "zz.last", Value: "2"},
			},
		},
		{
			"duplicate key keeps lexically greatest var name",
			map[string]string{
				"Z_URL": "dup.key;from-z",
				"A_URL": "dup.key;from-a",
				"M_URL": "dup.key;from-m",
			},
			[]Binding{{Key: "dup.key", Value: "from-z"}},
		},
		{
			"mixed bindings and plain vars",
			map[string]string{
				"TIMEOUT":  "30",
				"SERVICES": "db:5432 cache:6379",
				"DB_URL":   "db.url;postgres://db:5432/app",
			},
			[]Binding{{Key: "db.url", Value: "postgres://db:5432/app"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			difftest.AssertSame(t, tt.want, Derive(tt.env))
		})
	}
}

func TestFromEnviron(t *testing.T) {
	tests := []struct {
		name    string
		environ []string
		want    map[string]string
	}{
		{"empty", nil, map[string]string{}},
		{"simple", []string{"FOO=bar"}, map[string]string{"FOO": "bar"}},
		{
			"value with equals",
			[]string{"FOO=a=b=c"},
			map[string]string{"FOO": "a=b=c"},
		},
		{"no equals skipped", []string{"GARBAGE"}, map[string]string{}},
		{
			"later entry wins",
			[]string{"FOO=old", "FOO=new"},
			map[string]string{"FOO": "new"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			difftest.AssertSame(t, tt.want, FromEnviron(tt.environ))
		})
	}
}

func TestBinding_Token(t *testing.T) {
	b := Binding{Key: "db.url", Value: "x"}
	if got, want := b.Token(), "${db.url}"; got != want {
		t.Errorf("Token() = %q, want %q", got, want)
	}
}
