// Package materialize rewrites ${key} placeholder tokens in files under a
// root directory using derived bindings.
package materialize

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar"
	"github.com/entrygate/entrygate/internal/bindings"
)

// Apply replaces every literal ${key} occurrence with the binding's value in
// every regular file under root, in place. Replacement is a byte-level
// substitution pass: values are inserted verbatim with no escaping and no
// recursive expansion, binary files are safe to scan, and files containing no
// placeholder are left untouched. Unmatched ${...} tokens stay as-is.
//
// excludes are doublestar glob patterns matched against each file's
// slash-separated path relative to root; matching files are skipped. Symlinks
// are not followed, so the walk never leaves root.
//
// Apply is not atomic across the file set: on an I/O error it stops
// immediately and files already rewritten stay rewritten.
func Apply(root string, bs []bindings.Binding, excludes []string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("stat root dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}
	if len(bs) == 0 {
		return nil
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relativize %s: %w", path, err)
		}
		skip, err := matchesAny(excludes, filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if skip {
			return nil
		}
		return applyFile(path, bs)
	})
}

// applyFile rewrites one file. The file is only written back if at least one
// token matched, preserving mtimes and avoiding churn on binary files.
func applyFile(path string, bs []bindings.Binding) error {
	orig, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file %s: %w", path, err)
	}
	out := orig
	for _, b := range bs {
		out = bytes.ReplaceAll(out, []byte(b.Token()), []byte(b.Value))
	}
	if bytes.Equal(out, orig) {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat file %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write file %s: %w", path, err)
	}
	return nil
}

func matchesAny(patterns []string, rel string) (bool, error) {
	for _, pat := range patterns {
		ok, err := doublestar.Match(pat, rel)
		if err != nil {
			return false, fmt.Errorf("bad exclude pattern %q: %w", pat, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
