package difftest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// AssertSame fails the test with a diff if want and got differ. Nil and
// zero-sized slices compare equal.
func AssertSame(t *testing.T, want, got interface{}, opts ...cmp.Option) {
	t.Helper()
	allOpts := append([]cmp.Option{cmpopts.EquateEmpty()}, opts...)
	if diff := cmp.Diff(want, got, allOpts...); diff != "" {
		t.Errorf("mismatch (-want +got)\n%s", diff)
	}
}
