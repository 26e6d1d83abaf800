package tags

import (
	"testing"

	"github.com/fitkit/fitkit/pkg/errors"
)

type taggedStub struct {
	tags Set
}

func (s taggedStub) Tags() Set { return s.tags }

func TestDefaultsCoverDocumentedSet(t *testing.T) {
	defaults := Defaults()

	for _, name := range []string{
		NonDeterministic, RequiresPositiveX, RequiresPositiveY, XTypes,
		PoorScore, NoValidation, MultiOutput, AllowNaN, Stateless,
		MultiLabel, SkipTest, MultiOutputOnly, BinaryOnly, RequiresFit,
	} {
		if _, ok := defaults[name]; !ok {
			t.Errorf("default set is missing %q", name)
		}
	}
	if !defaults.Bool(RequiresFit) {
		t.Error("requires_fit should default to true")
	}
	if defaults.Bool(NonDeterministic) {
		t.Error("non_deterministic should default to false")
	}
}

func TestForWithoutOverrides(t *testing.T) {
	effective, err := For(struct{}{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(effective) != len(Defaults()) {
		t.Errorf("untagged estimators get the plain defaults, got %d entries", len(effective))
	}
}

func TestForMergesOverrides(t *testing.T) {
	effective, err := For(taggedStub{tags: Set{BinaryOnly: true, AllowNaN: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !effective.Bool(BinaryOnly) || !effective.Bool(AllowNaN) {
		t.Error("overrides should win on key collision")
	}
	if effective.Bool(NoValidation) {
		t.Error("untouched defaults should survive the merge")
	}
}

func TestForRejectsUnknownTag(t *testing.T) {
	_, err := For(taggedStub{tags: Set{"supports_telepathy": true}})

	var unknown *errors.UnknownTagError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownTagError, got %v", err)
	}
	if unknown.Tag != "supports_telepathy" {
		t.Errorf("unexpected tag: %q", unknown.Tag)
	}
}

func TestForReturnsFreshMap(t *testing.T) {
	stub := taggedStub{tags: Set{BinaryOnly: true}}
	first, _ := For(stub)
	first[PoorScore] = true

	second, _ := For(stub)
	if second.Bool(PoorScore) {
		t.Error("mutating one result should not leak into the next")
	}
}

func TestBool(t *testing.T) {
	s := Set{BinaryOnly: true, XTypes: []string{"2darray"}}

	if !s.Bool(BinaryOnly) {
		t.Error("Bool should read a true boolean")
	}
	if s.Bool(XTypes) {
		t.Error("Bool should return false for non-boolean values")
	}
	if s.Bool("absent") {
		t.Error("Bool should return false for absent keys")
	}
}
