package registry

import (
	"errors"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

// Random add/remove/lookup sequences against a plain map model.
func TestProperty_MatchesMapModel(t *testing.T) {
	gt := reflect.TypeFor[greeter]()

	rapid.Check(t, func(t *rapid.T) {
		reg := New()
		model := make(map[string]*englishGreeter)
		keys := []string{"", "hall", "kitchen", "zone2", "zone10"}

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			key := rapid.SampledFrom(keys).Draw(t, "key")

			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				g := &englishGreeter{name: key}
				err := AddAs[greeter](reg, key, g)
				if _, occupied := model[key]; occupied {
					if !errors.Is(err, ErrDuplicateRegistration) {
						t.Fatalf("AddAs(%q) on occupied slot: %v", key, err)
					}
					continue
				}
				if err != nil {
					t.Fatalf("AddAs(%q): %v", key, err)
				}
				model[key] = g
			case 1:
				_, inModel := model[key]
				if got := reg.RemoveKeyed(gt, key); got != inModel {
					t.Fatalf("RemoveKeyed(%q) = %v, model has %v", key, got, inModel)
				}
				delete(model, key)
			default:
				want, inModel := model[key]
				got, err := GetKeyed[greeter](reg, key)
				if !inModel {
					if !errors.Is(err, ErrServiceNotFound) {
						t.Fatalf("GetKeyed(%q) on empty slot: %v", key, err)
					}
					continue
				}
				if err != nil || got != greeter(want) {
					t.Fatalf("GetKeyed(%q) = %v, %v; want %p", key, got, err, want)
				}
			}
		}

		if reg.Len() != len(model) {
			t.Fatalf("Len() = %d, model has %d", reg.Len(), len(model))
		}
	})
}
