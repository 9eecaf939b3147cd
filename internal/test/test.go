package test

import (
	"reflect"
	"testing"
)

func Equal[K comparable](t *testing.T, want, have K, msg string) {
	t.Helper()

	if want != have {
		t.Fatalf("\n%s\nWant: %v\nHave: %v\n", msg, want, have)
	}
}

// DeepEqual is Equal for slices, maps and structs holding pointers.
func DeepEqual(t *testing.T, want, have any, msg string) {
	t.Helper()

	if !reflect.DeepEqual(want, have) {
		t.Fatalf("\n%s\nWant: %+v\nHave: %+v\n", msg, want, have)
	}
}

func HandleError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatal(err)
	}
}
