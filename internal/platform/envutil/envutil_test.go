package envutil

import (
	"reflect"
	"testing"
)

func TestIntFallsBackOnGarbage(t *testing.T) {
	t.Setenv("MUNDOTEA_TEST_INT", "abc")
	if got := Int("MUNDOTEA_TEST_INT", 7, nil); got != 7 {
		t.Fatalf("want 7, got %d", got)
	}
	t.Setenv("MUNDOTEA_TEST_INT", " 3 ")
	if got := Int("MUNDOTEA_TEST_INT", 7, nil); got != 3 {
		t.Fatalf("want 3, got %d", got)
	}
}

func TestList(t *testing.T) {
	t.Setenv("MUNDOTEA_TEST_LIST", "http://a, ,http://b,")
	got := List("MUNDOTEA_TEST_LIST", nil)
	want := []string{"http://a", "http://b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	t.Setenv("MUNDOTEA_TEST_LIST", "")
	if got := List("MUNDOTEA_TEST_LIST", []string{"x"}); len(got) != 1 || got[0] != "x" {
		t.Fatalf("expected default, got %v", got)
	}
}

func TestBool(t *testing.T) {
	t.Setenv("MUNDOTEA_TEST_BOOL", "on")
	if !Bool("MUNDOTEA_TEST_BOOL", false) {
		t.Fatalf("expected true")
	}
	t.Setenv("MUNDOTEA_TEST_BOOL", "nope")
	if Bool("MUNDOTEA_TEST_BOOL", false) {
		t.Fatalf("expected default false")
	}
}
