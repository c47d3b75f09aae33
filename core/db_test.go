package core

import "testing"

func Test_DBOrdering_String(t *testing.T) {
	if got := (DBOrdering{Field: "created_at", Ascending: true}).String(); got != "created_at ASC" {
		t.Errorf("String() = %q; want created_at ASC", got)
	}
	if got := (DBOrdering{Field: "created_at"}).String(); got != "created_at DESC" {
		t.Errorf("String() = %q; want created_at DESC", got)
	}
}
