package checksum

import "testing"

func TestSum(t *testing.T) {
	got := Sum([]byte("memos"))
	if len(got) != 64 {
		t.Fatalf("len = %d, want 64", len(got))
	}
	if got != Sum([]byte("memos")) {
		t.Fatal("Sum is not deterministic")
	}
	if got == Sum([]byte("memo")) {
		t.Fatal("different input produced the same sum")
	}
}

func TestETag(t *testing.T) {
	data := []byte(`{"notes":[]}`)
	want := `"` + Sum(data) + `"`
	if got := ETag(data); got != want {
		t.Fatalf("ETag = %s, want %s", got, want)
	}
}
