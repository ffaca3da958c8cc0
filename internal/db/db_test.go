package db

import "testing"

func TestOpenMemory(t *testing.T) {
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer d.Close()

	// Schema must be in place.
	var n int
	if err := d.QueryRow("SELECT COUNT(*) FROM escalations").Scan(&n); err != nil {
		t.Fatalf("querying escalations table: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty table, got %d rows", n)
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	d, err := Open(dir + "/nested/supportbot.db")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()
}
