package vfs

import "testing"

func TestMkdirCreatesNestedDirectories(t *testing.T) {
	sb := NewSuperBlock(512)

	if _, err := sb.Mkdir("/boot/sub"); err != nil {
		t.Fatalf("unexpected error creating nested directories: %v", err)
	}

	node, err := sb.Lookup("/boot/sub")
	if err != nil {
		t.Fatalf("unexpected error looking up the created directory: %v", err)
	}
	if node.Kind != NodeDir {
		t.Fatalf("expected a directory node")
	}
}

func TestMkdirRejectsDuplicatePath(t *testing.T) {
	sb := NewSuperBlock(512)

	if _, err := sb.Mkdir("/boot"); err != nil {
		t.Fatalf("unexpected error on first Mkdir: %v", err)
	}
	if _, err := sb.Mkdir("/boot"); err == nil {
		t.Fatalf("expected an error creating the same directory twice")
	}
}

func TestCreateThenLookupThenList(t *testing.T) {
	sb := NewSuperBlock(512)

	if _, err := sb.Mkdir("/data"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := sb.Create("/data/a.txt", nil); err != nil {
		t.Fatalf("unexpected error creating a file: %v", err)
	}
	if _, err := sb.Create("/data/b.txt", nil); err != nil {
		t.Fatalf("unexpected error creating a second file: %v", err)
	}

	dir, err := sb.Lookup("/data")
	if err != nil {
		t.Fatalf("unexpected error looking up /data: %v", err)
	}

	names, err := sb.List(dir)
	if err != nil {
		t.Fatalf("unexpected error listing /data: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 entries under /data, got %d: %v", len(names), names)
	}
}

func TestCreateRejectsMissingParent(t *testing.T) {
	sb := NewSuperBlock(512)

	if _, err := sb.Create("/missing/file.txt", nil); err == nil {
		t.Fatalf("expected an error creating a file under a nonexistent directory")
	}
}

func TestFileReadWriteRoundTrip(t *testing.T) {
	sb := NewSuperBlock(512)

	f, err := sb.Create("/hello.txt", nil)
	if err != nil {
		t.Fatalf("unexpected error creating file: %v", err)
	}

	payload := []byte("hello, petos")
	if _, err := f.Write(0, payload); err != nil {
		t.Fatalf("unexpected error writing: %v", err)
	}

	buf := make([]byte, len(payload))
	n, err := f.Read(0, buf)
	if err != nil {
		t.Fatalf("unexpected error reading: %v", err)
	}
	if string(buf[:n]) != string(payload) {
		t.Fatalf("expected to read back %q, got %q", payload, buf[:n])
	}
}
