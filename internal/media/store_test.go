package media

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	url, err := store.Save(context.Background(), []byte("png-bytes"), "image/png")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("url = %q; want /uploads/<name>.png", url)
	}

	name := filepath.Base(url)
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("stored %q; want png-bytes", data)
	}

	if err := store.Remove(context.Background(), url); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
		t.Fatal("file still exists after Remove")
	}

	// Removing twice, or removing a foreign URL, is a no-op.
	if err := store.Remove(context.Background(), url); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if err := store.Remove(context.Background(), "https://elsewhere/img.png"); err != nil {
		t.Fatalf("foreign Remove: %v", err)
	}
}

func TestSaveEmptyBlob(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	if _, err := store.Save(context.Background(), nil, "image/png"); err != ErrEmptyBlob {
		t.Fatalf("err = %v; want ErrEmptyBlob", err)
	}
}

func TestDecodeDataURI(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("hello"))

	data, contentType, err := DecodeDataURI("data:image/jpeg;base64," + payload)
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if string(data) != "hello" || contentType != "image/jpeg" {
		t.Fatalf("got %q %q; want hello image/jpeg", data, contentType)
	}

	for _, bad := range []string{
		"nonsense",
		"data:image/png,not-base64-marker",
		"data:image/png;base64,@@@",
	} {
		if _, _, err := DecodeDataURI(bad); err == nil {
			t.Fatalf("DecodeDataURI(%q) succeeded; want error", bad)
		}
	}
}
