package artifact_manager

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestCreateJobTree(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "work"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	tree, err := m.CreateJobTree("job-1")
	if err != nil {
		t.Fatalf("CreateJobTree() error = %v", err)
	}

	info, err := os.Stat(tree.AssetsDir())
	if err != nil || !info.IsDir() {
		t.Fatalf("assets directory missing: %v", err)
	}
	if tree.Root() != GetJobDir(m.BaseDir(), "job-1") {
		t.Errorf("Root() = %q, want %q", tree.Root(), GetJobDir(m.BaseDir(), "job-1"))
	}

	if _, err := m.CreateJobTree("job-1"); err == nil {
		t.Error("CreateJobTree() twice with same ID should fail")
	}
}

func TestCreateJobTree_InvalidID(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	for _, id := range []string{"", ".", "..", "a/b", `a\b`} {
		if _, err := m.CreateJobTree(id); err == nil {
			t.Errorf("CreateJobTree(%q) error = nil, want error", id)
		}
	}
}

func TestJobTree_WritePageAndFiles(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	tree, err := m.CreateJobTree("job-2")
	if err != nil {
		t.Fatalf("CreateJobTree() error = %v", err)
	}

	if _, err := tree.WritePage("index", []byte("first")); err != nil {
		t.Fatalf("WritePage() error = %v", err)
	}
	if _, err := tree.WritePage("index", []byte("second")); err != nil {
		t.Fatalf("WritePage() overwrite error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(tree.AssetsDir(), "abc.css"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(tree.PagePath("index"))
	if string(data) != "second" {
		t.Errorf("page content = %q, want overwritten %q", data, "second")
	}

	files, err := tree.Files()
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	want := []string{"assets/abc.css", "index.html"}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("Files() = %v, want %v", files, want)
	}
}

func TestJobTree_Remove(t *testing.T) {
	m, _ := NewManager(t.TempDir())
	tree, _ := m.CreateJobTree("job-3")

	if err := tree.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if tree.Exists() {
		t.Error("tree still exists after Remove()")
	}
	if err := tree.Remove(); err != nil {
		t.Errorf("second Remove() error = %v, want nil", err)
	}
}
