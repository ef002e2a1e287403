package app

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
)

type mockFS struct {
	entries map[string]mockEntry
	glob    []string
	exists  map[string]bool

	globCalls []globCall
	mkdirs    []string
	copies    map[string]string
	writes    map[string]string
	stamped   map[string]string
	copyErr   map[string]error
	writeErr  error
	accessErr map[string]error
}

type globCall struct {
	root      string
	suffix    string
	recursive bool
}

type mockEntry struct {
	isDir   bool
	size    int64
	modTime time.Time
}

func newMockFS() *mockFS {
	return &mockFS{
		entries:   map[string]mockEntry{},
		exists:    map[string]bool{},
		copies:    map[string]string{},
		writes:    map[string]string{},
		stamped:   map[string]string{},
		copyErr:   map[string]error{},
		accessErr: map[string]error{},
	}
}

func (m *mockFS) addFile(path string, size int64) {
	m.entries[path] = mockEntry{size: size, modTime: time.Date(2024, 10, 2, 15, 1, 0, 0, time.Local)}
	m.glob = append(m.glob, path)
}

func (m *mockFS) addDir(path string, listed bool) {
	m.entries[path] = mockEntry{isDir: true}
	if listed {
		m.glob = append(m.glob, path)
	}
}

func (m *mockFS) Glob(root, suffix string, recursive bool) ([]string, error) {
	m.globCalls = append(m.globCalls, globCall{root, suffix, recursive})
	return append([]string(nil), m.glob...), nil
}

func (m *mockFS) Stat(path string) (fs.FileInfo, error) {
	entry, ok := m.entries[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return mockFileInfo{name: filepath.Base(path), entry: entry}, nil
}

func (m *mockFS) Exists(path string) (bool, error) {
	return m.exists[path], nil
}

func (m *mockFS) MkdirAll(path string, perm fs.FileMode) error {
	m.mkdirs = append(m.mkdirs, path)
	return nil
}

func (m *mockFS) Times(path string) (domain.FileTimes, error) {
	entry, ok := m.entries[path]
	if !ok {
		return domain.FileTimes{}, fs.ErrNotExist
	}
	return domain.FileTimes{Access: entry.modTime, Modify: entry.modTime, Change: entry.modTime}, nil
}

func (m *mockFS) Access(path string) (domain.AccessFlags, error) {
	if err := m.accessErr[path]; err != nil {
		return domain.AccessFlags{}, err
	}
	return domain.AccessFlags{Read: true, Write: true}, nil
}

func (m *mockFS) CopyFile(src, dst string) error {
	if err := m.copyErr[src]; err != nil {
		return err
	}
	m.copies[src] = dst
	return nil
}

func (m *mockFS) CopyStat(src, dst string) error {
	m.stamped[dst] = src
	return nil
}

func (m *mockFS) WriteFileAtomic(path string, data []byte, perm fs.FileMode) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.writes[path] = string(data)
	return nil
}

type mockFileInfo struct {
	name  string
	entry mockEntry
}

func (m mockFileInfo) Name() string       { return m.name }
func (m mockFileInfo) Size() int64        { return m.entry.size }
func (m mockFileInfo) ModTime() time.Time { return m.entry.modTime }
func (m mockFileInfo) IsDir() bool        { return m.entry.isDir }
func (m mockFileInfo) Sys() interface{}   { return nil }
func (m mockFileInfo) Mode() fs.FileMode {
	if m.entry.isDir {
		return fs.ModeDir | 0o755
	}
	return 0o644
}

func TestPlannerMapsTargetsAndSkipsDirectories(t *testing.T) {
	src := filepath.FromSlash("/a/b")
	dst := filepath.FromSlash("/c/d")
	mock := newMockFS()
	mock.addDir(src, false)
	mock.addDir(filepath.Join(src, "x"), true)
	mock.addFile(filepath.Join(src, "x", "y.txt"), 10)
	mock.addFile(filepath.Join(src, "a.txt"), 5)

	planner := Planner{FS: mock}
	plan, err := planner.Plan(context.Background(), Request{SourceDir: src, TargetDir: dst, Extension: ".txt", Recursive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(mock.globCalls) != 1 || mock.globCalls[0] != (globCall{src, ".txt", true}) {
		t.Fatalf("unexpected glob calls: %+v", mock.globCalls)
	}
	if plan.Skipped != 1 {
		t.Fatalf("expected the directory to be skipped, got %d", plan.Skipped)
	}
	if len(plan.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(plan.Items))
	}
	// Items come out sorted by source path.
	if plan.Items[0].TargetPath != filepath.FromSlash("/c/d/a.txt") {
		t.Fatalf("unexpected first target %q", plan.Items[0].TargetPath)
	}
	if plan.Items[1].TargetPath != filepath.FromSlash("/c/d/x/y.txt") {
		t.Fatalf("unexpected second target %q", plan.Items[1].TargetPath)
	}
	if plan.TotalBytes != 15 {
		t.Fatalf("expected 15 bytes, got %d", plan.TotalBytes)
	}
}

func TestPlannerInfoModeTargets(t *testing.T) {
	src := filepath.FromSlash("/a/b")
	mock := newMockFS()
	mock.addDir(src, false)
	mock.addFile(filepath.Join(src, "x", "y.txt"), 1)
	mock.exists[filepath.FromSlash("/c/d/x/y.txt.info")] = true

	planner := Planner{FS: mock}
	plan, err := planner.Plan(context.Background(), Request{SourceDir: src, TargetDir: filepath.FromSlash("/c/d"), Mode: domain.ModeInfo})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plan.Items[0].TargetPath != filepath.FromSlash("/c/d/x/y.txt.info") {
		t.Fatalf("unexpected target %q", plan.Items[0].TargetPath)
	}
	if plan.Overwrites != 1 {
		t.Fatalf("expected 1 overwrite, got %d", plan.Overwrites)
	}
}

func TestPlannerMissingSource(t *testing.T) {
	mock := newMockFS()
	planner := Planner{FS: mock}

	_, err := planner.Plan(context.Background(), Request{SourceDir: "/missing", TargetDir: "/out"})
	if !appErrors.Is(err, appErrors.NotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if len(mock.globCalls) != 0 {
		t.Fatalf("expected no enumeration for missing source")
	}
}

func TestPlannerSourceIsFile(t *testing.T) {
	mock := newMockFS()
	mock.addFile("/file.txt", 1)
	planner := Planner{FS: mock}

	_, err := planner.Plan(context.Background(), Request{SourceDir: "/file.txt", TargetDir: "/out"})
	if !appErrors.Is(err, appErrors.NotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestPlannerReportsProgress(t *testing.T) {
	mock := newMockFS()
	mock.addDir("/src", false)
	mock.addFile("/src/a", 1)
	mock.addFile("/src/b", 1)

	var calls [][2]int
	planner := Planner{FS: mock, OnProgress: func(current, total int) {
		calls = append(calls, [2]int{current, total})
	}}
	if _, err := planner.Plan(context.Background(), Request{SourceDir: "/src", TargetDir: "/dst"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 || calls[1] != [2]int{2, 2} {
		t.Fatalf("unexpected progress calls %v", calls)
	}
}

func TestPlannerRequiresFS(t *testing.T) {
	var planner Planner
	if _, err := planner.Plan(context.Background(), Request{}); err == nil || errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
