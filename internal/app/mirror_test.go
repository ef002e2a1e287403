package app

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"copydir/internal/domain"
	appErrors "copydir/internal/errors"
	"copydir/internal/infra/exif"
	osfs "copydir/internal/infra/fs"
	"copydir/internal/infra/media"
)

func writeFixture(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
}

// fixture builds a source tree three levels deep.
func fixture(t *testing.T) (string, time.Time) {
	t.Helper()
	src := t.TempDir()
	mtime := time.Date(2023, 7, 14, 9, 26, 53, 0, time.Local)
	writeFixture(t, filepath.Join(src, "top.txt"), "top", mtime)
	writeFixture(t, filepath.Join(src, "top.log"), "log", mtime)
	writeFixture(t, filepath.Join(src, "one", "mid.txt"), "mid", mtime)
	writeFixture(t, filepath.Join(src, "one", "two", "deep.txt"), "deep", mtime)
	return src, mtime
}

func listTree(t *testing.T, root string) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	sort.Strings(files)
	return files
}

func mirror(t *testing.T, req Request) domain.MirrorResult {
	t.Helper()
	filesystem := osfs.OSFS{}
	planner := Planner{FS: filesystem}
	plan, err := planner.Plan(context.Background(), req)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	executor := Executor{FS: filesystem, Image: exif.Reader{}, Media: media.Reader{}}
	result, err := executor.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	return result
}

func TestMirrorCopyRecursion(t *testing.T) {
	src, mtime := fixture(t)

	tests := []struct {
		name      string
		ext       string
		recursive bool
		want      []string
	}{
		{"Flat all", "", false, []string{"top.log", "top.txt"}},
		{"Flat filtered", ".txt", false, []string{"top.txt"}},
		{"Recursive filtered", ".txt", true, []string{"one/mid.txt", "one/two/deep.txt", "top.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := t.TempDir()
			result := mirror(t, Request{SourceDir: src, TargetDir: dst, Extension: tt.ext, Recursive: tt.recursive})

			got := listTree(t, dst)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			if result.Processed != len(tt.want) {
				t.Fatalf("expected %d processed, got %d", len(tt.want), result.Processed)
			}

			for _, rel := range got {
				srcData, _ := os.ReadFile(filepath.Join(src, rel))
				dstData, _ := os.ReadFile(filepath.Join(dst, rel))
				if string(srcData) != string(dstData) {
					t.Fatalf("%s: content differs", rel)
				}
				info, err := os.Stat(filepath.Join(dst, rel))
				if err != nil {
					t.Fatalf("stat: %v", err)
				}
				if !info.ModTime().Equal(mtime) {
					t.Fatalf("%s: expected mtime %v, got %v", rel, mtime, info.ModTime())
				}
			}
		})
	}
}

func TestMirrorInfoWritesSidecars(t *testing.T) {
	src, mtime := fixture(t)
	dst := t.TempDir()

	mirror(t, Request{SourceDir: src, TargetDir: dst, Extension: ".txt", Recursive: true, Mode: domain.ModeInfo})

	want := []string{"one/mid.txt.info", "one/two/deep.txt.info", "top.txt.info"}
	if got := listTree(t, dst); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("got %v, want %v", got, want)
	}

	sidecar := filepath.Join(dst, "one", "two", "deep.txt.info")
	data, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	for _, line := range []string{
		"Name                : deep.txt\n",
		"Type                : .txt\n",
		"Size                : 4.00 B\n",
		"Modified Time       : " + domain.FormatTimestamp(mtime) + "\n",
	} {
		if !strings.Contains(content, line) {
			t.Errorf("expected %q in %q", line, content)
		}
	}

	info, err := os.Stat(sidecar)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(mtime) {
		t.Fatalf("expected sidecar mtime %v, got %v", mtime, info.ModTime())
	}
}

func TestMirrorInfoSurvivesCorruptImage(t *testing.T) {
	src := t.TempDir()
	dst := t.TempDir()
	mtime := time.Date(2023, 7, 14, 9, 26, 53, 0, time.Local)
	writeFixture(t, filepath.Join(src, "broken.jpg"), "not an image", mtime)
	writeFixture(t, filepath.Join(src, "notes.txt"), "notes", mtime)

	result := mirror(t, Request{SourceDir: src, TargetDir: dst, Mode: domain.ModeInfo})
	if result.Processed != 2 || len(result.Warnings) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(filepath.Join(dst, "broken.jpg.info")); err != nil {
		t.Fatalf("expected sidecar for the corrupt image: %v", err)
	}
}

func TestMirrorMissingSourceWritesNothing(t *testing.T) {
	dst := t.TempDir()
	planner := Planner{FS: osfs.OSFS{}}
	_, err := planner.Plan(context.Background(), Request{SourceDir: filepath.Join(dst, "missing"), TargetDir: filepath.Join(dst, "out")})
	if !appErrors.Is(err, appErrors.NotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	entries, _ := os.ReadDir(dst)
	if len(entries) != 0 {
		t.Fatalf("expected destination to be untouched, found %d entries", len(entries))
	}
}
