package fileutil

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// writeTree creates each relative path under root with placeholder content.
func writeTree(t *testing.T, root string, files []string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create directory: %v", err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0644); err != nil {
			t.Fatalf("failed to create file: %v", err)
		}
	}
}

func relAll(t *testing.T, root string, paths []string) []string {
	t.Helper()
	absRoot, err := filepath.Abs(root)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestScanDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"NCT0001.json",
		"NCT0002.JSON",
		"notes.txt",
		"breast_cancer/NCT0003.json",
		"breast_cancer/part/NCT0004.json",
		".cache/NCT0005.json",
		".tmp-123.json",
		"skipme/NCT0006.json",
		"asthma_part_1.txt",
		"asthma_part_2.txt",
		"asthma.txt",
	})

	tests := []struct {
		name string
		opts ScanOptions
		want []string
	}{
		{
			name: "json recursive",
			opts: ScanOptions{Extensions: []string{".json"}, Recursive: true},
			want: []string{
				"NCT0001.json",
				"NCT0002.JSON",
				"breast_cancer/NCT0003.json",
				"breast_cancer/part/NCT0004.json",
				"skipme/NCT0006.json",
			},
		},
		{
			name: "json top level only",
			opts: ScanOptions{Extensions: []string{"json"}},
			want: []string{"NCT0001.json", "NCT0002.JSON"},
		},
		{
			name: "excluded directory",
			opts: ScanOptions{Extensions: []string{".json"}, Recursive: true, ExcludeDirs: []string{"skipme", "part"}},
			want: []string{
				"NCT0001.json",
				"NCT0002.JSON",
				"breast_cancer/NCT0003.json",
			},
		},
		{
			name: "pattern on stem",
			opts: ScanOptions{Pattern: `^asthma_part_\d+$`, Extensions: []string{".txt"}},
			want: []string{"asthma_part_1.txt", "asthma_part_2.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanDirectory(tmpDir, tt.opts)
			if err != nil {
				t.Fatalf("ScanDirectory() error = %v", err)
			}
			got := relAll(t, tmpDir, result.Files)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ScanDirectory() = %v, want %v", got, tt.want)
			}
			for _, f := range result.Files {
				if !filepath.IsAbs(f) {
					t.Errorf("expected absolute path, got %s", f)
				}
			}
		})
	}
}

func TestScanDirectory_Errors(t *testing.T) {
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "file.json")
	if err := os.WriteFile(filePath, []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		dir     string
		opts    ScanOptions
		wantErr string
	}{
		{"non-existent directory", filepath.Join(tmpDir, "missing"), ScanOptions{}, "failed to access directory"},
		{"path is a file", filePath, ScanOptions{}, "path is not a directory"},
		{"invalid regex", tmpDir, ScanOptions{Pattern: "[invalid("}, "invalid pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ScanDirectory(tt.dir, tt.opts)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want error containing %q", err, tt.wantErr)
			}
			if result != nil {
				t.Errorf("expected nil result on error, got %+v", result)
			}
		})
	}
}

func TestScanDirectory_EmptyDirectory(t *testing.T) {
	result, err := ScanDirectory(t.TempDir(), ScanOptions{Recursive: true})
	if err != nil {
		t.Fatalf("ScanDirectory() error = %v", err)
	}
	if len(result.Files) != 0 || len(result.Errors) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestSubdirectories(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{
		"diabetes/a.json",
		"breast_cancer/b.json",
		".trash/c.json",
		"top.json",
	})

	got, err := Subdirectories(tmpDir)
	if err != nil {
		t.Fatalf("Subdirectories() error = %v", err)
	}
	want := []string{"breast_cancer", "diabetes"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Subdirectories() = %v, want %v", got, want)
	}

	if _, err := Subdirectories(filepath.Join(tmpDir, "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCountFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeTree(t, tmpDir, []string{"a.json", "sub/b.json", "c.txt"})

	n, err := CountFiles(tmpDir, ".json")
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("CountFiles() = %d, want 2", n)
	}

	n, err = CountFiles(filepath.Join(tmpDir, "missing"), ".json")
	if err != nil || n != 0 {
		t.Errorf("CountFiles(missing) = %d, %v; want 0, nil", n, err)
	}
}
