package imaging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalize_WithinBoundIsZeroCopy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.png")
	writePNG(t, path, 512, 512)

	asset, err := Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	norm, err := Normalize(asset, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if norm.Temp {
		t.Error("expected no temporary file for an image within bounds")
	}
	if norm.Path != path {
		t.Errorf("expected alias of source path, got %s", norm.Path)
	}

	// Cleanup on an alias must not touch the original.
	norm.Cleanup()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("original was removed by cleanup: %v", err)
	}
}

func TestNormalize_OversizedIsScaled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, 4000, 3000)

	asset, err := Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	norm, err := Normalize(asset, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer norm.Cleanup()

	if !norm.Temp {
		t.Fatal("expected a temporary derivative")
	}
	if norm.Path == path {
		t.Fatal("temporary derivative aliases the source")
	}
	if norm.Width != 1024 || norm.Height != 768 {
		t.Errorf("expected 1024x768, got %dx%d", norm.Width, norm.Height)
	}

	// The written file must decode to the reported dimensions.
	check, err := Inspect(norm.Path)
	if err != nil {
		t.Fatalf("inspecting derivative: %v", err)
	}
	if check.Width != 1024 || check.Height != 768 {
		t.Errorf("derivative decodes as %dx%d", check.Width, check.Height)
	}
}

func TestNormalize_PortraitPreservesAspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tall.jpg")
	writeJPEG(t, path, 1500, 3000)

	asset, err := Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	norm, err := Normalize(asset, 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer norm.Cleanup()

	if norm.Height != 1024 || norm.Width != 512 {
		t.Errorf("expected 512x1024, got %dx%d", norm.Width, norm.Height)
	}
	if norm.MediaType != "image/jpeg" {
		t.Errorf("jpeg source should re-encode as jpeg, got %s", norm.MediaType)
	}
}

func TestNormalize_CleanupRemovesDerivative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.png")
	writePNG(t, path, 2048, 1024)

	asset, err := Inspect(path)
	if err != nil {
		t.Fatal(err)
	}
	norm, err := Normalize(asset, 1024)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(norm.Path); err != nil {
		t.Fatalf("derivative missing before cleanup: %v", err)
	}

	norm.Cleanup()
	if _, err := os.Stat(norm.Path); !os.IsNotExist(err) {
		t.Errorf("derivative still present after cleanup")
	}
	// Second call is a no-op.
	norm.Cleanup()
}

func TestScaledBounds(t *testing.T) {
	cases := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{4000, 3000, 1024, 1024, 768},
		{3000, 4000, 1024, 768, 1024},
		{2048, 2048, 1024, 1024, 1024},
		{100000, 10, 1024, 1024, 1},
	}
	for _, c := range cases {
		gotW, gotH := scaledBounds(c.w, c.h, c.max)
		if gotW != c.wantW || gotH != c.wantH {
			t.Errorf("scaledBounds(%d, %d, %d) = %dx%d, want %dx%d",
				c.w, c.h, c.max, gotW, gotH, c.wantW, c.wantH)
		}
		if gotW > c.max || gotH > c.max {
			t.Errorf("scaledBounds(%d, %d, %d) exceeds bound", c.w, c.h, c.max)
		}
	}
}
