// pkg/render/engo/assets_test.go
package engo

import (
	"image/color"
	"testing"

	"github.com/EngoEngine/engo/common"
)

func TestNewAssetManager(t *testing.T) {
	am := NewAssetManager()
	if am.Font() != nil {
		t.Error("expected no font before LoadAssets")
	}
	if _, ok := am.CarSprite().(common.Rectangle); !ok {
		t.Errorf("expected a rectangle fallback before LoadAssets, got %T", am.CarSprite())
	}
}

func TestPatternImage(t *testing.T) {
	img := PatternImage([][]int{
		{0, 1},
		{2, 3, 9},
	})

	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds = %v, want 3x2", b)
	}

	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, color.NRGBA{}},
		{1, 0, palette[pxBody]},
		{0, 1, palette[pxGlass]},
		{1, 1, palette[pxTyre]},
		{2, 1, color.NRGBA{}},
		{2, 0, color.NRGBA{}},
	}
	for _, tt := range tests {
		if got := img.NRGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestCarPattern_Symmetric(t *testing.T) {
	for y, row := range carPattern {
		if len(row) != len(carPattern[0]) {
			t.Fatalf("row %d has width %d", y, len(row))
		}
		for x := range row {
			if row[x] != row[len(row)-1-x] {
				t.Errorf("row %d is not mirror symmetric at %d", y, x)
			}
		}
	}
}
