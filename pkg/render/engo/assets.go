// pkg/render/engo/assets.go
package engo

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"github.com/EngoEngine/engo"
	"github.com/EngoEngine/engo/common"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	hudFontURL  = "trackdrive/hud.ttf"
	hudFontSize = 20
)

// Pixel values in sprite patterns.
const (
	pxClear = iota
	pxBody
	pxGlass
	pxTyre
)

var palette = map[int]color.NRGBA{
	pxBody:  {255, 255, 255, 255},
	pxGlass: {40, 60, 90, 255},
	pxTyre:  {15, 15, 15, 255},
}

// carPattern is the car seen from above, nose at the top.
var carPattern = [][]int{
	{0, 0, 0, 1, 1, 1, 1, 1, 1, 0, 0, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3},
	{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3},
	{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 2, 2, 2, 2, 2, 2, 1, 1, 0},
	{0, 1, 2, 2, 2, 2, 2, 2, 2, 2, 1, 0},
	{0, 1, 2, 2, 2, 2, 2, 2, 2, 2, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 2, 2, 2, 2, 2, 2, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3},
	{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3},
	{3, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 3},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0},
	{0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0},
}

// AssetManager builds the textures and fonts the scene draws with.
type AssetManager struct {
	carSprite common.Drawable
	font      *common.Font
}

// NewAssetManager creates a new asset manager
func NewAssetManager() *AssetManager {
	return &AssetManager{}
}

// LoadAssets uploads the car texture and the HUD font. It needs a GL context.
func (am *AssetManager) LoadAssets() error {
	am.carSprite = common.NewTextureSingle(common.NewImageObject(PatternImage(carPattern)))

	if err := engo.Files.LoadReaderData(hudFontURL, bytes.NewReader(goregular.TTF)); err != nil {
		return fmt.Errorf("load HUD font: %w", err)
	}
	font := &common.Font{URL: hudFontURL, FG: color.White, Size: hudFontSize}
	if err := font.CreatePreloaded(); err != nil {
		return fmt.Errorf("create HUD font: %w", err)
	}
	am.font = font
	return nil
}

// CarSprite returns the car texture, or a plain rectangle before LoadAssets.
func (am *AssetManager) CarSprite() common.Drawable {
	if am.carSprite == nil {
		return common.Rectangle{}
	}
	return am.carSprite
}

// Font returns the HUD font, or nil before LoadAssets.
func (am *AssetManager) Font() *common.Font {
	return am.font
}

// PatternImage paints a pixel pattern. Rows may be ragged; the image is
// as wide as the longest row and unknown values stay transparent.
func PatternImage(pattern [][]int) *image.NRGBA {
	width := 0
	for _, row := range pattern {
		width = max(width, len(row))
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, len(pattern)))
	for y, row := range pattern {
		for x, px := range row {
			if c, ok := palette[px]; ok {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}
