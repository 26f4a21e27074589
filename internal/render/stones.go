package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/park285/Omok-KakaoTalk-bot/internal/gomoku"
)

const blackStoneSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<defs><radialGradient id="b" cx="0.35" cy="0.3" r="0.7">
<stop offset="0" stop-color="#6e6e6e"/><stop offset="1" stop-color="#0b0b0b"/>
</radialGradient></defs>
<circle cx="50" cy="50" r="47" fill="url(#b)" stroke="#000000" stroke-width="2"/>
</svg>`

const whiteStoneSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100 100">
<defs><radialGradient id="w" cx="0.35" cy="0.3" r="0.75">
<stop offset="0" stop-color="#ffffff"/><stop offset="1" stop-color="#c9c4b8"/>
</radialGradient></defs>
<circle cx="50" cy="50" r="47" fill="url(#w)" stroke="#7a7468" stroke-width="2"/>
</svg>`

type stoneCacheKey struct {
	color gomoku.Color
	size  int
}

var (
	stoneCache   = map[stoneCacheKey]image.Image{}
	stoneCacheMu sync.RWMutex
)

// stoneImage rasterises the stone for c at size x size pixels. Results are
// cached per color and size.
func stoneImage(c gomoku.Color, size int) (image.Image, error) {
	key := stoneCacheKey{color: c, size: size}
	stoneCacheMu.RLock()
	if img, ok := stoneCache[key]; ok {
		stoneCacheMu.RUnlock()
		return img, nil
	}
	stoneCacheMu.RUnlock()

	var src string
	switch c {
	case gomoku.Black:
		src = blackStoneSVG
	case gomoku.White:
		src = whiteStoneSVG
	default:
		return nil, fmt.Errorf("no stone for color %s", c)
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse stone svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)

	stoneCacheMu.Lock()
	stoneCache[key] = img
	stoneCacheMu.Unlock()
	return img, nil
}
