package render

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"

	"ca-sandbox/internal/core"
)

// FillRGBA converts cell states into RGBA pixels in buf, which must hold
// 4*len(cells) bytes.
func FillRGBA(buf []byte, cells []core.CellState) {
	for i, s := range cells {
		col := StateColour(s)
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// Image rasterises a w x h grid of cells, each drawn as a scale x scale
// square.
func Image(cells []core.CellState, size core.Size, scale int) (*image.RGBA, error) {
	if len(cells) != size.W*size.H {
		return nil, fmt.Errorf("render: %d cells for a %dx%d grid", len(cells), size.W, size.H)
	}
	if scale <= 0 {
		scale = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, size.W*scale, size.H*scale))
	if scale == 1 {
		FillRGBA(img.Pix, cells)
		return img, nil
	}
	for y := 0; y < size.H; y++ {
		for x := 0; x < size.W; x++ {
			col := StateColour(cells[y*size.W+x])
			for dy := 0; dy < scale; dy++ {
				row := img.PixOffset(x*scale, y*scale+dy)
				for dx := 0; dx < scale; dx++ {
					p := img.Pix[row+dx*4 : row+dx*4+4 : row+dx*4+4]
					p[0], p[1], p[2], p[3] = col.R, col.G, col.B, col.A
				}
			}
		}
	}
	return img, nil
}

// WritePNG encodes the grid as a PNG.
func WritePNG(w io.Writer, cells []core.CellState, size core.Size, scale int) error {
	img, err := Image(cells, size, scale)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

// SavePNG writes the grid to a PNG file at path.
func SavePNG(path string, cells []core.CellState, size core.Size, scale int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePNG(f, cells, size, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
