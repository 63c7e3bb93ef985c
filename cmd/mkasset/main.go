package main

import (
	"bufio"
	"flag"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"h7tft/display"

	"golang.org/x/image/bmp"
)

func main() {
	var (
		inPath  = flag.String("in", "", "Input image (.png, .bmp, or .raw with -width).")
		rawPath = flag.String("raw", "", "Write little-endian RGB565 here.")
		bmpPath = flag.String("bmp", "", "Write a 24-bit BMP here.")
		width   = flag.Int("width", 0, "Pixel width of a .raw input.")
	)
	flag.Parse()

	if *inPath == "" || (*rawPath == "" && *bmpPath == "") {
		fatalf("usage: mkasset -in image.png [-raw out.raw] [-bmp out.bmp]\n       mkasset -in in.raw -width 86 -bmp out.bmp")
	}

	img, err := load(*inPath, *width)
	if err != nil {
		fatalf("load: %v", err)
	}
	if *rawPath != "" {
		if err := os.WriteFile(*rawPath, encodeRaw(img), 0o644); err != nil {
			fatalf("raw: %v", err)
		}
	}
	if *bmpPath != "" {
		if err := writeBMP(*bmpPath, img); err != nil {
			fatalf("bmp: %v", err)
		}
	}
	b := img.Bounds()
	fmt.Printf("%s: %dx%d\n", *inPath, b.Dx(), b.Dy())
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}

func load(path string, width int) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".raw") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw, err := decodeRaw(data, width)
		if err != nil {
			return nil, err
		}
		return raw, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(bufio.NewReader(f))
	return img, err
}

func decodeRaw(data []byte, width int) (display.RawImage, error) {
	if width <= 0 {
		return display.RawImage{}, fmt.Errorf("raw input needs -width")
	}
	if len(data)%(width*2) != 0 {
		return display.RawImage{}, fmt.Errorf("%d bytes is not a whole number of %d px rows", len(data), width)
	}
	return display.NewRawLE(data, width), nil
}

// encodeRaw packs img row by row as little-endian RGB565.
func encodeRaw(img image.Image) []byte {
	b := img.Bounds()
	out := make([]byte, 0, b.Dx()*b.Dy()*2)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			p := display.RGB565(c.R, c.G, c.B)
			out = append(out, byte(p), byte(p>>8))
		}
	}
	return out
}

func writeBMP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := bmp.Encode(w, opaque(img)); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// opaque drops alpha so the encoder writes 24-bit pixels.
func opaque(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
			c.A = 0xFF
			dst.SetRGBA(x-b.Min.X, y-b.Min.Y, c)
		}
	}
	return dst
}
