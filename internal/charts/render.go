package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"
	"runtime"
	"sync"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Servable chart encodings.
const (
	FormatWebP = "webp"
	FormatPNG  = "png"
)

// Rendered is a rasterized figure with both encodings kept in memory. The
// decoded raster stays around for on-demand rescaling.
type Rendered struct {
	Figure
	Image image.Image
	WebP  []byte
	PNG   []byte
}

type renderJob struct {
	idx int
	fig Figure
}

// RenderAll rasterizes every figure at widthIn×heightIn inches through a
// bounded worker pool. Output order matches input order.
func RenderAll(figs []Figure, widthIn, heightIn float64, workers int) ([]Rendered, error) {
	if len(figs) == 0 {
		return nil, nil
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(figs) {
		workers = len(figs)
	}

	w := vg.Length(widthIn) * vg.Inch
	h := vg.Length(heightIn) * vg.Inch

	jobs := make(chan renderJob, len(figs))
	out := make([]Rendered, len(figs))
	errs := make([]error, len(figs))

	go func() {
		for i, fig := range figs {
			jobs <- renderJob{idx: i, fig: fig}
		}
		close(jobs)
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				r, err := render(j.fig, w, h)
				if err != nil {
					errs[j.idx] = err
					continue
				}
				out[j.idx] = r

				log.Debug().
					Str("chart", j.fig.ID).
					Int("webp_bytes", len(r.WebP)).
					Int("png_bytes", len(r.PNG)).
					Msg("Figure rendered")
			}
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", figs[i].ID, err)
		}
	}

	return out, nil
}

func render(fig Figure, w, h vg.Length) (Rendered, error) {
	c := vgimg.NewWith(vgimg.UseWH(w, h))
	fig.Plot.Draw(vgdraw.New(c))

	img := c.Image()

	var pngBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		return Rendered{}, err
	}

	webpData, err := encodeWebP(img)
	if err != nil {
		return Rendered{}, err
	}

	return Rendered{Figure: fig, Image: img, PNG: pngBuf.Bytes(), WebP: webpData}, nil
}

func encodeWebP(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Width returns the natural pixel width of the raster.
func (r *Rendered) Width() int {
	return r.Image.Bounds().Dx()
}

// Encoded returns the stored encoding for format, ok=false for an unknown one.
func (r *Rendered) Encoded(format string) ([]byte, bool) {
	switch format {
	case FormatWebP:
		return r.WebP, true
	case FormatPNG:
		return r.PNG, true
	}
	return nil, false
}

// Scaled re-encodes the figure at the given pixel width, preserving the
// aspect ratio. Widths at or above the natural size return the stored
// encoding unchanged.
func (r *Rendered) Scaled(width int, format string) ([]byte, error) {
	bounds := r.Image.Bounds()
	if width <= 0 || width >= bounds.Dx() {
		data, ok := r.Encoded(format)
		if !ok {
			return nil, fmt.Errorf("unknown chart format %q", format)
		}
		return data, nil
	}

	height := int(math.Round(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx())))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), r.Image, bounds, draw.Over, nil)

	switch format {
	case FormatWebP:
		return encodeWebP(dst)
	case FormatPNG:
		var buf bytes.Buffer
		if err := png.Encode(&buf, dst); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown chart format %q", format)
	}
}
