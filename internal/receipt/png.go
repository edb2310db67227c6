package receipt

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"pos-agent/internal/util"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	// Width is the receipt width in pixels before scaling.
	Width      = 384
	padding    = 16
	lineHeight = 17
)

var (
	ink   = image.NewUniform(color.Black)
	muted = image.NewUniform(color.Gray{Y: 0x99})
)

// PNGRenderer draws receipts with a fixed bitmap font and saves them to Dir.
type PNGRenderer struct {
	Dir         string
	SettleDelay time.Duration
	Scale       int
	formatter   *Formatter
	logger      *zap.Logger
}

func NewPNGRenderer(dir string, settleDelay time.Duration, formatter *Formatter) *PNGRenderer {
	return &PNGRenderer{
		Dir:         dir,
		SettleDelay: settleDelay,
		Scale:       2,
		formatter:   formatter,
		logger:      util.Named("receipt"),
	}
}

// Render waits the settle delay, draws r and writes it under Dir. It returns
// the path written.
func (p *PNGRenderer) Render(ctx context.Context, r *Receipt) (string, error) {
	ctx, span := util.StartSpan(ctx, "Receipt.Render", attribute.String("pos.reference", r.Reference))
	defer span.End()

	if p.SettleDelay > 0 {
		timer := time.NewTimer(p.SettleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	data, err := p.Encode(r)
	if err != nil {
		util.RecordError(span, err)
		return "", err
	}

	if err := os.MkdirAll(p.Dir, 0o755); err != nil {
		util.RecordError(span, err)
		return "", fmt.Errorf("failed to create receipt dir: %w", err)
	}
	path := filepath.Join(p.Dir, r.Filename())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		util.RecordError(span, err)
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}

	p.logger.Info("Receipt saved", zap.String("reference", r.Reference), zap.String("path", path))
	return path, nil
}

// Encode draws r and returns the PNG bytes.
func (p *PNGRenderer) Encode(r *Receipt) ([]byte, error) {
	img := p.draw(r)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode receipt png: %w", err)
	}
	return buf.Bytes(), nil
}

func (p *PNGRenderer) draw(r *Receipt) image.Image {
	rows := p.formatter.rows(r)
	height := padding*2 + len(rows)*lineHeight

	canvas := image.NewRGBA(image.Rect(0, 0, Width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	ascent := face.Metrics().Ascent.Ceil()
	right := fixed.I(Width - padding)

	for i, rw := range rows {
		top := padding + i*lineHeight
		baseline := fixed.I(top + ascent)

		if rw.align == alignRule {
			y := top + lineHeight/2
			for x := padding; x < Width-padding; x += 2 {
				canvas.Set(x, y, muted.C)
			}
			continue
		}

		d := &font.Drawer{Dst: canvas, Src: ink, Face: face}
		switch rw.align {
		case alignCenter:
			w := d.MeasureString(rw.left)
			d.Dot = fixed.Point26_6{X: (fixed.I(Width) - w) / 2, Y: baseline}
			p.text(d, rw.left, rw.bold)
		case alignSplit:
			d.Dot = fixed.Point26_6{X: fixed.I(padding), Y: baseline}
			p.text(d, rw.left, rw.bold)
			d.Dot = fixed.Point26_6{X: right - d.MeasureString(rw.right), Y: baseline}
			p.text(d, rw.right, rw.bold)
		default:
			d.Dot = fixed.Point26_6{X: fixed.I(padding), Y: baseline}
			p.text(d, rw.left, rw.bold)
		}
	}

	if p.Scale <= 1 {
		return canvas
	}
	scaled := image.NewRGBA(image.Rect(0, 0, Width*p.Scale, height*p.Scale))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), canvas, canvas.Bounds(), draw.Src, nil)
	return scaled
}

// text draws s at the drawer's dot; bold is faked by overstriking one pixel right.
func (p *PNGRenderer) text(d *font.Drawer, s string, bold bool) {
	start := d.Dot
	d.DrawString(s)
	if bold {
		end := d.Dot
		d.Dot = fixed.Point26_6{X: start.X + fixed.I(1), Y: start.Y}
		d.DrawString(s)
		d.Dot = end
	}
}
