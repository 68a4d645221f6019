package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/basicfont"

	"github.com/WanessaDiniztech/Haxball/internal/game"
)

// Named palette colors understood by clients
var namedColors = map[string]color.RGBA{
	"blue":   {52, 120, 246, 255},
	"red":    {235, 64, 52, 255},
	"yellow": {250, 204, 21, 255},
	"cyan":   {34, 211, 238, 255},
	"green":  {34, 197, 94, 255},
	"purple": {168, 85, 247, 255},
	"orange": {249, 115, 22, 255},
	"white":  {255, 255, 255, 255},
	"black":  {0, 0, 0, 255},
}

var (
	pitchColor = color.RGBA{46, 125, 50, 255}
	lineColor  = color.RGBA{255, 255, 255, 160}
	goalColor  = color.RGBA{240, 240, 240, 255}
	textColor  = color.RGBA{20, 25, 35, 255}
)

// Renderer draws snapshots of a field into images
type Renderer struct {
	field game.Field
	font  *truetype.Font // nil uses the bitmap face
}

// NewRenderer creates a renderer for the given field. A TTF font is parsed
// once for labels when one is found, otherwise a built-in bitmap face is used.
func NewRenderer(field game.Field) *Renderer {
	r := &Renderer{field: field}
	if path := findFontPath(); path != "" {
		f, err := loadFont(path)
		if err != nil {
			log.Printf("⚠️ Font %s unusable, using bitmap face: %v", path, err)
		} else {
			r.font = f
		}
	}
	return r
}

func loadFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(data)
}

// Render draws one snapshot
func (r *Renderer) Render(snap *game.Snapshot) image.Image {
	return r.draw(snap).Image()
}

// EncodePNG draws one snapshot and writes it as PNG
func (r *Renderer) EncodePNG(w io.Writer, snap *game.Snapshot) error {
	return r.draw(snap).EncodePNG(w)
}

func (r *Renderer) draw(snap *game.Snapshot) *gg.Context {
	f := r.field
	dc := gg.NewContext(int(f.Width), int(f.Height))

	r.drawPitch(dc)

	for _, p := range snap.Players {
		r.drawEntity(dc, p.Entity, snap.Names[p.ID])
	}

	if b := snap.Ball; b != nil {
		dc.SetColor(ParseColor(string(b.Color)))
		dc.DrawCircle(b.X, b.Y, b.Radius)
		dc.Fill()
		dc.SetColor(color.Black)
		dc.SetLineWidth(2)
		dc.DrawCircle(b.X, b.Y, b.Radius)
		dc.Stroke()
	}

	r.drawScore(dc, snap)
	return dc
}

func (r *Renderer) drawPitch(dc *gg.Context) {
	f := r.field

	dc.SetColor(pitchColor)
	dc.DrawRectangle(0, 0, f.Width, f.Height)
	dc.Fill()

	dc.SetColor(lineColor)
	dc.SetLineWidth(2)
	dc.DrawLine(f.Width/2, 0, f.Width/2, f.Height)
	dc.Stroke()
	dc.DrawCircle(f.Width/2, f.Height/2, f.Height/5)
	dc.Stroke()

	// Goal mouths
	top := (f.Height - f.GoalHeight) / 2
	dc.SetColor(goalColor)
	dc.DrawRectangle(0, top, f.GoalWidth, f.GoalHeight)
	dc.Fill()
	dc.DrawRectangle(f.Width-f.GoalWidth, top, f.GoalWidth, f.GoalHeight)
	dc.Fill()
}

func (r *Renderer) drawEntity(dc *gg.Context, e game.EntitySnapshot, name string) {
	// Shadow
	dc.SetColor(color.RGBA{0, 0, 0, 64})
	dc.DrawCircle(e.X, e.Y+3, e.Radius)
	dc.Fill()

	dc.SetColor(ParseColor(string(e.Color)))
	dc.DrawCircle(e.X, e.Y, e.Radius)
	dc.Fill()

	dc.SetColor(color.White)
	dc.SetLineWidth(3)
	dc.DrawCircle(e.X, e.Y, e.Radius)
	dc.Stroke()

	if name != "" {
		r.setFont(dc, 12)
		dc.SetColor(textColor)
		dc.DrawStringAnchored(name, e.X, e.Y+e.Radius+10, 0.5, 0.5)
	}
}

func (r *Renderer) drawScore(dc *gg.Context, snap *game.Snapshot) {
	r.setFont(dc, 20)
	secs := snap.ElapsedTime / 1000
	text := fmt.Sprintf("%d x %d  %02d:%02d", snap.Score.Blue, snap.Score.Red, secs/60, secs%60)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(text, r.field.Width/2, 16, 0.5, 0.5)
}

// setFont builds a face from the parsed font. Faces carry glyph caches and
// are not shared between concurrent renders.
func (r *Renderer) setFont(dc *gg.Context, points float64) {
	if r.font != nil {
		dc.SetFontFace(truetype.NewFace(r.font, &truetype.Options{Size: points}))
		return
	}
	dc.SetFontFace(basicfont.Face7x13)
}

// ParseColor resolves a palette name or #rrggbb hex. Unknown values render white.
func ParseColor(c string) color.RGBA {
	c = strings.ToLower(strings.TrimSpace(c))
	if rgba, ok := namedColors[c]; ok {
		return rgba
	}
	if len(c) != 7 || c[0] != '#' {
		return namedColors["white"]
	}

	var r, g, b uint8
	if _, err := fmt.Sscanf(c[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return namedColors["white"]
	}
	return color.RGBA{r, g, b, 255}
}

func findFontPath() string {
	if p := os.Getenv("FONT_PATH"); p != "" {
		return p
	}

	// Try common font locations
	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/System/Library/Fonts/Helvetica.ttc",
		"C:\\Windows\\Fonts\\arial.ttf",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	matches, _ := filepath.Glob("*.ttf")
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}
