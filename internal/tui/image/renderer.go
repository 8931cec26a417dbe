package image

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"os"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"github.com/disintegration/imaging"
)

// Approximate pixel size of one terminal cell, used to size graphics output
const (
	CellPixelWidth  = 8
	CellPixelHeight = 16
)

// TerminalType identifies the terminal emulator
type TerminalType string

const (
	TerminalKitty   TerminalType = "kitty"
	TerminalITerm2  TerminalType = "iterm2"
	TerminalWezTerm TerminalType = "wezterm"
	TerminalGhostty TerminalType = "ghostty"
	TerminalGeneric TerminalType = "generic"
)

// GraphicsProtocol is the escape protocol used to draw images
type GraphicsProtocol string

const (
	ProtocolKitty GraphicsProtocol = "kitty"
	ProtocolITerm GraphicsProtocol = "iterm2"
	ProtocolSixel GraphicsProtocol = "sixel"
	ProtocolNone  GraphicsProtocol = "none"
)

// Renderer turns decoded images into terminal output, either through a
// graphics protocol or as ANSI colored half blocks
type Renderer struct {
	TerminalType TerminalType
	Protocol     GraphicsProtocol
}

// NewRenderer creates a renderer for mode: auto, text, kitty, iterm2 or sixel
func NewRenderer(mode string) *Renderer {
	switch strings.ToLower(mode) {
	case "text":
		return &Renderer{TerminalType: TerminalGeneric, Protocol: ProtocolNone}
	case "kitty":
		return &Renderer{TerminalType: TerminalKitty, Protocol: ProtocolKitty}
	case "iterm2":
		return &Renderer{TerminalType: TerminalITerm2, Protocol: ProtocolITerm}
	case "sixel":
		return &Renderer{TerminalType: TerminalGeneric, Protocol: ProtocolSixel}
	}

	termType, protocol := DetectTerminal(os.Getenv)
	return &Renderer{TerminalType: termType, Protocol: protocol}
}

// DetectTerminal picks a graphics protocol from the environment
func DetectTerminal(getenv func(string) string) (TerminalType, GraphicsProtocol) {
	term := strings.ToLower(getenv("TERM"))
	termProgram := strings.ToLower(getenv("TERM_PROGRAM"))

	if getenv("KITTY_WINDOW_ID") != "" || strings.Contains(term, "kitty") {
		return TerminalKitty, ProtocolKitty
	}

	// Ghostty speaks the kitty protocol
	if getenv("GHOSTTY") != "" || termProgram == "ghostty" || strings.Contains(term, "ghostty") {
		return TerminalGhostty, ProtocolKitty
	}

	if termProgram == "iterm.app" {
		return TerminalITerm2, ProtocolITerm
	}

	if termProgram == "wezterm" {
		return TerminalWezTerm, ProtocolITerm
	}

	for _, sixelTerm := range []string{"xterm-sixel", "mlterm", "yaft"} {
		if strings.Contains(term, sixelTerm) {
			return TerminalGeneric, ProtocolSixel
		}
	}

	return TerminalGeneric, ProtocolNone
}

// IsGraphics reports whether output uses a graphics protocol
func (r *Renderer) IsGraphics() bool {
	return r.Protocol != ProtocolNone
}

// Render draws img into at most cols x rows terminal cells
func (r *Renderer) Render(img image.Image, cols, rows int) (string, error) {
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	var (
		out strings.Builder
		err error
	)

	switch r.Protocol {
	case ProtocolKitty:
		err = rasterm.KittyWriteImage(&out, img, rasterm.KittyImgOpts{
			DstCols: uint32(cols),
			DstRows: uint32(rows),
		})
	case ProtocolITerm:
		err = rasterm.ItermWriteImage(&out, fit(img, cols*CellPixelWidth, rows*CellPixelHeight))
	case ProtocolSixel:
		resized := fit(img, cols*CellPixelWidth, rows*CellPixelHeight)
		bounds := resized.Bounds()
		paletted := image.NewPaletted(bounds, palette.Plan9)
		draw.FloydSteinberg.Draw(paletted, bounds, resized, bounds.Min)
		err = rasterm.SixelWriteImage(&out, paletted)
	default:
		return RenderANSI(img, cols, rows), nil
	}

	if err != nil {
		return "", &RenderError{
			Terminal: string(r.TerminalType),
			Protocol: string(r.Protocol),
			Err:      fmt.Errorf("failed to encode image: %w", err),
		}
	}
	return out.String(), nil
}

// RenderANSI draws img with upper half blocks, two pixel rows per cell,
// keeping the aspect ratio inside cols x rows
func RenderANSI(img image.Image, cols, rows int) string {
	fitted := fit(img, cols, rows*2)
	bounds := fitted.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var b strings.Builder
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x++ {
			top := fitted.NRGBAAt(x, y)
			bottom := top
			if y+1 < h {
				bottom = fitted.NRGBAAt(x, y+1)
			}
			fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀",
				top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}
		b.WriteString("\x1b[0m")
		if y+2 < h {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// fit scales img to fill w x h as far as the aspect ratio allows
func fit(img image.Image, w, h int) *image.NRGBA {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	bounds := img.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()
	if sw <= w && sh <= h {
		// imaging.Fit never enlarges
		if sw*h > sh*w {
			return imaging.Resize(img, w, 0, imaging.NearestNeighbor)
		}
		return imaging.Resize(img, 0, h, imaging.NearestNeighbor)
	}
	return imaging.Fit(img, w, h, imaging.Lanczos)
}
