package main

import (
	"fmt"
	"os"

	"github.com/go-pdf/fpdf"
)

// ---------------------------------------------------------------------------
// Font Resolution
// ---------------------------------------------------------------------------

// fallbackFamily is a core font built into the PDF backend, so it is always
// available and comes with its own bold face.
const fallbackFamily = "Helvetica"

// headingSizes maps heading levels to point sizes.
var headingSizes = map[int]float64{
	1: 16,
	2: 14,
	3: 13,
	4: 12,
	5: 11,
	6: 11,
}

// headingSize returns the point size for a heading level.
// Levels outside 1-6 use the body baseline.
func headingSize(level int) float64 {
	if size, ok := headingSizes[level]; ok {
		return size
	}
	return 12
}

// FontFamily describes a Unicode-capable font with candidate file locations
// for its regular and bold faces.
type FontFamily struct {
	Name        string // CLI name, also the family name registered with the backend
	DisplayName string
	Regular     []string
	Bold        []string
}

// fontFamilies lists the supported families in preference order; the first
// installed one is the default.
var fontFamilies = []FontFamily{
	{
		Name:        "dejavu-sans",
		DisplayName: "DejaVu Sans",
		Regular: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans.ttf",
			"/usr/share/fonts/TTF/DejaVuSans.ttf",
			"C:/Windows/Fonts/DejaVuSans.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/dejavu-sans-fonts/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
			"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
			"C:/Windows/Fonts/DejaVuSans-Bold.ttf",
		},
	},
	{
		Name:        "noto-sans",
		DisplayName: "Noto Sans",
		Regular: []string{
			"/usr/share/fonts/truetype/noto/NotoSans-Regular.ttf",
			"/usr/share/fonts/noto/NotoSans-Regular.ttf",
			"/usr/share/fonts/google-noto/NotoSans-Regular.ttf",
			"/usr/share/fonts/TTF/NotoSans-Regular.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/truetype/noto/NotoSans-Bold.ttf",
			"/usr/share/fonts/noto/NotoSans-Bold.ttf",
			"/usr/share/fonts/google-noto/NotoSans-Bold.ttf",
			"/usr/share/fonts/TTF/NotoSans-Bold.ttf",
		},
	},
	{
		Name:        "noto-serif",
		DisplayName: "Noto Serif",
		Regular: []string{
			"/usr/share/fonts/truetype/noto/NotoSerif-Regular.ttf",
			"/usr/share/fonts/noto/NotoSerif-Regular.ttf",
			"/usr/share/fonts/google-noto/NotoSerif-Regular.ttf",
			"/usr/share/fonts/TTF/NotoSerif-Regular.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/truetype/noto/NotoSerif-Bold.ttf",
			"/usr/share/fonts/noto/NotoSerif-Bold.ttf",
			"/usr/share/fonts/google-noto/NotoSerif-Bold.ttf",
			"/usr/share/fonts/TTF/NotoSerif-Bold.ttf",
		},
	},
	{
		Name:        "liberation-sans",
		DisplayName: "Liberation Sans",
		Regular: []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/liberation-sans-fonts/LiberationSans-Regular.ttf",
			"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
			"/usr/share/fonts/TTF/LiberationSans-Regular.ttf",
		},
		Bold: []string{
			"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
			"/usr/share/fonts/liberation-sans-fonts/LiberationSans-Bold.ttf",
			"/usr/share/fonts/liberation/LiberationSans-Bold.ttf",
			"/usr/share/fonts/TTF/LiberationSans-Bold.ttf",
		},
	},
}

// FontSet is the resolved font configuration for one document.
type FontSet struct {
	Family  string
	HasBold bool
}

// style returns the backend style string, degrading bold requests to regular
// when no bold face was registered.
func (fs FontSet) style(bold bool) string {
	if bold && fs.HasBold {
		return "B"
	}
	return ""
}

// findFont returns the first existing path from the list, or "".
func findFont(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func (f FontFamily) installed() bool {
	return findFont(f.Regular) != ""
}

// availableFonts returns the installed families in preference order.
func availableFonts() []FontFamily {
	var available []FontFamily
	for _, fam := range fontFamilies {
		if fam.installed() {
			available = append(available, fam)
		}
	}
	return available
}

// defaultFont returns the first installed family.
func defaultFont() (FontFamily, bool) {
	for _, fam := range fontFamilies {
		if fam.installed() {
			return fam, true
		}
	}
	return FontFamily{}, false
}

// selectFontFamily picks the family to use. An override must name a registry
// entry with an installed regular face. Without an override the first
// installed family wins; nil with no error means nothing is installed and
// the caller should fall back to the built-in family.
func selectFontFamily(families []FontFamily, override string) (*FontFamily, error) {
	if override != "" {
		for i := range families {
			if families[i].Name == override {
				if !families[i].installed() {
					return nil, fmt.Errorf("font family %q is not installed", override)
				}
				return &families[i], nil
			}
		}
		return nil, fmt.Errorf("unknown font family %q", override)
	}
	for i := range families {
		if families[i].installed() {
			return &families[i], nil
		}
	}
	return nil, nil
}

// setupFonts resolves and registers the document fonts, once per document.
// Resolution without an override never fails: an unreadable face degrades to
// the built-in fallback.
func setupFonts(pdf *fpdf.Fpdf, override string) (FontSet, error) {
	fam, err := selectFontFamily(fontFamilies, override)
	if err != nil {
		return FontSet{}, err
	}
	if fam == nil {
		// Nothing installed; the backend synthesizes Helvetica bold itself.
		return FontSet{Family: fallbackFamily, HasBold: true}, nil
	}
	fs, err := registerFamily(pdf, *fam)
	if err != nil {
		if override != "" {
			return FontSet{}, err
		}
		return FontSet{Family: fallbackFamily, HasBold: true}, nil
	}
	return fs, nil
}

// registerFamily loads the family's faces into the rendering backend under
// its fixed name. The font bytes are read here and handed over directly:
// the backend resolves plain file paths against its own font directory,
// which breaks absolute candidate paths. A missing or unreadable bold face
// leaves HasBold false, so bold requests degrade to regular.
func registerFamily(pdf *fpdf.Fpdf, fam FontFamily) (FontSet, error) {
	regular := findFont(fam.Regular)
	data, err := os.ReadFile(regular)
	if err != nil {
		return FontSet{}, fmt.Errorf("failed to read font %s: %w", regular, err)
	}
	pdf.AddUTF8FontFromBytes(fam.Name, "", data)

	fs := FontSet{Family: fam.Name}
	if bold := findFont(fam.Bold); bold != "" {
		if boldData, err := os.ReadFile(bold); err == nil {
			pdf.AddUTF8FontFromBytes(fam.Name, "B", boldData)
			fs.HasBold = true
		}
	}
	return fs, nil
}
