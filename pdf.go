package main

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// ---------------------------------------------------------------------------
// PDF Generation
// ---------------------------------------------------------------------------

// Layout constants. Font sizes are in points, everything else in mm.
const (
	titleFontSize  = 18
	bodyFontSize   = 12
	metaFontSize   = 10
	footerFontSize = 8

	titleLineHeight   = 10
	headingLineHeight = 8
	bodyLineHeight    = 7
	metaLineHeight    = 6

	bottomMargin = 15 // auto page break margin

	titleTrailSpacing   = 5
	metaTrailSpacing    = 10
	headingLeadSpacing  = 4
	headingTrailSpacing = 2
	blockTrailSpacing   = 4
	imageTrailSpacing   = 8
)

// pdfEpoch pins the creation and modification dates so identical inputs
// produce byte-identical documents.
var pdfEpoch = time.Unix(0, 0).UTC()

// PDFOptions carries caller overrides into generatePDF.
type PDFOptions struct {
	Title      string // overrides the extracted title
	FontFamily string // font registry name; empty picks the default
}

// generatePDF lays the article out as an A4 PDF and writes it to outputPath.
//
// The top image, when present, is placed right after the title block. The
// remaining images are spread across the body at a fixed paragraph cadence
// (see imageInterval); whatever the cadence could not place is appended
// after the last block. A single broken image never aborts the document.
func generatePDF(article *ExtractedArticle, topImage *DownloadedImage, images []DownloadedImage, outputPath string, opts PDFOptions) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	fs, err := setupFonts(pdf, opts.FontFamily)
	if err != nil {
		return err
	}
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetModificationDate(pdfEpoch)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fs.Family, "", footerFontSize)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})
	pdf.SetAutoPageBreak(true, bottomMargin)
	pdf.SetFont(fs.Family, "", bodyFontSize)
	pdf.AddPage()

	pageWidth, _ := pdf.GetPageSize()
	leftMargin, _, rightMargin, _ := pdf.GetMargins()
	effectiveWidth := pageWidth - leftMargin - rightMargin

	title := opts.Title
	if title == "" {
		title = article.Title
	}
	pdf.SetFont(fs.Family, fs.style(true), titleFontSize)
	pdf.MultiCell(0, titleLineHeight, title, "", "", false)
	pdf.Ln(titleTrailSpacing)

	if meta := metadataLines(article); len(meta) > 0 {
		pdf.SetFont(fs.Family, "", metaFontSize)
		pdf.SetTextColor(100, 100, 100)
		for _, line := range meta {
			pdf.MultiCell(0, metaLineHeight, line, "", "", false)
		}
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(metaTrailSpacing)
	}

	if topImage != nil {
		insertImage(pdf, *topImage, effectiveWidth)
	}

	queue := images
	interval := imageInterval(countParagraphs(article.Content), len(queue))
	paragraphs := 0

	for _, block := range article.Content {
		switch block.Kind {
		case blockHeading:
			pdf.Ln(headingLeadSpacing)
			pdf.SetFont(fs.Family, fs.style(true), headingSize(block.Level))
			pdf.MultiCell(0, headingLineHeight, block.Text, "", "", false)
			pdf.Ln(headingTrailSpacing)
			pdf.SetFont(fs.Family, "", bodyFontSize)
		default:
			// Unknown kinds degrade to paragraphs of their raw text.
			pdf.SetFont(fs.Family, "", bodyFontSize)
			for _, line := range strings.Split(block.Text, "\n") {
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				pdf.MultiCell(0, bodyLineHeight, line, "", "", false)
			}
			pdf.Ln(blockTrailSpacing)

			paragraphs++
			if shouldPlaceImage(paragraphs, interval, len(queue)) {
				insertImage(pdf, queue[0], effectiveWidth)
				queue = queue[1:]
			}
		}
	}

	// Cadence too sparse to drain the queue: append the rest at the end.
	for _, img := range queue {
		insertImage(pdf, img, effectiveWidth)
	}

	return writePDF(pdf, outputPath)
}

// imageInterval computes the fixed interleaving cadence: with P paragraphs
// and I images, one image is placed every max(1, P/(I+1)) paragraphs. The +1
// keeps the last image from landing right after the final paragraph. The
// cadence is computed once at body-flow start and never rebalanced, even
// when a placement is skipped. Zero means the interleaver never triggers.
func imageInterval(paragraphs, images int) int {
	if images == 0 {
		return 0
	}
	interval := paragraphs / (images + 1)
	if interval < 1 {
		interval = 1
	}
	return interval
}

// shouldPlaceImage reports whether the image queue is consulted after the
// paragraph with the given running count.
func shouldPlaceImage(paragraphCount, interval, remaining int) bool {
	return remaining > 0 && interval > 0 && paragraphCount%interval == 0
}

// insertImage places an image scaled to at most maxWidth (never upscaled),
// horizontally centered, breaking the page first when it would not fit.
// Broken images are skipped without moving the cursor.
func insertImage(pdf *fpdf.Fpdf, img DownloadedImage, maxWidth float64) {
	if img.Width <= 0 || img.Height <= 0 {
		return
	}
	imageType, ok := probeImage(img.Path)
	if !ok {
		return
	}

	width := float64(img.Width)
	if width > maxWidth {
		width = maxWidth
	}
	scale := width / float64(img.Width)
	height := float64(img.Height) * scale

	_, pageHeight := pdf.GetPageSize()
	leftMargin, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+height > pageHeight-bottom {
		pdf.AddPage()
	}

	x := leftMargin + (maxWidth-width)/2
	if placeImage(pdf, img.Path, imageType, x, width) {
		pdf.Ln(imageTrailSpacing)
	}
}

// placeImage hands the file to the backend, containing parser panics and the
// backend's sticky error state so one bad image cannot abort the document.
// On failure the cursor is restored and nothing is consumed.
func placeImage(pdf *fpdf.Fpdf, path, imageType string, x, width float64) (placed bool) {
	y := pdf.GetY()
	defer func() {
		if r := recover(); r != nil {
			pdf.ClearError()
			pdf.SetY(y)
			placed = false
		}
	}()

	pdf.ImageOptions(path, x, 0, width, 0, true, fpdf.ImageOptions{ImageType: imageType}, 0, "")
	if !pdf.Ok() {
		pdf.ClearError()
		pdf.SetY(y)
		return false
	}
	return true
}

// probeImage fully decodes the file and reports the backend image type.
// A header-only check is not enough: the backend panics on truncated image
// bodies and its error state is sticky, so anything it cannot embed must be
// filtered out here instead of being handed to it.
func probeImage(path string) (string, bool) {
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return "", false
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return "", false
	}
	switch format {
	case "png", "jpeg", "gif":
		return format, true
	}
	return "", false
}

// writePDF renders the document to memory and moves it into place, so a
// failed run never leaves a partial file at outputPath.
func writePDF(pdf *fpdf.Fpdf, outputPath string) error {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".url2pdf-*.pdf")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	// CreateTemp uses 0600; the published document gets conventional perms.
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}
