// Package main converts a web article into a paginated PDF document.
//
// The tool extracts the article (title, metadata, content blocks, images)
// from a URL, downloads the images, and lays everything out as an A4 PDF:
//   - title and metadata header
//   - top image, when the page declares one
//   - headings and paragraphs in reading order, with the remaining images
//     spread evenly between paragraphs
//
// The generated PDF can optionally be emailed via SMTP.
//
// Usage: url2pdf [flags] URL
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

// ---------------------------------------------------------------------------
// Constants
// ---------------------------------------------------------------------------

const (
	version = "1.0.0"

	defaultMaxImages  = 10
	defaultConfigPath = "config.json"
)

// ---------------------------------------------------------------------------
// Configuration
// ---------------------------------------------------------------------------

type SMTPConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type EmailConfig struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type Config struct {
	SMTP  SMTPConfig  `json:"smtp"`
	Email EmailConfig `json:"email"`
}

// loadConfig reads and parses the JSON configuration file used for --email.
func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Email.From == "" || cfg.Email.To == "" {
		return nil, fmt.Errorf("email from/to not configured")
	}

	return &cfg, nil
}

// ---------------------------------------------------------------------------
// Main
// ---------------------------------------------------------------------------

type runOptions struct {
	URL        string
	Output     string
	Title      string
	FontFamily string
	ConfigPath string
	NoImages   bool
	Email      bool
	Verbose    bool
	MaxImages  int
}

func main() {
	var (
		o           runOptions
		listFonts   bool
		showVersion bool
	)

	flags := pflag.NewFlagSet("url2pdf", pflag.ExitOnError)
	flags.StringVarP(&o.Output, "output", "o", "", "Output PDF file path")
	flags.StringVar(&o.Title, "title", "", "Custom title for the PDF (overrides extracted title)")
	flags.BoolVar(&o.NoImages, "no-images", false, "Skip downloading and including images")
	flags.IntVar(&o.MaxImages, "max-images", defaultMaxImages, "Maximum number of images to include")
	flags.StringVar(&o.FontFamily, "font", "", "Font family to use (e.g. noto-sans, liberation-sans)")
	flags.BoolVar(&listFonts, "list-fonts", false, "List available fonts and exit")
	flags.BoolVar(&o.Email, "email", false, "Email the generated PDF (requires config file)")
	flags.StringVar(&o.ConfigPath, "config", defaultConfigPath, "JSON config file with SMTP settings for --email")
	flags.BoolVarP(&o.Verbose, "verbose", "v", false, "Enable verbose output")
	flags.BoolVar(&showVersion, "version", false, "Print version and exit")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: url2pdf [flags] URL")
		fmt.Fprintln(os.Stderr, "\nExtracts the article at URL and saves it as a PDF.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	if showVersion {
		fmt.Printf("url2pdf v%s\n", version)
		return
	}
	if listFonts {
		if err := runListFonts(os.Stdout); err != nil {
			fatalf("%v", err)
		}
		return
	}
	if flags.NArg() < 1 {
		fatalf("URL is required (unless using --list-fonts)")
	}
	if o.Output == "" {
		fatalf("output file path is required (-o/--output)")
	}
	o.URL = flags.Arg(0)

	if err := run(o); err != nil {
		fatalf("%v", err)
	}
}

// run drives extraction, image download, layout and optional delivery.
// Downloaded temp files are always removed, also when generation fails.
func run(o runOptions) error {
	if o.Verbose {
		if o.FontFamily != "" {
			fmt.Printf("Using font: %s\n", o.FontFamily)
		} else if def, ok := defaultFont(); ok {
			fmt.Printf("Using default font: %s\n", def.Name)
		}
		fmt.Printf("Extracting article from: %s\n", o.URL)
	}

	article, err := extractArticle(o.URL)
	if err != nil {
		return fmt.Errorf("failed to extract article: %w", err)
	}

	if o.Verbose {
		fmt.Printf("Title: %s\n", article.Title)
		fmt.Printf("Content blocks: %d\n", len(article.Content))
		top := article.TopImage
		if top == "" {
			top = "None"
		}
		fmt.Printf("Top image: %s\n", top)
		fmt.Printf("Found %d images\n", len(article.Images))
	}

	var topImage *DownloadedImage
	var images []DownloadedImage
	if !o.NoImages {
		if article.TopImage != "" {
			if o.Verbose {
				fmt.Println("Downloading top image...")
			}
			topImage = downloadTopImage(article.TopImage, o.Verbose)
		}
		if len(article.Images) > 0 {
			if o.Verbose {
				fmt.Println("Downloading article images...")
			}
			skip := make(map[string]bool)
			if article.TopImage != "" {
				skip[article.TopImage] = true
			}
			images = downloadImages(article.Images, o.MaxImages, skip, o.Verbose)
		}
		if o.Verbose {
			suffix := ""
			if topImage != nil {
				suffix = " + top image"
			}
			fmt.Printf("Downloaded %d images%s\n", len(images), suffix)
		}
	}
	defer func() {
		all := images
		if topImage != nil {
			all = append(all, *topImage)
		}
		cleanupImages(all)
	}()

	if o.Verbose {
		fmt.Printf("Generating PDF: %s\n", o.Output)
	}
	opts := PDFOptions{Title: o.Title, FontFamily: o.FontFamily}
	if err := generatePDF(article, topImage, images, o.Output, opts); err != nil {
		return err
	}
	fmt.Printf("Saved: %s\n", o.Output)

	if o.Email {
		cfg, err := loadConfig(o.ConfigPath)
		if err != nil {
			return err
		}
		title := o.Title
		if title == "" {
			title = article.Title
		}
		if err := sendEmail(cfg, "Article: "+title, o.Output); err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		fmt.Printf("Emailed to: %s\n", cfg.Email.To)
	}

	return nil
}

// runListFonts prints the installed font families, marking the default.
func runListFonts(w io.Writer) error {
	available := availableFonts()
	if len(available) == 0 {
		fmt.Fprintln(w, "No fonts are available on this system.")
		fmt.Fprintln(w, "\nPlease install one of the following:")
		for _, fam := range fontFamilies {
			fmt.Fprintf(w, "  - %s\n", fam.DisplayName)
		}
		return fmt.Errorf("no fonts available")
	}

	def, _ := defaultFont()
	fmt.Fprintln(w, "Available fonts:")
	for _, fam := range available {
		mark := ""
		if fam.Name == def.Name {
			mark = " (default)"
		}
		fmt.Fprintf(w, "  * %s (%s)%s\n", fam.Name, fam.DisplayName, mark)
	}
	return nil
}

// fatalf prints an error to stderr and exits non-zero.
func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "url2pdf: "+format+"\n", args...)
	os.Exit(1)
}
