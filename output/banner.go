package output

import (
	"fmt"
	"io"

	"github.com/common-nighthawk/go-figure"
)

// BannerOptions configures the startup banner display.
type BannerOptions struct {
	ShowBanner  bool // Show ASCII art logo
	ShowVersion bool // Show version information
	ShowLicense bool // Show license information
	Tier        string // policy tier this run is bound to, e.g. "free", "pro" — blank to omit
}

// DefaultBannerOptions returns default banner configuration.
func DefaultBannerOptions() BannerOptions {
	return BannerOptions{
		ShowBanner:  true,
		ShowVersion: true,
		ShowLicense: true,
	}
}

// PrintBanner displays the scalpel logo and information.
func PrintBanner(w io.Writer, version string, opts BannerOptions) {
	if w == nil {
		return
	}

	if !opts.ShowBanner {
		// Simple text-only banner
		if opts.ShowVersion {
			fmt.Fprintf(w, "Code Scalpel v%s\n", version)
		}
		if opts.ShowLicense {
			fmt.Fprintf(w, "AGPL-3.0 License | https://github.com/codescalpel/codescalpel\n")
		}
		printTier(w, opts.Tier)
		fmt.Fprintln(w)
		return
	}

	// Generate ASCII art using go-figure
	asciiArt := GetASCIILogo()
	fmt.Fprintln(w, asciiArt)

	// Version and license info
	if opts.ShowVersion {
		fmt.Fprintf(w, "Code Scalpel v%s\n", version)
	}

	if opts.ShowLicense {
		fmt.Fprintln(w, "AGPL-3.0 License | https://github.com/codescalpel/codescalpel")
	}
	printTier(w, opts.Tier)

	// Empty line separator
	fmt.Fprintln(w)
}

func printTier(w io.Writer, tier string) {
	if tier == "" {
		return
	}
	fmt.Fprintf(w, "Tier: %s\n", tier)
}

// GetASCIILogo generates the ASCII art logo for "Scalpel".
func GetASCIILogo() string {
	// Use "standard" font for compact output
	fig := figure.NewFigure("Scalpel", "standard", true)
	return fig.String()
}

// GetCompactBanner returns a single-line banner for non-TTY output.
func GetCompactBanner(version string) string {
	return fmt.Sprintf("Code Scalpel v%s | AGPL-3.0 | https://github.com/codescalpel/codescalpel", version)
}

// ShouldShowBanner determines if banner should be displayed.
func ShouldShowBanner(isTTY bool, noBannerFlag bool) bool {
	// Never show if --no-banner is set
	if noBannerFlag {
		return false
	}
	// Show full banner only in TTY
	return isTTY
}
