package main

import (
	"fmt"
	"os"

	"github.com/ironsheep/patch-features-mcp/internal/config"
	"github.com/ironsheep/patch-features-mcp/internal/logger"
	"github.com/ironsheep/patch-features-mcp/internal/ocr"
	"github.com/ironsheep/patch-features-mcp/internal/server"
	"golang.org/x/term"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("patch-features-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			if ocr.Available() {
				fmt.Printf("  Tesseract:  %s\n", ocr.Version())
			} else {
				fmt.Println("  Tesseract:  not compiled in")
			}
			return
		case "--help", "-h", "help":
			fmt.Println("patch-features-mcp - MCP server for image patch feature extraction")
			fmt.Println()
			fmt.Println("Usage: patch-features-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables (also read from .env):")
			fmt.Println("  FEATURE_MCP_ENV_FILE=.env          Dotenv file to load")
			fmt.Println("  FEATURE_MCP_LOG_LEVEL=info         Log level (debug, info, warn, error)")
			fmt.Println("  FEATURE_MCP_SCAN_WORKERS=<ncpu>    Extractor trees per scan")
			fmt.Println("  FEATURE_MCP_MEMO_BYTES=16777216    Default memo extractor budget")
			fmt.Println("  FEATURE_MCP_MAX_SCAN_RESULTS=10000 Patches returned by one scan")
			fmt.Println("  FEATURE_MCP_TEXT_LOCATOR=edge      Text locator (edge, ocr)")
			fmt.Println("  FEATURE_MCP_OCR_LANG=eng           Tesseract language")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	// Log to stderr; stdout is for MCP protocol
	log := logger.New(cfg.LogLevel, os.Stderr)
	log.WithField("commit", GitCommit).Debugf("Patch Features MCP Server v%s (built %s)", Version, BuildTime)

	if term.IsTerminal(int(os.Stdin.Fd())) {
		log.Warn("stdin is a terminal; this server expects JSON-RPC requests from an MCP client")
	}

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
