package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/eidan66/wedding-album-sub000/internal/uploader"
)

const usage = `
Wedding Album - Bulk Uploader

Uploads files to an album server through its presign endpoints. Small files
go up as a single PUT, large files through a multipart session. Failed files
never block their siblings; rerun with the same arguments to retry.

Usage:
  uploader [flags] <file> [file...]

Flags:
  -server string    Album server base URL (default "http://localhost:8080")
  -name string      Uploader name recorded with each item (default "Guest")
  -parallel int     Concurrent uploads; 0 picks from the CPU count
  -no-compress      Disable client-side image recompression

Examples:
  go run cmd/uploader/main.go -name "Dana" photos/*.jpg
  go run cmd/uploader/main.go -server https://album.example.com video.mp4
`

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Album server base URL")
	name := flag.String("name", "Guest", "Uploader name recorded with each item")
	parallel := flag.Int("parallel", 0, "Concurrent uploads; 0 picks from the CPU count")
	noCompress := flag.Bool("no-compress", false, "Disable client-side image recompression")

	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	files, err := readFiles(flag.Args())
	if err != nil {
		log.Fatalf("Failed to read input files: %v", err)
	}

	compress := uploader.DefaultCompressOptions()
	if *noCompress {
		compress.Enabled = false
	}

	u := uploader.New(uploader.NewAPIClient(strings.TrimRight(*serverURL, "/")), uploader.Options{
		Parallel:     *parallel,
		Compress:     compress,
		UploaderName: *name,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batch := u.UploadAll(ctx, files, func(tasks []uploader.Task) {
		for _, t := range tasks {
			if t.Status == uploader.StatusUploading {
				fmt.Printf("\r%-40s %3d%%", truncate(t.FileName, 40), t.Progress)
			}
		}
	})
	fmt.Println()

	failed := 0
	for _, t := range batch.Snapshot() {
		switch t.Status {
		case uploader.StatusSuccess:
			fmt.Printf("  ok    %s\n", t.FileName)
		case uploader.StatusError:
			failed++
			fmt.Printf("  fail  %s: %s\n", t.FileName, t.Error)
		default:
			failed++
			fmt.Printf("  skip  %s\n", t.FileName)
		}
	}

	if failed > 0 {
		log.Fatalf("%d of %d uploads did not finish", failed, batch.Len())
	}
	log.Printf("All %d uploads finished", batch.Len())
}

func readFiles(paths []string) ([]uploader.File, error) {
	files := make([]uploader.File, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(p)))
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		files = append(files, uploader.File{
			Name:     filepath.Base(p),
			MimeType: mimeType,
			Data:     data,
		})
	}
	return files, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
