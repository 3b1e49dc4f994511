package downloader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/robert-malhotra/go-imagery-client/pkg/imagery"
)

// Options controls a batch frame download.
type Options struct {
	// PreserveDirs mirrors the provider's URL path layout under the output
	// directory and writes metadata sidecars under a parallel metadata/
	// tree. When false, files are numbered flat: 0.jpg, 0.json, 1.jpg, ...
	PreserveDirs bool
	// Workers bounds concurrent downloads. Zero means DefaultWorkers.
	Workers int
	// Progress, if set, is invoked once per completed frame.
	Progress func(done, total int)
}

// DefaultWorkers bounds concurrent payload downloads when no pool size is
// requested.
const DefaultWorkers = 20

// FetchFrames downloads every frame payload into dir and writes a JSON
// metadata sidecar per frame. Metadata is written up front so a failed image
// download never leaves a payload without its sidecar.
func FetchFrames(ctx context.Context, frames []imagery.Frame, dir string, opts Options) error {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	type target struct {
		url  string
		dest string
	}
	targets := make([]target, 0, len(frames))

	for i, frame := range frames {
		imgPath, metaPath, err := framePaths(frame, i, opts.PreserveDirs)
		if err != nil {
			return err
		}
		if err := writeMetadata(filepath.Join(dir, metaPath), frame); err != nil {
			return err
		}
		targets = append(targets, target{url: frame.URL, dest: filepath.Join(dir, imgPath)})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var done atomic.Int64
	for _, tgt := range targets {
		tgt := tgt
		g.Go(func() error {
			if err := Fetch(gctx, tgt.url, tgt.dest); err != nil {
				return fmt.Errorf("fetch %s: %w", filepath.Base(tgt.dest), err)
			}
			if opts.Progress != nil {
				opts.Progress(int(done.Add(1)), len(targets))
			}
			return nil
		})
	}

	return g.Wait()
}

// framePaths derives the relative image and metadata paths for one frame.
func framePaths(frame imagery.Frame, index int, preserveDirs bool) (string, string, error) {
	if !preserveDirs {
		return fmt.Sprintf("%d.jpg", index), fmt.Sprintf("%d.json", index), nil
	}

	u, err := url.Parse(frame.URL)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse frame URL: %w", err)
	}
	imgPath := strings.TrimPrefix(u.Path, "/")
	if imgPath == "" {
		return "", "", fmt.Errorf("frame URL %q has no path", frame.URL)
	}

	metaPath := strings.Replace(imgPath, "keyframes", "metadata", 1)
	if ext := filepath.Ext(metaPath); ext != "" {
		metaPath = strings.TrimSuffix(metaPath, ext)
	}
	metaPath += ".json"

	return imgPath, metaPath, nil
}

func writeMetadata(path string, frame imagery.Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create metadata directory: %w", err)
	}
	data, err := json.MarshalIndent(frame.Metadata(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
