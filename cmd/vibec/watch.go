package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/syncthing/notify"

	"github.com/hassan/vibelang/internal/driver"
)

// debounce is how long the watcher waits for a burst of events to settle.
const debounce = 100 * time.Millisecond

// runWatch compiles every source under path, then recompiles the sources
// that change until ctx is cancelled.
func runWatch(ctx context.Context, comp *driver.Compiler, path string, stdout, stderr io.Writer) int {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", red("✗"), err)
		return exitFail
	}
	pattern := path
	if info.IsDir() {
		pattern = filepath.Join(path, "...")
	}

	sources, err := findSources(path)
	if err != nil {
		fmt.Fprintf(stderr, "%s %v\n", red("✗"), err)
		return exitFail
	}
	compileBatch(ctx, comp, sources, stdout, stderr)

	// Buffered so a burst does not block notify; it drops events when the
	// receiver falls behind.
	c := make(chan notify.EventInfo, 16)
	if err := notify.Watch(pattern, c, notify.Write, notify.Create, notify.Rename); err != nil {
		fmt.Fprintf(stderr, "%s cannot watch %s: %v\n", red("✗"), path, err)
		return exitFail
	}
	defer notify.Stop(c)
	fmt.Fprintf(stdout, "Watching %s for changes...\n", path)

	pending := map[string]bool{}
	var timer *time.Timer
	timeout := func() <-chan time.Time {
		if timer != nil {
			return timer.C
		}
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return exitOK
		case ev := <-c:
			if !isSource(ev.Path()) {
				continue
			}
			pending[ev.Path()] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
		case <-timeout():
			timer = nil
			compileBatch(ctx, comp, drain(pending), stdout, stderr)
		}
	}
}

// compileBatch compiles sources next to their inputs and prints a status
// line for each.
func compileBatch(ctx context.Context, comp *driver.Compiler, sources []string, stdout, stderr io.Writer) {
	if len(sources) == 0 {
		return
	}
	jobs := make([]driver.Job, len(sources))
	for i, src := range sources {
		jobs[i] = driver.Job{Input: src, Output: driver.OutputPath(src)}
	}
	reports, _ := comp.CompileAll(ctx, jobs)
	for _, rep := range reports {
		printReport(stdout, stderr, rep, comp.CheckOnly)
	}
}

// findSources lists the .vibe files at or below path, sorted.
func findSources(path string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isSource(p) {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// drain empties the pending set and returns the paths that still exist,
// sorted.
func drain(pending map[string]bool) []string {
	var out []string
	for p := range pending {
		delete(pending, p)
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func isSource(path string) bool {
	return strings.HasSuffix(path, driver.SourceExt)
}
