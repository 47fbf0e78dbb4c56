package driver

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// DriftExt is the source file extension the toolchain recognizes.
const DriftExt = ".dr"

// CheckResult contains the outcome of analyzing one file in a batch run.
type CheckResult struct {
	Path     string
	Analysis *FileAnalysis
	Err      error
}

// ListDriftFiles returns the sorted list of *.dr files under dir.
func ListDriftFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), DriftExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// AnalyzePaths analyzes the given files concurrently. Results come back in
// path order regardless of completion order; per-file read failures are
// recorded in the result rather than aborting the batch.
func AnalyzePaths(ctx context.Context, paths []string, opts AnalyzeOptions, sink ProgressSink) ([]CheckResult, error) {
	if sink == nil {
		sink = NopSink{}
	}
	results := make([]CheckResult, len(paths))
	for i, path := range paths {
		results[i] = CheckResult{Path: path}
		sink.Publish(Event{File: path, Stage: StageParse, Status: StatusQueued})
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sink.Publish(Event{File: path, Stage: StageParse, Status: StatusWorking})
			content, err := os.ReadFile(path)
			if err != nil {
				results[i].Err = err
				sink.Publish(Event{File: path, Stage: StageParse, Status: StatusError})
				return nil
			}
			sink.Publish(Event{File: path, Stage: StageResolve, Status: StatusWorking})
			analysis := AnalyzeFile(path, content, opts)
			results[i].Analysis = analysis
			status := StatusDone
			if analysis.Bag.HasErrors() {
				status = StatusError
			}
			sink.Publish(Event{File: path, Stage: StageResolve, Status: status})
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
