package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"drift/internal/diag"
	"drift/internal/diagfmt"
	"drift/internal/driver"
	"drift/internal/source"
)

var (
	checkUIFlag    string
	checkNoCache   bool
	checkShowNotes bool
)

func init() {
	checkCmd.Flags().StringVar(&checkUIFlag, "ui", "auto", "progress UI (auto|on|off)")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "skip the on-disk result cache")
	checkCmd.Flags().BoolVar(&checkShowNotes, "notes", true, "show secondary notes for diagnostics")
}

var checkCmd = &cobra.Command{
	Use:          "check [paths...]",
	Short:        "Analyze drift sources and report diagnostics",
	SilenceUsage: true,
	RunE:         runCheck,
}

// fileReport is the per-file outcome of a check run, in path order.
type fileReport struct {
	path    string
	file    *source.File
	fileSet *source.FileSet
	bag     *diag.Bag
	readErr error
}

func runCheck(cmd *cobra.Command, args []string) error {
	files, err := collectCheckFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", driver.DriftExt)
	}

	opts := driver.AnalyzeOptions{MaxDiagnostics: maxDiagnosticsFlag(cmd)}

	var cache *driver.DiskCache
	if !checkNoCache {
		if opened, cacheErr := driver.OpenDiskCache("drift"); cacheErr == nil {
			cache = opened
		}
	}

	reports := make([]fileReport, len(files))
	pending := make([]string, 0, len(files))
	pendingIdx := make(map[string]int, len(files))
	for i, path := range files {
		reports[i] = fileReport{path: path}
		if report := loadCachedReport(cache, path); report != nil {
			reports[i] = *report
			continue
		}
		pending = append(pending, path)
		pendingIdx[path] = i
	}

	if len(pending) > 0 {
		mode, err := readUIMode(checkUIFlag)
		if err != nil {
			return err
		}
		var results []driver.CheckResult
		if shouldUseTUI(mode) {
			results, err = runCheckWithUI(cmd, pending, opts)
		} else {
			results, err = driver.AnalyzePaths(cmd.Context(), pending, opts, driver.NopSink{})
		}
		if err != nil {
			return err
		}
		for _, res := range results {
			i := pendingIdx[res.Path]
			if res.Err != nil {
				reports[i].readErr = res.Err
				continue
			}
			reports[i].file = res.Analysis.File
			reports[i].bag = res.Analysis.Bag
			if cache != nil {
				if storeErr := cache.Store(driver.PayloadFromAnalysis(res.Analysis)); storeErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "drift: cache write failed: %v\n", storeErr)
				}
			}
		}
	}

	return printCheckReports(cmd, reports)
}

func collectCheckFiles(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	seen := make(map[string]struct{})
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			listed, err := driver.ListDriftFiles(arg)
			if err != nil {
				return nil, err
			}
			for _, path := range listed {
				if _, ok := seen[path]; !ok {
					seen[path] = struct{}{}
					files = append(files, path)
				}
			}
			continue
		}
		path := filepath.Clean(arg)
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}
	sort.Strings(files)
	return files, nil
}

// loadCachedReport rebuilds a report from the disk cache when the file
// content still matches the cached hash.
func loadCachedReport(cache *driver.DiskCache, path string) *fileReport {
	if cache == nil {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	payload, ok := cache.Load(sha256.Sum256(content))
	if !ok {
		return nil
	}
	fileSet := source.NewFileSet()
	file := fileSet.Get(fileSet.AddVirtual(path, content))
	bag := diag.NewBag(len(payload.Diagnostics))
	for _, d := range driver.DiagnosticsFromPayload(payload, file) {
		bag.Add(d)
	}
	return &fileReport{path: path, file: file, fileSet: fileSet, bag: bag}
}

func printCheckReports(cmd *cobra.Command, reports []fileReport) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	prettyOpts := diagfmt.PrettyOpts{
		Color:     colorEnabled(cmd, os.Stdout),
		PathMode:  diagfmt.PathModeRelative,
		ShowNotes: checkShowNotes,
	}
	if wd, err := os.Getwd(); err == nil {
		prettyOpts.BaseDir = wd
	}

	checkedFiles := 0
	totalErrors := 0
	totalWarnings := 0
	for _, report := range reports {
		if report.readErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "drift: %s: %v\n", report.path, report.readErr)
			totalErrors++
			continue
		}
		if report.bag == nil {
			continue
		}
		checkedFiles++
		fileSet := report.fileSet
		if fileSet == nil {
			fileSet = source.NewFileSet()
			report.file = fileSet.Get(fileSet.AddVirtual(report.path, report.file.Content))
		}
		diagfmt.Pretty(cmd.OutOrStdout(), report.bag, fileSet, prettyOpts)
		if report.bag.HasErrors() {
			totalErrors++
		} else if report.bag.HasWarnings() {
			totalWarnings++
		}
	}

	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d files: %d with errors, %d with warnings\n",
			checkedFiles, totalErrors, totalWarnings)
	}
	if totalErrors > 0 {
		return fmt.Errorf("%d files with errors", totalErrors)
	}
	return nil
}
