package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"drift/internal/diag"
	"drift/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	caretColor   = color.New(color.FgRed)
	noteColor    = color.New(color.FgBlue)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <sev> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		printDiagnostic(w, d, fs, opts)
	}
}

// PrettyOne renders a single diagnostic.
func PrettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	printDiagnostic(w, d, fs, opts)
}

func printDiagnostic(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)

	sev := severityLabel(d.Severity, opts.Color)
	path := formatPath(file, opts)
	fmt.Fprintf(w, "%s:%d:%d: %s %s: %s\n", path, start.Line, start.Col, sev, d.Code.ID(), d.Message)
	printContext(w, file, d.Primary, opts)

	if opts.ShowNotes {
		for _, note := range d.Notes {
			noteStart, _ := fs.Resolve(note.Span)
			label := "note"
			if opts.Color {
				label = noteColor.Sprint(label)
			}
			fmt.Fprintf(w, "%s:%d:%d: %s: %s\n", path, noteStart.Line, noteStart.Col, label, note.Msg)
		}
	}
}

// printContext prints the offending source line followed by a caret line
// aligned under the span, respecting display widths of wide runes.
func printContext(w io.Writer, file *source.File, span source.Span, opts PrettyOpts) {
	startLC := lineColAt(file, span.Start)
	line := file.GetLine(startLC.Line)
	if line == "" {
		return
	}
	display := strings.ReplaceAll(line, "\t", "    ")
	if opts.Width > 0 && runewidth.StringWidth(display) > opts.Width {
		display = runewidth.Truncate(display, opts.Width, "...")
	}
	fmt.Fprintf(w, "  %s\n", display)

	// отступ до начала спана в экранных колонках
	prefix := line[:min(int(startLC.Col-1), len(line))]
	prefix = strings.ReplaceAll(prefix, "\t", "    ")
	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))

	length := int(span.Len())
	if length < 1 {
		length = 1
	}
	end := min(int(startLC.Col-1)+length, len(line))
	marked := line[min(int(startLC.Col-1), len(line)):end]
	width := runewidth.StringWidth(marked)
	if width < 1 {
		width = 1
	}
	caret := "^" + strings.Repeat("~", width-1)
	if opts.Color {
		caret = caretColor.Sprint(caret)
	}
	fmt.Fprintf(w, "  %s%s\n", pad, caret)
}

func severityLabel(sev diag.Severity, colored bool) string {
	label := strings.ToLower(sev.String())
	if !colored {
		return label
	}
	switch sev {
	case diag.SevError:
		return errorColor.Sprint(label)
	case diag.SevWarning:
		return warningColor.Sprint(label)
	default:
		return infoColor.Sprint(label)
	}
}

func formatPath(file *source.File, opts PrettyOpts) string {
	switch opts.PathMode {
	case PathModeAbsolute:
		if abs, err := source.AbsolutePath(file.Path); err == nil {
			return abs
		}
		return file.Path
	case PathModeRelative:
		if opts.BaseDir != "" {
			if rel, err := source.RelativePath(file.Path, opts.BaseDir); err == nil {
				return rel
			}
		}
		return file.Path
	case PathModeBasename:
		if idx := strings.LastIndexByte(file.Path, '/'); idx >= 0 {
			return file.Path[idx+1:]
		}
		return file.Path
	default:
		return file.Path
	}
}

func lineColAt(file *source.File, offset uint32) source.LineCol {
	line := uint32(1)
	col := uint32(1)
	for i := uint32(0); i < offset && i < uint32(len(file.Content)); i++ {
		if file.Content[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return source.LineCol{Line: line, Col: col}
}
