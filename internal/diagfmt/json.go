package diagfmt

import (
	"encoding/json"
	"io"
	"strconv"

	"rill/internal/ast"
	"rill/internal/diag"
	"rill/internal/source"
	"rill/internal/tables"
)

// ASTNodeOutput is the JSON shape of one expression.
type ASTNodeOutput struct {
	Kind     string          `json:"kind"`
	Span     SpanJSON        `json:"span"`
	Value    string          `json:"value,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

type SpanJSON struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

// BuildASTOutput converts e and its descendants without serialising them.
func BuildASTOutput(t *tables.Tables, e ast.Expr) ASTNodeOutput {
	if !e.IsValid() {
		return ASTNodeOutput{Kind: "none"}
	}
	data := t.Expr(e)
	node := ASTNodeOutput{
		Kind: data.Kind.String(),
		Span: SpanJSON{Start: data.Span.Start, End: data.Span.End},
	}
	switch data.Kind {
	case ast.ExprInteger:
		node.Value = strconv.FormatUint(data.Bits, 10)
	case ast.ExprFloat:
		v, _ := data.Float()
		node.Value = formatFloat(v)
	case ast.ExprBoolean:
		node.Value = strconv.FormatBool(data.Bool)
	case ast.ExprList:
		node.Children = make([]ASTNodeOutput, 0, len(data.Items))
		for _, item := range data.Items {
			node.Children = append(node.Children, BuildASTOutput(t, item))
		}
	case ast.ExprIf:
		node.Children = []ASTNodeOutput{BuildASTOutput(t, data.Cond), BuildASTOutput(t, data.Then)}
		if data.HasElse() {
			node.Children = append(node.Children, BuildASTOutput(t, data.Else))
		}
	}
	return node
}

// FormatASTJSON writes e as indented JSON.
func FormatASTJSON(w io.Writer, t *tables.Tables, e ast.Expr) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildASTOutput(t, e))
}

type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
}

// DiagnosticsOutput is the root object of JSON diagnostics.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Dropped     int              `json:"dropped,omitempty"`
}

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	switch mode {
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	default:
		return f.FormatPath(mode.String(), "")
	}
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, includePositions bool) LocationJSON {
	loc := LocationJSON{
		StartByte: span.Start,
		EndByte:   span.End,
	}
	if fs == nil || int(span.File) >= fs.Len() {
		return loc
	}
	loc.File = formatPath(fs.Get(span.File), fs, pathMode)
	if includePositions {
		startPos, endPos := fs.Resolve(span)
		loc.StartLine = startPos.Line
		loc.StartCol = startPos.Col
		loc.EndLine = endPos.Line
		loc.EndCol = endPos.Col
	}
	return loc
}

// BuildDiagnosticsOutput prepares the JSON structure without serialising it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	limit := len(items)
	if opts.Max > 0 && opts.Max < limit {
		limit = opts.Max
	}

	diagnostics := make([]DiagnosticJSON, 0, limit)
	for _, d := range items[:limit] {
		out := DiagnosticJSON{
			Severity: d.Severity.String(),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Location: makeLocation(d.Primary, fs, opts.PathMode, opts.IncludePositions),
		}
		includeNotes := opts.IncludeNotes || d.Code == diag.ObsTimings
		if includeNotes && len(d.Notes) > 0 {
			out.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				out.Notes[j] = NoteJSON{
					Message:  note.Msg,
					Location: makeLocation(note.Span, fs, opts.PathMode, opts.IncludePositions),
				}
			}
		}
		diagnostics = append(diagnostics, out)
	}

	return DiagnosticsOutput{
		Diagnostics: diagnostics,
		Count:       len(diagnostics),
		Dropped:     bag.Dropped() + len(items) - limit,
	}
}

// JSON writes diagnostics as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
