// package formatter exports movie listings (library, matches, history, journal) to CSV, Markdown, plain text, YAML and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mmx/internal/models"
	"github.com/desertthunder/mmx/internal/shared"
	"gopkg.in/yaml.v3"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatYAML     Format = "yaml"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or its usual file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json", "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
	}
}

// Ext returns the file extension for f, without the dot.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatText:
		return "txt"
	default:
		return string(f)
	}
}

// Export is a titled table of movies ready to be rendered.
//
// Rows line up with Headers. Items holds the typed source data used for JSON output.
// Posters, when present, holds one poster URL per row for Markdown output.
type Export struct {
	Name    string
	Title   string
	Headers []string
	Rows    [][]string
	Posters []string
	Items   any
}

// LibraryExport lists every catalogue movie with its like count and who has yet to see it.
func LibraryExport(movies []models.LibraryMovie) *Export {
	e := &Export{
		Name:    "library",
		Title:   "All Movies",
		Headers: []string{"ID", "Title", "Year", "Genre", "Rating", "Likes", "Added By", "Unseen By"},
		Items:   movies,
	}
	for _, m := range movies {
		unseen := "Seen by all"
		if !m.SeenByAll() {
			unseen = joinUsers(m.UnseenBy)
		}
		e.Rows = append(e.Rows, []string{
			m.ID.String(), m.Title, year(m.Year), m.Genre, m.Rating,
			strconv.Itoa(m.LikesCount), m.AddedBy.Username, unseen,
		})
		e.Posters = append(e.Posters, m.Poster)
	}
	return e
}

// MatchesExport lists movies liked by every compared user.
func MatchesExport(matches []models.Match) *Export {
	e := &Export{
		Name:    "matches",
		Title:   "Universal Matches",
		Headers: []string{"ID", "Title", "Year", "Genre", "Matches", "Liked By"},
		Items:   matches,
	}
	for _, m := range matches {
		e.Rows = append(e.Rows, []string{
			m.ID.String(), m.Title, year(m.Year), m.Genre, strconv.Itoa(m.MatchCount), joinUsers(m.MatchedUsers),
		})
		e.Posters = append(e.Posters, m.Poster)
	}
	return e
}

// HistoryExport lists the logged-in user's decisions as reported by the backend.
func HistoryExport(entries []models.HistoryEntry) *Export {
	e := &Export{
		Name:    "history",
		Title:   "Movie History",
		Headers: []string{"Title", "Decision"},
		Items:   entries,
	}
	for _, h := range entries {
		d := models.Dislike
		if h.Liked {
			d = models.Like
		}
		e.Rows = append(e.Rows, []string{h.Title, d.String()})
	}
	return e
}

// JournalExport lists decisions from the local journal, including failed submissions.
func JournalExport(records []*models.DecisionRecord) *Export {
	type item struct {
		Sequence    int       `json:"sequence"`
		CandidateID models.ID `json:"candidate_id"`
		Title       string    `json:"title"`
		Year        int       `json:"year,omitempty"`
		Decision    string    `json:"decision"`
		SubmitError string    `json:"submit_error,omitempty"`
		CreatedAt   time.Time `json:"created_at"`
	}

	e := &Export{
		Name:    "journal",
		Title:   "Local Decision Journal",
		Headers: []string{"#", "ID", "Title", "Year", "Decision", "Submitted", "Created At"},
	}
	items := make([]item, 0, len(records))
	for _, r := range records {
		submitted := "yes"
		if !r.Submitted() {
			submitted = "no: " + r.SubmitError()
		}
		e.Rows = append(e.Rows, []string{
			strconv.Itoa(r.Sequence()), r.CandidateID().String(), r.Title(), year(r.Year()),
			r.Decision().String(), submitted, r.CreatedAt().Format(time.RFC3339),
		})
		items = append(items, item{
			Sequence:    r.Sequence(),
			CandidateID: r.CandidateID(),
			Title:       r.Title(),
			Year:        r.Year(),
			Decision:    r.Decision().String(),
			SubmitError: r.SubmitError(),
			CreatedAt:   r.CreatedAt(),
		})
	}
	e.Items = items
	return e
}

// Render encodes e in format f.
func Render(e *Export, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(e)
	case FormatMarkdown:
		return ExportToMarkdown(e)
	case FormatText:
		return ExportToText(e)
	case FormatYAML:
		return ExportToYAML(e)
	case FormatJSON:
		return ExportToJSON(e)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, f)
	}
}

// ExportToCSV writes a header row followed by one record per row.
func ExportToCSV(e *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(e.Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range e.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading, a count, and a pipe table. Posters are embedded as thumbnails when known.
func ExportToMarkdown(e *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", e.Title)
	fmt.Fprintf(&buf, "**Movies**: %s\n\n", shared.FormatCount(len(e.Rows)))

	if len(e.Rows) == 0 {
		buf.WriteString("_Nothing here yet._\n")
		return buf.Bytes(), nil
	}

	withPosters := hasAny(e.Posters)
	headers := e.Headers
	if withPosters {
		headers = append([]string{"Poster"}, headers...)
	}

	buf.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(headers)) + "\n")

	for i, row := range e.Rows {
		cells := make([]string, 0, len(headers))
		if withPosters {
			poster := ""
			if i < len(e.Posters) && e.Posters[i] != "" && e.Posters[i] != "N/A" {
				poster = fmt.Sprintf("![poster](%s)", e.Posters[i])
			}
			cells = append(cells, poster)
		}
		for _, cell := range row {
			cells = append(cells, strings.ReplaceAll(cell, "|", `\|`))
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes(), nil
}

// ExportToText renders a numbered list: "1. Title (Year) - remaining columns".
func ExportToText(e *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", e.Title)
	fmt.Fprintf(&buf, "Movies: %s\n\n", shared.FormatCount(len(e.Rows)))

	titleCol := indexOf(e.Headers, "Title")
	for i, row := range e.Rows {
		var head string
		var rest []string
		for j, cell := range row {
			switch {
			case j == titleCol:
				head = cell
			case cell != "":
				rest = append(rest, fmt.Sprintf("%s: %s", e.Headers[j], cell))
			}
		}
		fmt.Fprintf(&buf, "%d. %s", i+1, head)
		if len(rest) > 0 {
			buf.WriteString(" - " + strings.Join(rest, ", "))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToYAML renders the rows as a sequence of mappings keyed by header, keeping column order.
func ExportToYAML(e *Export) ([]byte, error) {
	rows := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range e.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for j, cell := range row {
			key := strings.ToLower(strings.ReplaceAll(e.Headers[j], " ", "_"))
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: cell},
			)
		}
		rows.Content = append(rows.Content, m)
	}

	doc := &yaml.Node{Kind: yaml.MappingNode, Content: []*yaml.Node{
		{Kind: yaml.ScalarNode, Value: "title"},
		{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Title},
		{Kind: yaml.ScalarNode, Value: "movies"},
		rows,
	}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode YAML: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToJSON writes the typed items, indented.
func ExportToJSON(e *Export) ([]byte, error) {
	items := e.Items
	if items == nil {
		items = []any{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders e and writes it to path, creating parent directories.
//
// Defaults to {name}.{ext} in the working directory.
func WriteExport(e *Export, f Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.%s", e.Name, f.Ext())
	}

	data, err := Render(e, f)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

func joinUsers(users []models.UserRef) string {
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Username
	}
	return strings.Join(names, ", ")
}

func year(y int) string {
	if y == 0 {
		return ""
	}
	return strconv.Itoa(y)
}

func hasAny(values []string) bool {
	for _, v := range values {
		if v != "" && v != "N/A" {
			return true
		}
	}
	return false
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
