package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"newsbrief/app/database"
)

// Formats supported by Run.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatTXT      = "txt"
)

// Run writes items to a file in the requested format and returns the
// filename. The output argument is the filename without extension.
func Run(items []database.Item, format, output string, days int) (string, error) {
	filename := output + "." + format

	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = renderJSON(items)
	case FormatCSV:
		data, err = renderCSV(items)
	case FormatMarkdown:
		data, err = renderMarkdown(items, days)
	case FormatTXT:
		data, err = renderTXT(items, days)
	default:
		return "", fmt.Errorf("unsupported format %q (use: json, csv, markdown, txt)", format)
	}
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return filename, nil
}

type exportItem struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	Summary     string `json:"summary"`
	PublishedAt string `json:"published_at"`
	CreatedAt   string `json:"created_at"`
	Tags        string `json:"tags"`
	IsNotified  bool   `json:"is_notified"`
}

func renderJSON(items []database.Item) ([]byte, error) {
	payload := make([]exportItem, 0, len(items))
	for _, item := range items {
		payload = append(payload, exportItem{
			ID:          item.ID,
			Title:       item.Title,
			URL:         item.URL,
			Content:     item.Content,
			Summary:     item.Summary,
			PublishedAt: item.PublishedAt.UTC().Format(time.RFC3339),
			CreatedAt:   item.CreatedAt.UTC().Format(time.RFC3339),
			Tags:        item.Tags,
			IsNotified:  item.IsNotified,
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	return data, nil
}

func renderCSV(items []database.Item) ([]byte, error) {
	var b strings.Builder
	w := csv.NewWriter(&b)

	if err := w.Write([]string{"ID", "Title", "URL", "Summary", "Published At", "Tags", "Notified"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, item := range items {
		notified := "No"
		if item.IsNotified {
			notified = "Yes"
		}
		record := []string{
			strconv.FormatInt(item.ID, 10),
			item.Title,
			item.URL,
			item.Summary,
			item.PublishedAt.UTC().Format(time.RFC3339),
			item.Tags,
			notified,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return []byte(b.String()), nil
}

func renderMarkdown(items []database.Item, days int) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# NewsBrief Export\n\n")
	fmt.Fprintf(&b, "**Period**: Last %d days\n", days)
	fmt.Fprintf(&b, "**Total Items**: %d\n", len(items))
	fmt.Fprintf(&b, "**Generated**: %s\n\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))
	b.WriteString("---\n\n")

	for _, item := range items {
		fmt.Fprintf(&b, "## %s\n\n", item.Title)
		fmt.Fprintf(&b, "**Published**: %s UTC\n", item.PublishedAt.UTC().Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "**Tags**: %s\n", orNone(item.Tags))
		fmt.Fprintf(&b, "**Notified**: %s\n\n", yesNo(item.IsNotified))
		if item.Summary != "" {
			fmt.Fprintf(&b, "### Summary\n\n%s\n\n", item.Summary)
		}
		fmt.Fprintf(&b, "[Read Full Article](%s)\n\n", item.URL)
		b.WriteString("---\n\n")
	}

	return []byte(b.String()), nil
}

func renderTXT(items []database.Item, days int) ([]byte, error) {
	var b strings.Builder

	b.WriteString("NewsBrief Export\n")
	fmt.Fprintf(&b, "Period: Last %d days\n", days)
	fmt.Fprintf(&b, "Total Items: %d\n", len(items))
	fmt.Fprintf(&b, "Generated: %s\n", time.Now().UTC().Format("2006-01-02 15:04 UTC"))
	b.WriteString(strings.Repeat("=", 80) + "\n\n")

	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item.Title)
		fmt.Fprintf(&b, "   Published: %s UTC\n", item.PublishedAt.UTC().Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "   Tags: %s\n", orNone(item.Tags))
		fmt.Fprintf(&b, "   Notified: %s\n", yesNo(item.IsNotified))
		if item.Summary != "" {
			b.WriteString("   Summary:\n")
			for _, line := range strings.Split(item.Summary, "\n") {
				fmt.Fprintf(&b, "     %s\n", line)
			}
		}
		fmt.Fprintf(&b, "   URL: %s\n", item.URL)
		b.WriteString("\n" + strings.Repeat("-", 80) + "\n\n")
	}

	return []byte(b.String()), nil
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
