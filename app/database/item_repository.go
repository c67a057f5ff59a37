package database

import (
	"fmt"
	"strings"
	"time"
)

// timeLayout is the SQLite datetime format. Fixed width, so string
// comparison in WHERE clauses orders chronologically.
const timeLayout = "2006-01-02 15:04:05"

var _ ItemRepository = (*SQLItemRepository)(nil)

// SQLItemRepository handles database operations for news items
type SQLItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *SQLItemRepository {
	return &SQLItemRepository{db: db}
}

func (r *SQLItemRepository) InsertIfAbsent(item Item) (bool, error) {
	createdAt := item.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	result, err := r.db.Exec(`
		INSERT INTO news_items (source_id, title, url, content, summary, published_at, created_at, tags, is_notified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_id) DO NOTHING
	`, item.SourceID, item.Title, item.URL, item.Content, item.Summary,
		formatTime(item.PublishedAt), formatTime(createdAt), item.Tags, item.IsNotified)
	if err != nil {
		return false, fmt.Errorf("failed to insert item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *SQLItemRepository) GetPending(limit int) ([]Item, error) {
	return r.queryItems(`
		SELECT `+itemColumns+`
		FROM news_items
		WHERE is_notified = 0
		ORDER BY published_at DESC
		LIMIT ?
	`, limit)
}

func (r *SQLItemRepository) CountPending() (int, error) {
	return r.count("SELECT COUNT(*) FROM news_items WHERE is_notified = 0")
}

func (r *SQLItemRepository) CountNotified() (int, error) {
	return r.count("SELECT COUNT(*) FROM news_items WHERE is_notified = 1")
}

func (r *SQLItemRepository) MarkAllNotified() (int64, error) {
	result, err := r.db.Exec("UPDATE news_items SET is_notified = 1 WHERE is_notified = 0")
	if err != nil {
		return 0, fmt.Errorf("failed to bulk mark items notified: %w", err)
	}
	return result.RowsAffected()
}

func (r *SQLItemRepository) UpdateSummary(id int64, summary string) error {
	_, err := r.db.Exec("UPDATE news_items SET summary = ? WHERE id = ?", summary, id)
	if err != nil {
		return fmt.Errorf("failed to update summary: %w", err)
	}
	return nil
}

func (r *SQLItemRepository) MarkNotified(id int64) error {
	_, err := r.db.Exec("UPDATE news_items SET is_notified = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark item notified: %w", err)
	}
	return nil
}

func (r *SQLItemRepository) GetCreatedSince(since time.Time) ([]Item, error) {
	return r.queryItems(`
		SELECT `+itemColumns+`
		FROM news_items
		WHERE created_at >= ?
		ORDER BY published_at DESC
	`, formatTime(since))
}

func (r *SQLItemRepository) GetRecent(limit int, pendingSummaryOnly bool) ([]Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM news_items
	`
	if pendingSummaryOnly {
		query += " WHERE summary IS NULL OR summary = ''"
	}
	query += `
		ORDER BY published_at DESC
		LIMIT ?
	`
	return r.queryItems(query, limit)
}

func (r *SQLItemRepository) GetPublishedSince(since time.Time, tags []string) ([]Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM news_items
		WHERE published_at >= ?
	`
	args := []interface{}{formatTime(since)}

	if len(tags) > 0 {
		conditions := make([]string, 0, len(tags))
		for _, tag := range tags {
			conditions = append(conditions, "tags LIKE ?")
			args = append(args, "%"+strings.TrimSpace(tag)+"%")
		}
		query += " AND (" + strings.Join(conditions, " OR ") + ")"
	}

	query += " ORDER BY published_at DESC"
	return r.queryItems(query, args...)
}

func (r *SQLItemRepository) GetPublishedBefore(cutoff time.Time) ([]Item, error) {
	return r.queryItems(`
		SELECT `+itemColumns+`
		FROM news_items
		WHERE published_at < ?
		ORDER BY published_at ASC
	`, formatTime(cutoff))
}

func (r *SQLItemRepository) DeletePublishedBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM news_items WHERE published_at < ?", formatTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete old items: %w", err)
	}
	return result.RowsAffected()
}

func (r *SQLItemRepository) GetStats() (Stats, error) {
	var stats Stats
	err := r.db.QueryRow(`
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_notified = 0 THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN is_notified = 1 THEN 1 ELSE 0 END), 0) AS notified,
			COALESCE(SUM(CASE WHEN summary IS NOT NULL AND summary != '' THEN 1 ELSE 0 END), 0) AS summarized
		FROM news_items
	`).Scan(&stats.Total, &stats.Pending, &stats.Notified, &stats.Summarized)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to get item stats: %w", err)
	}
	return stats, nil
}

func (r *SQLItemRepository) Vacuum() error {
	if _, err := r.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}

const itemColumns = `id, source_id, COALESCE(title, ''), COALESCE(url, ''),
		COALESCE(content, ''), COALESCE(summary, ''), published_at, created_at,
		COALESCE(tags, ''), is_notified`

func (r *SQLItemRepository) queryItems(query string, args ...interface{}) ([]Item, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var item Item
		var publishedAt, createdAt string
		err := rows.Scan(
			&item.ID, &item.SourceID, &item.Title, &item.URL,
			&item.Content, &item.Summary, &publishedAt, &createdAt,
			&item.Tags, &item.IsNotified,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item row: %w", err)
		}
		item.PublishedAt = parseTime(publishedAt)
		item.CreatedAt = parseTime(createdAt)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func (r *SQLItemRepository) count(query string) (int, error) {
	var n int
	if err := r.db.QueryRow(query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
