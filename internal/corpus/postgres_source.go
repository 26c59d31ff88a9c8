package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/resilience"
)

// PostgresSource reads documents from a table with (name, content) columns.
// Content is fetched one document at a time so a failing row only skips
// that document.
type PostgresSource struct {
	db    *sql.DB
	table string
	retry resilience.RetryConfig
}

func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	return &PostgresSource{db: db, table: table}
}

func (s *PostgresSource) Names(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT name FROM %s ORDER BY name", pq.QuoteIdentifier(s.table))
	var names []string
	err := resilience.Retry(ctx, "corpus-names", s.retry, func() error {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		names = names[:0]
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return err
			}
			names = append(names, name)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("listing documents in %s: %w", s.table, err)
	}
	return names, nil
}

func (s *PostgresSource) Read(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("SELECT content FROM %s WHERE name = $1", pq.QuoteIdentifier(s.table))
	var content string
	err := resilience.Retry(ctx, "corpus-read", s.retry, func() error {
		err := s.db.QueryRowContext(ctx, query, name).Scan(&content)
		if errors.Is(err, sql.ErrNoRows) {
			return resilience.Permanent(apperrors.ErrDocumentNotFound)
		}
		return err
	})
	if err != nil {
		return "", fmt.Errorf("reading document %s: %w", name, err)
	}
	return content, nil
}
