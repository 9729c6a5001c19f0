package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/hudl-events/apiserver/types"
)

// ExportStore is the object-storage capability the exporter needs.
type ExportStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Bucket() string
}

// ExportService writes a quiz's ranked results to object storage as CSV.
type ExportService struct {
	quizzes     QuizRepository
	leaderboard LeaderboardRepository
	store       ExportStore
}

// NewExportService constructs an ExportService. store may be nil when no
// object storage is configured; Export then fails cleanly.
func NewExportService(quizzes QuizRepository, leaderboard LeaderboardRepository, store ExportStore) *ExportService {
	return &ExportService{quizzes: quizzes, leaderboard: leaderboard, store: store}
}

// ErrExportsDisabled is returned when no storage backend is configured.
var ErrExportsDisabled = fmt.Errorf("exports are not configured")

// Export renders the full leaderboard of a quiz to CSV and uploads it.
// Returns the bucket and object key of the written file.
func (s *ExportService) Export(ctx context.Context, quizID string) (bucket, key string, err error) {
	if s.store == nil {
		return "", "", ErrExportsDisabled
	}

	quiz, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return "", "", err
	}

	entries, err := s.leaderboard.TopForQuiz(ctx, quizID, maxLeaderboardLimit)
	if err != nil {
		return "", "", err
	}

	data, err := renderCSV(quiz, entries)
	if err != nil {
		return "", "", err
	}

	key = fmt.Sprintf("exports/%s/%d.csv", quiz.ID, time.Now().Unix())
	if err := s.store.Put(ctx, key, data, "text/csv"); err != nil {
		return "", "", err
	}
	return s.store.Bucket(), key, nil
}

func renderCSV(quiz types.Quiz, entries []types.LeaderboardEntry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"rank", "name", "wallet_address", "score", "total_points", "percentage", "completed_at"}); err != nil {
		return nil, err
	}
	for _, entry := range entries {
		name := ""
		if entry.UserName != nil {
			name = *entry.UserName
		}
		wallet := ""
		if entry.WalletAddress != nil {
			wallet = *entry.WalletAddress
		}
		record := []string{
			strconv.Itoa(entry.Rank),
			name,
			wallet,
			strconv.Itoa(entry.Score),
			strconv.Itoa(entry.TotalPoints),
			strconv.FormatFloat(entry.Percentage, 'f', 2, 64),
			entry.CompletedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
