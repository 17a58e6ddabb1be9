// Package xlsx imports progress and session logs from spreadsheet files.
package xlsx

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wordpulse/wordpulse/internal/model"
)

// ImportConfig defines where the importer reads from and which sheets hold
// which log. CSV files carry progress rows only.
type ImportConfig struct {
	Path          string
	UserID        string
	ProgressSheet string
	SessionsSheet string
	SkipHeader    bool
}

// DefaultImportConfig returns the default sheet layout.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		ProgressSheet: "Progress",
		SessionsSheet: "Sessions",
		SkipHeader:    true,
	}
}

// ImportResult summarizes one import run. Rows that fail validation are
// skipped and reported, never silently repaired.
type ImportResult struct {
	ProgressRows int
	SessionRows  int
	Skipped      int
	Errors       []string
}

func (r *ImportResult) rowError(sheet string, row int, err error) {
	r.Skipped++
	r.Errors = append(r.Errors, fmt.Sprintf("%s row %d: %v", sheet, row, err))
}

// Import reads progress and session logs from an Excel or CSV file. Parsed
// entries are returned for the caller to persist.
func Import(cfg ImportConfig) ([]model.ProgressEntry, []model.SessionEntry, *ImportResult, error) {
	if cfg.UserID == "" {
		return nil, nil, nil, fmt.Errorf("xlsx: user id is required")
	}
	if strings.ToLower(filepath.Ext(cfg.Path)) == ".csv" {
		return importCSV(cfg)
	}
	return importExcel(cfg)
}

func importExcel(cfg ImportConfig) ([]model.ProgressEntry, []model.SessionEntry, *ImportResult, error) {
	f, err := excelize.OpenFile(cfg.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("xlsx: open %s: %w", cfg.Path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	result := &ImportResult{}
	var progress []model.ProgressEntry
	var sessions []model.SessionEntry

	idx, err := f.GetSheetIndex(cfg.ProgressSheet)
	if err != nil {
		return nil, nil, nil, err
	}
	if idx >= 0 {
		rows, err := f.GetRows(cfg.ProgressSheet)
		if err != nil {
			return nil, nil, nil, err
		}
		progress = parseProgressRows(cfg, rows, result)
	}

	idx, err = f.GetSheetIndex(cfg.SessionsSheet)
	if err != nil {
		return nil, nil, nil, err
	}
	if idx >= 0 {
		rows, err := f.GetRows(cfg.SessionsSheet)
		if err != nil {
			return nil, nil, nil, err
		}
		sessions = parseSessionRows(cfg, rows, result)
	}

	return progress, sessions, result, nil
}

func importCSV(cfg ImportConfig) ([]model.ProgressEntry, []model.SessionEntry, *ImportResult, error) {
	file, err := os.Open(cfg.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("xlsx: open %s: %w", cfg.Path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("xlsx: read csv: %w", err)
		}
		rows = append(rows, row)
	}

	result := &ImportResult{}
	progress := parseProgressRows(cfg, rows, result)
	return progress, nil, result, nil
}

// Progress columns: date, studied, learned, reviewed, deep memory, minutes,
// sessions, accuracy, streak, goal, goal achieved.
func parseProgressRows(cfg ImportConfig, rows [][]string, result *ImportResult) []model.ProgressEntry {
	var out []model.ProgressEntry
	for i, row := range rows {
		if cfg.SkipHeader && i == 0 {
			continue
		}
		if isBlankRow(row) {
			continue
		}
		p, err := parseProgressRow(cfg.UserID, row)
		if err != nil {
			result.rowError(cfg.ProgressSheet, i+1, err)
			continue
		}
		if err := p.Validate(); err != nil {
			result.rowError(cfg.ProgressSheet, i+1, err)
			continue
		}
		out = append(out, p)
		result.ProgressRows++
	}
	return out
}

func parseProgressRow(userID string, row []string) (model.ProgressEntry, error) {
	if len(row) < 11 {
		return model.ProgressEntry{}, fmt.Errorf("expected 11 columns, got %d", len(row))
	}
	date, err := parseDate(row[0])
	if err != nil {
		return model.ProgressEntry{}, err
	}
	ints := make([]int, 0, 8)
	for _, col := range []int{1, 2, 3, 4, 5, 6, 8, 9} {
		v, err := parseInt(row[col])
		if err != nil {
			return model.ProgressEntry{}, fmt.Errorf("column %d: %w", col+1, err)
		}
		ints = append(ints, v)
	}
	accuracy, err := parseFloat(row[7])
	if err != nil {
		return model.ProgressEntry{}, fmt.Errorf("column 8: %w", err)
	}
	return model.ProgressEntry{
		UserID:          userID,
		Date:            date,
		WordsStudied:    ints[0],
		WordsLearned:    ints[1],
		WordsReviewed:   ints[2],
		DeepMemoryWords: ints[3],
		MinutesStudied:  ints[4],
		Sessions:        ints[5],
		Accuracy:        accuracy,
		StreakDays:      ints[6],
		DailyGoal:       ints[7],
		GoalAchieved:    parseBool(row[10]),
	}, nil
}

// Session columns: started, ended, correct, incorrect, total, avg response,
// difficulty, type, learned words, reviewed words.
func parseSessionRows(cfg ImportConfig, rows [][]string, result *ImportResult) []model.SessionEntry {
	var out []model.SessionEntry
	for i, row := range rows {
		if cfg.SkipHeader && i == 0 {
			continue
		}
		if isBlankRow(row) {
			continue
		}
		s, err := parseSessionRow(cfg.UserID, row)
		if err != nil {
			result.rowError(cfg.SessionsSheet, i+1, err)
			continue
		}
		if err := s.Validate(); err != nil {
			result.rowError(cfg.SessionsSheet, i+1, err)
			continue
		}
		out = append(out, s)
		result.SessionRows++
	}
	return out
}

func parseSessionRow(userID string, row []string) (model.SessionEntry, error) {
	if len(row) < 8 {
		return model.SessionEntry{}, fmt.Errorf("expected at least 8 columns, got %d", len(row))
	}
	started, err := parseDate(row[0])
	if err != nil {
		return model.SessionEntry{}, err
	}
	ended, err := parseDate(row[1])
	if err != nil {
		return model.SessionEntry{}, err
	}
	correct, err := parseInt(row[2])
	if err != nil {
		return model.SessionEntry{}, fmt.Errorf("column 3: %w", err)
	}
	incorrect, err := parseInt(row[3])
	if err != nil {
		return model.SessionEntry{}, fmt.Errorf("column 4: %w", err)
	}
	total, err := parseInt(row[4])
	if err != nil {
		return model.SessionEntry{}, fmt.Errorf("column 5: %w", err)
	}
	avgResp, err := parseFloat(row[5])
	if err != nil {
		return model.SessionEntry{}, fmt.Errorf("column 6: %w", err)
	}
	s := model.SessionEntry{
		UserID:         userID,
		StartedAt:      started,
		EndedAt:        ended,
		CardsCorrect:   correct,
		CardsIncorrect: incorrect,
		CardsTotal:     total,
		AvgResponseSec: avgResp,
		Difficulty:     model.Difficulty(strings.TrimSpace(row[6])),
		Type:           model.SessionType(strings.TrimSpace(strings.ToLower(row[7]))),
	}
	if len(row) > 8 {
		s.LearnedWords = splitWords(row[8])
	}
	if len(row) > 9 {
		s.ReviewedWords = splitWords(row[9])
	}
	return s, nil
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06", // excelize renders date cells in m-d-yy form
	"1/2/06 15:04",
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func parseInt(s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return v, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}

func splitWords(s string) []string {
	var out []string
	for _, w := range strings.Split(s, ";") {
		w = strings.TrimSpace(w)
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
