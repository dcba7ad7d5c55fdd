package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"creature-training-system/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const (
	FactsSheet     = "Facts"
	QuestionsSheet = "Questions"
)

// ImportResult holds the result of an import operation
type ImportResult struct {
	FactsCreated     int      `json:"facts_created"`
	QuestionsCreated int      `json:"questions_created"`
	Skipped          int      `json:"skipped"`
	Errors           []string `json:"errors"`
}

// ImportWorkbook loads facts and quiz questions from an .xlsx workbook.
//
// Facts sheet columns:     category | title | content | difficulty
// Questions sheet columns: category | question | options ("|" separated) | correct index (0-based) | explanation | fact title
//
// Row 1 is a header. Facts already present (same category and title) are
// skipped. Bad rows are reported in Errors and do not abort the import.
func ImportWorkbook(ctx context.Context, db *gorm.DB, r io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(FactsSheet); idx < 0 {
		return nil, invalid("invalid_workbook", fmt.Sprintf("workbook has no %q sheet", FactsSheet))
	}

	result := &ImportResult{Errors: make([]string, 0)}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		factIDs, err := importFacts(tx, f, result)
		if err != nil {
			return err
		}
		if idx, _ := f.GetSheetIndex(QuestionsSheet); idx < 0 {
			return nil
		}
		return importQuestions(tx, f, factIDs, result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func factKey(category, title string) string {
	return strings.ToLower(category) + "\x00" + strings.ToLower(title)
}

// importFacts returns fact ids keyed by lower-cased title for question linking.
func importFacts(tx *gorm.DB, f *excelize.File, result *ImportResult) (map[string]string, error) {
	var existing []models.Fact
	if err := tx.Find(&existing).Error; err != nil {
		return nil, err
	}
	seen := make(map[string]bool, len(existing))
	byTitle := make(map[string]string, len(existing))
	for _, e := range existing {
		seen[factKey(e.Category, e.Title)] = true
		byTitle[strings.ToLower(e.Title)] = e.ID
	}

	rows, err := f.GetRows(FactsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		category, title, content := cell(row, 0), cell(row, 1), cell(row, 2)
		if category == "" || title == "" || content == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: category, title and content are required", FactsSheet, i+1))
			continue
		}
		if seen[factKey(category, title)] {
			result.Skipped++
			continue
		}
		difficulty := 1
		if raw := cell(row, 3); raw != "" {
			d, err := strconv.Atoi(raw)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: difficulty %q is not a number", FactsSheet, i+1, raw))
				continue
			}
			difficulty = clamp(d, 1, 3)
		}

		fact := models.Fact{Category: category, Title: title, Content: content, Difficulty: difficulty}
		if err := tx.Create(&fact).Error; err != nil {
			return nil, err
		}
		seen[factKey(category, title)] = true
		byTitle[strings.ToLower(title)] = fact.ID
		result.FactsCreated++
	}
	return byTitle, nil
}

func importQuestions(tx *gorm.DB, f *excelize.File, factIDs map[string]string, result *ImportResult) error {
	rows, err := f.GetRows(QuestionsSheet)
	if err != nil {
		return fmt.Errorf("failed to get rows: %w", err)
	}
	for i, row := range rows {
		if i == 0 || blank(row) {
			continue
		}
		category, question := cell(row, 0), cell(row, 1)
		var options []string
		for _, o := range strings.Split(cell(row, 2), "|") {
			if o = strings.TrimSpace(o); o != "" {
				options = append(options, o)
			}
		}
		if category == "" || question == "" || len(options) < 2 {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: category, question and at least two options are required", QuestionsSheet, i+1))
			continue
		}
		correct, err := strconv.Atoi(cell(row, 3))
		if err != nil || correct < 0 || correct >= len(options) {
			result.Errors = append(result.Errors, fmt.Sprintf("%s row %d: correct index must be 0-%d", QuestionsSheet, i+1, len(options)-1))
			continue
		}

		q := models.QuizQuestion{
			Question:      question,
			Options:       options,
			CorrectAnswer: correct,
			Explanation:   cell(row, 4),
			Category:      category,
		}
		if title := cell(row, 5); title != "" {
			if id, ok := factIDs[strings.ToLower(title)]; ok {
				q.FactID = &id
			}
		}
		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		result.QuestionsCreated++
	}
	return nil
}
