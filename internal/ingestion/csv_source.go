package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"seller-segment-lab/internal/domain"
)

// Input column names.
const (
	ColSellerID     = "seller_nickname"
	ColTitle        = "titulo"
	ColPrice        = "price"
	ColStock        = "stock"
	ColCategoryID   = "category_id"
	ColCondition    = "condition"
	ColLogisticType = "logistic_type"
	ColReputation   = "seller_reputation"
)

// RequiredColumns lists the columns every input dataset must carry.
var RequiredColumns = []string{
	ColSellerID,
	ColTitle,
	ColPrice,
	ColStock,
	ColCategoryID,
	ColCondition,
	ColLogisticType,
	ColReputation,
}

// ErrMissingColumns is returned when required input columns are absent.
var ErrMissingColumns = errors.New("missing required columns")

// MissingColumnsError lists every required column absent from the header.
type MissingColumnsError struct {
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingColumns.Error(), strings.Join(e.Missing, ", "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// CSVSource loads items from a CSV file on disk.
// Implements ItemSource interface.
type CSVSource struct {
	path string
}

// NewCSVSource creates a CSV item source for path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{path: path}
}

// Load opens the file and parses every row.
func (s *CSVSource) Load(ctx context.Context) ([]*domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	items, err := ReadItems(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return items, nil
}

// ReadItems parses items from CSV. The header is validated before any row is read.
// Extra columns are ignored. A null price cell yields a nil Price, a null
// stock cell yields 0, and any other unparseable number fails with its line.
func ReadItems(r io.Reader) ([]*domain.Item, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &MissingColumnsError{Missing: append([]string(nil), RequiredColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := indexColumns(header, RequiredColumns)
	if err != nil {
		return nil, err
	}

	var items []*domain.Item
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		item, err := parseItem(record, idx, line)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// indexColumns maps each required column to its position in header.
func indexColumns(header, required []string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	idx := make(map[string]int, len(required))
	var missing []string
	for _, col := range required {
		pos, ok := positions[col]
		if !ok {
			missing = append(missing, col)
			continue
		}
		idx[col] = pos
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing}
	}
	return idx, nil
}

func parseItem(record []string, idx map[string]int, line int) (*domain.Item, error) {
	field := func(col string) string {
		return strings.TrimSpace(record[idx[col]])
	}

	item := &domain.Item{
		Line:         line,
		SellerID:     field(ColSellerID),
		Title:        field(ColTitle),
		CategoryID:   field(ColCategoryID),
		Condition:    NormalizeCondition(field(ColCondition)),
		LogisticType: NormalizeLogisticType(field(ColLogisticType)),
	}
	if raw := field(ColReputation); !isNull(raw) {
		item.Reputation = raw
	}

	if raw := field(ColPrice); !isNull(raw) {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, ColPrice, raw, err)
		}
		item.Price = &price
	}

	if raw := field(ColStock); !isNull(raw) {
		stock, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s %q: %w", line, ColStock, raw, err)
		}
		item.Stock = stock
	}

	return item, nil
}

// isNull reports whether a cell holds one of the usual null markers.
func isNull(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "nan", "na", "n/a", "null", "none":
		return true
	}
	return false
}
