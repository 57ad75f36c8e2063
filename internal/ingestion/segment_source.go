package ingestion

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"seller-segment-lab/internal/domain"
)

// Segment table column names, as written to seller_profile.csv.
const (
	ColSellerSize       = "seller_size"
	ColPerformanceLevel = "performance_level"
)

// SegmentColumns lists the columns a seller segment table must carry.
var SegmentColumns = []string{ColSellerID, ColSellerSize, ColPerformanceLevel}

// SegmentCSVSource loads seller segments from a previously exported seller table.
type SegmentCSVSource struct {
	path string
}

// NewSegmentCSVSource creates a segment source for path.
func NewSegmentCSVSource(path string) *SegmentCSVSource {
	return &SegmentCSVSource{path: path}
}

// Load opens the file and parses every row.
func (s *SegmentCSVSource) Load(ctx context.Context) ([]*domain.SellerPerformance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open seller table: %w", err)
	}
	defer f.Close()

	sellers, err := ReadSegments(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return sellers, nil
}

// ReadSegments parses (seller, size, level) rows from a seller table.
// Only the segment columns are read; rows come back in file order.
// Rows without a performance level belong to unscored sellers and are skipped.
func ReadSegments(r io.Reader) ([]*domain.SellerPerformance, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &MissingColumnsError{Missing: append([]string(nil), SegmentColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	idx, err := indexColumns(header, SegmentColumns)
	if err != nil {
		return nil, err
	}

	var sellers []*domain.SellerPerformance
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		p := &domain.SellerPerformance{
			SellerProfile: domain.SellerProfile{
				SellerID:   strings.TrimSpace(record[idx[ColSellerID]]),
				SellerSize: strings.TrimSpace(record[idx[ColSellerSize]]),
			},
			PerformanceLevel: strings.TrimSpace(record[idx[ColPerformanceLevel]]),
		}
		if p.SellerID == "" {
			return nil, fmt.Errorf("line %d: empty %s", line, ColSellerID)
		}
		if p.PerformanceLevel == "" {
			continue
		}
		p.PerformanceSegment = domain.Segment(p.SellerSize, p.PerformanceLevel)
		sellers = append(sellers, p)
	}
	return sellers, nil
}
