package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"seller-segment-lab/internal/domain"
)

// ComputeDatasetVersion computes a deterministic version of a raw item dataset using SHA256.
// Each item contributes one line:
// seller|title|price|stock|category|condition|logistic|reputation, with price "null" when missing.
// Row order is significant, since aggregation tie-breaks depend on it.
// Returns hex-encoded hash (64 characters).
func ComputeDatasetVersion(items []*domain.Item) string {
	h := sha256.New()
	for _, it := range items {
		price := "null"
		if it.Price != nil {
			price = formatFloat(*it.Price)
		}
		fmt.Fprintf(h, "%s|%s|%s|%s|%s|%s|%s|%s\n",
			it.SellerID,
			it.Title,
			price,
			formatFloat(it.Stock),
			it.CategoryID,
			it.Condition,
			it.LogisticType,
			it.Reputation,
		)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ComputeRunID derives a run id from a dataset version and the parameters that
// change the output for the same data (quantiles, rulebook revision).
// Formula: SHA256(dataset_version|param1|param2|...), first 16 hex characters.
func ComputeRunID(datasetVersion string, params ...string) string {
	data := strings.Join(append([]string{datasetVersion}, params...), "|")
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
