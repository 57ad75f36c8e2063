// Package migrations holds the embedded schema for the Postgres and ClickHouse sinks.
package migrations

import (
	"embed"
	"sort"
	"strings"
)

// PostgresFS embeds the Postgres schema (runs, sellers, strategies).
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// ClickhouseFS embeds the ClickHouse schema (curated items).
//
//go:embed clickhouse/*.sql
var ClickhouseFS embed.FS

// sqlFiles lists the .sql files of an embedded directory in lexical order.
func sqlFiles(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}
