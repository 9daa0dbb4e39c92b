package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgconn"

	"github.com/AlibekovAA/user-service/internal/common/constants"
	"github.com/AlibekovAA/user-service/internal/common/logger"
)

type Execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type MigrationResult struct {
	Executed int
	Skipped  int
}

// SplitStatements splits a migration script on ';' and drops blank
// statements. Semicolons inside literals or function bodies are not
// supported.
func SplitStatements(script string) []string {
	parts := strings.Split(script, ";")
	statements := make([]string, 0, len(parts))
	for _, part := range parts {
		stmt := strings.TrimSpace(part)
		if stmt == "" || onlyComments(stmt) {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}

func onlyComments(stmt string) bool {
	for _, line := range strings.Split(stmt, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && !strings.HasPrefix(line, "--") {
			return false
		}
	}
	return true
}

// RunMigration executes statements in order. Statements that fail because
// the object already exists are skipped; any other failure stops the run.
func RunMigration(ctx context.Context, exec Execer, log *logger.Logger, script string) (MigrationResult, error) {
	var result MigrationResult

	statements := SplitStatements(script)
	log.Infof("running migration: %d statements", len(statements))

	for i, stmt := range statements {
		preview := previewStatement(stmt)
		if _, err := exec.Exec(ctx, stmt); err != nil {
			if IsAlreadyExists(err) {
				log.Warnf("statement %d skipped (already exists): %s", i+1, preview)
				result.Skipped++
				continue
			}
			return result, fmt.Errorf("statement %d failed (%s): %w", i+1, preview, err)
		}
		log.Infof("statement %d executed: %s", i+1, preview)
		result.Executed++
	}

	log.Infof("migration completed: executed=%d, skipped=%d", result.Executed, result.Skipped)
	return result, nil
}

func previewStatement(stmt string) string {
	s := compactSQL(stmt)
	if r := []rune(s); len(r) > constants.MigrationPreviewLength {
		return string(r[:constants.MigrationPreviewLength]) + "..."
	}
	return s
}
