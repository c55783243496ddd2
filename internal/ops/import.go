package ops

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpungsan/snip/internal/config"
	"github.com/hpungsan/snip/internal/db"
	"github.com/hpungsan/snip/internal/errors"
	"github.com/hpungsan/snip/internal/snippet"
)

// ImportMode controls collision behavior during import.
type ImportMode string

const (
	ImportModeError   ImportMode = "error"   // fail on collision (atomic)
	ImportModeSkip    ImportMode = "skip"    // keep existing snippets, skip colliding records
	ImportModeReplace ImportMode = "replace" // overwrite on collision
)

// maxImportLine bounds a single JSONL record.
const maxImportLine = 4 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string     // required
	Mode ImportMode // default: error
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors"`
}

// ImportError represents an error that occurred during import.
type ImportError struct {
	Line    int    `json:"line"`
	ID      string `json:"id,omitempty"`
	Name    string `json:"name,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type parsedRecord struct {
	line int
	rec  snippet.ExportRecord
}

// Import loads snippets from a JSONL export file.
func Import(ctx context.Context, database *sql.DB, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if input.Mode == "" {
		input.Mode = ImportModeError
	}
	if input.Mode != ImportModeError && input.Mode != ImportModeSkip && input.Mode != ImportModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, skip, replace")
	}

	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	records, parseErrors := parseExportFile(file)

	// mode:error is all-or-nothing, including malformed lines
	if input.Mode == ImportModeError && len(parseErrors) > 0 {
		return &ImportOutput{Errors: parseErrors}, nil
	}

	if input.Mode == ImportModeError {
		return importAtomic(ctx, database, records)
	}
	return importEach(ctx, database, records, parseErrors, input.Mode)
}

// parseExportFile parses a JSONL export file into records.
func parseExportFile(r io.Reader) ([]parsedRecord, []ImportError) {
	var records []parsedRecord
	var parseErrors []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxImportLine)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var record snippet.ExportRecord
		if err := json.Unmarshal(line, &record); err != nil {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				Code:    "PARSE_ERROR",
				Message: fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		if record.SnipExport {
			continue
		}

		if msg := validateRecord(&record); msg != "" {
			parseErrors = append(parseErrors, ImportError{
				Line:    lineNum,
				ID:      record.ID,
				Name:    record.Name,
				Code:    "INVALID_RECORD",
				Message: msg,
			})
			continue
		}

		records = append(records, parsedRecord{line: lineNum, rec: record})
	}

	if err := scanner.Err(); err != nil {
		parseErrors = append(parseErrors, ImportError{
			Line:    lineNum,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}

	return records, parseErrors
}

func validateRecord(r *snippet.ExportRecord) string {
	switch {
	case r.ID == "":
		return "missing id field"
	case snippet.Normalize(r.Name) == "":
		return "missing name field"
	case r.Content == "":
		return "missing content field"
	}
	return ""
}

// importAtomic inserts every record in one transaction and stops at the first collision.
func importAtomic(ctx context.Context, database *sql.DB, records []parsedRecord) (*ImportOutput, error) {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, pr := range records {
		s := pr.rec.ToSnippet()

		if collision, err := findCollision(ctx, tx, s); err != nil {
			return nil, err
		} else if collision != nil {
			collision.Line = pr.line
			return &ImportOutput{Errors: []ImportError{*collision}}, nil
		}

		if err := db.Insert(ctx, tx, s); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return &ImportOutput{Imported: len(records), Errors: []ImportError{}}, nil
}

// importEach handles skip and replace modes record by record.
func importEach(ctx context.Context, database *sql.DB, records []parsedRecord, parseErrors []ImportError, mode ImportMode) (*ImportOutput, error) {
	out := &ImportOutput{
		Skipped: len(parseErrors),
		Errors:  append([]ImportError{}, parseErrors...),
	}

	for _, pr := range records {
		s := pr.rec.ToSnippet()

		byID, err := db.GetByID(ctx, database, s.ID)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
		byName, err := db.GetByName(ctx, database, s.NameNorm)
		if err != nil && !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}

		if byID == nil && byName == nil {
			if err := db.Insert(ctx, database, s); err != nil {
				return nil, err
			}
			out.Imported++
			continue
		}

		if mode == ImportModeSkip {
			out.Skipped++
			continue
		}

		// ID matches one snippet but the name belongs to another
		if byID != nil && byName != nil && byID.ID != byName.ID {
			out.Errors = append(out.Errors, ImportError{
				Line:    pr.line,
				ID:      s.ID,
				Name:    s.Name,
				Code:    "AMBIGUOUS_COLLISION",
				Message: fmt.Sprintf("id %q matches one snippet but name %q matches another", s.ID, s.Name),
			})
			out.Skipped++
			continue
		}

		if byID == nil {
			s.ID = byName.ID
		}
		if err := db.Replace(ctx, database, s); err != nil {
			return nil, err
		}
		out.Imported++
	}

	return out, nil
}

// findCollision reports an ID or name collision for s, or nil.
func findCollision(ctx context.Context, q db.Querier, s *snippet.Snippet) (*ImportError, error) {
	_, err := db.GetByID(ctx, q, s.ID)
	if err == nil {
		return &ImportError{
			ID:      s.ID,
			Name:    s.Name,
			Code:    "ID_COLLISION",
			Message: fmt.Sprintf("snippet with id %q already exists", s.ID),
		}, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	exists, err := db.CheckNameExists(ctx, q, s.NameNorm)
	if err != nil {
		return nil, err
	}
	if exists {
		return &ImportError{
			ID:      s.ID,
			Name:    s.Name,
			Code:    "NAME_COLLISION",
			Message: fmt.Sprintf("snippet with name %q already exists", s.Name),
		}, nil
	}
	return nil, nil
}
