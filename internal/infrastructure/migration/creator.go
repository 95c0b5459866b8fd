package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Every business table carries an entity_id column; the template reminds
// the author so new tables do not ship unscoped.
const upStub = `-- %s: %s
-- Remember: business tables need an entity_id uuid column with an index.

`

const downStub = `-- %s: revert %s

`

// MigrationFile describes a generated up/down pair
type MigrationFile struct {
	Version  string
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes a timestamped up/down SQL pair into migrationsDir,
// creating the directory on first use. The version prefix is the creation
// time in YYYYMMDDHHMMSS form so lexical order is apply order.
func CreateMigration(migrationsDir, name, description string) (*MigrationFile, error) {
	if err := os.MkdirAll(migrationsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	slug := slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q contains no usable characters", name)
	}
	if description == "" {
		description = name
	}

	version := time.Now().Format("20060102150405")
	base := version + "_" + slug
	mf := &MigrationFile{
		Version:  version,
		Name:     slug,
		UpPath:   filepath.Join(migrationsDir, base+".up.sql"),
		DownPath: filepath.Join(migrationsDir, base+".down.sql"),
	}

	if err := os.WriteFile(mf.UpPath, []byte(fmt.Sprintf(upStub, base, description)), 0o644); err != nil {
		return nil, fmt.Errorf("write up migration: %w", err)
	}
	if err := os.WriteFile(mf.DownPath, []byte(fmt.Sprintf(downStub, base, description)), 0o644); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, fmt.Errorf("write down migration: %w", err)
	}

	return mf, nil
}

// slugify lowers a migration name to snake_case, dropping anything that is
// not a letter, digit or separator
func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}

// ListMigrations returns the base names of the migration pairs in a
// directory, in apply order. A missing directory lists as empty.
func ListMigrations(migrationsDir string) ([]string, error) {
	entries, err := os.ReadDir(migrationsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	names := make([]string, 0, len(entries)/2)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if base, ok := strings.CutSuffix(entry.Name(), ".up.sql"); ok {
			names = append(names, base)
		}
	}
	return names, nil
}
