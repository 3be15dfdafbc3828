package reliability

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/felixsc1/BoomerBitcoinV2/internal/database"
)

// BackupService produces consistent local snapshots of the registered
// databases. Snapshots go through VACUUM INTO after a WAL checkpoint so the
// copy is a single coherent file regardless of in-flight writers.
type BackupService struct {
	databases map[string]*database.DB
	log       zerolog.Logger
}

// NewBackupService creates a new backup service over the given databases,
// keyed by their logical names.
func NewBackupService(databases map[string]*database.DB, log zerolog.Logger) *BackupService {
	return &BackupService{
		databases: databases,
		log:       log.With().Str("service", "backup").Logger(),
	}
}

// DatabaseNames returns the registered database names, sorted for stable
// archive layouts.
func (s *BackupService) DatabaseNames() []string {
	names := make([]string, 0, len(s.databases))
	for name := range s.databases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BackupDatabase snapshots one database to destPath.
func (s *BackupService) BackupDatabase(name, destPath string) error {
	db, ok := s.databases[name]
	if !ok {
		return fmt.Errorf("unknown database: %s", name)
	}

	if err := db.WALCheckpoint("TRUNCATE"); err != nil {
		s.log.Warn().Err(err).Str("database", name).Msg("WAL checkpoint failed before backup")
	}

	if err := db.BackupTo(destPath); err != nil {
		return fmt.Errorf("failed to snapshot %s: %w", name, err)
	}

	s.log.Info().Str("database", name).Str("dest", destPath).Msg("Database snapshot created")
	return nil
}
