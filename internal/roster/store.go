// Package roster persists parties of units between encounters as unit
// snapshots in SQLite or Postgres.
package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Garsondee/grid-tactics/internal/unit"
)

var (
	// ErrNotFound is returned when no roster has the requested name.
	ErrNotFound = errors.New("roster not found")
	// ErrEmptyName is returned when saving a roster without a name.
	ErrEmptyName = errors.New("roster name is empty")
	// ErrUnknownDriver is returned by Open for drivers other than sqlite and postgres.
	ErrUnknownDriver = errors.New("unknown storage driver")
)

// Store saves and loads rosters.
type Store struct {
	db  *gorm.DB
	log zerolog.Logger
}

// Summary describes a saved roster without decoding its members.
type Summary struct {
	ID      string
	Name    string
	Members int
}

// Issue is a restore problem for one member of a loaded roster.
type Issue struct {
	Member string
	unit.RestoreIssue
}

func (i Issue) String() string { return i.Member + ": " + i.RestoreIssue.String() }

// Open connects with the named driver and migrates the schema. For sqlite
// an empty dsn opens a private in-memory database.
func Open(driver, dsn string, log zerolog.Logger) (*Store, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch strings.ToLower(driver) {
	case "sqlite", "":
		db, err = openSQLite(dsn, log)
	case "postgres":
		db, err = openPostgres(dsn, log)
	default:
		return nil, fmt.Errorf("open %q: %w", driver, ErrUnknownDriver)
	}
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, log: log}
	if err := s.migrate(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	}
}

func openSQLite(path string, log zerolog.Logger) (*gorm.DB, error) {
	memory := path == ""
	if memory {
		path = "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if memory {
		// One connection keeps the in-memory database alive and shared.
		sqlDB.SetMaxOpenConns(1)
		log.Info().Msg("Using in-memory SQLite roster store")
	} else {
		log.Info().Str("path", path).Msg("Using SQLite roster store")
	}
	if err := db.Exec("PRAGMA foreign_keys = ON;").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("error setting PRAGMA: %w", err)
	}
	return db, nil
}

func openPostgres(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	log.Debug().Msg("Connecting to Postgres roster store")
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to validate connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	log.Info().Msg("Connected to Postgres roster store")
	return db, nil
}

func (s *Store) migrate() error {
	if err := s.db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save stores units under name, replacing any roster already saved under
// it. It returns the roster id.
func (s *Store) Save(ctx context.Context, name string, units []*unit.Unit) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	members := make([]Member, 0, len(units))
	for i, u := range units {
		b, err := json.Marshal(u.Snapshot())
		if err != nil {
			return "", fmt.Errorf("encoding %s: %w", u.Name, err)
		}
		members = append(members, Member{
			Position: i,
			Name:     u.Name,
			Kind:     u.Kind().String(),
			Snapshot: datatypes.JSON(b),
		})
	}

	r := Roster{ID: uuid.NewString(), Name: name, Members: members}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteByName(tx, name); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		return tx.Create(&r).Error
	})
	if err != nil {
		return "", fmt.Errorf("saving roster %s: %w", name, err)
	}
	s.log.Info().Str("roster", name).Str("id", r.ID).Int("members", len(members)).Msg("Saved roster")
	return r.ID, nil
}

// Load restores the roster saved under name against cat. Missing catalog
// references come back as issues and the member is still restored. A member
// whose snapshot cannot be decoded or whose kind is unusable is left out and
// reported as a "member" issue; the rest of the roster still loads.
func (s *Store) Load(ctx context.Context, name string, cat *unit.Catalog) ([]*unit.Unit, []Issue, error) {
	var r Roster
	err := s.db.WithContext(ctx).
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Where("name = ?", name).
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, fmt.Errorf("load %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", name, err)
	}

	units := make([]*unit.Unit, 0, len(r.Members))
	var issues []Issue
	for _, m := range r.Members {
		var snap unit.Snapshot
		if err := json.Unmarshal(m.Snapshot, &snap); err != nil {
			issues = append(issues, memberIssue(m, fmt.Errorf("decoding snapshot: %w", err)))
			continue
		}
		u, ris, err := unit.Restore(snap, cat)
		if err != nil {
			issues = append(issues, memberIssue(m, err))
			continue
		}
		for _, ri := range ris {
			issues = append(issues, Issue{Member: m.Name, RestoreIssue: ri})
		}
		units = append(units, u)
	}
	if len(issues) > 0 {
		s.log.Warn().Str("roster", name).Int("issues", len(issues)).Int("dropped", len(r.Members)-len(units)).
			Msg("Roster restored with issues")
	}
	return units, issues, nil
}

func memberIssue(m Member, err error) Issue {
	return Issue{Member: m.Name, RestoreIssue: unit.RestoreIssue{Field: "member", ID: m.Name, Cause: err.Error()}}
}

// List returns every saved roster, by name.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	var rs []Roster
	if err := s.db.WithContext(ctx).Order("name").Find(&rs).Error; err != nil {
		return nil, fmt.Errorf("listing rosters: %w", err)
	}
	out := make([]Summary, 0, len(rs))
	for _, r := range rs {
		var n int64
		if err := s.db.WithContext(ctx).Model(&Member{}).Where("roster_id = ?", r.ID).Count(&n).Error; err != nil {
			return nil, fmt.Errorf("counting members of %s: %w", r.Name, err)
		}
		out = append(out, Summary{ID: r.ID, Name: r.Name, Members: int(n)})
	}
	return out, nil
}

// Delete removes the roster saved under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteByName(tx, name)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	s.log.Info().Str("roster", name).Msg("Deleted roster")
	return nil
}

func deleteByName(tx *gorm.DB, name string) error {
	var r Roster
	err := tx.Where("name = ?", name).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := tx.Where("roster_id = ?", r.ID).Delete(&Member{}).Error; err != nil {
		return err
	}
	return tx.Delete(&r).Error
}
