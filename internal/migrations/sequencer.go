package migrations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/gloggi/ausbildung-api/internal/schema"
)

var (
	ErrVersionMismatch = errors.New("schema version mismatch")
	ErrLedgerCorrupt   = errors.New("migration ledger does not match declared steps")
	ErrUnknownStep     = errors.New("unknown migration step")
	ErrOperationFailed = errors.New("migration operation failed")
)

// Step moves the schema from Version-1 to Version. Backward must restore
// exactly what Forward changed.
type Step struct {
	Version  int
	Name     string
	Forward  []schema.Edit
	Backward []schema.Edit
}

func (s Step) String() string {
	return fmt.Sprintf("%04d_%s", s.Version, s.Name)
}

// VersionMismatchError is returned when a step is applied or reverted against
// a database that is not at the version the step expects.
type VersionMismatchError struct {
	Step    int
	Want    int
	Current int
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("step %d needs schema version %d, database is at %d", e.Step, e.Want, e.Current)
}

func (e *VersionMismatchError) Unwrap() error {
	return ErrVersionMismatch
}

// OperationError wraps the database error of a failed edit.
type OperationError struct {
	Step int
	Edit string
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("step %d: %s: %v", e.Step, e.Edit, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

func (e *OperationError) Is(target error) bool {
	return target == ErrOperationFailed
}

// Verify replays every step against an in-memory schema and checks that the
// versions are numbered 1..n and that each backward list undoes its forward
// list. It returns the expected schema at every version, index 0 being empty.
func Verify(steps []Step) ([]schema.Schema, error) {
	versions := make([]schema.Schema, 0, len(steps)+1)
	versions = append(versions, schema.Empty())
	for i, step := range steps {
		if step.Version != i+1 {
			return nil, fmt.Errorf("step %q has version %d, want %d", step.Name, step.Version, i+1)
		}
		if step.Name == "" {
			return nil, fmt.Errorf("step %d has no name", step.Version)
		}
		before := versions[i]
		after, err := schema.Replay(before, step.Forward)
		if err != nil {
			return nil, fmt.Errorf("step %d forward: %w", step.Version, err)
		}
		restored, err := schema.Replay(after, step.Backward)
		if err != nil {
			return nil, fmt.Errorf("step %d backward: %w", step.Version, err)
		}
		if diff := restored.Diff(before); len(diff) > 0 {
			return nil, fmt.Errorf("step %d backward does not restore version %d: %v", step.Version, i, diff)
		}
		versions = append(versions, after)
	}
	return versions, nil
}

// StepStatus reports whether one declared step has been applied.
type StepStatus struct {
	Version   int
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// Sequencer applies and reverts steps against a live database, one
// transaction per step.
type Sequencer struct {
	db       *gorm.DB
	steps    []Step
	versions []schema.Schema
	dialect  schema.Dialect
	log      *zap.Logger
}

func NewSequencer(db *gorm.DB, steps []Step) (*Sequencer, error) {
	versions, err := Verify(steps)
	if err != nil {
		return nil, err
	}
	dialect, err := schema.DialectFor(db.Dialector.Name())
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&LedgerEntry{}); err != nil {
		return nil, fmt.Errorf("db.AutoMigrate(ledger) -> %w", err)
	}
	return &Sequencer{
		db:       db,
		steps:    steps,
		versions: versions,
		dialect:  dialect,
		log:      zap.L().Named("migrations"),
	}, nil
}

// Latest is the version reached after all declared steps.
func (s *Sequencer) Latest() int {
	return len(s.steps)
}

// Schema returns the expected schema at version v.
func (s *Sequencer) Schema(v int) (schema.Schema, error) {
	if v < 0 || v >= len(s.versions) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, v)
	}
	return s.versions[v].Clone(), nil
}

// Current returns the version recorded in the ledger.
func (s *Sequencer) Current(ctx context.Context) (int, error) {
	entries, err := s.ledger(s.db.WithContext(ctx))
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *Sequencer) Status(ctx context.Context) ([]StepStatus, error) {
	entries, err := s.ledger(s.db.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]StepStatus, len(s.steps))
	for i, step := range s.steps {
		out[i] = StepStatus{Version: step.Version, Name: step.Name}
		if i < len(entries) {
			out[i].Applied = true
			out[i].AppliedAt = &entries[i].AppliedAt
		}
	}
	return out, nil
}

// ledger loads the applied steps and checks they are a prefix of the
// declared sequence.
func (s *Sequencer) ledger(tx *gorm.DB) ([]LedgerEntry, error) {
	var entries []LedgerEntry
	if err := tx.Order("version").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("tx.Find(ledger) -> %w", err)
	}
	if len(entries) > len(s.steps) {
		return nil, fmt.Errorf("%w: %d entries for %d steps", ErrLedgerCorrupt, len(entries), len(s.steps))
	}
	for i, e := range entries {
		if e.Version != s.steps[i].Version || e.Name != s.steps[i].Name {
			return nil, fmt.Errorf("%w: entry %d is %d %q, want %s", ErrLedgerCorrupt, i, e.Version, e.Name, s.steps[i])
		}
	}
	return entries, nil
}

func (s *Sequencer) step(n int) (Step, error) {
	if n < 1 || n > len(s.steps) {
		return Step{}, fmt.Errorf("%w: %d", ErrUnknownStep, n)
	}
	return s.steps[n-1], nil
}

// Apply runs step n forward. The database must be at version n-1.
func (s *Sequencer) Apply(ctx context.Context, n int) error {
	step, err := s.step(n)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries, err := s.ledger(tx)
		if err != nil {
			return err
		}
		if len(entries) != n-1 {
			return &VersionMismatchError{Step: n, Want: n - 1, Current: len(entries)}
		}
		if err := s.run(tx, step.Version, step.Forward); err != nil {
			return err
		}
		entry := LedgerEntry{Version: step.Version, Name: step.Name, AppliedAt: time.Now().UTC()}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("tx.Create(ledger) -> %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("apply failed", zap.Stringer("step", step), zap.Error(err))
		return err
	}
	s.log.Info("applied", zap.Stringer("step", step))
	return nil
}

// Revert runs step n backward. The database must be at version n.
func (s *Sequencer) Revert(ctx context.Context, n int) error {
	step, err := s.step(n)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entries, err := s.ledger(tx)
		if err != nil {
			return err
		}
		if len(entries) != n {
			return &VersionMismatchError{Step: n, Want: n, Current: len(entries)}
		}
		if err := s.run(tx, step.Version, step.Backward); err != nil {
			return err
		}
		if err := tx.Delete(&LedgerEntry{}, "version = ?", step.Version).Error; err != nil {
			return fmt.Errorf("tx.Delete(ledger) -> %w", err)
		}
		return nil
	})
	if err != nil {
		s.log.Error("revert failed", zap.Stringer("step", step), zap.Error(err))
		return err
	}
	s.log.Info("reverted", zap.Stringer("step", step))
	return nil
}

func (s *Sequencer) run(tx *gorm.DB, version int, edits []schema.Edit) error {
	for _, edit := range edits {
		for _, stmt := range edit.SQL(s.dialect) {
			if err := tx.Exec(stmt).Error; err != nil {
				return &OperationError{Step: version, Edit: edit.String(), Err: err}
			}
		}
	}
	return nil
}

// Up applies steps until the database reaches target. It returns the
// versions that were applied.
func (s *Sequencer) Up(ctx context.Context, target int) ([]int, error) {
	if target < 0 || target > len(s.steps) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, target)
	}
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if current > target {
		return nil, &VersionMismatchError{Step: target, Want: target, Current: current}
	}
	var applied []int
	for n := current + 1; n <= target; n++ {
		if err := s.Apply(ctx, n); err != nil {
			return applied, err
		}
		applied = append(applied, n)
	}
	return applied, nil
}

// Down reverts steps until the database is back at target.
func (s *Sequencer) Down(ctx context.Context, target int) ([]int, error) {
	if target < 0 || target > len(s.steps) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStep, target)
	}
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	if current < target {
		return nil, &VersionMismatchError{Step: target, Want: target, Current: current}
	}
	var reverted []int
	for n := current; n > target; n-- {
		if err := s.Revert(ctx, n); err != nil {
			return reverted, err
		}
		reverted = append(reverted, n)
	}
	return reverted, nil
}
