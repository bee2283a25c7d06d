package eventlog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/alarm-panel/internal/config"
	"github.com/oshokin/alarm-panel/internal/domain/alarm"
)

// Record is one persisted alarm trigger.
type Record struct {
	// ID uniquely identifies the trigger.
	ID uuid.UUID `cbor:"1,keyasint"`
	// Timestamp is when the alarm fired.
	Timestamp time.Time `cbor:"2,keyasint"`
	// State is the state the panel entered, TRIGGERED or EMERGENCY.
	State string `cbor:"3,keyasint"`
}

// NewRecord creates a record with a fresh random ID.
func NewRecord(ts time.Time, state alarm.State) Record {
	return Record{
		ID:        uuid.New(),
		Timestamp: ts,
		State:     state.String(),
	}
}

// Repository defines persistence operations for the trigger log.
type Repository interface {
	// Append stores a record after the existing ones.
	Append(ctx context.Context, record Record) error
	// Load returns the newest limit records oldest first; limit <= 0 returns all.
	Load(ctx context.Context, limit int) ([]Record, error)
}

// ErrNotFound is returned when the log file does not exist yet.
var ErrNotFound = errors.New("event log not found")

// FileRepository persists trigger records as a stream of CBOR items.
type FileRepository struct {
	// path is the filesystem location of the log file.
	path string
	// mu serializes access to the log file.
	mu sync.Mutex
	// repaired is set once a partial trailing record has been cut off.
	repaired bool
}

// NewFileRepository creates a repository that appends to the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the log file location.
func (r *FileRepository) Path() string {
	return r.path
}

// Append writes the record to the end of the log file, creating it if needed.
// A partial trailing record is cut off first so the new record stays readable.
func (r *FileRepository) Append(ctx context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.repaired {
		if _, err := r.scan(ctx, 0); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}

	file, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.DefaultFilePermissions)
	if err != nil {
		return fmt.Errorf("open event log file: %w", err)
	}

	if err = newEncoder(file).Encode(record); err != nil {
		_ = file.Close()

		return fmt.Errorf("encode event record: %w", err)
	}

	if err = file.Close(); err != nil {
		return fmt.Errorf("close event log file: %w", err)
	}

	return nil
}

// Load reads the log file and keeps the newest limit records.
// A truncated trailing record, left by a power loss mid-write, is removed from the file.
func (r *FileRepository) Load(ctx context.Context, limit int) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.scan(ctx, limit)
}

// scan decodes every complete record and truncates the file after the last one.
// The caller must hold mu.
func (r *FileRepository) scan(ctx context.Context, limit int) ([]Record, error) {
	file, err := os.OpenFile(r.path, os.O_RDWR, config.DefaultFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.repaired = true

			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("open event log file: %w", err)
	}

	defer file.Close() //nolint:errcheck // Only truncated, never written.

	var (
		decoder = newDecoder(file)
		records []Record
		good    int64
	)

	for {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		var record Record

		err = decoder.Decode(&record)
		if errors.Is(err, io.EOF) {
			break
		}

		if errors.Is(err, io.ErrUnexpectedEOF) {
			if err = file.Truncate(good); err != nil {
				return nil, fmt.Errorf("truncate partial event record: %w", err)
			}

			break
		}

		if err != nil {
			return nil, fmt.Errorf("decode event record: %w", err)
		}

		good = int64(decoder.NumBytesRead())

		records = append(records, record)
		if limit > 0 && len(records) > limit {
			records = records[1:]
		}
	}

	r.repaired = true

	return records, nil
}

// Timestamps extracts the trigger times from records.
func Timestamps(records []Record) []time.Time {
	result := make([]time.Time, 0, len(records))
	for _, record := range records {
		result = append(result, record.Timestamp)
	}

	return result
}
