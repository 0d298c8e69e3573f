package corpus

import (
	"time"

	"github.com/Masterminds/semver"
	"github.com/fxamacker/cbor"
	"github.com/pkg/errors"
	"github.com/stheno-fuzz/stheno/synthesis/selection"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/sha3"
)

// storeFormatVersion is the on-disk format version written to new stores. Opening a store whose
// recorded major version differs is refused.
const storeFormatVersion = "1.0.0"

var (
	sequencesBucket = []byte("sequences")
	metaBucket      = []byte("meta")
	versionKey      = []byte("formatVersion")
)

// StoredParam is the persisted form of one parameter binding: where the argument comes from
// (fuzzer input or an earlier call) and the index within that space.
type StoredParam struct {
	Source uint8  `cbor:"source"`
	Index  int    `cbor:"index"`
	Mode   string `cbor:"mode"`
}

// StoredCall is the persisted form of one call, naming the function rather than using its
// catalog index so records survive catalog reordering.
type StoredCall struct {
	Function string        `cbor:"function"`
	Params   []StoredParam `cbor:"params"`
}

// StoredSequence is the persisted form of a selected sequence. Records are keyed by a digest of
// their calls, so re-saving the same sequence under a new ID does not duplicate it.
type StoredSequence struct {
	ID      string       `cbor:"id"`
	Library string       `cbor:"library"`
	Calls   []StoredCall `cbor:"calls"`
	Unsafe  bool         `cbor:"unsafe"`
	Fixed   int          `cbor:"fixedByteLength"`
}

// Store persists selected sequences in a bbolt database so separate synthesis runs can
// accumulate and deduplicate their results.
type Store struct {
	db      *bolt.DB
	library string
}

// OpenStore opens (or creates) the sequence store at the given path for the given library,
// refusing stores written by an incompatible format version.
func OpenStore(path string, library string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "could not open sequence store")
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(sequencesBucket); err != nil {
			return err
		}
		meta, err := tx.CreateBucketIfNotExists(metaBucket)
		if err != nil {
			return err
		}

		recorded := meta.Get(versionKey)
		if recorded == nil {
			return meta.Put(versionKey, []byte(storeFormatVersion))
		}
		recordedVersion, err := semver.NewVersion(string(recorded))
		if err != nil {
			return errors.Wrap(err, "could not parse sequence store format version")
		}
		currentVersion := semver.MustParse(storeFormatVersion)
		if recordedVersion.Major() != currentVersion.Major() {
			return errors.Errorf("sequence store format version %s is incompatible with %s", recorded, storeFormatVersion)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, library: library}, nil
}

// SaveSelected persists the selected sequences, resolving catalog indices to function names via
// nameOf. Sequences whose calls digest to an already stored key are skipped.
func (s *Store) SaveSelected(selected []selection.SelectedSequence, nameOf func(function int) string) (int, error) {
	saved := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sequencesBucket)
		for _, sel := range selected {
			record := s.encodeSequence(sel, nameOf)

			callData, err := cbor.Marshal(record.Calls, cbor.EncOptions{})
			if err != nil {
				return errors.Wrap(err, "could not encode sequence calls")
			}
			key := sha3.Sum256(callData)
			if bucket.Get(key[:]) != nil {
				continue
			}

			data, err := cbor.Marshal(record, cbor.EncOptions{})
			if err != nil {
				return errors.Wrap(err, "could not encode sequence record")
			}
			if err := bucket.Put(key[:], data); err != nil {
				return err
			}
			saved++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return saved, nil
}

// Load reads every stored sequence record.
func (s *Store) Load() ([]StoredSequence, error) {
	var records []StoredSequence
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(sequencesBucket)
		return bucket.ForEach(func(_, data []byte) error {
			var record StoredSequence
			if err := cbor.Unmarshal(data, &record); err != nil {
				return errors.Wrap(err, "could not decode sequence record")
			}
			records = append(records, record)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Count returns the number of stored sequence records.
func (s *Store) Count() (int, error) {
	count := 0
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(sequencesBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) encodeSequence(sel selection.SelectedSequence, nameOf func(function int) string) StoredSequence {
	seq := sel.Sequence
	record := StoredSequence{
		ID:      sel.ID.String(),
		Library: s.library,
		Unsafe:  seq.Unsafe(),
		Fixed:   seq.FixedByteLength(),
	}
	for _, call := range seq.Calls() {
		stored := StoredCall{Function: nameOf(call.Function)}
		for _, param := range call.Params {
			stored.Params = append(stored.Params, StoredParam{
				Source: uint8(param.Source),
				Index:  param.Index,
				Mode:   param.Mode.String(),
			})
		}
		record.Calls = append(record.Calls, stored)
	}
	return record
}
