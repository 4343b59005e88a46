package checkpoint

import (
	"time"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"postpilot/internal/models"
	"postpilot/internal/providers"
	"postpilot/internal/structures"
)

// StoreInterface is the durable local record of pipeline progress.
// Checkpointing is a best-effort recovery aid, not the pipeline's
// correctness mechanism: no method surfaces storage failures. A failed
// save is silently dropped, a failed load reads as "no checkpoint", and
// both are logged.
type StoreInterface interface {
	Save(cp *models.Checkpoint)
	Load(key models.CheckpointKey) *models.Checkpoint
	Clear(key models.CheckpointKey)
	ListAll() []*models.Checkpoint
	// Sweep deletes every expired record and returns how many were
	// purged. Run periodically by the maintenance scheduler.
	Sweep() int
	Close() error
}

type Store struct {
	db         *badger.DB
	compressor CompressorInterface
	staleness  time.Duration
	logger     providers.Logger
	now        func() time.Time
}

const keyPrefix = "cp/"

func NewStore(conf *structures.Config, compressor CompressorInterface, logger providers.Logger) (StoreInterface, error) {
	opts := badger.DefaultOptions(conf.Checkpoint.Dir).
		WithLogger(nil).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:         db,
		compressor: compressor,
		staleness:  conf.Checkpoint.Staleness,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// NewStoreInMemory builds a store backed by an in-memory badger instance.
func NewStoreInMemory(staleness time.Duration, compressor CompressorInterface, logger providers.Logger) (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{
		db:         db,
		compressor: compressor,
		staleness:  staleness,
		logger:     logger,
		now:        time.Now,
	}, nil
}

func storageKey(key models.CheckpointKey) []byte {
	return []byte(keyPrefix + string(key.Kind) + "/" + key.OwnerID)
}

func (s *Store) Save(cp *models.Checkpoint) {
	raw, err := json.Marshal(cp)
	if err != nil {
		s.logger.Errorf(providers.TypePipeline, "Checkpoint save dropped (marshal): %s", err)
		return
	}
	data, err := s.compressor.Compress(raw)
	if err != nil {
		s.logger.Errorf(providers.TypePipeline, "Checkpoint save dropped (compress): %s", err)
		return
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(storageKey(cp.Key()), data)
	})
	if err != nil {
		s.logger.Errorf(providers.TypePipeline, "Checkpoint save dropped (store): %s", err)
		return
	}
	s.logger.Debugf(providers.TypePipeline, "Checkpoint saved: %s/%s step=%s", cp.Kind, cp.OwnerID, cp.Step)
}

func (s *Store) Load(key models.CheckpointKey) *models.Checkpoint {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(storageKey(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if err != badger.ErrKeyNotFound {
			s.logger.Warnf(providers.TypePipeline, "Checkpoint load failed, treating as absent: %s", err)
		}
		return nil
	}

	cp := s.decode(data)
	if cp == nil {
		// Undecodable records are purged so they don't shadow the slot.
		s.Clear(key)
		return nil
	}
	if cp.Expired(s.staleness, s.now()) {
		s.logger.Infof(providers.TypePipeline, "Checkpoint expired, purging: %s/%s", key.Kind, key.OwnerID)
		s.Clear(key)
		return nil
	}
	return cp
}

func (s *Store) Clear(key models.CheckpointKey) {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(storageKey(key))
	})
	if err != nil {
		s.logger.Warnf(providers.TypePipeline, "Checkpoint clear failed: %s", err)
	}
}

func (s *Store) ListAll() []*models.Checkpoint {
	live, _ := s.scan()
	return live
}

func (s *Store) Sweep() int {
	_, expired := s.scan()
	for _, key := range expired {
		s.Clear(key)
	}
	return len(expired)
}

func (s *Store) scan() ([]*models.Checkpoint, []models.CheckpointKey) {
	var live []*models.Checkpoint
	var expired []models.CheckpointKey

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(keyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			data, err := it.Item().ValueCopy(nil)
			if err != nil {
				continue
			}
			cp := s.decode(data)
			if cp == nil {
				continue
			}
			if cp.Expired(s.staleness, s.now()) {
				expired = append(expired, cp.Key())
				continue
			}
			live = append(live, cp)
		}
		return nil
	})
	if err != nil {
		s.logger.Warnf(providers.TypePipeline, "Checkpoint scan failed: %s", err)
	}
	return live, expired
}

func (s *Store) decode(data []byte) *models.Checkpoint {
	raw, err := s.compressor.Decompress(data)
	if err != nil {
		s.logger.Warnf(providers.TypePipeline, "Checkpoint decompress failed: %s", err)
		return nil
	}
	var cp models.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		s.logger.Warnf(providers.TypePipeline, "Checkpoint decode failed: %s", err)
		return nil
	}
	return &cp
}

func (s *Store) Close() error {
	return s.db.Close()
}
