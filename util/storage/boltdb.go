package storage

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"github.com/boltdb/bolt"
	"github.com/openaccess/exchange/models"
	"github.com/openaccess/exchange/util/fileutil"
	"time"
)

const DEPOSIT_BUCKET = "deposits"
const REQUEST_BUCKET = "requests"

// BoltDB represents a bolt database, which is a single-file key-value
// store. The deposit worker keeps a DepositRecord here for every
// deposit attempt, and the status refresher walks the records to
// ask repositories what became of them. The requests bucket maps
// each DepositRequest id to the record of its latest attempt, so
// a request NSQ delivers twice is recognized.
type BoltDB struct {
	db       *bolt.DB
	filePath string
	readOnly bool
}

// NewBoltDB opens a bolt database, creating the DB file if it doesn't
// already exist. Only one process can have the file open. Others
// get an error after a few seconds.
func NewBoltDB(filePath string) (*BoltDB, error) {
	return OpenBoltDB(filePath, false)
}

// OpenBoltDB opens the bolt database at filePath. A read-only
// database must already exist, and it can be shared with other
// read-only processes, but not with one that has the file open
// for writing.
func OpenBoltDB(filePath string, readOnly bool) (*BoltDB, error) {
	if readOnly && !fileutil.FileExists(filePath) {
		return nil, fmt.Errorf("Deposit database %s does not exist", filePath)
	}
	db, err := bolt.Open(filePath, 0644, &bolt.Options{Timeout: 5 * time.Second, ReadOnly: readOnly})
	if err == bolt.ErrTimeout {
		return nil, fmt.Errorf("Deposit database %s is locked by another process", filePath)
	}
	if err != nil {
		return nil, err
	}
	boltDB := &BoltDB{
		db:       db,
		filePath: filePath,
		readOnly: readOnly,
	}
	if readOnly {
		err = boltDB.checkBuckets()
	} else {
		err = boltDB.initBuckets()
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return boltDB, nil
}

func (boltDB *BoltDB) initBuckets() error {
	err := boltDB.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(DEPOSIT_BUCKET))
		if err != nil {
			return fmt.Errorf("Error creating deposit bucket: %s", err)
		}
		_, err = tx.CreateBucketIfNotExists([]byte(REQUEST_BUCKET))
		if err != nil {
			return fmt.Errorf("Error creating request bucket: %s", err)
		}
		return nil
	})
	return err
}

func (boltDB *BoltDB) checkBuckets() error {
	return boltDB.db.View(func(tx *bolt.Tx) error {
		for _, name := range []string{DEPOSIT_BUCKET, REQUEST_BUCKET} {
			if tx.Bucket([]byte(name)) == nil {
				return fmt.Errorf("%s has no %s bucket", boltDB.filePath, name)
			}
		}
		return nil
	})
}

// ReadOnly returns true if the database was opened read-only.
func (boltDB *BoltDB) ReadOnly() bool {
	return boltDB.readOnly
}

// FilePath returns the path to the bolt DB file.
func (boltDB *BoltDB) FilePath() string {
	return boltDB.filePath
}

// Close closes the bolt database.
func (boltDB *BoltDB) Close() {
	boltDB.db.Close()
}

// SaveRecord saves record under record.Id, replacing any earlier
// version. If the record has a RequestId, the request index is
// updated in the same transaction.
func (boltDB *BoltDB) SaveRecord(record *models.DepositRecord) error {
	if record == nil || record.Id == "" {
		return fmt.Errorf("Cannot save a deposit record without id")
	}
	buf := &bytes.Buffer{}
	encoder := gob.NewEncoder(buf)
	if err := encoder.Encode(record); err != nil {
		return err
	}
	return boltDB.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket([]byte(DEPOSIT_BUCKET)).Put([]byte(record.Id), buf.Bytes())
		if err == nil && record.RequestId != "" {
			err = tx.Bucket([]byte(REQUEST_BUCKET)).Put([]byte(record.RequestId), []byte(record.Id))
		}
		return err
	})
}

// GetRecord returns the DepositRecord with the specified id.
// If id is not found, this returns nil and no error.
func (boltDB *BoltDB) GetRecord(id string) (*models.DepositRecord, error) {
	var record *models.DepositRecord
	err := boltDB.db.View(func(tx *bolt.Tx) error {
		var err error
		record, err = decodeRecord(tx.Bucket([]byte(DEPOSIT_BUCKET)).Get([]byte(id)))
		return err
	})
	return record, err
}

// GetRecordForRequest returns the record of the latest attempt at
// the DepositRequest with the specified id, or nil and no error if
// there was no attempt.
func (boltDB *BoltDB) GetRecordForRequest(requestId string) (*models.DepositRecord, error) {
	var record *models.DepositRecord
	err := boltDB.db.View(func(tx *bolt.Tx) error {
		recordId := tx.Bucket([]byte(REQUEST_BUCKET)).Get([]byte(requestId))
		if len(recordId) == 0 {
			return nil
		}
		var err error
		record, err = decodeRecord(tx.Bucket([]byte(DEPOSIT_BUCKET)).Get(recordId))
		return err
	})
	return record, err
}

// ForEach calls fn for each deposit record, in key order. Returning
// an error from fn stops the iteration. Records fn changes are not
// saved; call SaveRecord after ForEach returns.
func (boltDB *BoltDB) ForEach(fn func(record *models.DepositRecord) error) error {
	return boltDB.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(DEPOSIT_BUCKET))
		return bucket.ForEach(func(k, v []byte) error {
			record, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("Cannot decode deposit record %s: %v", k, err)
			}
			return fn(record)
		})
	})
}

// Keys returns a list of all deposit record ids in the database.
func (boltDB *BoltDB) Keys() []string {
	keys := make([]string, 0)
	boltDB.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(DEPOSIT_BUCKET))
		c := b.Cursor()
		for k, _ := c.First(); k != nil; k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	return keys
}

func decodeRecord(value []byte) (*models.DepositRecord, error) {
	if len(value) == 0 {
		return nil, nil
	}
	record := &models.DepositRecord{}
	decoder := gob.NewDecoder(bytes.NewBuffer(value))
	if err := decoder.Decode(record); err != nil {
		return nil, err
	}
	return record, nil
}
