// Package store implements persistence on top of Badger, an embedded
// key-value database. Entities are stored as JSON under typed key
// prefixes, with secondary indexes maintained in the same transaction
// as the primary record.
//
// Key layout:
//
//	user:<id>                     -> User JSON
//	user:idx:email:<email>        -> user ID
//	rlog:<id>                     -> ReadingLog JSON
//	rlog:idx:user:<userID>:<id>   -> log ID
//	friend:<id>                   -> Friendship JSON
//	friend:idx:pair:<a>:<b>       -> friendship ID (a < b, canonical)
//	friend:idx:user:<userID>:<id> -> friendship ID
package store

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/pageturnapp/pageturn-server/internal/domain"
	"github.com/pageturnapp/pageturn-server/internal/logger"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *logger.Logger

	Users       *Entity[domain.User]
	ReadingLogs *Entity[domain.ReadingLog]
	Friendships *Entity[domain.Friendship]
}

// New opens the Badger database at path and initializes the entity
// registries.
func New(path string, log *logger.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: log,
	}

	s.initUsers()
	s.initReadingLogs()
	s.initFriendships()

	if log != nil {
		log.Info("badger database opened", "path", path)
	}

	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database connection")
	}
	return s.db.Close()
}
