package inmemdb

import (
	"sync"
)

type (
	// DB holds one table per schema table name. Schemas sharing a table (eg. users & editors) share rows.
	DB struct {
		mutex  sync.Mutex
		tables map[string]*table
	}

	table struct {
		rows  map[int]interface{}
		pk    int
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{tables: make(map[string]*table)}
}

func (db *DB) table(name string) *table {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	t, ok := db.tables[name]
	if !ok {
		t = &table{rows: make(map[int]interface{})}
		db.tables[name] = t
	}
	return t
}

// Truncate empties every table and resets the primary key sequences.
func (db *DB) Truncate() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.tables = make(map[string]*table)
}
