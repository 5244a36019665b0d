package binding

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hhkbp2/txbench"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

const (
	PropertySqliteFile               = "sqlite.file"
	PropertySqliteFileDefault        = "txbench.db"
	PropertySqliteBusyTimeout        = "sqlite.busytimeout"
	PropertySqliteBusyTimeoutDefault = "5000"
	PropertySqliteJournalMode        = "sqlite.journalmode"
	PropertySqliteJournalModeDefault = "WAL"
)

var (
	sqliteDialect = &sqlDialect{
		createTable: "CREATE TABLE IF NOT EXISTS %s (k TEXT PRIMARY KEY, v BLOB)",
		get:         "SELECT v FROM %s WHERE k = ?",
		upsert:      "INSERT INTO %s (k, v) VALUES (?, ?) ON CONFLICT(k) DO UPDATE SET v = excluded.v",
		isConflict:  isSqliteConflict,
	}
)

func isSqliteConflict(err error) bool {
	var e sqlite3.Error
	if errors.As(err, &e) {
		return e.Code == sqlite3.ErrBusy || e.Code == sqlite3.ErrLocked
	}
	return false
}

// SqliteStore keeps the table in a sqlite file under store.path.
type SqliteStore struct {
	*sqlStore
	file string
}

func NewSqliteStore() *SqliteStore {
	return &SqliteStore{
		sqlStore: newSQLStore(sqliteDialect),
	}
}

func (self *SqliteStore) Init() error {
	props := self.GetProperties()
	dir := props.GetDefault(txbench.PropertyStorePath, txbench.PropertyStorePathDefault)
	createIfMissing, err := props.GetBool(txbench.PropertyStoreCreateIfMissing, txbench.PropertyStoreCreateIfMissingDefault)
	if err != nil {
		return err
	}
	busyTimeout, err := props.GetInt64(PropertySqliteBusyTimeout, PropertySqliteBusyTimeoutDefault)
	if err != nil {
		return err
	}
	journalMode := props.GetDefault(PropertySqliteJournalMode, PropertySqliteJournalModeDefault)

	self.file = filepath.Join(dir, props.GetDefault(PropertySqliteFile, PropertySqliteFileDefault))
	if _, err := os.Stat(self.file); os.IsNotExist(err) {
		if !createIfMissing {
			return errors.Errorf("sqlite file %s does not exist", self.file)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "fail to create %s", dir)
		}
	}
	// _txlock=immediate takes the write lock at BEGIN, so two transactions
	// never deadlock upgrading their read locks
	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=%s&_txlock=immediate",
		self.file, busyTimeout, journalMode)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return errors.Wrapf(err, "fail to open sqlite file %s", self.file)
	}
	txbench.Debugf("sqlite store at %s", self.file)
	return self.open(context.Background(), db)
}

func (self *SqliteStore) File() string {
	return self.file
}
