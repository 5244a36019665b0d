package binding

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
)

const (
	PropertyMysqlHost                = "mysql.host"
	PropertyMysqlHostDefault         = "127.0.0.1"
	PropertyMysqlPort                = "mysql.port"
	PropertyMysqlPortDefault         = "3306"
	PropertyMysqlDatabase            = "mysql.db"
	PropertyMysqlDatabaseDefault     = "db"
	PropertyMysqlUser                = "mysql.user"
	PropertyMysqlUserDefault         = "user"
	PropertyMysqlPassword            = "mysql.password"
	PropertyMysqlPasswordDefault     = "password"
	PropertyMysqlOptions             = "mysql.options"
	PropertyMysqlOptionsDefault      = "charset=utf8"
	PropertyMysqlMaxOpenConns        = "mysql.maxopenconns"
	PropertyMysqlMaxOpenConnsDefault = "0"
)

const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrLockDeadlock    = 1213
)

var (
	mysqlDialect = &sqlDialect{
		createTable: "CREATE TABLE IF NOT EXISTS %s (k VARCHAR(64) PRIMARY KEY, v VARBINARY(1024))",
		get:         "SELECT v FROM %s WHERE k = ?",
		upsert:      "INSERT INTO %s (k, v) VALUES (?, ?) ON DUPLICATE KEY UPDATE v = VALUES(v)",
		isConflict:  isMysqlConflict,
	}
)

func isMysqlConflict(err error) bool {
	var e *mysql.MySQLError
	if errors.As(err, &e) {
		return e.Number == mysqlErrLockDeadlock || e.Number == mysqlErrLockWaitTimeout
	}
	return false
}

type MysqlStore struct {
	*sqlStore
	host     string
	port     int
	database string
	user     string
	password string
	options  string
}

func NewMysqlStore() *MysqlStore {
	return &MysqlStore{
		sqlStore: newSQLStore(mysqlDialect),
	}
}

func (self *MysqlStore) Init() error {
	props := self.GetProperties()
	port, err := props.GetInt64(PropertyMysqlPort, PropertyMysqlPortDefault)
	if err != nil {
		return err
	}
	maxOpenConns, err := props.GetInt64(PropertyMysqlMaxOpenConns, PropertyMysqlMaxOpenConnsDefault)
	if err != nil {
		return err
	}
	self.host = props.GetDefault(PropertyMysqlHost, PropertyMysqlHostDefault)
	self.port = int(port)
	self.database = props.GetDefault(PropertyMysqlDatabase, PropertyMysqlDatabaseDefault)
	self.user = props.GetDefault(PropertyMysqlUser, PropertyMysqlUserDefault)
	self.password = props.GetDefault(PropertyMysqlPassword, PropertyMysqlPasswordDefault)
	self.options = props.GetDefault(PropertyMysqlOptions, PropertyMysqlOptionsDefault)
	sourceName := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		self.user, self.password, self.host, self.port, self.database, self.options)
	db, err := sql.Open("mysql", sourceName)
	if err != nil {
		return errors.Wrapf(err, "fail to open mysql %s:%d", self.host, self.port)
	}
	db.SetMaxOpenConns(int(maxOpenConns))
	return self.open(context.Background(), db)
}
