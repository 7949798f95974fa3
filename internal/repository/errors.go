// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and services to distinguish between different failure
// scenarios without inspecting driver errors themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateName is returned when a unique name column (genre or
// hall name) already holds the value being inserted.
var ErrDuplicateName = errors.New("name already exists")

// ErrSeatTaken is returned by CreateTicketTx when another ticket for
// the same performance already occupies the seat.  The check is made
// by the tickets unique key, never by a prior read.
var ErrSeatTaken = errors.New("seat already taken")

// ErrInvalidReference is returned when an insert names a parent row
// (play, hall, actor, genre) that does not exist.
var ErrInvalidReference = errors.New("referenced row does not exist")

// MySQL server error numbers the repositories translate.
const (
	mysqlErrDuplicateEntry = 1062 // ER_DUP_ENTRY
	mysqlErrNoReferenced   = 1452 // ER_NO_REFERENCED_ROW_2
	mysqlErrLockWait       = 1205 // ER_LOCK_WAIT_TIMEOUT
	mysqlErrDeadlock       = 1213 // ER_LOCK_DEADLOCK
)

// isDuplicateKey reports whether err is a unique key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrDuplicateEntry
}

// isMissingReference reports whether err is a foreign key violation on insert.
func isMissingReference(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlErrNoReferenced
}

// isLockConflict reports whether InnoDB gave up on err's statement while
// it waited for a row lock held by another transaction.
func isLockConflict(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == mysqlErrDeadlock || me.Number == mysqlErrLockWait)
}
