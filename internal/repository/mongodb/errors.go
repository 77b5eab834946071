package mongodb

import (
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/tillnow2/hrms-lite-be/internal/repository"
)

// duplicateHints maps fragments of a duplicate key message to the field that
// collided. Index names come first; key patterns cover indexes created
// outside EnsureIndexes.
var duplicateHints = []struct {
	needle string
	field  string
}{
	{indexEmployeeEmail, "email"},
	{indexAttendanceDay, "employee_id,date"},
	{indexEmployeeID, "employee_id"},
	{indexDigestDate, "date"},
	{"{ email:", "email"},
	{"date:", "employee_id,date"},
	{"{ employee_id:", "employee_id"},
}

// translateError maps driver errors onto the repository sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return &repository.DuplicateKeyError{Field: duplicateField(err.Error())}
	default:
		return err
	}
}

func duplicateField(message string) string {
	for _, hint := range duplicateHints {
		if strings.Contains(message, hint.needle) {
			return hint.field
		}
	}
	return ""
}
