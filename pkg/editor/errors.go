package editor

import (
	"errors"
	"fmt"

	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/validation"
)

// DuplicateInstrumentError reports that another project already owns the instrument key.
type DuplicateInstrumentError struct {
	Type       string
	Revision   string
	ExistingID string
}

func (e *DuplicateInstrumentError) Error() string {
	return fmt.Sprintf(`An instrument with type "%s" and revision "%s" already exists.`, e.Type, e.Revision)
}

// Is makes errors.Is(err, domain.ErrDuplicateInstrument) hold.
func (e *DuplicateInstrumentError) Is(target error) bool {
	return target == domain.ErrDuplicateInstrument
}

// BlockedError carries the report that prevented a save.
type BlockedError struct {
	Issues []domain.Issue
}

func (e *BlockedError) Error() string {
	errs, warns := validation.Count(e.Issues)
	return fmt.Sprintf("%s: %d error(s), %d warning(s)", domain.ErrBlockingIssues, errs, warns)
}

func (e *BlockedError) Unwrap() error {
	return domain.ErrBlockingIssues
}

// DuplicateValueError reports a vocabulary value that is already present.
type DuplicateValueError struct {
	Vocabulary domain.Vocabulary
	Value      string
}

func (e *DuplicateValueError) Error() string {
	return fmt.Sprintf(`Value "%s" already exists in %s`, e.Value, e.Vocabulary)
}

func (e *DuplicateValueError) Unwrap() error {
	return domain.ErrDuplicateValue
}

// IssuesOf returns the report attached to a BlockedError, or nil.
func IssuesOf(err error) []domain.Issue {
	var blocked *BlockedError
	if errors.As(err, &blocked) {
		return blocked.Issues
	}
	return nil
}
