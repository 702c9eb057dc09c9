package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Status represents the lifecycle state of a provisioning request.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusQueued, StatusInProgress, StatusCompleted, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions occur for this status
// until a new operation is submitted for the account.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

func ParseStatusFromString(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("%w: invalid status %q", ErrValidation, s)
	}
	return st, nil
}

// APIKind represents the Cosmos DB API flavor of an account.
type APIKind string

const (
	APIKindSQL   APIKind = "sql"
	APIKindMongo APIKind = "mongo"
)

func (k APIKind) String() string { return string(k) }

func (k APIKind) IsValid() bool {
	switch k {
	case APIKindSQL, APIKindMongo:
		return true
	}
	return false
}

func ParseAPIKindFromString(s string) (APIKind, error) {
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return APIKindSQL, nil
	}
	kind := APIKind(trimmed)
	if !kind.IsValid() {
		return "", fmt.Errorf("%w: invalid api_type %q", ErrValidation, s)
	}
	return kind, nil
}

// Account name limits imposed by Azure Cosmos DB.
const (
	MinAccountNameLength = 3
	MaxAccountNameLength = 44
)

// accountNamePattern enforces lowercase letters, digits and hyphens, starting
// with a letter and not ending with a hyphen.
var accountNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*[a-z0-9]$`)

// AccountRequest is the immutable input of a provisioning flow.
type AccountRequest struct {
	Name     string
	Location string
	APIKind  APIKind
}

func (r *AccountRequest) Validate() error {
	nameLen := len(r.Name)
	if nameLen < MinAccountNameLength || nameLen > MaxAccountNameLength {
		return fmt.Errorf("%w: account_name must be %d-%d characters (got %d)",
			ErrValidation, MinAccountNameLength, MaxAccountNameLength, nameLen)
	}
	if !accountNamePattern.MatchString(r.Name) {
		return fmt.Errorf("%w: account_name must be lowercase letters, digits and hyphens, start with a letter and not end with a hyphen", ErrValidation)
	}
	if strings.TrimSpace(r.Location) == "" {
		return fmt.Errorf("%w: location is required", ErrValidation)
	}
	if !r.APIKind.IsValid() {
		return fmt.Errorf("%w: invalid api_type %q", ErrValidation, r.APIKind)
	}
	return nil
}

// AccountStatus is the current status record of an account, the single
// source of truth for where a request is now.
type AccountStatus struct {
	AccountName string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Message     string
}
