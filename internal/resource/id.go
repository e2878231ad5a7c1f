package resource

import (
	"database/sql/driver"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leg100/console/internal"
)

const (
	// base58 alphabet
	base58 = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	// length of id part of ID
	idLength = 16
)

// Kinds of resource
const (
	WorkspaceKind  Kind = "ws"
	AppKind        Kind = "app"
	StageKind      Kind = "stage"
	AppRepoKind    Kind = "repo"
	UpdateKind     Kind = "upd"
	StateEventKind Kind = "evt"
	RunKind        Kind = "run"
	IssueKind      Kind = "iss"
)

var (
	// EmptyID for use in comparisons to check whether ID has been
	// uninitialized.
	EmptyID = ID{}
	// regex for valid ID
	idRegex = regexp.MustCompile(`^[a-z]{2,}-[` + base58 + `]{` + strconv.Itoa(idLength) + `}$`)
)

type (
	// Kind is the kind of resource an ID identifies, e.g. a stage or a run.
	Kind string

	// ID uniquely identifies a console resource.
	ID struct {
		Kind Kind
		ID   string
	}
)

func (k Kind) String() string { return string(k) }

// NewID constructs a resource ID
func NewID(kind Kind) ID {
	return ID{Kind: kind, ID: internal.GenerateRandomStringFromAlphabet(idLength, base58)}
}

// ParseID parses and validates an ID from its string representation.
func ParseID(s string) (ID, error) {
	if !idRegex.MatchString(s) {
		return ID{}, fmt.Errorf("%w: %s", internal.ErrInvalidID, s)
	}
	kind, id, _ := strings.Cut(s, "-")
	return ID{Kind: Kind(kind), ID: id}, nil
}

// MustParseID parses an ID, panicking if it is invalid.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err.Error())
	}
	return id
}

func (id ID) String() string {
	if id == EmptyID {
		return ""
	}
	return fmt.Sprintf("%s-%s", id.Kind, id.ID)
}

// IsZero reports whether the ID is uninitialized.
func (id ID) IsZero() bool { return id == EmptyID }

// GetID allows the user of an interface to retrieve the ID.
func (id ID) GetID() ID {
	return id
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = EmptyID
		return nil
	}
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Scan implements database/sql.Scanner, which pgx uses to scan text columns
// into an ID.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = EmptyID
		return nil
	case string:
		return id.UnmarshalText([]byte(v))
	case []byte:
		return id.UnmarshalText(v)
	default:
		return fmt.Errorf("unsupported scan type for resource ID: %T", src)
	}
}

// Value implements database/sql/driver.Valuer.
func (id ID) Value() (driver.Value, error) {
	if id == EmptyID {
		return nil, nil
	}
	return id.String(), nil
}
