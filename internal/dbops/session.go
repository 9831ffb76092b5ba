package dbops

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/mongodb-labs/mwgrunner/internal/engctx"
)

// ReadPreference installs a read-preference override on the executing
// thread, picked up by every subsequent operation's collectionOf call
// until overridden again (§13 SUPPLEMENTED FEATURES, grounded on the
// original's read_preference operation).
type ReadPreference struct {
	Pref *readpref.ReadPref
}

func (op *ReadPreference) Execute(ctx *engctx.ThreadContext) error {
	ctx.ReadPref = op.Pref
	return nil
}

// ParseReadPreferenceMode maps a config string to a *readpref.ReadPref.
func ParseReadPreferenceMode(mode string) (*readpref.ReadPref, error) {
	switch mode {
	case "primary", "":
		return readpref.Primary(), nil
	case "primaryPreferred":
		return readpref.PrimaryPreferred(), nil
	case "secondary":
		return readpref.Secondary(), nil
	case "secondaryPreferred":
		return readpref.SecondaryPreferred(), nil
	case "nearest":
		return readpref.Nearest(), nil
	default:
		return nil, fmt.Errorf("dbops: unknown read preference mode %q", mode)
	}
}

// WriteConcern installs a write-concern override on the executing thread
// (§13 SUPPLEMENTED FEATURES, grounded on the original's write_concern
// operation).
type WriteConcern struct {
	Concern *writeconcern.WriteConcern
}

func (op *WriteConcern) Execute(ctx *engctx.ThreadContext) error {
	ctx.WriteConcern = op.Concern
	return nil
}

// BuildWriteConcern constructs a write concern from w (an int ack count,
// "majority", or "" for the driver default) and an optional journal flag
// and timeout.
func BuildWriteConcern(w interface{}, journal *bool, timeout time.Duration) (*writeconcern.WriteConcern, error) {
	var opts []writeconcern.Option
	switch x := w.(type) {
	case nil:
	case string:
		if x == "majority" {
			opts = append(opts, writeconcern.WMajority())
		} else if x != "" {
			return nil, fmt.Errorf("dbops: unsupported write concern w value %q", x)
		}
	case int:
		opts = append(opts, writeconcern.W(x))
	case int64:
		opts = append(opts, writeconcern.W(int(x)))
	case float64:
		opts = append(opts, writeconcern.W(int(x)))
	default:
		return nil, fmt.Errorf("dbops: unsupported write concern w value %v", w)
	}
	if journal != nil {
		opts = append(opts, writeconcern.J(*journal))
	}
	if timeout > 0 {
		opts = append(opts, writeconcern.WTimeout(timeout))
	}
	return writeconcern.New(opts...), nil
}
