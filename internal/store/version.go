package store

import (
	"strconv"

	"github.com/tidwall/gjson"
)

// DataVersion is the layout version of the values written under Namespace.
const DataVersion = 1

// VersionKey records DataVersion alongside the data.
const VersionKey = Namespace + "version"

// EnsureVersion stamps the data version. A version value that is not a
// plain number means the namespace was written by something else or got
// corrupted, so every namespaced key is wiped before stamping. wiped
// reports whether that happened.
func (s *Store) EnsureVersion() (wiped bool, err error) {
	raw, ok, err := s.Get(VersionKey)
	if err != nil {
		return false, err
	}

	if ok {
		res := gjson.Parse(raw)
		if !gjson.Valid(raw) || res.Type != gjson.Number {
			if _, err := s.Clear(); err != nil {
				return false, err
			}
			wiped = true
		} else if res.Int() >= DataVersion {
			return false, nil
		}
	}

	return wiped, s.Set(VersionKey, strconv.Itoa(DataVersion))
}
