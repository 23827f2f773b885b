// Package recipient decides which users may observe a domain event's
// real-time notification.
package recipient

import (
	"encoding/json"
	"sort"
)

// Set is the authorization decision for one event: either an unrestricted
// broadcast or an explicit user id set. The zero value is the empty explicit
// set ("nobody").
//
// Wire form: null means everyone, a JSON array means exactly those users,
// an empty array means nobody.
type Set struct {
	everyone bool
	ids      []string
}

// Everyone returns the unrestricted broadcast set.
func Everyone() Set {
	return Set{everyone: true}
}

// Nobody returns the empty explicit set. Events resolved to Nobody are
// suppressed before any projection work.
func Nobody() Set {
	return Set{}
}

// Users returns an explicit set holding the given ids, deduplicated and
// sorted. Empty ids are dropped.
func Users(ids ...string) Set {
	if len(ids) == 0 {
		return Set{}
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return Set{ids: out}
}

// IsEveryone reports whether the set is the unrestricted broadcast.
func (s Set) IsEveryone() bool {
	return s.everyone
}

// IsEmpty reports whether the set explicitly authorizes nobody.
func (s Set) IsEmpty() bool {
	return !s.everyone && len(s.ids) == 0
}

// IDs returns the explicit user ids, nil for a broadcast set.
func (s Set) IDs() []string {
	if s.everyone {
		return nil
	}
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out
}

// Contains reports whether the set authorizes the given user.
func (s Set) Contains(id string) bool {
	if s.everyone {
		return true
	}
	for _, v := range s.ids {
		if v == id {
			return true
		}
	}
	return false
}

// Union combines two sets. Everyone absorbs anything.
func (s Set) Union(other Set) Set {
	if s.everyone || other.everyone {
		return Everyone()
	}
	return Users(append(append([]string{}, s.ids...), other.ids...)...)
}

// MarshalJSON encodes the wire form: null for everyone, array otherwise.
func (s Set) MarshalJSON() ([]byte, error) {
	if s.everyone {
		return []byte("null"), nil
	}
	if s.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.ids)
}

// UnmarshalJSON decodes the wire form.
func (s *Set) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = Everyone()
		return nil
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = Users(ids...)
	return nil
}
