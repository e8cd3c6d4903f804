package cache

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Kind is the TVMaze endpoint a cached response came from
type Kind string

const (
	KindSearch   Kind = "search"
	KindEpisodes Kind = "episodes"
)

// Key identifies one cached TVMaze response
type Key struct {
	Kind Kind
	ID   string
}

// SearchKey folds case and Unicode normalization so "Bachelor" and "BACHELOR"
// share an entry. TVMaze search is case-insensitive.
func SearchKey(term string) Key {
	return Key{Kind: KindSearch, ID: cases.Fold().String(norm.NFC.String(strings.TrimSpace(term)))}
}

// EpisodesKey is the key of the episode list of one show
func EpisodesKey(showID int) Key {
	return Key{Kind: KindEpisodes, ID: strconv.Itoa(showID)}
}

func (k Key) String() string {
	return string(k.Kind) + ":" + k.ID
}

// kindOf recovers the kind from a stored key such as "showfinder:episodes:1"
func kindOf(stored, prefix string) Kind {
	kind, _, _ := strings.Cut(strings.TrimPrefix(stored, prefix), ":")
	return Kind(kind)
}
