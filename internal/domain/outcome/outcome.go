package outcome

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Symbol is one of the three possible results of a match.
type Symbol string

const (
	HomeWin Symbol = "1"
	Draw    Symbol = "X"
	AwayWin Symbol = "2"
)

var ErrUnknownSymbol = errors.New("unknown outcome symbol")

var symbolOrder = map[Symbol]int{
	HomeWin: 0,
	Draw:    1,
	AwayWin: 2,
}

// All returns the symbols in canonical order.
func All() []Symbol {
	return []Symbol{HomeWin, Draw, AwayWin}
}

func ParseSymbol(raw string) (Symbol, error) {
	candidate := Symbol(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := symbolOrder[candidate]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSymbol, raw)
	}
	return candidate, nil
}

func (s Symbol) Valid() bool {
	_, ok := symbolOrder[s]
	return ok
}

func (s Symbol) String() string {
	return string(s)
}

// Pick is a deduplicated set of symbols kept in canonical order ("1" < "X" < "2"),
// so two picks with the same members always compare equal.
type Pick []Symbol

// NewPick parses and normalizes raw symbols. An empty input yields an empty pick.
func NewPick(raw []string) (Pick, error) {
	seen := make(map[Symbol]struct{}, len(raw))
	out := make(Pick, 0, len(raw))
	for _, item := range raw {
		symbol, err := ParseSymbol(item)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	out.sort()
	return out, nil
}

// PickOf builds a normalized pick from already valid symbols.
func PickOf(symbols ...Symbol) Pick {
	raw := make([]string, 0, len(symbols))
	for _, s := range symbols {
		raw = append(raw, string(s))
	}
	p, err := NewPick(raw)
	if err != nil {
		return nil
	}
	return p
}

func (p Pick) sort() {
	sort.Slice(p, func(i, j int) bool {
		return symbolOrder[p[i]] < symbolOrder[p[j]]
	})
}

func (p Pick) IsEmpty() bool {
	return len(p) == 0
}

func (p Pick) IsDouble() bool {
	return len(p) > 1
}

func (p Pick) Contains(s Symbol) bool {
	for _, item := range p {
		if item == s {
			return true
		}
	}
	return false
}

func (p Pick) Equal(other Pick) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

func (p Pick) Strings() []string {
	out := make([]string, 0, len(p))
	for _, s := range p {
		out = append(out, string(s))
	}
	return out
}

// String renders the pick compactly, e.g. "1X".
func (p Pick) String() string {
	return strings.Join(p.Strings(), "")
}
