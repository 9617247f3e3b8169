package lcs

import (
	"fmt"
	"strings"

	apperrors "github.com/agbru/lcscalc/internal/errors"
)

// Sequence is an ordered list of symbols. The engine never mutates it.
type Sequence []byte

// Pair holds the two sequences being compared. A indexes table rows, B columns.
type Pair struct {
	A Sequence
	B Sequence
}

// Dims returns (m, n).
func (p Pair) Dims() (int, int) { return len(p.A), len(p.B) }

// Alphabet is a declared symbol set. The zero value accepts every byte.
type Alphabet struct {
	symbols string
	allowed [256]bool
}

// DNA is the nucleotide alphabet.
var DNA = NewAlphabet("ACGT")

// AnyAlphabet accepts any byte.
var AnyAlphabet = Alphabet{}

// NewAlphabet builds an alphabet from the distinct bytes of symbols.
func NewAlphabet(symbols string) Alphabet {
	var a Alphabet
	var sb strings.Builder
	for i := 0; i < len(symbols); i++ {
		c := symbols[i]
		if !a.allowed[c] {
			a.allowed[c] = true
			sb.WriteByte(c)
		}
	}
	a.symbols = sb.String()
	return a
}

// ParseAlphabet maps a configuration value to an alphabet. "any" and the
// empty string disable validation, "dna" selects DNA, anything else is taken
// as the literal symbol set.
func ParseAlphabet(name string) Alphabet {
	switch strings.ToLower(name) {
	case "", "any":
		return AnyAlphabet
	case "dna":
		return DNA
	}
	return NewAlphabet(name)
}

// Symbols returns the declared symbols, or "" for AnyAlphabet.
func (a Alphabet) Symbols() string { return a.symbols }

// Validate returns an *InvalidSymbolError for the first symbol of s outside
// the alphabet. name identifies the sequence in the error.
func (a Alphabet) Validate(name string, s Sequence) error {
	if a.symbols == "" {
		return nil
	}
	for i, c := range s {
		if !a.allowed[c] {
			return &InvalidSymbolError{Sequence: name, Index: i, Symbol: c, Alphabet: a.symbols}
		}
	}
	return nil
}

// ValidatePair checks both sequences.
func (a Alphabet) ValidatePair(p Pair) error {
	if err := a.Validate("a", p.A); err != nil {
		return err
	}
	return a.Validate("b", p.B)
}

// NewPair validates a and b against alphabet and returns the pair.
func NewPair(a, b string, alphabet Alphabet) (Pair, error) {
	p := Pair{A: Sequence(a), B: Sequence(b)}
	if err := alphabet.ValidatePair(p); err != nil {
		return Pair{}, err
	}
	return p, nil
}

// InvalidSymbolError reports a symbol outside the declared alphabet.
type InvalidSymbolError struct {
	Sequence string
	Index    int
	Symbol   byte
	Alphabet string
}

func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol %q at position %d of sequence %s (alphabet %q)", e.Symbol, e.Index, e.Sequence, e.Alphabet)
}

// ExitCode maps invalid input to apperrors.ExitErrorInput.
func (e *InvalidSymbolError) ExitCode() int { return apperrors.ExitErrorInput }
