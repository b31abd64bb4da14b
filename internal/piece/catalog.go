package piece

import "fmt"

// Kind identifies a piece. The zero value marks an empty cell.
type Kind uint8

const (
	Empty Kind = iota
	I
	O
	T
	S
	Z
	J
	L
	Heart
	Star
)

// Standard lists the seven tetrominoes used for ordinary draws.
var Standard = [7]Kind{I, O, T, S, Z, J, L}

// Easy is the subset handed out as gift pieces.
var Easy = [2]Kind{I, O}

// Variants are the non-rotating bonus pieces.
var Variants = [2]Kind{Heart, Star}

var names = [...]string{
	Empty: "",
	I:     "I",
	O:     "O",
	T:     "T",
	S:     "S",
	Z:     "Z",
	J:     "J",
	L:     "L",
	Heart: "heart",
	Star:  "star",
}

func (k Kind) String() string {
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k names a catalog piece.
func (k Kind) Valid() bool {
	return k >= I && k <= Star
}

// IsVariant reports whether k is one of the bonus pieces.
func (k Kind) IsVariant() bool {
	return k == Heart || k == Star
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	s := string(b)
	for i, n := range names {
		if n == s {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown piece kind %q", s)
}

// Matrix is one rotation state; true marks a filled cell.
type Matrix [][]bool

// Cells returns the (row, col) offsets of the filled cells.
func (m Matrix) Cells() [][2]int {
	var out [][2]int
	for r, row := range m {
		for c, filled := range row {
			if filled {
				out = append(out, [2]int{r, c})
			}
		}
	}
	return out
}

type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// Shape is a catalog entry. Standard kinds carry 1 or 4 rotation states,
// variants exactly one, so every caller goes through Matrix regardless of
// kind.
type Shape struct {
	Kind      Kind
	Rotations []Matrix
	Color     Color
}

// RotationCount is the number of distinct rotation states.
func (s Shape) RotationCount() int {
	return len(s.Rotations)
}

// Matrix returns the rotation state rot, wrapped into range.
func (s Shape) Matrix(rot int) Matrix {
	n := len(s.Rotations)
	rot %= n
	if rot < 0 {
		rot += n
	}
	return s.Rotations[rot]
}

// Lookup returns the catalog entry for k. It panics on Empty or an
// unknown kind.
func Lookup(k Kind) Shape {
	if !k.Valid() {
		panic(fmt.Sprintf("piece: no shape for %v", k))
	}
	return catalog[k]
}

// RotationCount is shorthand for Lookup(k).RotationCount().
func RotationCount(k Kind) int {
	return Lookup(k).RotationCount()
}

// ShapeOf is shorthand for Lookup(k).Matrix(rot).
func ShapeOf(k Kind, rot int) Matrix {
	return Lookup(k).Matrix(rot)
}

// ColorOf returns the display color of k; Empty maps to black.
func ColorOf(k Kind) Color {
	if !k.Valid() {
		return Color{}
	}
	return catalog[k].Color
}

var variantColor = Color{255, 105, 180}

var catalog = [...]Shape{
	I: {Kind: I, Color: Color{0, 255, 255}, Rotations: []Matrix{
		grid("....", "####", "....", "...."),
		grid("..#.", "..#.", "..#.", "..#."),
		grid("....", "....", "####", "...."),
		grid(".#..", ".#..", ".#..", ".#.."),
	}},
	O: {Kind: O, Color: Color{255, 255, 0}, Rotations: []Matrix{
		grid("....", ".##.", ".##.", "...."),
	}},
	T: {Kind: T, Color: Color{128, 0, 128}, Rotations: []Matrix{
		grid("....", "###.", ".#..", "...."),
		grid(".#..", "##..", ".#..", "...."),
		grid(".#..", "###.", "....", "...."),
		grid(".#..", ".##.", ".#..", "...."),
	}},
	S: {Kind: S, Color: Color{0, 255, 0}, Rotations: []Matrix{
		grid("....", ".##.", "##..", "...."),
		grid(".#..", ".##.", "..#.", "...."),
		grid("....", ".##.", "##..", "...."),
		grid("#...", "##..", ".#..", "...."),
	}},
	Z: {Kind: Z, Color: Color{255, 0, 0}, Rotations: []Matrix{
		grid("....", "##..", ".##.", "...."),
		grid("..#.", ".##.", ".#..", "...."),
		grid("....", "##..", ".##.", "...."),
		grid(".#..", "##..", "#...", "...."),
	}},
	J: {Kind: J, Color: Color{0, 0, 255}, Rotations: []Matrix{
		grid("....", "###.", "..#.", "...."),
		grid(".#..", ".#..", "##..", "...."),
		grid("#...", "###.", "....", "...."),
		grid(".##.", ".#..", ".#..", "...."),
	}},
	L: {Kind: L, Color: Color{255, 165, 0}, Rotations: []Matrix{
		grid("....", "###.", "#...", "...."),
		grid("##..", ".#..", ".#..", "...."),
		grid("..#.", "###.", "....", "...."),
		grid(".#..", ".#..", ".##.", "...."),
	}},
	Heart: {Kind: Heart, Color: variantColor, Rotations: []Matrix{
		grid(".#.#.", "#####", "#####", ".###.", "..#.."),
	}},
	Star: {Kind: Star, Color: variantColor, Rotations: []Matrix{
		grid("..#..", ".###.", "#####", ".###.", ".#.#."),
	}},
}

func grid(rows ...string) Matrix {
	m := make(Matrix, len(rows))
	for r, row := range rows {
		m[r] = make([]bool, len(row))
		for c := range row {
			m[r][c] = row[c] == '#'
		}
	}
	return m
}
