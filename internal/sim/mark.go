package sim

import "fmt"

// Mark is the epigenetic modification carried by one nucleosome.
type Mark uint8

const (
	Acetylated Mark = iota
	Unmodified
	Methylated
)

func (m Mark) String() string {
	switch m {
	case Acetylated:
		return "A"
	case Unmodified:
		return "U"
	case Methylated:
		return "M"
	default:
		return fmt.Sprintf("Mark(%d)", uint8(m))
	}
}

func (m Mark) Valid() bool {
	return m <= Methylated
}
