package mesh

// SpringKind selects which stiffness constant a spring uses.
type SpringKind uint8

const (
	Structural SpringKind = iota
	Shear
	Bend
)

func (k SpringKind) String() string {
	switch k {
	case Structural:
		return "structural"
	case Shear:
		return "shear"
	case Bend:
		return "bend"
	default:
		return "unknown"
	}
}

// Spring connects points A and B. Kind and Rest never change after Build.
type Spring struct {
	A, B int
	Kind SpringKind
	Rest float64
}
