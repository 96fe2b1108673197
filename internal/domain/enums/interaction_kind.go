package enums

type InteractionKind string

const (
	InteractionKindLike      InteractionKind = "like"
	InteractionKindDislike   InteractionKind = "dislike"
	InteractionKindSuperlike InteractionKind = "superlike"
)

func (k InteractionKind) Valid() bool {
	switch k {
	case InteractionKindLike, InteractionKindDislike, InteractionKindSuperlike:
		return true
	default:
		return false
	}
}

// Positive kinds can complete a link; dislike never does.
func (k InteractionKind) Positive() bool {
	return k == InteractionKindLike || k == InteractionKindSuperlike
}
