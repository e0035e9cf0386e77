package engine

// Kind is the class of a key press.
type Kind int

const (
	KindDigit Kind = iota
	KindOperator
	KindClear
	KindDelete
	KindEquals
)

func (k Kind) String() string {
	switch k {
	case KindDigit:
		return "digit"
	case KindOperator:
		return "operator"
	case KindClear:
		return "clear"
	case KindDelete:
		return "delete"
	case KindEquals:
		return "equals"
	default:
		return "unknown"
	}
}

// Classify maps a key to the handler class that processes it.
func Classify(key string) Kind {
	switch key {
	case KeyPoint, KeyZeroZero, KeySign:
		return KindDigit
	case KeyClear, KeyAllClear:
		return KindClear
	case KeyDelete, KeyBack:
		return KindDelete
	case KeyEquals:
		return KindEquals
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return KindDigit
	}
	return KindOperator
}
