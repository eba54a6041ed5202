package verbs

// VerbValue identifies the action a command tree performs.
type VerbValue string

// Key is an empty type used to store the verb in a Context
type Key struct{}

// Verb is a global instance of the Key type
var Verb = Key{}

const (
	Get     = VerbValue("get")
	Reorder = VerbValue("reorder")
)

func (v VerbValue) String() string {
	return string(v)
}
