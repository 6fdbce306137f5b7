package interaction

import "github.com/pkg/errors"

// MaxInteractions bounds the accepted event log length. Scoring is linear in the log, so
// the bound keeps an adversarially large submission from tying up a request worker.
const MaxInteractions = 10_000

// ErrNoActions reports an event log from which no actions could be derived. The score is
// undefined in that case and callers must treat it as a scoring failure rather than
// defaulting it.
var ErrNoActions = errors.New("no actions derived from interactions")

// ErrTooManyInteractions reports an event log longer than MaxInteractions.
var ErrTooManyInteractions = errors.New("interaction log exceeds accepted length")

// Analyze derives actions from the event log and returns the mean action score in [0, 1].
//
// Two segmentations feed the same action list. Generic actions: any event that is not a
// pure mouse movement closes the running action, the closing event included, and starts
// the next one at that event. Paired actions: each opening event (mouse enter, click
// down, key down) pushes its index on a per-kind stack, and the matching closing event
// pops the most recent open index and records the enclosed slice, so hovers, clicks and
// key presses may nest inside or overlap the generic segmentation. A trailing unclosed
// action is kept when it extends past the last delimiter, so a movement-only log still
// yields exactly one action.
func Analyze(interactions []Interaction) (float32, error) {
	if len(interactions) > MaxInteractions {
		return 0, ErrTooManyInteractions
	}

	actions := segment(interactions)
	if len(actions) == 0 {
		return 0, ErrNoActions
	}

	var sum float32
	for _, action := range actions {
		sum += scoreAction(action)
	}

	return sum / float32(len(actions)), nil
}

func segment(interactions []Interaction) [][]Interaction {
	var actions [][]Interaction
	stacks := map[string][]int{}
	curr := 0
	delimited := false

	for i, it := range interactions {
		if it.Event.Kind != KindMouseMovement {
			actions = append(actions, interactions[curr:i+1])
			curr = i
			delimited = true
		}

		if key, ok := openingKey(it.Event); ok {
			stacks[key] = append(stacks[key], i)
			// a push can never also be a pop
			continue
		}

		if key, ok := closingKey(it.Event); ok {
			if stack := stacks[key]; len(stack) > 0 {
				opened := stack[len(stack)-1]
				stacks[key] = stack[:len(stack)-1]
				actions = append(actions, interactions[opened:i+1])
			}
		}
	}

	// keep the trailing open action when it reaches past the last delimiter
	if len(interactions) > 0 && (!delimited || curr < len(interactions)-1) {
		actions = append(actions, interactions[curr:])
	}

	return actions
}

// openingKey maps an event that starts a paired action to its stack key. Key presses
// track each key identity separately so overlapping presses pair correctly.
func openingKey(e Event) (string, bool) {
	switch {
	case e.Kind == KindMouseEnter && e.InOut == CrossingIn:
		return "mouseenter", true
	case e.Kind == KindMouseClick && e.UpDown == DirectionDown:
		return "click", true
	case e.Kind == KindKeyPress && e.UpDown == DirectionDown:
		return e.Key, true
	}
	return "", false
}

func closingKey(e Event) (string, bool) {
	switch {
	case e.Kind == KindMouseEnter && e.InOut == CrossingOut:
		return "mouseenter", true
	case e.Kind == KindMouseClick && e.UpDown == DirectionUp:
		return "click", true
	case e.Kind == KindKeyPress && e.UpDown == DirectionUp:
		return e.Key, true
	}
	return "", false
}

// scoreAction rates one action. A down/up pair is judged by its timing; anything else
// carries no timing evidence against it and scores full marks.
func scoreAction(action []Interaction) float32 {
	switch len(action) {
	case 0:
		return 0
	case 1:
		return 1
	}

	first := action[0]
	last := action[len(action)-1]
	if isDownUpPair(first.Event, last.Event) {
		return timingScore(last.TS - first.TS)
	}

	return 1
}

func isDownUpPair(first, last Event) bool {
	if first.Kind == KindMouseClick && last.Kind == KindMouseClick {
		return first.UpDown == DirectionDown && last.UpDown == DirectionUp
	}
	if first.Kind == KindKeyPress && last.Kind == KindKeyPress {
		return first.UpDown == DirectionDown && last.UpDown == DirectionUp
	}
	return false
}

// timingScore accepts press-to-release spans between 2 and 350 time units. Faster is a
// machine, slower is not a press.
func timingScore(elapsed int64) float32 {
	if elapsed >= 2 && elapsed < 350 {
		return 1
	}
	return 0
}
