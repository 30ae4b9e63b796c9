package modes

import "searchdeck/internal/ui/input/types"

// move steps index by delta within [0, n-1]. From no selection, any step lands on 0.
func move(index, delta, n int) int {
	if n == 0 {
		return -1
	}
	if index < 0 {
		return 0
	}
	index += delta
	if index < 0 {
		return 0
	}
	if index > n-1 {
		return n - 1
	}
	return index
}

func listLen(kind types.ListKind, lists types.Lists) int {
	if kind == types.ListResults {
		return len(lists.Results)
	}
	return len(lists.Suggestions)
}

func delta(key string) int {
	if key == types.KeyUp {
		return -1
	}
	return 1
}

// isEdit reports whether the key changes the input text
func isEdit(ev types.KeyEvent) bool {
	if ev.Ctrl || ev.Meta {
		return false
	}
	switch ev.Key {
	case types.KeyRunes, types.KeyBackspace, "delete":
		return true
	}
	return false
}
