package explain

import (
	"fmt"
	"time"

	"github.com/scbrown/cheeky/internal/model"
)

// NotFoundMessage is the text shown when an input names no known command.
func NotFoundMessage(prefix string) string {
	return fmt.Sprintf("the command is not a valid %s command", prefix)
}

// Record builds the history entry for one explanation request. e is nil
// when the input was not found.
func Record(raw, source string, e *model.Explanation) model.HistoryEntry {
	h := model.HistoryEntry{
		Input:     raw,
		Source:    source,
		Timestamp: time.Now().UTC(),
	}
	if e == nil {
		return h
	}
	h.Found = true
	h.Command = e.Name
	if len(e.Flags) > 0 {
		h.Flags = e.FlagNames()
	}
	return h
}
