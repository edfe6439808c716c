package model

// TodoItem is the domain model for a to-do entry.
type TodoItem struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// TodoPatch carries the fields of a partial update. Nil fields are left as-is.
type TodoPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Apply merges p onto it and returns the result.
func (p TodoPatch) Apply(it TodoItem) TodoItem {
	if p.Text != nil {
		it.Text = *p.Text
	}
	if p.Completed != nil {
		it.Completed = *p.Completed
	}
	return it
}

// CompletedPatch is the patch sent by a checkbox toggle.
func CompletedPatch(done bool) TodoPatch {
	return TodoPatch{Completed: &done}
}

// Stats counts done and pending items.
func Stats(items []TodoItem) (done, pending int) {
	for _, it := range items {
		if it.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
