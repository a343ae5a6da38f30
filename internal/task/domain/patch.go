package domain

// TaskPatch carries only the fields that changed. Status is absent on
// purpose: it moves only through an explicit toggle.
type TaskPatch struct {
	Title        *string
	DueDate      *string
	Priority     *Priority
	AIPriority   *int
	UserPriority *int
	Reason       *string
	Tags         []string
}

// IsEmpty reports whether applying the patch would change nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.DueDate == nil && p.Priority == nil && p.AIPriority == nil &&
		p.UserPriority == nil && p.Reason == nil && p.Tags == nil
}

// Apply returns the patched task. A band change without an explicit numeric
// priority moves aiPriority to the band's value so both stay consistent.
func (p TaskPatch) Apply(t Task) Task {
	out := Clone([]Task{t})[0]

	if p.Title != nil && *p.Title != "" {
		out.Title = *p.Title
	}
	if p.DueDate != nil {
		if *p.DueDate == "" {
			out.DueDate = nil
		} else {
			v := *p.DueDate
			out.DueDate = &v
		}
	}
	if p.Priority != nil && IsValidPriority(string(*p.Priority)) {
		out.Priority = *p.Priority
		if p.AIPriority == nil {
			out.AIPriority = AIPriorityForBand(*p.Priority)
		}
	}
	if p.AIPriority != nil {
		out.AIPriority = ClampAIPriority(*p.AIPriority)
		if p.Priority == nil {
			out.Priority = BandForAIPriority(out.AIPriority)
		}
	}
	if p.UserPriority != nil {
		v := ClampUserPriority(*p.UserPriority)
		out.UserPriority = &v
	}
	if p.Reason != nil {
		v := *p.Reason
		out.Reason = &v
	}
	if p.Tags != nil {
		out.Tags = append([]string{}, p.Tags...)
	}
	return out
}
